package clipboard

import "sync"

// Mock records clipboard operations for tests.
type Mock struct {
	mu       sync.Mutex
	contents string
	copies   int
	clears   int

	// CopyErr and ClearErr, when set, are returned by the respective
	// operations.
	CopyErr  error
	ClearErr error
}

// NewMock creates a mock clipboard.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CopyErr != nil {
		return m.CopyErr
	}
	m.contents = text
	m.copies++
	return nil
}

func (m *Mock) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.contents = ""
	m.clears++
	return nil
}

// Contents returns the current clipboard text.
func (m *Mock) Contents() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contents
}

// Copies returns how many times Copy succeeded.
func (m *Mock) Copies() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copies
}

// Clears returns how many times Clear succeeded.
func (m *Mock) Clears() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}
