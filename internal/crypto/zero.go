package crypto

// Zero overwrites a byte slice in memory with zeros. Used to discard key
// material before it goes out of scope.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
