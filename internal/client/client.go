// Package client wires the engine's collaborators into a single entry
// point for callers (the CLI, or any other frontend).
package client

import (
	"context"

	"github.com/TheMichaelB/lockbox/internal/clipboard"
	"github.com/TheMichaelB/lockbox/internal/config"
	"github.com/TheMichaelB/lockbox/internal/crypto"
	"github.com/TheMichaelB/lockbox/internal/events"
	"github.com/TheMichaelB/lockbox/internal/services/backup"
	"github.com/TheMichaelB/lockbox/internal/services/guard"
	"github.com/TheMichaelB/lockbox/internal/services/session"
	"github.com/TheMichaelB/lockbox/internal/storage"
)

// Client provides the high-level API for vault operations.
type Client struct {
	Session *session.Service
	Backup  *backup.Service

	config *config.Config
	logger *events.Logger
}

// New creates a client from config.
func New(cfg *config.Config, logger *events.Logger) *Client {
	store := storage.NewFileStore(logger)
	provider := crypto.NewProvider()
	attemptGuard := guard.New()
	clip := clipboard.NewSystem()

	sessionService := session.NewService(
		cfg.Vault.Path, store, provider, attemptGuard, clip, logger)
	backupService := backup.NewService(sessionService, store, provider, logger)

	return &Client{
		Session: sessionService,
		Backup:  backupService,
		config:  cfg,
		logger:  logger,
	}
}

// StartAutoLock launches the background inactivity monitor.
func (c *Client) StartAutoLock(ctx context.Context) {
	c.Session.StartAutoLock(ctx)
}

// Close locks the session, discarding key material.
func (c *Client) Close() {
	c.Session.Lock()
}
