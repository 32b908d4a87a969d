package driven

import (
	"context"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

// TokenStore persists the signed-in user's OAuth token.
type TokenStore interface {
	// Load returns the cached token or domain.ErrNotFound.
	Load(ctx context.Context) (*domain.OAuthToken, error)

	// Save stores the token, replacing any previous one.
	Save(ctx context.Context, token *domain.OAuthToken) error

	// Delete removes the cached token. Deleting a missing token is not an error.
	Delete(ctx context.Context) error
}

// SyncHistoryStore records sync runs.
type SyncHistoryStore interface {
	// Record persists a run summary.
	Record(ctx context.Context, run domain.SyncRun) error

	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]domain.SyncRun, error)
}

// LoginFlow runs an interactive sign-in or sign-out.
type LoginFlow interface {
	// Login returns a token once the user completes sign-in.
	// Returns domain.ErrDialogClosed if the user abandons the flow.
	Login(ctx context.Context) (*domain.OAuthToken, error)

	// Logout ends the remote session.
	Logout(ctx context.Context) error
}

// ConfigStore reads and writes the configuration file.
type ConfigStore interface {
	// Load returns the configuration with environment overrides applied.
	// A missing file yields domain.DefaultConfig.
	Load() (*domain.Config, error)

	// LoadFile returns the configuration as stored, without overrides.
	LoadFile() (*domain.Config, error)

	// Save writes the configuration file.
	Save(cfg *domain.Config) error

	// Path returns the configuration file path.
	Path() string
}
