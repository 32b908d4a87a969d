package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/shiftsheet/internal/adapters/driven/auth"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driven/config/file"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driven/workbook/excel"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/cli"
	"github.com/custodia-labs/shiftsheet/internal/adapters/driving/oauth"
	"github.com/custodia-labs/shiftsheet/internal/connectors"
	"github.com/custodia-labs/shiftsheet/internal/connectors/microsoft"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/core/services"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = logger.Sync() }()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// bootstrap builds the stores and services once the --config flag is known.
func bootstrap(_ context.Context, configPath string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("create config store: %w", err)
	}
	cfg, err := configStore.Load()
	if err != nil {
		return nil, err
	}

	// The database lives next to the config file.
	sqliteStore, err := sqlite.NewStore(filepath.Dir(configStore.Path()))
	if err != nil {
		return nil, fmt.Errorf("create SQLite store: %w", err)
	}
	tokenStore := sqlite.NewTokenStore(sqliteStore, sqlite.DefaultProfile)
	historyStore := sqlite.NewSyncHistoryStore(sqliteStore)

	setupErr := cfg.Validate()
	tokenProvider, loginFlow, err := newAuth(cfg, tokenStore)
	if err != nil {
		_ = sqliteStore.Close()
		return nil, err
	}

	graph := connectors.NewGraphClient(cfg, tokenProvider)

	session := services.NewSession()
	authSvc := services.NewAuthService(loginFlow, tokenStore, graph, session)
	syncSvc := services.NewSyncService(graph, excel.NewOpener(), historyStore, session)
	syncSvc.SetDefaultPolicy(cfg.Sync.UnknownUserPolicy)

	return &cli.Services{
		Auth:         authSvc,
		Sync:         syncSvc,
		Config:       services.NewConfigService(configStore),
		Session:      session,
		WorkbookPath: cfg.Workbook.Path,
		SetupErr:     setupErr,
		Close: func() {
			if err := sqliteStore.Close(); err != nil {
				logger.Debug("close store: %v", err)
			}
		},
	}, nil
}

// newAuth picks the token source and sign-in flow for the configured mode.
func newAuth(cfg *domain.Config, tokens driven.TokenStore) (driven.TokenProvider, driven.LoginFlow, error) {
	switch cfg.Auth.Mode {
	case domain.AuthModeClientSecret:
		if cfg.Auth.ClientSecret == "" {
			break
		}
		provider, err := auth.NewClientSecretProvider(cfg.Auth.TenantID, cfg.Auth.ClientID, cfg.Auth.ClientSecret)
		if err != nil {
			return nil, nil, err
		}
		return provider, auth.NewCredentialLoginFlow(provider), nil

	case domain.AuthModeDeviceCode:
		provider, err := auth.NewDeviceCodeProvider(cfg.Auth.TenantID, cfg.Auth.ClientID,
			auth.GraphScopes(scopesOrDefault(cfg.Auth.Scopes)),
			func(message string) { fmt.Fprintln(os.Stderr, message) })
		if err != nil {
			return nil, nil, err
		}
		// Device code tokens carry no refresh token; the cached token is used until it expires.
		return auth.NewStoredTokenProvider(tokens, nil), auth.NewCredentialLoginFlow(provider), nil
	}

	handler := microsoft.NewOAuthHandler(microsoft.OAuthConfig{
		TenantID:     cfg.Auth.TenantID,
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		Scopes:       cfg.Auth.Scopes,
	})
	flow := oauth.NewLoginFlow(handler, oauth.Options{
		Port: cfg.Auth.RedirectPort,
		Out:  os.Stderr,
	})
	return auth.NewStoredTokenProvider(tokens, handler), flow, nil
}

func scopesOrDefault(scopes []string) []string {
	if len(scopes) == 0 {
		return microsoft.DefaultScopes
	}
	return scopes
}
