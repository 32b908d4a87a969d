package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/shiftsheet/internal/connectors/microsoft"
	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
	"github.com/custodia-labs/shiftsheet/internal/logger"
)

// Ensure LoginFlow implements the interface.
var _ driven.LoginFlow = (*LoginFlow)(nil)

// DefaultTimeout bounds how long Login waits for the browser.
const DefaultTimeout = 5 * time.Minute

// Options configures a LoginFlow.
type Options struct {
	// Port is the loopback callback port; 0 picks a free port.
	Port int
	// PostLogoutRedirect is where the sign-out page returns to.
	PostLogoutRedirect string
	// Timeout bounds the wait for the callback. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Open opens a URL in the browser. Defaults to OpenBrowser.
	Open func(url string) error
	// Out receives the fallback instructions. Nil discards them.
	Out io.Writer
}

// LoginFlow signs in through the system browser.
type LoginFlow struct {
	handler *microsoft.OAuthHandler
	opts    Options
}

// NewLoginFlow creates a browser login flow.
func NewLoginFlow(handler *microsoft.OAuthHandler, opts Options) *LoginFlow {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Open == nil {
		opts.Open = OpenBrowser
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &LoginFlow{handler: handler, opts: opts}
}

// Login opens the sign-in page and waits for the callback.
// Cancelling ctx closes the dialog and returns domain.ErrDialogClosed.
func (f *LoginFlow) Login(ctx context.Context) (*domain.OAuthToken, error) {
	state := uuid.New().String()
	verifier := microsoft.GenerateVerifier()

	server := NewCallbackServer(f.opts.Port, state, func(ctx context.Context, code string) (*domain.OAuthToken, error) {
		return f.handler.ExchangeCode(ctx, code, verifier)
	})
	if err := server.Start(); err != nil {
		return nil, err
	}
	defer server.Stop()

	f.handler.SetRedirectURL(server.RedirectURI())
	server.SetAuthURL(f.handler.BuildAuthURL(state, verifier))

	loginURL := server.LoginURL()
	fmt.Fprintf(f.opts.Out, "Opening browser to sign in.\nIf it does not open, visit:\n%s\n", loginURL)
	if err := f.opts.Open(loginURL); err != nil {
		logger.Warn("oauth: %v", err)
	}

	timer := time.NewTimer(f.opts.Timeout)
	defer timer.Stop()

	select {
	case msg := <-server.Messages():
		if err := messageError(msg); err != nil {
			return nil, err
		}
		return msg.Token(), nil
	case <-ctx.Done():
		logger.Debug("oauth: sign-in abandoned: %v", ctx.Err())
		return nil, &DialogError{Code: CodeClosed}
	case <-timer.C:
		return nil, fmt.Errorf("no response from browser after %s: %w", f.opts.Timeout, &DialogError{Code: CodeClosed})
	}
}

// Logout opens the Microsoft sign-out page.
func (f *LoginFlow) Logout(ctx context.Context) error {
	if f.opts.PostLogoutRedirect != "" {
		if err := checkRedirect(f.opts.PostLogoutRedirect); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(&DialogError{Code: CodeClosed}, err)
	}
	url := f.handler.LogoutURL(f.opts.PostLogoutRedirect)
	fmt.Fprintf(f.opts.Out, "Opening browser to sign out:\n%s\n", url)
	return f.opts.Open(url)
}
