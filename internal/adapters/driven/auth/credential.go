package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
	"github.com/custodia-labs/shiftsheet/internal/core/ports/driven"
)

// Ensure the credential adapters implement the interfaces.
var (
	_ driven.TokenProvider = (*CredentialTokenProvider)(nil)
	_ driven.LoginFlow     = (*CredentialLoginFlow)(nil)
)

const graphResource = "https://graph.microsoft.com/"

// AppScopes is the scope for app-only (application permission) tokens.
var AppScopes = []string{graphResource + ".default"}

// GraphScopes qualifies delegated scopes with the Graph resource. OpenID
// scopes are dropped; the identity library always requests them.
func GraphScopes(scopes []string) []string {
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		switch {
		case s == "openid", s == "profile", s == "offline_access", s == "email":
			continue
		case strings.Contains(s, "://"):
			out = append(out, s)
		default:
			out = append(out, graphResource+s)
		}
	}
	return out
}

// CredentialTokenProvider serves tokens from an Azure SDK credential,
// reusing the last token until it is about to expire.
type CredentialTokenProvider struct {
	mu     sync.Mutex
	cred   azcore.TokenCredential
	scopes []string
	cached azcore.AccessToken
}

// NewCredentialTokenProvider wraps a credential.
func NewCredentialTokenProvider(cred azcore.TokenCredential, scopes []string) *CredentialTokenProvider {
	return &CredentialTokenProvider{cred: cred, scopes: scopes}
}

// NewClientSecretProvider creates an app-only provider from an app
// registration secret.
func NewClientSecretProvider(tenantID, clientID, secret string) (*CredentialTokenProvider, error) {
	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, secret, nil)
	if err != nil {
		return nil, fmt.Errorf("create client secret credential: %w", err)
	}
	return NewCredentialTokenProvider(cred, AppScopes), nil
}

// DeviceCodePrompt shows the device code instructions to the user.
type DeviceCodePrompt func(message string)

// NewDeviceCodeProvider creates a delegated provider that signs in with the
// device code flow on first use.
func NewDeviceCodeProvider(tenantID, clientID string, scopes []string, prompt DeviceCodePrompt) (*CredentialTokenProvider, error) {
	cred, err := azidentity.NewDeviceCodeCredential(&azidentity.DeviceCodeCredentialOptions{
		TenantID: tenantID,
		ClientID: clientID,
		UserPrompt: func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
			if prompt != nil {
				prompt(msg.Message)
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create device code credential: %w", err)
	}
	return NewCredentialTokenProvider(cred, GraphScopes(scopes)), nil
}

// Token returns the full token, requesting a new one when needed.
func (p *CredentialTokenProvider) Token(ctx context.Context) (azcore.AccessToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached.Token != "" && time.Until(p.cached.ExpiresOn) > ExpiryLeeway {
		return p.cached, nil
	}

	tok, err := p.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: p.scopes})
	if err != nil {
		var authErr *azidentity.AuthenticationFailedError
		if errors.As(err, &authErr) {
			return azcore.AccessToken{}, fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return azcore.AccessToken{}, fmt.Errorf("get token: %w", err)
	}
	p.cached = tok
	return tok, nil
}

// GetToken returns a valid access token.
func (p *CredentialTokenProvider) GetToken(ctx context.Context) (string, error) {
	tok, err := p.Token(ctx)
	if err != nil {
		return "", err
	}
	return tok.Token, nil
}

// Reset drops the cached token.
func (p *CredentialTokenProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = azcore.AccessToken{}
}

// CredentialLoginFlow signs in by acquiring a token from a credential. For
// the device code credential this shows the device code prompt; for a
// client secret it verifies the secret.
type CredentialLoginFlow struct {
	provider *CredentialTokenProvider
}

// NewCredentialLoginFlow creates a login flow over a credential provider.
func NewCredentialLoginFlow(provider *CredentialTokenProvider) *CredentialLoginFlow {
	return &CredentialLoginFlow{provider: provider}
}

// Login acquires a token.
func (f *CredentialLoginFlow) Login(ctx context.Context) (*domain.OAuthToken, error) {
	f.provider.Reset()
	tok, err := f.provider.Token(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.ErrDialogClosed
		}
		return nil, err
	}
	return &domain.OAuthToken{
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		Expiry:      tok.ExpiresOn,
	}, nil
}

// Logout drops the in-memory token. There is no browser session to end.
func (f *CredentialLoginFlow) Logout(_ context.Context) error {
	f.provider.Reset()
	return nil
}
