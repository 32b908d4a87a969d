package microsoft

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	msendpoint "golang.org/x/oauth2/microsoft"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

// DefaultTenant is used when no tenant is configured.
const DefaultTenant = "organizations"

// DefaultScopes are the delegated permissions shiftsheet needs.
// Includes all scopes upfront to avoid re-authorization.
var DefaultScopes = []string{
	"openid",
	"profile",
	"offline_access",         // Required for refresh tokens
	"User.Read",              // Signed-in user profile
	"Team.ReadBasic.All",     // Joined teams
	"GroupMember.Read.All",   // Team members and owners
	"Schedule.ReadWrite.All", // Shifts scheduling groups
}

// OAuthConfig describes an app registration.
type OAuthConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// AuthURL and TokenURL override the tenant endpoints.
	AuthURL  string
	TokenURL string
}

// OAuthHandler implements the authorization code + PKCE flow for the
// Microsoft identity platform.
type OAuthHandler struct {
	cfg    *oauth2.Config
	tenant string
}

// NewOAuthHandler creates a handler for the given app registration.
func NewOAuthHandler(c OAuthConfig) *OAuthHandler {
	tenant := c.TenantID
	if tenant == "" {
		tenant = DefaultTenant
	}

	endpoint := msendpoint.AzureADEndpoint(tenant)
	if c.AuthURL != "" {
		endpoint.AuthURL = c.AuthURL
	}
	if c.TokenURL != "" {
		endpoint.TokenURL = c.TokenURL
	}
	// Public clients have no secret to send in a basic auth header.
	if c.ClientSecret == "" {
		endpoint.AuthStyle = oauth2.AuthStyleInParams
	}

	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &OAuthHandler{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  c.RedirectURL,
			Scopes:       scopes,
		},
		tenant: tenant,
	}
}

// SetRedirectURL sets the redirect URI once the loopback port is known.
func (h *OAuthHandler) SetRedirectURL(redirectURL string) {
	h.cfg.RedirectURL = redirectURL
}

// GenerateVerifier returns a new PKCE code verifier.
func GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

// BuildAuthURL constructs the Microsoft authorization URL with an S256 code challenge.
func (h *OAuthHandler) BuildAuthURL(state, codeVerifier string) string {
	return h.cfg.AuthCodeURL(state,
		oauth2.S256ChallengeOption(codeVerifier),
		// Microsoft-specific: response_mode=query for easier code extraction
		oauth2.SetAuthURLParam("response_mode", "query"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// ExchangeCode exchanges an authorization code for tokens.
func (h *OAuthHandler) ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.OAuthToken, error) {
	tok, err := h.cfg.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", describeTokenError(err))
	}
	return fromOAuth2(tok, ""), nil
}

// RefreshToken refreshes an expired access token using a refresh token.
func (h *OAuthHandler) RefreshToken(ctx context.Context, refreshToken string) (*domain.OAuthToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", domain.ErrAuthRequired)
	}

	tok, err := h.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", describeTokenError(err))
	}

	// Microsoft may return a new refresh token
	return fromOAuth2(tok, refreshToken), nil
}

// LogoutURL returns the end-session URL for the tenant.
func (h *OAuthHandler) LogoutURL(postLogoutRedirect string) string {
	u := fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/logout", url.PathEscape(h.tenant))
	if postLogoutRedirect == "" {
		return u
	}
	return u + "?" + url.Values{"post_logout_redirect_uri": {postLogoutRedirect}}.Encode()
}

// Scopes returns the requested scopes.
func (h *OAuthHandler) Scopes() []string {
	return h.cfg.Scopes
}

// SetupHint returns guidance for setting up a Microsoft app registration.
func (h *OAuthHandler) SetupHint() string {
	return "Create an app registration at portal.azure.com > App registrations, " +
		"add a Mobile and desktop redirect URI of http://localhost and grant: " +
		strings.Join(h.cfg.Scopes, ", ")
}

func fromOAuth2(tok *oauth2.Token, previousRefresh string) *domain.OAuthToken {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	return &domain.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}

// describeTokenError surfaces the identity platform's error description and
// marks invalid_grant as a sign-in problem.
func describeTokenError(err error) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return err
	}
	msg := re.ErrorDescription
	if msg == "" {
		msg = re.Error()
	}
	if re.ErrorCode == "invalid_grant" {
		return fmt.Errorf("%w: %s", domain.ErrAuthInvalid, msg)
	}
	return errors.New(msg)
}
