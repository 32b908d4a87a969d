package domain

import "time"

// AuthMode selects how shiftsheet obtains Graph access tokens.
type AuthMode string

const (
	// AuthModeInteractive signs in through the browser with auth code + PKCE.
	AuthModeInteractive AuthMode = "interactive"
	// AuthModeDeviceCode signs in with the device code flow.
	AuthModeDeviceCode AuthMode = "device_code"
	// AuthModeClientSecret uses an app registration secret (app-only).
	AuthModeClientSecret AuthMode = "client_secret"
)

// Valid reports whether the mode is recognised.
func (m AuthMode) Valid() bool {
	switch m {
	case AuthModeInteractive, AuthModeDeviceCode, AuthModeClientSecret:
		return true
	}
	return false
}

// OAuthToken holds an OAuth2 token set.
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// IsExpired reports whether the access token expires within the leeway.
func (t *OAuthToken) IsExpired(leeway time.Duration) bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(leeway).After(t.Expiry)
}

// Account is the signed-in identity shown to the user.
type Account struct {
	ID                string
	DisplayName       string
	UserPrincipalName string
}
