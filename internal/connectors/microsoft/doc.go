// Package microsoft provides OAuth2 and shared request support for Microsoft Graph API.
//
// This package provides:
//   - OAuth2 authentication handler for the Microsoft identity platform
//   - Rate limiting for Microsoft Graph API requests
//   - Error handling for Microsoft Graph API responses
//   - Signed-in user lookup
//
// The Teams, membership and scheduling endpoints live in the teams subpackage.
//
// # OAuth2 Flow
//
// Microsoft uses standard OAuth2 with PKCE:
//   - Auth URL: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/authorize
//   - Token URL: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token
//
// The tenant defaults to "organizations" because Shifts schedules only exist
// for work or school accounts. The "offline_access" scope is required for
// refresh tokens.
//
// # Rate Limits
//
// Microsoft Graph throttles with 429 responses carrying a Retry-After header.
// Teams and Shifts endpoints are throttled more aggressively than the rest of
// Graph, so the defaults here are conservative.
package microsoft
