package microsoft

import "github.com/custodia-labs/shiftsheet/internal/core/domain"

// GraphBaseURL is the Microsoft Graph API v1.0 endpoint.
const GraphBaseURL = "https://graph.microsoft.com/v1.0"

// UserSelect is the $select clause for user profile reads.
const UserSelect = "id,displayName,mail,userPrincipalName"

// UserInfo contains the user's basic profile information from Microsoft Graph.
type UserInfo struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Account converts the profile to a domain account.
func (u *UserInfo) Account() *domain.Account {
	return &domain.Account{
		ID:                u.ID,
		DisplayName:       u.DisplayName,
		UserPrincipalName: u.UserPrincipalName,
	}
}
