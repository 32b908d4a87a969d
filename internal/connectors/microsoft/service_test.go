package microsoft

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInfo_Account(t *testing.T) {
	var info UserInfo
	err := json.Unmarshal([]byte(`{"id":"u1","displayName":"Adele Vance","mail":"adele@contoso.com","userPrincipalName":"AdeleV@contoso.com"}`), &info)
	require.NoError(t, err)

	account := info.Account()
	assert.Equal(t, "u1", account.ID)
	assert.Equal(t, "Adele Vance", account.DisplayName)
	assert.Equal(t, "AdeleV@contoso.com", account.UserPrincipalName)
}

func TestGraphBaseURL(t *testing.T) {
	assert.Equal(t, "https://graph.microsoft.com/v1.0", GraphBaseURL)
}
