package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Microsoft 365",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireGraph(); err != nil {
			return err
		}
		account, err := authService.Login(cmd.Context())
		if errors.Is(err, domain.ErrDialogClosed) {
			cmd.Println("Sign-in cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		cmd.Printf("Signed in as %s\n", accountLabel(account))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the cached token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if authService == nil {
			return errors.New("services not initialised")
		}
		if err := authService.Logout(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := signedIn(cmd.Context()); err != nil {
			return err
		}
		account, err := authService.WhoAmI(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(accountLabel(account))
		if account.ID != "" {
			cmd.Printf("ID: %s\n", account.ID)
		}
		return nil
	},
}

func accountLabel(a *domain.Account) string {
	if a == nil {
		return "unknown account"
	}
	switch {
	case a.DisplayName != "" && a.UserPrincipalName != "":
		return fmt.Sprintf("%s <%s>", a.DisplayName, a.UserPrincipalName)
	case a.UserPrincipalName != "":
		return a.UserPrincipalName
	default:
		return a.DisplayName
	}
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
