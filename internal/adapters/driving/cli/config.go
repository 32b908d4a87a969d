package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shiftsheet/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configService == nil {
			return errors.New("services not initialised")
		}
		cfg, err := configService.Current(cmd.Context())
		if err != nil {
			return err
		}
		for _, key := range domain.ConfigKeys() {
			value, err := cfg.Get(key)
			if err != nil {
				return err
			}
			if key == "auth.client_secret" && value != "" {
				value = "********"
			}
			cmd.Printf("%s = %s\n", key, value)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configService == nil {
			return errors.New("services not initialised")
		}
		cmd.Println(configService.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change a setting",
	Long:  "Change a setting. Keys:\n" + keyList(),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if configService == nil {
			return errors.New("services not initialised")
		}
		if err := configService.Set(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		cmd.Printf("Set %s\n", args[0])
		return nil
	},
}

func keyList() string {
	var s string
	for _, k := range domain.ConfigKeys() {
		s += fmt.Sprintf("  %s\n", k)
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
