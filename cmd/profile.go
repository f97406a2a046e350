package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile <user-id>",
	Short: "Fetch a user's LINE profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		user, ok := newClient(cfg, logger, nil).FetchProfile(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("user %s not found", args[0])
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
