package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/linebot-module/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize linebot configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to collect the LINE channel credentials and handler choice, and writes them to .linebot.yml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
