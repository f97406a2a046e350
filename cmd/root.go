package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/linebot-module/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "linebot",
	Short: "LINE Messaging API webhook adapter",
	Long: `linebot receives LINE webhook events, converts them into internal
messages, dispatches them to a pluggable handler and replies through the
LINE Messaging API. It also exposes push, profile and content operations
over REST and from the command line.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(loadDotEnv)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// loadDotEnv makes variables from ./.env visible to the config loader.
// A missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load(".env")
}
