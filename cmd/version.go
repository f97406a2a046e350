package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time.
var Version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of linebot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("linebot %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
