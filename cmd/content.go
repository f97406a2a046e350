package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/linebot-module/internal/progress"
)

var contentOut string

var contentCmd = &cobra.Command{
	Use:   "content <message-id>",
	Short: "Download the binary content of an image, video or audio message",
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

		client := newClient(cfg, logger, nil)
		if contentOut == "" || contentOut == "-" {
			data, ok := client.FetchContent(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("content for message %s not available", args[0])
			}
			_, err := os.Stdout.Write(data)
			return err
		}

		body, size, ok := client.OpenContent(cmd.Context(), args[0])
		if !ok {
			return fmt.Errorf("content for message %s not available", args[0])
		}
		defer body.Close()

		f, err := os.OpenFile(contentOut, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("creating %s: %w", contentOut, err)
		}
		defer f.Close()

		tr := progress.NewTransfer(size, "Downloading "+args[0])
		n, err := io.Copy(io.MultiWriter(f, tr), body)
		tr.Finish()
		if err != nil {
			return fmt.Errorf("writing %s: %w", contentOut, err)
		}
		fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", n, contentOut)
		return nil
	},
}

func init() {
	contentCmd.Flags().StringVarP(&contentOut, "out", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(contentCmd)
}
