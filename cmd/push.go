package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/line"
)

var (
	pushUser       string
	pushText       string
	pushImageURL   string
	pushPreviewURL string
	pushQuickReply string
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push a text or image message to a user",
	Example: `  linebot push --user U123 --text "Hello"
  linebot push --user U123 --image-url https://example.com/a.jpg --preview-url https://example.com/a_s.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (pushText == "") == (pushImageURL == "") {
			return fmt.Errorf("exactly one of --text or --image-url is required")
		}

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

		var resp domain.SendMessageResponse
		if pushText != "" {
			var opts []line.SendOption
			if pushQuickReply != "" {
				var qr map[string]any
				if err := json.Unmarshal([]byte(pushQuickReply), &qr); err != nil {
					return fmt.Errorf("parsing --quick-reply: %w", err)
				}
				opts = append(opts, line.WithQuickReply(qr))
			}
			resp = client.SendText(cmd.Context(), pushUser, pushText, opts...)
		} else {
			preview := pushPreviewURL
			if preview == "" {
				preview = pushImageURL
			}
			resp = client.SendImage(cmd.Context(), pushUser, pushImageURL, preview)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
		if !resp.Success {
			return fmt.Errorf("push failed: %s", resp.ErrorText())
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushUser, "user", "", "LINE user id to send to (required)")
	pushCmd.Flags().StringVar(&pushText, "text", "", "text message content")
	pushCmd.Flags().StringVar(&pushImageURL, "image-url", "", "HTTPS URL of the original image")
	pushCmd.Flags().StringVar(&pushPreviewURL, "preview-url", "", "HTTPS URL of the preview image (defaults to --image-url)")
	pushCmd.Flags().StringVar(&pushQuickReply, "quick-reply", "", "quick reply as LINE quickReply JSON")
	pushCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(pushCmd)
}
