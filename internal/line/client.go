package line

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
)

// Client wraps the LINE Messaging API. Every operation absorbs errors:
// sends return a SendMessageResponse, fetches return ok == false.
type Client struct {
	token        string
	endpoint     string
	blobEndpoint string
	httpClient   *http.Client
	log          *zap.Logger
	metrics      *metrics.Metrics
	retryKey     func() string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the Messaging API base URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithBlobEndpoint overrides the content (api-data) base URL.
func WithBlobEndpoint(url string) Option {
	return func(c *Client) { c.blobEndpoint = url }
}

// WithHTTPClient sets the HTTP client used for every call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records call outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client authenticated with the channel access token.
func NewClient(token string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		token:    token,
		log:      logger,
		retryKey: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// api builds a context-bound SDK client. The SDK stores the context on the
// client value, so one is created per call rather than shared.
func (c *Client) api(ctx context.Context) (*messaging_api.MessagingApiAPI, error) {
	var opts []messaging_api.MessagingApiAPIOption
	if c.endpoint != "" {
		opts = append(opts, messaging_api.WithEndpoint(c.endpoint))
	}
	if c.httpClient != nil {
		opts = append(opts, messaging_api.WithHTTPClient(c.httpClient))
	}
	bot, err := messaging_api.NewMessagingApiAPI(c.token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating messaging api client: %w", err)
	}
	return bot.WithContext(ctx), nil
}

func (c *Client) blobAPI(ctx context.Context) (*messaging_api.MessagingApiBlobAPI, error) {
	var opts []messaging_api.MessagingApiBlobAPIOption
	if c.blobEndpoint != "" {
		opts = append(opts, messaging_api.WithBlobEndpoint(c.blobEndpoint))
	}
	if c.httpClient != nil {
		opts = append(opts, messaging_api.WithBlobHTTPClient(c.httpClient))
	}
	blob, err := messaging_api.NewMessagingApiBlobAPI(c.token, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating blob api client: %w", err)
	}
	return blob.WithContext(ctx), nil
}

// SendOption customizes an outbound text message.
type SendOption func(*messaging_api.TextMessage) error

// WithQuickReply attaches quick reply buttons given in the LINE quickReply
// JSON shape, e.g. {"items": [{"type": "action", "action": {...}}]}.
func WithQuickReply(raw map[string]any) SendOption {
	return func(m *messaging_api.TextMessage) error {
		if len(raw) == 0 {
			return nil
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("encoding quick_reply: %w", err)
		}
		var qr messaging_api.QuickReply
		if err := json.Unmarshal(data, &qr); err != nil {
			return fmt.Errorf("invalid quick_reply: %w", err)
		}
		m.QuickReply = &qr
		return nil
	}
}

// SendText pushes a text message to a user.
func (c *Client) SendText(ctx context.Context, userID, text string, opts ...SendOption) domain.SendMessageResponse {
	msg := messaging_api.TextMessage{Text: text}
	for _, opt := range opts {
		if err := opt(&msg); err != nil {
			c.metrics.Gateway("push_text", false)
			return domain.Failed(err.Error())
		}
	}
	return c.push(ctx, "push_text", userID, msg)
}

// SendImage pushes an image message to a user. Both URLs must be HTTPS.
func (c *Client) SendImage(ctx context.Context, userID, originalURL, previewURL string) domain.SendMessageResponse {
	msg := messaging_api.ImageMessage{
		OriginalContentUrl: originalURL,
		PreviewImageUrl:    previewURL,
	}
	return c.push(ctx, "push_image", userID, msg)
}

func (c *Client) push(ctx context.Context, op, userID string, msg messaging_api.MessageInterface) domain.SendMessageResponse {
	bot, err := c.api(ctx)
	if err != nil {
		return c.fail(op, err)
	}
	resp, err := bot.PushMessage(&messaging_api.PushMessageRequest{
		To:       userID,
		Messages: []messaging_api.MessageInterface{msg},
	}, c.retryKey())
	if err != nil {
		return c.fail(op, err)
	}

	c.log.Info("message pushed", zap.String("op", op), zap.String("user_id", userID))
	c.metrics.Gateway(op, true)
	var id string
	if resp != nil && len(resp.SentMessages) > 0 {
		id = resp.SentMessages[0].Id
	}
	return domain.Succeeded(id)
}

// Reply answers an inbound event through its reply token.
func (c *Client) Reply(ctx context.Context, replyToken, text string) domain.SendMessageResponse {
	const op = "reply"
	bot, err := c.api(ctx)
	if err != nil {
		return c.fail(op, err)
	}
	resp, err := bot.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{messaging_api.TextMessage{Text: text}},
	})
	if err != nil {
		return c.fail(op, err)
	}

	c.log.Info("reply sent")
	c.metrics.Gateway(op, true)
	var id string
	if resp != nil && len(resp.SentMessages) > 0 {
		id = resp.SentMessages[0].Id
	}
	return domain.Succeeded(id)
}

// FetchProfile returns the user's profile, or ok == false on any failure
// including an unknown user.
func (c *Client) FetchProfile(ctx context.Context, userID string) (*domain.User, bool) {
	const op = "profile"
	bot, err := c.api(ctx)
	if err != nil {
		c.fail(op, err)
		return nil, false
	}
	profile, err := bot.GetProfile(userID)
	if err != nil {
		c.fail(op, err)
		return nil, false
	}
	c.metrics.Gateway(op, true)
	return &domain.User{
		UserID:        userID,
		DisplayName:   profile.DisplayName,
		PictureURL:    profile.PictureUrl,
		StatusMessage: profile.StatusMessage,
		Language:      profile.Language,
	}, true
}

// FetchContent downloads the binary content of an image, video, audio or
// file message into memory.
func (c *Client) FetchContent(ctx context.Context, messageID string) ([]byte, bool) {
	body, _, ok := c.OpenContent(ctx, messageID)
	if !ok {
		return nil, false
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		c.fail("content", fmt.Errorf("reading content: %w", err))
		return nil, false
	}
	c.log.Info("content fetched", zap.String("message_id", messageID), zap.Int("bytes", len(data)))
	return data, true
}

// OpenContent starts a content download and returns the streamed body with
// its declared length, -1 when unknown. The caller closes the body.
func (c *Client) OpenContent(ctx context.Context, messageID string) (io.ReadCloser, int64, bool) {
	const op = "content"
	blob, err := c.blobAPI(ctx)
	if err != nil {
		c.fail(op, err)
		return nil, 0, false
	}
	resp, err := blob.GetMessageContent(messageID)
	if err != nil {
		c.fail(op, err)
		return nil, 0, false
	}

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.fail(op, fmt.Errorf("unexpected status code: %d, %s", resp.StatusCode, body))
		return nil, 0, false
	}
	c.metrics.Gateway(op, true)
	return resp.Body, resp.ContentLength, true
}

// fail logs err and converts it into a failure envelope.
func (c *Client) fail(op string, err error) domain.SendMessageResponse {
	c.metrics.Gateway(op, false)
	var perr *PlatformError
	if errors.As(err, &perr) || asPlatformError(err, &perr) {
		c.log.Error("LINE API call failed", zap.String("op", op), zap.Int("status", perr.StatusCode), zap.String("detail", perr.Message))
		return domain.Failed(perr.Error())
	}
	c.log.Error("LINE API call failed with unknown error", zap.String("op", op), zap.Error(err))
	return domain.Failed("unknown error: " + err.Error())
}

// PlatformError is a non-2xx answer from the LINE API.
type PlatformError struct {
	StatusCode int
	Message    string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("LINE API error (status %d): %s", e.StatusCode, e.Message)
}

// The SDK reports non-2xx responses as plain errors in this format.
var statusErrorPattern = regexp.MustCompile(`(?s)unexpected status code: (\d+), (.*)`)

func asPlatformError(err error, target **PlatformError) bool {
	m := statusErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return false
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return false
	}
	*target = &PlatformError{StatusCode: code, Message: platformMessage(m[2], code)}
	return true
}

// platformMessage extracts "message" from a LINE error body, falling back
// to the raw body or the status text.
func platformMessage(body string, code int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if s := strings.TrimSpace(body); s != "" {
		return s
	}
	return http.StatusText(code)
}
