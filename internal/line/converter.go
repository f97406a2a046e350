package line

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/domain"
)

// Converter maps LINE webhook message events onto domain messages.
type Converter struct {
	log *zap.Logger
	now func() time.Time
}

// NewConverter creates a Converter that reports unsupported and malformed
// payloads to logger.
func NewConverter(logger *zap.Logger) *Converter {
	return &Converter{log: logger, now: time.Now}
}

// Convert turns a message event into a domain message. Only text and image
// content is supported; every other kind, and any payload that cannot be
// read, yields ok == false.
func (c *Converter) Convert(e webhook.MessageEvent) (msg domain.Message, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("converting message failed", zap.Any("panic", r))
			msg, ok = nil, false
		}
	}()

	userID := sourceUserID(e.Source)
	if userID == "" {
		c.log.Warn("message event has no user id, skipping", zap.String("source", fmt.Sprintf("%T", e.Source)))
		return nil, false
	}

	switch content := e.Message.(type) {
	case webhook.TextMessageContent:
		m, err := domain.NewTextMessage(content.Id, userID, content.Text)
		if err != nil {
			c.log.Error("converting text message failed", zap.String("message_id", content.Id), zap.Error(err))
			return nil, false
		}
		c.fill(&m.Envelope, e)
		return m, true

	case webhook.ImageMessageContent:
		m := domain.NewImageMessage(content.Id, userID)
		if cp := content.ContentProvider; cp != nil {
			m.ContentType = string(cp.Type)
			m.ImageURL = cp.OriginalContentUrl
			m.PreviewURL = cp.PreviewImageUrl
		}
		if err := m.Validate(); err != nil {
			c.log.Error("converting image message failed", zap.String("message_id", content.Id), zap.Error(err))
			return nil, false
		}
		c.fill(&m.Envelope, e)
		return m, true

	case nil:
		c.log.Error("message event has no content")
		return nil, false

	default:
		c.log.Warn("unsupported message type", zap.String("type", fmt.Sprintf("%T", content)), zap.String("user_id", userID))
		return nil, false
	}
}

// fill sets the timestamp and raw payload shared by all variants.
func (c *Converter) fill(env *domain.Envelope, e webhook.MessageEvent) {
	if e.Timestamp > 0 {
		env.Timestamp = time.UnixMilli(e.Timestamp)
	} else {
		env.Timestamp = c.now()
	}
	env.RawData = rawData(e)
}

// rawData re-encodes the event as a generic map. Encoding problems only
// cost the raw copy, never the message.
func rawData(e webhook.MessageEvent) map[string]any {
	data, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	return raw
}

// sourceUserID extracts the sending user from any source kind. Group and
// room sources omit the user when the user has not consented to share it.
func sourceUserID(src webhook.SourceInterface) string {
	switch s := src.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	default:
		return ""
	}
}
