package domain

import (
	"fmt"
	"time"
)

// SendMessageRequest asks for an unsolicited push to a user.
type SendMessageRequest struct {
	UserID      string         `json:"user_id"`
	MessageType MessageType    `json:"message_type"`
	Content     string         `json:"content"`
	QuickReply  map[string]any `json:"quick_reply,omitempty"`
}

// Validate checks that MessageType is a known tag. Empty user_id and content
// are accepted; the platform rejects them with a failure envelope.
func (r *SendMessageRequest) Validate() error {
	if r.MessageType == "" {
		return fmt.Errorf("message_type is required")
	}
	if !r.MessageType.Valid() {
		return fmt.Errorf("invalid message_type %q: must be one of text, image, audio, video, location, sticker", r.MessageType)
	}
	return nil
}

// SendMessageResponse is the result envelope of every outbound operation.
// Build it with Succeeded or Failed so that Success and ErrorMessage agree.
type SendMessageResponse struct {
	Success      bool      `json:"success"`
	MessageID    *string   `json:"message_id"`
	ErrorMessage *string   `json:"error_message"`
	Timestamp    time.Time `json:"timestamp"`
}

// Succeeded returns a success envelope. messageID may be empty; the
// platform rarely returns one.
func Succeeded(messageID string) SendMessageResponse {
	resp := SendMessageResponse{Success: true, Timestamp: time.Now()}
	if messageID != "" {
		resp.MessageID = &messageID
	}
	return resp
}

// Failed returns a failure envelope carrying msg.
func Failed(msg string) SendMessageResponse {
	if msg == "" {
		msg = "unknown error"
	}
	return SendMessageResponse{Success: false, ErrorMessage: &msg, Timestamp: time.Now()}
}

// ErrorText returns the failure message, or "" for a successful response.
func (r SendMessageResponse) ErrorText() string {
	if r.ErrorMessage == nil {
		return ""
	}
	return *r.ErrorMessage
}
