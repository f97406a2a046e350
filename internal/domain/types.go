package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MessageType identifies which message variant a Message holds.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeVideo    MessageType = "video"
	MessageTypeLocation MessageType = "location"
	MessageTypeSticker  MessageType = "sticker"
)

// MaxTextLength is the upper bound on TextMessage.Text, counted in characters.
const MaxTextLength = 5000

// validMessageTypes is the set of recognized message type tags.
var validMessageTypes = map[MessageType]bool{
	MessageTypeText:     true,
	MessageTypeImage:    true,
	MessageTypeAudio:    true,
	MessageTypeVideo:    true,
	MessageTypeLocation: true,
	MessageTypeSticker:  true,
}

// Valid reports whether t is one of the known variant tags.
func (t MessageType) Valid() bool {
	return validMessageTypes[t]
}

// Message is implemented by every message variant.
type Message interface {
	// Type returns the variant tag carried in the envelope.
	Type() MessageType
	// Common returns the fields shared by all variants.
	Common() *Envelope
	Validate() error
}

// Envelope holds the fields every message variant carries.
type Envelope struct {
	MessageID   string         `json:"message_id"`
	UserID      string         `json:"user_id"`
	Timestamp   time.Time      `json:"timestamp"`
	MessageType MessageType    `json:"message_type"`
	RawData     map[string]any `json:"raw_data,omitempty"`
}

// Type returns the envelope's variant tag.
func (e *Envelope) Type() MessageType { return e.MessageType }

// Common returns the envelope itself.
func (e *Envelope) Common() *Envelope { return e }

func (e *Envelope) validate() error {
	if e.MessageID == "" {
		return fmt.Errorf("message_id is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

func newEnvelope(t MessageType, messageID, userID string) Envelope {
	return Envelope{
		MessageID:   messageID,
		UserID:      userID,
		Timestamp:   time.Now(),
		MessageType: t,
	}
}

// TextMessage is a plain text message.
type TextMessage struct {
	Envelope
	Text string `json:"text"`
}

// NewTextMessage creates a validated text message.
func NewTextMessage(messageID, userID, text string) (*TextMessage, error) {
	m := &TextMessage{Envelope: newEnvelope(MessageTypeText, messageID, userID), Text: text}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *TextMessage) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	n := utf8.RuneCountInString(m.Text)
	if n == 0 {
		return fmt.Errorf("text is required")
	}
	if n > MaxTextLength {
		return fmt.Errorf("text exceeds %d characters", MaxTextLength)
	}
	return nil
}

func (m *TextMessage) String() string {
	preview := m.Text
	if utf8.RuneCountInString(preview) > 50 {
		preview = string([]rune(preview)[:50]) + "..."
	}
	return fmt.Sprintf("TextMessage(user_id=%s, text=%q)", m.UserID, preview)
}

// ImageMessage is an image shared by the user.
type ImageMessage struct {
	Envelope
	ImageURL    string `json:"image_url,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
	FileSize    *int64 `json:"file_size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// NewImageMessage creates an image message with no optional fields set.
func NewImageMessage(messageID, userID string) *ImageMessage {
	return &ImageMessage{Envelope: newEnvelope(MessageTypeImage, messageID, userID)}
}

func (m *ImageMessage) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	if m.FileSize != nil && *m.FileSize < 0 {
		return fmt.Errorf("file_size must be non-negative")
	}
	return nil
}

// AudioMessage is a voice or audio clip. Duration is in milliseconds.
type AudioMessage struct {
	Envelope
	AudioURL string `json:"audio_url,omitempty"`
	Duration *int64 `json:"duration,omitempty"`
}

// NewAudioMessage creates an audio message with no optional fields set.
func NewAudioMessage(messageID, userID string) *AudioMessage {
	return &AudioMessage{Envelope: newEnvelope(MessageTypeAudio, messageID, userID)}
}

func (m *AudioMessage) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	if m.Duration != nil && *m.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	return nil
}

// VideoMessage is a video clip. Duration is in milliseconds.
type VideoMessage struct {
	Envelope
	VideoURL   string `json:"video_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	Duration   *int64 `json:"duration,omitempty"`
}

// NewVideoMessage creates a video message with no optional fields set.
func NewVideoMessage(messageID, userID string) *VideoMessage {
	return &VideoMessage{Envelope: newEnvelope(MessageTypeVideo, messageID, userID)}
}

func (m *VideoMessage) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	if m.Duration != nil && *m.Duration < 0 {
		return fmt.Errorf("duration must be non-negative")
	}
	return nil
}

// LocationMessage is a shared map location.
type LocationMessage struct {
	Envelope
	Title     string   `json:"title,omitempty"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// NewLocationMessage creates a location message with no optional fields set.
func NewLocationMessage(messageID, userID string) *LocationMessage {
	return &LocationMessage{Envelope: newEnvelope(MessageTypeLocation, messageID, userID)}
}

func (m *LocationMessage) Validate() error {
	if err := m.validate(); err != nil {
		return err
	}
	if m.Latitude != nil && (*m.Latitude < -90 || *m.Latitude > 90) {
		return fmt.Errorf("latitude %v out of range [-90, 90]", *m.Latitude)
	}
	if m.Longitude != nil && (*m.Longitude < -180 || *m.Longitude > 180) {
		return fmt.Errorf("longitude %v out of range [-180, 180]", *m.Longitude)
	}
	return nil
}

// StickerMessage is a LINE sticker.
type StickerMessage struct {
	Envelope
	PackageID string `json:"package_id,omitempty"`
	StickerID string `json:"sticker_id,omitempty"`
}

// NewStickerMessage creates a sticker message with no optional fields set.
func NewStickerMessage(messageID, userID string) *StickerMessage {
	return &StickerMessage{Envelope: newEnvelope(MessageTypeSticker, messageID, userID)}
}

func (m *StickerMessage) Validate() error {
	return m.validate()
}

// User is a profile snapshot fetched from the platform.
type User struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name,omitempty"`
	PictureURL    string `json:"picture_url,omitempty"`
	StatusMessage string `json:"status_message,omitempty"`
	Language      string `json:"language,omitempty"`
}
