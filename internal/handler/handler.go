package handler

import (
	"context"

	"github.com/ziadkadry99/linebot-module/internal/domain"
)

// UnsupportedReply is the default answer to a message of a type the
// handler does not know.
const UnsupportedReply = "Sorry, I can't handle this type of message."

// Handler holds the business logic for inbound messages, one method per
// message variant. Each method returns the reply text, or "" for no reply.
//
// Implementations usually embed Base and supply HandleText and HandleImage.
type Handler interface {
	HandleText(ctx context.Context, msg *domain.TextMessage) (string, error)
	HandleImage(ctx context.Context, msg *domain.ImageMessage) (string, error)
	HandleAudio(ctx context.Context, msg *domain.AudioMessage) (string, error)
	HandleVideo(ctx context.Context, msg *domain.VideoMessage) (string, error)
	HandleLocation(ctx context.Context, msg *domain.LocationMessage) (string, error)
	HandleSticker(ctx context.Context, msg *domain.StickerMessage) (string, error)
	HandleUnknown(ctx context.Context, msg domain.Message) (string, error)
}

// Base provides inert defaults for the optional Handler methods. It does
// not implement HandleText or HandleImage.
type Base struct{}

func (Base) HandleAudio(context.Context, *domain.AudioMessage) (string, error) { return "", nil }

func (Base) HandleVideo(context.Context, *domain.VideoMessage) (string, error) { return "", nil }

func (Base) HandleLocation(context.Context, *domain.LocationMessage) (string, error) {
	return "", nil
}

func (Base) HandleSticker(context.Context, *domain.StickerMessage) (string, error) { return "", nil }

func (Base) HandleUnknown(context.Context, domain.Message) (string, error) {
	return UnsupportedReply, nil
}
