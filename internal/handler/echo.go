package handler

import (
	"context"

	"github.com/ziadkadry99/linebot-module/internal/domain"
)

// Echo is the default handler: it acknowledges text and images.
type Echo struct {
	Base
}

func (Echo) HandleText(_ context.Context, msg *domain.TextMessage) (string, error) {
	return "Got your message: " + msg.Text, nil
}

func (Echo) HandleImage(context.Context, *domain.ImageMessage) (string, error) {
	return "Got your image, thanks for sharing!", nil
}
