package router

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/handler"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
)

// ErrorReply is sent in place of a reply when the handler fails.
const ErrorReply = "Sorry, something went wrong while processing your message. Please try again later."

// Replier sends a reply through an inbound event's reply token.
type Replier interface {
	Reply(ctx context.Context, replyToken, text string) domain.SendMessageResponse
}

// Router dispatches messages to handler methods by message type and sends
// the resulting reply.
type Router struct {
	replier Replier
	log     *zap.Logger
	metrics *metrics.Metrics
}

// New creates a Router that replies through replier. m may be nil. Without
// a replier every reply counts as a failed delivery.
func New(replier Replier, logger *zap.Logger, m *metrics.Metrics) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{replier: replier, log: logger, metrics: m}
}

// Route passes msg to the handler method matching its type tag and returns
// the handler's reply. ok is false when the handler chose not to reply.
// Handler errors and panics never escape: they produce ErrorReply.
func (r *Router) Route(ctx context.Context, msg domain.Message, h handler.Handler) (reply string, ok bool) {
	if msg == nil {
		r.log.Warn("route called without a message")
		return "", false
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("handler panicked",
				zap.String("message_type", string(msg.Type())),
				zap.Any("panic", rec),
			)
			reply, ok = ErrorReply, true
		}
	}()

	r.log.Info("routing message",
		zap.String("message_type", string(msg.Type())),
		zap.String("user_id", msg.Common().UserID),
	)

	reply, err := r.dispatch(ctx, msg, h)
	if err != nil {
		r.log.Error("handler failed",
			zap.String("message_type", string(msg.Type())),
			zap.String("message_id", msg.Common().MessageID),
			zap.Error(err),
		)
		return ErrorReply, true
	}
	return reply, reply != ""
}

func (r *Router) dispatch(ctx context.Context, msg domain.Message, h handler.Handler) (string, error) {
	switch msg.Type() {
	case domain.MessageTypeText:
		m, ok := msg.(*domain.TextMessage)
		if !ok {
			// A text message cannot be rebuilt without its text.
			r.mismatch(msg)
			return h.HandleUnknown(ctx, msg)
		}
		return h.HandleText(ctx, m)
	case domain.MessageTypeImage:
		return h.HandleImage(ctx, variant[*domain.ImageMessage](r, msg))
	case domain.MessageTypeAudio:
		return h.HandleAudio(ctx, variant[*domain.AudioMessage](r, msg))
	case domain.MessageTypeVideo:
		return h.HandleVideo(ctx, variant[*domain.VideoMessage](r, msg))
	case domain.MessageTypeLocation:
		return h.HandleLocation(ctx, variant[*domain.LocationMessage](r, msg))
	case domain.MessageTypeSticker:
		return h.HandleSticker(ctx, variant[*domain.StickerMessage](r, msg))
	default:
		r.log.Warn("unknown message type", zap.String("message_type", string(msg.Type())))
		return h.HandleUnknown(ctx, msg)
	}
}

// variant returns msg as T. The tag is authoritative: when the concrete type
// disagrees, the tag's variant is rebuilt from the common fields.
func variant[T domain.Message](r *Router, msg domain.Message) T {
	if m, ok := msg.(T); ok {
		return m
	}
	r.mismatch(msg)
	rebuilt, _ := domain.Rebuild(msg.Common(), msg.Type())
	return rebuilt.(T)
}

func (r *Router) mismatch(msg domain.Message) {
	r.log.Warn("message type tag does not match payload",
		zap.String("message_type", string(msg.Type())),
		zap.String("payload", fmt.Sprintf("%T", msg)),
	)
}

// Deliver routes msg and, when there is a reply, sends it with replyToken.
// It reports whether delivery succeeded; no reply counts as success.
func (r *Router) Deliver(ctx context.Context, msg domain.Message, h handler.Handler, replyToken string) (ok bool) {
	label := "unknown"
	if msg != nil {
		label = string(msg.Type())
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("delivery panicked", zap.Any("panic", rec))
			ok = false
		}
		r.metrics.Delivery(label, ok)
	}()

	reply, has := r.Route(ctx, msg, h)
	if !has {
		r.log.Info("no reply content, not replying")
		return true
	}

	if r.replier == nil {
		r.log.Error("no replier configured, dropping reply")
		return false
	}
	resp := r.replier.Reply(ctx, replyToken, reply)
	if !resp.Success {
		r.log.Warn("reply failed", zap.String("error", resp.ErrorText()))
	}
	return resp.Success
}
