package router

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
)

// recordingHandler records which methods were called and returns reply.
type recordingHandler struct {
	calls []string
	reply string
	err   error
	panic bool
}

func (h *recordingHandler) record(name string) (string, error) {
	h.calls = append(h.calls, name)
	if h.panic {
		panic("boom")
	}
	return h.reply, h.err
}

func (h *recordingHandler) HandleText(context.Context, *domain.TextMessage) (string, error) {
	return h.record("text")
}

func (h *recordingHandler) HandleImage(context.Context, *domain.ImageMessage) (string, error) {
	return h.record("image")
}

func (h *recordingHandler) HandleAudio(context.Context, *domain.AudioMessage) (string, error) {
	return h.record("audio")
}

func (h *recordingHandler) HandleVideo(context.Context, *domain.VideoMessage) (string, error) {
	return h.record("video")
}

func (h *recordingHandler) HandleLocation(context.Context, *domain.LocationMessage) (string, error) {
	return h.record("location")
}

func (h *recordingHandler) HandleSticker(context.Context, *domain.StickerMessage) (string, error) {
	return h.record("sticker")
}

func (h *recordingHandler) HandleUnknown(context.Context, domain.Message) (string, error) {
	return h.record("unknown")
}

type mockReplier struct {
	tokens  []string
	texts   []string
	success bool
}

func (m *mockReplier) Reply(_ context.Context, token, text string) domain.SendMessageResponse {
	m.tokens = append(m.tokens, token)
	m.texts = append(m.texts, text)
	if m.success {
		return domain.Succeeded("sent_1")
	}
	return domain.Failed("LINE API error (status 400): Invalid reply token")
}

func newRouter(r Replier) *Router {
	return New(r, zap.NewNop(), nil)
}

func mustText(t *testing.T, s string) *domain.TextMessage {
	t.Helper()
	m, err := domain.NewTextMessage("m1", "user_001", s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestRouteDispatchesByType(t *testing.T) {
	tests := []struct {
		name string
		msg  domain.Message
		want string
	}{
		{"text", mustText(t, "hi"), "text"},
		{"image", domain.NewImageMessage("m2", "user_001"), "image"},
		{"audio", domain.NewAudioMessage("m3", "user_001"), "audio"},
		{"video", domain.NewVideoMessage("m4", "user_001"), "video"},
		{"location", domain.NewLocationMessage("m5", "user_001"), "location"},
		{"sticker", domain.NewStickerMessage("m6", "user_001"), "sticker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{reply: "ok"}
			reply, ok := newRouter(nil).Route(context.Background(), tt.msg, h)
			if !ok || reply != "ok" {
				t.Errorf("Route = (%q, %v), want (\"ok\", true)", reply, ok)
			}
			if len(h.calls) != 1 || h.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", h.calls, tt.want)
			}
		})
	}
}

func TestRouteUnknownTag(t *testing.T) {
	msg := &domain.StickerMessage{Envelope: domain.Envelope{
		MessageID:   "m1",
		UserID:      "user_001",
		MessageType: domain.MessageType("file"),
	}}
	h := &recordingHandler{reply: "unsupported"}

	reply, ok := newRouter(nil).Route(context.Background(), msg, h)
	if !ok || reply != "unsupported" {
		t.Errorf("Route = (%q, %v)", reply, ok)
	}
	if len(h.calls) != 1 || h.calls[0] != "unknown" {
		t.Errorf("calls = %v, want [unknown]", h.calls)
	}
}

func TestRouteTagWinsOverPayload(t *testing.T) {
	// An image payload tagged as audio goes to HandleAudio.
	msg := &domain.ImageMessage{Envelope: domain.Envelope{
		MessageID:   "m1",
		UserID:      "user_001",
		MessageType: domain.MessageTypeAudio,
	}}
	h := &recordingHandler{reply: "ok"}

	if _, ok := newRouter(nil).Route(context.Background(), msg, h); !ok {
		t.Fatal("expected a reply")
	}
	if len(h.calls) != 1 || h.calls[0] != "audio" {
		t.Errorf("calls = %v, want [audio]", h.calls)
	}
}

func TestRouteTextTagWithoutText(t *testing.T) {
	msg := &domain.ImageMessage{Envelope: domain.Envelope{
		MessageID:   "m1",
		UserID:      "user_001",
		MessageType: domain.MessageTypeText,
	}}
	h := &recordingHandler{reply: "ok"}

	newRouter(nil).Route(context.Background(), msg, h)
	if len(h.calls) != 1 || h.calls[0] != "unknown" {
		t.Errorf("calls = %v, want [unknown]", h.calls)
	}
}

func TestRouteHandlerError(t *testing.T) {
	h := &recordingHandler{err: errors.New("model unavailable")}
	reply, ok := newRouter(nil).Route(context.Background(), mustText(t, "hi"), h)
	if !ok || reply != ErrorReply {
		t.Errorf("Route = (%q, %v), want apology", reply, ok)
	}
}

func TestRouteHandlerPanic(t *testing.T) {
	h := &recordingHandler{panic: true}
	reply, ok := newRouter(nil).Route(context.Background(), mustText(t, "hi"), h)
	if !ok || reply != ErrorReply {
		t.Errorf("Route = (%q, %v), want apology", reply, ok)
	}
}

func TestRouteNoReply(t *testing.T) {
	h := &recordingHandler{}
	reply, ok := newRouter(nil).Route(context.Background(), domain.NewStickerMessage("m1", "user_001"), h)
	if ok || reply != "" {
		t.Errorf("Route = (%q, %v), want no reply", reply, ok)
	}
}

func TestRouteNilMessage(t *testing.T) {
	h := &recordingHandler{reply: "ok"}
	if _, ok := newRouter(nil).Route(context.Background(), nil, h); ok {
		t.Error("expected no reply for nil message")
	}
	if len(h.calls) != 0 {
		t.Errorf("calls = %v, want none", h.calls)
	}
}

func TestDeliverSendsReply(t *testing.T) {
	rep := &mockReplier{success: true}
	h := &recordingHandler{reply: "Got your message: hi"}

	if ok := newRouter(rep).Deliver(context.Background(), mustText(t, "hi"), h, "token_abc"); !ok {
		t.Fatal("Deliver returned false")
	}
	if len(rep.tokens) != 1 || rep.tokens[0] != "token_abc" {
		t.Errorf("tokens = %v", rep.tokens)
	}
	if rep.texts[0] != "Got your message: hi" {
		t.Errorf("text = %q", rep.texts[0])
	}
}

func TestDeliverReplyFailure(t *testing.T) {
	rep := &mockReplier{success: false}
	h := &recordingHandler{reply: "hello"}

	if ok := newRouter(rep).Deliver(context.Background(), mustText(t, "hi"), h, "expired"); ok {
		t.Error("Deliver returned true for failed reply")
	}
	if len(rep.texts) != 1 {
		t.Errorf("expected one reply attempt, got %d", len(rep.texts))
	}
}

func TestDeliverNoReplyIsSuccess(t *testing.T) {
	rep := &mockReplier{success: true}
	h := &recordingHandler{}

	if ok := newRouter(rep).Deliver(context.Background(), domain.NewVideoMessage("m1", "user_001"), h, "token"); !ok {
		t.Error("Deliver returned false with nothing to send")
	}
	if len(rep.texts) != 0 {
		t.Errorf("reply called %d times, want 0", len(rep.texts))
	}
}

func TestDeliverErrorSendsApology(t *testing.T) {
	rep := &mockReplier{success: true}
	h := &recordingHandler{err: errors.New("fail")}

	if ok := newRouter(rep).Deliver(context.Background(), mustText(t, "hi"), h, "token"); !ok {
		t.Error("Deliver returned false")
	}
	if len(rep.texts) != 1 || rep.texts[0] != ErrorReply {
		t.Errorf("texts = %v, want apology", rep.texts)
	}
}

type panickingReplier struct{}

func (panickingReplier) Reply(context.Context, string, string) domain.SendMessageResponse {
	panic("connection reset")
}

func TestDeliverReplierPanic(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := New(panickingReplier{}, zap.NewNop(), m)
	h := &recordingHandler{reply: "hello"}

	if ok := r.Deliver(context.Background(), mustText(t, "hi"), h, "token"); ok {
		t.Error("Deliver returned true when the replier panicked")
	}
	if got := testutil.ToFloat64(m.Deliveries.WithLabelValues("text", "failure")); got != 1 {
		t.Errorf("delivery failure count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Deliveries.WithLabelValues("text", "success")); got != 0 {
		t.Errorf("delivery success count = %v, want 0", got)
	}
}

func TestDeliverWithoutReplier(t *testing.T) {
	r := New(nil, nil, nil)
	h := &recordingHandler{reply: "hello"}

	if ok := r.Deliver(context.Background(), mustText(t, "hi"), h, "token"); ok {
		t.Error("Deliver returned true without a replier")
	}
	if len(h.calls) != 1 {
		t.Errorf("calls = %v, want the text handler to run once", h.calls)
	}
}
