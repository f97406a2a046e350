package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"go.uber.org/zap"
)

const signatureHeader = "X-Line-Signature"

// maxWebhookBody bounds the body read before the signature is checked.
const maxWebhookBody = 1 << 20

// handleWebhook verifies and parses a LINE callback, schedules a delivery
// for every message event and acknowledges at once. Deliveries run after
// the response; their outcome is only logged.
func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.log.Warn("webhook body too large", zap.Int64("limit", tooLarge.Limit))
			a.metrics.Webhook("too_large")
			writeDetail(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		a.log.Error("reading webhook body failed", zap.Error(err))
		a.metrics.Webhook("error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	defer r.Body.Close()

	// Without a channel secret anyone could compute a valid signature.
	signature := r.Header.Get(signatureHeader)
	if a.secret == "" || signature == "" || !webhook.ValidateSignature(a.secret, signature, body) {
		a.log.Warn("invalid LINE signature", zap.String("remote_addr", r.RemoteAddr))
		a.metrics.Webhook("invalid_signature")
		writeDetail(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	var cb webhook.CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		a.log.Error("parsing webhook body failed", zap.Error(err))
		a.metrics.Webhook("error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Deliveries outlive the request.
	ctx := context.WithoutCancel(r.Context())
	for _, event := range cb.Events {
		a.metrics.Event(eventKind(event))
		switch e := event.(type) {
		case webhook.MessageEvent:
			a.schedule(ctx, e)
		case *webhook.MessageEvent:
			if e != nil {
				a.schedule(ctx, *e)
			}
		default:
			a.log.Debug("ignoring non-message event", zap.String("kind", eventKind(event)))
		}
	}

	a.metrics.Webhook("ok")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) schedule(ctx context.Context, e webhook.MessageEvent) {
	a.tasks.Go(func() {
		msg, ok := a.converter.Convert(e)
		if !ok {
			a.log.Warn("message event could not be converted, possibly an unsupported type")
			return
		}
		a.log.Info("message event received",
			zap.String("message_type", string(msg.Type())),
			zap.String("user_id", msg.Common().UserID),
		)
		if !a.router.Deliver(ctx, msg, a.handler, e.ReplyToken) {
			a.log.Warn("delivery failed", zap.String("message_id", msg.Common().MessageID))
		}
	})
}

func eventKind(e webhook.EventInterface) string {
	if e == nil {
		return "unknown"
	}
	if t := e.GetType(); t != "" {
		return t
	}
	return fmt.Sprintf("%T", e)
}
