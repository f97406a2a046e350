package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/linebot-module/internal/domain"
	"github.com/ziadkadry99/linebot-module/internal/handler"
	"github.com/ziadkadry99/linebot-module/internal/line"
	"github.com/ziadkadry99/linebot-module/internal/metrics"
	"github.com/ziadkadry99/linebot-module/internal/router"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "linebot-communication-module"

// Gateway is the subset of the LINE client used by the REST endpoints.
type Gateway interface {
	SendText(ctx context.Context, userID, text string, opts ...line.SendOption) domain.SendMessageResponse
	FetchProfile(ctx context.Context, userID string) (*domain.User, bool)
	FetchContent(ctx context.Context, messageID string) ([]byte, bool)
}

// Options wires the API's collaborators.
type Options struct {
	ChannelSecret string
	Version       string
	Gateway       Gateway
	Converter     *line.Converter
	Router        *router.Router
	Handler       handler.Handler
	Tasks         *Tasks
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// API serves the webhook and the REST endpoints.
type API struct {
	secret    string
	version   string
	gateway   Gateway
	converter *line.Converter
	router    *router.Router
	handler   handler.Handler
	tasks     *Tasks
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// New creates an API from opts. Missing collaborators get a default; the
// default Router has no replier, so replies are logged and dropped.
func New(opts Options) *API {
	a := &API{
		secret:    opts.ChannelSecret,
		version:   opts.Version,
		gateway:   opts.Gateway,
		converter: opts.Converter,
		router:    opts.Router,
		handler:   opts.Handler,
		tasks:     opts.Tasks,
		log:       opts.Logger,
		metrics:   opts.Metrics,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.tasks == nil {
		a.tasks = NewTasks(opts.Metrics)
	}
	if a.converter == nil {
		a.converter = line.NewConverter(a.log)
	}
	if a.router == nil {
		a.router = router.New(nil, a.log, a.metrics)
	}
	if a.handler == nil {
		a.handler = handler.Echo{}
	}
	return a
}

// Tasks returns the background task group so shutdown can drain it.
func (a *API) Tasks() *Tasks { return a.tasks }

// RegisterRoutes mounts the API endpoints on r.
func RegisterRoutes(r chi.Router, a *API) {
	r.Post("/webhook", a.handleWebhook)
	r.Post("/send-message", a.handleSendMessage)
	r.Get("/user/{user_id}", a.handleGetUser)
	r.Get("/content/{message_id}", a.handleGetContent)
	r.Get("/health", a.handleHealth)
}

// HealthBody is the payload of every health endpoint.
func HealthBody(version string) map[string]string {
	return map[string]string{
		"status":  "healthy",
		"service": ServiceName,
		"version": version,
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthBody(a.version))
}

func (a *API) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	a.log.Info("send message requested",
		zap.String("message_type", string(req.MessageType)),
		zap.String("user_id", req.UserID),
	)

	var resp domain.SendMessageResponse
	if req.MessageType == domain.MessageTypeText {
		resp = a.gateway.SendText(r.Context(), req.UserID, req.Content, line.WithQuickReply(req.QuickReply))
	} else {
		resp = domain.Failed("unsupported message type: " + string(req.MessageType))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	user, ok := a.gateway.FetchProfile(r.Context(), userID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (a *API) handleGetContent(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "message_id")

	data, ok := a.gateway.FetchContent(r.Context(), messageID)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Content not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDetail writes an error body of the form {"detail": msg}.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
