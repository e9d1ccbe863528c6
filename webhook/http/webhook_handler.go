package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dfryer1193/blogapi/api"
	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"
)

const (
	maxPayloadBytes = 5 << 20
	webhookTrigger  = "webhook"
)

// Rebuilder runs a full index rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context, trigger string) (domain.IndexRebuildStatus, error)
}

type WebhookHandler struct {
	auth      *Authenticator
	rebuilder Rebuilder
	timeout   time.Duration
}

// NewWebhookHandler creates a handler whose rebuilds give up after timeout.
// A zero timeout lets a rebuild run until it finishes.
func NewWebhookHandler(auth *Authenticator, rebuilder Rebuilder, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		auth:      auth,
		rebuilder: rebuilder,
		timeout:   timeout,
	}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/index", h.HandleRebuild)
}

// HandleRebuild verifies the request signature and rebuilds the index before
// answering. GitHub ping deliveries are acknowledged without a rebuild. The
// rebuild outlives the request, so a sender that hangs up does not abort it.
func (h *WebhookHandler) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, api.Error{Error: "unreadable payload"})
		return
	}

	if err := h.auth.Verify(r.Header.Get(github.SHA256SignatureHeader), payload); err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("Rejected rebuild request")
		writeJSON(w, http.StatusBadRequest, api.Error{Error: "invalid signature"})
		return
	}

	eventType := github.WebHookType(r)
	logger := log.With().Str("event", eventType).Str("delivery", github.DeliveryID(r)).Logger()

	if eventType != "" {
		event, err := github.ParseWebHook(eventType, payload)
		if err != nil {
			logger.Debug().Err(err).Msg("Unrecognized webhook payload")
		}
		switch evt := event.(type) {
		case *github.PingEvent:
			logger.Info().Msg("Webhook ping")
			w.WriteHeader(http.StatusNoContent)
			return
		case *github.PushEvent:
			logger = logger.With().Str("ref", evt.GetRef()).Str("head", evt.GetAfter()).Logger()
		}
	}

	logger.Info().Msg("Rebuild requested by webhook")

	ctx := context.WithoutCancel(r.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	status, err := h.rebuilder.Rebuild(ctx, webhookTrigger)
	if err != nil {
		logger.Error().Err(err).Msg("Webhook rebuild failed")
		writeJSON(w, statusFor(err), api.Error{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, api.NewRebuildStatus(status))
}

// statusFor maps a shutdown or an expired rebuild deadline to 503.
func statusFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}
