package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/api/middleware"
	"github.com/ricirt/report-robot/internal/tracker"
)

// Tracking event labels passed to the metrics hook.
const (
	EventClick        = "click"
	EventUpdate       = "update"
	EventRejected     = "rejected"
	EventUpdateFailed = "update_failed"

	actionUpdate = "update"
)

// ClickTracker is satisfied by *tracker.Service.
type ClickTracker interface {
	RegisterClick(ctx context.Context, req tracker.ClickRequest) (tracker.ClickRequest, error)
	UpdateClient(ctx context.Context, recipient, ua, geo string) error
}

// TrackingHandler serves the link-open endpoint used in Telegram messages.
type TrackingHandler struct {
	tracker ClickTracker
	delay   time.Duration
	onEvent func(string)
	logger  *zap.Logger
}

func NewTrackingHandler(t ClickTracker, redirectDelay time.Duration, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		tracker: t,
		delay:   redirectDelay,
		onEvent: func(string) {},
		logger:  logger,
	}
}

// SetHooks installs the per-request metrics callback.
func (h *TrackingHandler) SetHooks(onEvent func(event string)) {
	if onEvent != nil {
		h.onEvent = onEvent
	}
}

// Track handles GET /track.
//
// With action=update and a recipient it patches the newest click row with
// client details and answers in plain text. Otherwise it records a click and
// returns the interstitial page that redirects to url.
func (h *TrackingHandler) Track(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	log := middleware.Logger(r.Context(), h.logger)

	if q.Get("action") == actionUpdate && q.Get("vendedor") != "" {
		if err := h.tracker.UpdateClient(r.Context(), q.Get("vendedor"), q.Get("ua"), q.Get("geo")); err != nil {
			log.Error("click update failed", zap.String("recipient", q.Get("vendedor")), zap.Error(err))
			h.onEvent(EventUpdateFailed)
			respondText(w, http.StatusInternalServerError, "ERROR: "+err.Error())
			return
		}
		h.onEvent(EventUpdate)
		respondText(w, http.StatusOK, "OK")
		return
	}

	req, err := h.tracker.RegisterClick(r.Context(), tracker.ClickRequest{
		URL:       q.Get("url"),
		Recipient: q.Get("vendedor"),
		File:      q.Get("archivo"),
		SentAt:    q.Get("envio"),
	})
	if err != nil {
		log.Warn("tracking request rejected", zap.Error(err))
		h.onEvent(EventRejected)
		respondPage(w, statusFor(err), err.Error())
		return
	}
	h.onEvent(EventClick)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err = tracker.RenderPage(w, tracker.PageData{
		DisplayName: tracker.DisplayName(req.Recipient),
		File:        req.File,
		Recipient:   req.Recipient,
		TargetURL:   req.URL,
		UpdatePath:  r.URL.Path,
		Delay:       h.delay,
	})
	if err != nil {
		log.Error("render tracking page", zap.Error(err))
	}
}
