package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/fidelize/notifyd/internal/api/middleware"
	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/service"
)

// NotificationHandler handles the send and feed endpoints.
type NotificationHandler struct {
	svc    *service.NotificationService
	logger *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// sendRequest is the POST body for /api/v1/notifications. Priority is a
// pointer so an omitted field gets the default instead of zero.
type sendRequest struct {
	RecipientID    string         `json:"recipient_id"`
	RecipientEmail string         `json:"recipient_email"`
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Data           map[string]any `json:"data"`
	ActionURL      string         `json:"action_url"`
	ActionLabel    string         `json:"action_label"`
	Priority       *int           `json:"priority"`
	Channels       []string       `json:"channels"`
	Locale         string         `json:"locale"`
}

func (req sendRequest) toMessage() domain.Message {
	msg := domain.Message{
		RecipientID:    req.RecipientID,
		RecipientEmail: req.RecipientEmail,
		Type:           req.Type,
		Title:          req.Title,
		Body:           req.Body,
		Data:           req.Data,
		ActionURL:      req.ActionURL,
		ActionLabel:    req.ActionLabel,
		Priority:       5,
		Channels:       req.Channels,
		Locale:         req.Locale,
	}
	if req.Priority != nil {
		msg.Priority = *req.Priority
	}
	if msg.Locale == "" {
		msg.Locale = domain.DefaultLocale
	}
	return msg
}

// Send handles POST /api/v1/notifications
//
// The default path enqueues the message and answers 202. With ?sync=1 the
// message is dispatched inline and the per-channel results are returned.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	msg := req.toMessage()

	if r.URL.Query().Get("sync") == "1" {
		result, err := h.svc.Send(r.Context(), msg)
		if err != nil {
			h.warn(r, "sync send failed", err)
			mapError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
		return
	}

	if err := h.svc.SendAsync(r.Context(), msg); err != nil {
		h.warn(r, "async send failed", err)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Feed handles GET /api/v1/users/{id}/notifications
func (h *NotificationHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	filter := parseFeedFilter(r)

	notifications, total, err := h.svc.Feed(r.Context(), userID, filter)
	if err != nil {
		h.warn(r, "feed lookup failed", err)
		mapError(w, err)
		return
	}
	unread, err := h.svc.CountUnread(r.Context(), userID)
	if err != nil {
		h.warn(r, "unread count failed", err)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data":   notifications,
		"total":  total,
		"unread": unread,
		"page":   filter.Page,
		"limit":  filter.Limit,
	})
}

// MarkRead handles POST /api/v1/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.MarkRead(r.Context(), id); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) warn(r *http.Request, msg string, err error) {
	h.logger.Warn(msg,
		zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
		zap.Error(err),
	)
}

func parseFeedFilter(r *http.Request) domain.FeedFilter {
	q := r.URL.Query()
	filter := domain.FeedFilter{Page: 1, Limit: 20}

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		filter.Limit = l
	}
	if q.Get("unread_only") == "1" || q.Get("unread_only") == "true" {
		filter.UnreadOnly = true
	}
	return filter
}
