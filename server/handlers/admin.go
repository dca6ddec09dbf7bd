package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pondpilot/pondpilot-sub007/pkg/attachments"
	"github.com/pondpilot/pondpilot-sub007/pkg/config"
	"github.com/pondpilot/pondpilot-sub007/pkg/notify"
	"github.com/pondpilot/pondpilot-sub007/server/apierror"
	"github.com/pondpilot/pondpilot-sub007/server/types"
)

// AdminHandler serves attachments, proxy settings and notifications.
type AdminHandler struct {
	repo   *attachments.Repository
	store  *config.Store
	buffer *notify.Buffer
	log    zerolog.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(repo *attachments.Repository, store *config.Store, buffer *notify.Buffer, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{repo: repo, store: store, buffer: buffer, log: log}
}

// ListAttachments handles GET /api/v1/attachments.
func (h *AdminHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list attachments")
		sendError(w, apierror.NewInternal("failed to list attachments"))
		return
	}

	resp := types.AttachmentsResponse{Success: true, Attachments: []types.AttachmentInfo{}}
	for _, a := range list {
		resp.Attachments = append(resp.Attachments, types.AttachmentInfo{
			Alias:      a.Alias,
			URL:        a.URL,
			Proxied:    a.Proxied,
			AttachedAt: a.AttachedAt,
		})
	}
	sendJSON(w, http.StatusOK, resp)
}

// GetProxyConfig handles GET /api/v1/config/proxy.
func (h *AdminHandler) GetProxyConfig(w http.ResponseWriter, _ *http.Request) {
	cfg := h.store.GetProxyConfig()
	sendJSON(w, http.StatusOK, types.ProxyConfigPayload{
		Behavior:         string(cfg.Behavior),
		ProxyBaseURL:     cfg.ProxyBaseURL,
		CustomS3Endpoint: cfg.CustomS3Endpoint,
	})
}

// UpdateProxyConfig handles PUT /api/v1/config/proxy. The new settings
// apply to the next execution, never one already in flight.
func (h *AdminHandler) UpdateProxyConfig(w http.ResponseWriter, r *http.Request) {
	var payload types.ProxyConfigPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		sendError(w, apierror.NewInvalidRequest("Invalid request body"))
		return
	}

	cfg := config.ProxyConfig{
		Behavior:         config.Behavior(strings.ToLower(payload.Behavior)),
		ProxyBaseURL:     payload.ProxyBaseURL,
		CustomS3Endpoint: payload.CustomS3Endpoint,
	}
	if err := h.store.Update(cfg); err != nil {
		sendError(w, apierror.NewInvalidParameter("behavior", err.Error()))
		return
	}

	h.log.Info().Str("behavior", string(cfg.Behavior)).Msg("proxy settings updated")
	h.GetProxyConfig(w, r)
}

// ListNotifications handles GET /api/v1/notifications, draining the
// pending buffer.
func (h *AdminHandler) ListNotifications(w http.ResponseWriter, _ *http.Request) {
	resp := types.NotificationsResponse{Success: true, Notifications: []types.NotificationPayload{}}
	for _, n := range h.buffer.Drain() {
		resp.Notifications = append(resp.Notifications, types.NotificationPayload{
			ID:         n.ID,
			Title:      n.Title,
			Message:    n.Message,
			DurationMs: n.Duration.Milliseconds(),
			CreatedAt:  n.CreatedAt,
		})
	}
	sendJSON(w, http.StatusOK, resp)
}

// Health handles GET /health.
func (h *AdminHandler) Health(w http.ResponseWriter, _ *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
