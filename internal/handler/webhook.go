package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/licensegate/licensegate/internal/handler/dto"
	"github.com/licensegate/licensegate/internal/metrics"
	"github.com/licensegate/licensegate/internal/service"
	"github.com/licensegate/licensegate/internal/webhook"
)

// WebhookHandler reconciles licenses from payment-platform webhooks.
type WebhookHandler struct {
	svc       *service.LicenseService
	providers *webhook.Registry
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(svc *service.LicenseService, providers *webhook.Registry, recorder metrics.Recorder, logger *slog.Logger) *WebhookHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &WebhookHandler{
		svc:       svc,
		providers: providers,
		metrics:   recorder,
		logger:    logger.With("handler", "webhook"),
	}
}

// Receive handles POST /webhook/{provider}.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	requested := chi.URLParam(r, "provider")
	provider := h.providers.Get(requested)
	logger := h.logger.With("provider", provider.Name)
	if requested != provider.Name {
		// Unknown names fall back to the default provider. Metrics keep the
		// resolved name so the label set stays bounded.
		logger = logger.With("requested_provider", requested)
	}

	// An unreadable body is treated like an empty one, unless it was cut
	// off for exceeding the size limit.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if bodyTooLarge(err) {
			h.metrics.IncWebhook(provider.Name, metrics.WebhookTooLarge)
			logger.Warn("webhook body too large")
			writeBodyTooLarge(w)
			return
		}
		body = nil
	}
	raw := webhook.DecodePayload(body)

	auth := provider.Authenticate(r.Header, body, raw)
	if !auth.OK {
		h.metrics.IncWebhook(provider.Name, metrics.WebhookUnauthorized)
		logger.Warn("webhook authentication failed",
			"token_present", auth.TokenPresent,
			"secret_configured", auth.SecretConfigured,
		)
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	event, err := provider.Normalize(raw)
	if err != nil {
		h.metrics.IncWebhook(provider.Name, metrics.WebhookMissingData)
		logger.Warn("webhook missing email or status")
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Missing data"})
		return
	}

	logger = logger.With("status", event.Status, "email", event.Email)

	action := webhook.Resolve(event.Status)
	if action == webhook.ActionIgnore {
		h.metrics.IncWebhook(provider.Name, metrics.WebhookIgnored)
		logger.Info("webhook status ignored")
		writeJSON(w, http.StatusOK, dto.WebhookIgnoredResponse{Received: true, Ignored: true})
		return
	}

	logger = logger.With("action", string(action))

	if err := h.apply(r, action, event.Email); err != nil {
		h.metrics.IncWebhook(provider.Name, metrics.WebhookError)
		logger.Error("webhook license update failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, dto.FailureResponse{
			OK:    false,
			Error: err.Error(),
		})
		return
	}

	if action == webhook.ActionActivate {
		h.metrics.IncWebhook(provider.Name, metrics.WebhookActivated)
	} else {
		h.metrics.IncWebhook(provider.Name, metrics.WebhookRevoked)
	}
	logger.Info("webhook license updated")

	writeJSON(w, http.StatusOK, dto.WebhookAppliedResponse{OK: true, Action: string(action)})
}

func (h *WebhookHandler) apply(r *http.Request, action webhook.Action, email string) error {
	if err := h.svc.ConfigError(); err != nil {
		return err
	}
	if action == webhook.ActionActivate {
		return h.svc.Activate(r.Context(), email)
	}
	return h.svc.Revoke(r.Context(), email)
}
