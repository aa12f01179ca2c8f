package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/licensegate/licensegate/internal/handler/dto"
	"github.com/licensegate/licensegate/internal/metrics"
	"github.com/licensegate/licensegate/internal/service"
)

// ValidateHandler answers license authorization checks.
type ValidateHandler struct {
	svc     *service.LicenseService
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewValidateHandler creates a new ValidateHandler.
func NewValidateHandler(svc *service.LicenseService, recorder metrics.Recorder, logger *slog.Logger) *ValidateHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ValidateHandler{
		svc:     svc,
		metrics: recorder,
		logger:  logger.With("handler", "validate"),
	}
}

// Validate handles POST /validate.
func (h *ValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ConfigError(); err != nil {
		h.metrics.IncValidate(metrics.ValidateUnconfigured)
		h.logger.Error("license store not configured")
		writeJSON(w, http.StatusInternalServerError, dto.FailureResponse{
			OK:    false,
			Error: err.Error(),
		})
		return
	}

	var req dto.ValidateRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if bodyTooLarge(err) {
		h.metrics.IncValidate(metrics.ValidateTooLarge)
		writeBodyTooLarge(w)
		return
	}
	if err != nil || req.Email == "" {
		h.metrics.IncValidate(metrics.ValidateBadRequest)
		writeJSON(w, http.StatusBadRequest, dto.FailureResponse{
			OK:    false,
			Error: "Email is required",
		})
		return
	}

	authorized, err := h.svc.Authorize(r.Context(), req.Email)
	if err != nil {
		h.metrics.IncValidate(metrics.ValidateError)
		h.logger.Error("license lookup failed",
			"email", req.Email,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, dto.FailureResponse{
			OK:      false,
			Error:   "Internal error",
			Details: err.Error(),
		})
		return
	}

	if authorized {
		h.metrics.IncValidate(metrics.ValidateAuthorized)
	} else {
		h.metrics.IncValidate(metrics.ValidateUnauthorized)
	}

	writeJSON(w, http.StatusOK, dto.AuthorizationResponse{Authorized: authorized})
}
