// Package handler exposes the profile registry over HTTP.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifebridge/internal/registry/models"
	"lifebridge/internal/registry/service"
	"lifebridge/pkg/platform/httputil"
	"lifebridge/pkg/requestcontext"
)

// Handler serves the profile endpoints.
type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

// NewHandler constructs the registry handler.
func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: svc, logger: logger}
}

// Routes mounts the profile endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/profiles", h.Register)
	r.Get("/profiles", h.List)
	r.Get("/profiles/{profileID}", h.Get)
}

// Register handles POST /profiles.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	in, ok := httputil.DecodeAndPrepare[service.RegisterInput](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Register(ctx, in)
	if err != nil {
		h.logger.WarnContext(ctx, "profile registration failed",
			"request_id", requestID,
			"role", in.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// Get handles GET /profiles/{profileID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := models.ProfileID(chi.URLParam(r, "profileID"))

	profile, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// List handles GET /profiles?role=donor|recipient.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := models.Role(r.URL.Query().Get("role"))

	profiles, err := h.service.List(ctx, role)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}
