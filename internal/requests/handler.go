package requests

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifebridge/internal/registry/models"
	"lifebridge/pkg/platform/httputil"
	"lifebridge/pkg/requestcontext"
)

// Handler serves the match request endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the match request handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the request workflow endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/matches/requests", h.Submit)
	r.Post("/matches/requests/{requestID}/accept", h.Accept)
	r.Get("/matches/requests", h.List)
}

// SubmitRequest is the body of POST /matches/requests.
type SubmitRequest struct {
	RecipientID string `json:"recipient_id"`
	DonorID     string `json:"donor_id"`
}

// Submit handles POST /matches/requests.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	body, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	req, err := h.service.Submit(ctx,
		models.ProfileID(body.RecipientID),
		models.ProfileID(body.DonorID),
		requestcontext.Caller(ctx).Subject,
	)
	if err != nil {
		h.logger.WarnContext(ctx, "match request submission failed",
			"request_id", requestID,
			"recipient_id", body.RecipientID,
			"donor_id", body.DonorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, req)
}

// Accept handles POST /matches/requests/{requestID}/accept.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "requestID")

	req, err := h.service.Accept(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "match request acceptance failed",
			"request_id", requestcontext.RequestID(ctx),
			"match_request_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, req)
}

// List handles GET /matches/requests?recipient_id=ID.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipientID := models.ProfileID(r.URL.Query().Get("recipient_id"))

	out, err := h.service.List(ctx, recipientID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": out})
}
