// Package handler exposes the matching engine over HTTP. It owns the
// presentation boundary: noisy scores go to everyone, exact scores only
// to callers the privacy filter approves, and only after the disclosure
// has been written to the audit trail.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"lifebridge/internal/audit"
	"lifebridge/internal/matching"
	"lifebridge/internal/matching/metrics"
	"lifebridge/internal/privacy"
	"lifebridge/internal/registry/models"
	"lifebridge/pkg/platform/httputil"
	"lifebridge/pkg/platform/middleware/metadata"
	"lifebridge/pkg/requestcontext"
)

// Handler serves the ranking and allocation endpoints.
type Handler struct {
	service *matching.Service
	filter  *privacy.Filter
	audit   *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler constructs the matching handler.
func NewHandler(service *matching.Service, filter *privacy.Filter, publisher *audit.Publisher, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		filter:  filter,
		audit:   publisher,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the matching endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	// Static route first so "allocations" is never read as a recipient id.
	r.Get("/matches/allocations", h.GetAllocations)
	r.Get("/matches/{recipientID}", h.GetMatches)
}

// GetMatches handles GET /matches/{recipientID}?topN=N.
func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	recipientID := chi.URLParam(r, "recipientID")

	topN, err := parseTopN(r, h.service.DefaultTopN())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Rank(ctx, models.ProfileID(recipientID), topN)
	if err != nil {
		h.logger.WarnContext(ctx, "ranking request failed",
			"request_id", requestID,
			"recipient_id", recipientID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRankResult(res, h.revealExact(r, res)))
}

// revealExact decides whether this response may carry exact scores. The
// disclosure must land in the audit trail before anything is revealed;
// if the trail write fails the response degrades to noisy-only.
func (h *Handler) revealExact(r *http.Request, res *matching.RankResult) bool {
	ctx := r.Context()
	caller := requestcontext.Caller(ctx)
	if !h.filter.AllowExact(caller) {
		return false
	}

	err := h.audit.Emit(ctx, audit.DisclosureEvent{
		RequestID:   requestcontext.RequestID(ctx),
		Subject:     caller.Subject,
		Role:        string(caller.Role),
		RecipientID: string(res.Recipient.ID),
		DonorCount:  len(res.Matches),
		ClientIP:    metadata.ClientIPFromRequest(r),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "disclosure audit unavailable, serving noisy scores only",
			"subject", caller.Subject,
			"recipient_id", res.Recipient.ID,
			"error", err,
		)
		return false
	}

	if h.metrics != nil {
		h.metrics.IncrementExactDisclosures()
	}
	return true
}

// GetAllocations handles GET /matches/allocations.
func (h *Handler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	allocs, err := h.service.Allocations(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "allocation queue failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromAllocations(allocs))
}
