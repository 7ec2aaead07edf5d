// Package httputil centralizes JSON encoding and domain-error translation
// for HTTP handlers so every endpoint emits the same envelopes.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "lifebridge/pkg/domain-errors"
)

// statusByCode maps the domain error taxonomy onto HTTP statuses.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeInvalidProfile:  http.StatusUnprocessableEntity,
	dErrors.CodeNotFound:        http.StatusNotFound,
	dErrors.CodePrivacyConfig:   http.StatusInternalServerError,
	dErrors.CodeBudgetExhausted: http.StatusTooManyRequests,
	dErrors.CodeInvalidArgument: http.StatusBadRequest,
	dErrors.CodeBadRequest:      http.StatusBadRequest,
	dErrors.CodeUnauthorized:    http.StatusUnauthorized,
	dErrors.CodeForbidden:       http.StatusForbidden,
	dErrors.CodeConflict:        http.StatusConflict,
	dErrors.CodeTimeout:         http.StatusGatewayTimeout,
	dErrors.CodeInternal:        http.StatusInternalServerError,
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard error envelope.
// Internal and privacy-config details never reach the caller; everything
// else includes the message as error_description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && code != dErrors.CodePrivacyConfig {
		var de *dErrors.Error
		if errors.As(err, &de) {
			body["error_description"] = de.Message
		}
	}

	WriteJSON(w, status, body)
}

// DecodeAndPrepare decodes a JSON request body into T, writing a bad_request
// envelope and logging on failure. The bool result reports success.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "request decode failed",
				"request_id", requestID,
				"path", r.URL.Path,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body"))
		return req, false
	}
	return req, true
}
