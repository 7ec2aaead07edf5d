package handler

import (
	"net/http"
	"strconv"

	dErrors "lifebridge/pkg/domain-errors"
)

// parseTopN reads the optional topN query parameter. An absent parameter
// falls back to the service default; a non-integer is a bad request. Zero
// and negative values are passed through so the service rejects them with
// its own taxonomy.
func parseTopN(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("topN")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "topN must be an integer")
	}
	return n, nil
}
