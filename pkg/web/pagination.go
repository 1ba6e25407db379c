package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// ParsePagination reads optional limit/offset query parameters.
// Missing parameters fall back to defaults; malformed or out-of-range values
// are rejected with a 400 response.
func ParsePagination(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (limit, offset int32, ok bool) {
	limit, ok = parseQueryInt(w, r, logger, "limit", defaultLimit, 1, maxLimit)
	if !ok {
		return 0, 0, false
	}
	offset, ok = parseQueryInt(w, r, logger, "offset", 0, 0, 1<<30)
	if !ok {
		return 0, 0, false
	}
	return limit, offset, true
}

func parseQueryInt(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, def, min, max int64) (int32, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return int32(def), true
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || value < min || value > max {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, false
	}
	return int32(value), true
}
