package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// maxIDLength bounds path identifiers such as PRJ-001 or SPOTREP-002.
const maxIDLength = 64

// ParseProjectID extracts the project ID from the request path.
// Returns the ID and true on success, or "" and false after writing an
// error response.
// Expects path parameter: pid
func ParseProjectID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseID(w, r, "pid", "invalid_project_id", "Invalid project ID format", logger)
}

// ParseEntityID extracts the entity ID from the request path.
// Expects path parameter: eid
func ParseEntityID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseID(w, r, "eid", "invalid_entity_id", "Invalid entity ID format", logger)
}

// ParseRelationID extracts the relation ID from the request path.
// Expects path parameter: rid
func ParseRelationID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseID(w, r, "rid", "invalid_relation_id", "Invalid relation ID format", logger)
}

// ParseItemID extracts the public item ID from the request path.
// Expects path parameter: iid
func ParseItemID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parseID(w, r, "iid", "invalid_item_id", "Invalid item ID format", logger)
}

func parseID(w http.ResponseWriter, r *http.Request, pathParam, errorCode, errorMessage string, logger *zap.Logger) (string, bool) {
	id := r.PathValue(pathParam)
	if !validID(id) {
		writeError(w, logger, http.StatusBadRequest, errorCode, errorMessage)
		return "", false
	}
	return id, true
}

func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// queryBool reads a boolean query parameter. Missing or malformed values
// yield def.
func queryBool(r *http.Request, key string, def bool) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

// queryFloat reads a float query parameter. Missing, malformed and
// non-finite values yield def.
func queryFloat(r *http.Request, key string, def float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		logger.Debug("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, logger, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}

// isJSON reports whether the request body is declared as JSON.
func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
