package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

// RegisterNotFound answers every unmatched path with a JSON 404.
func RegisterNotFound(mux *http.ServeMux, logger *zap.Logger) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, logger, http.StatusNotFound, "not_found", "Page not found")
	})
}
