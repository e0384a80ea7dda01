package http

import (
	"net/http"
	"strings"
)

// NotFoundHandler catches every unmatched route. API paths get the JSON
// error envelope; anything else gets a plain 404, since only the web
// client talks to non-API paths.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, codeNotFound, "unknown API route")
			return
		}
		http.NotFound(w, r)
	})
}
