package http

import "net/http"

// NotFoundHandler catches everything the mux has no route for, answering in
// the same JSON error envelope as the real endpoints.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
	})
}
