package handlers

import (
	"net/http"

	"blog-service/auth"

	"go.uber.org/zap"
)

// IndexHandler serves the public pages outside /auth.
type IndexHandler struct {
	views  *Views
	logger *zap.Logger
}

// NewIndexHandler creates a new index handler
func NewIndexHandler(views *Views, logger *zap.Logger) *IndexHandler {
	return &IndexHandler{
		views:  views,
		logger: logger,
	}
}

// Index handles GET /
func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	if err := h.views.render(w, http.StatusOK, "index", page{User: auth.CurrentUser(r.Context())}); err != nil {
		internalError(h.logger, w, r, "Failed to render index", err)
	}
}

// Hello handles GET /hello
func (h *IndexHandler) Hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Hello, World"))
}

// Health handles GET /health
func (h *IndexHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "blog-service",
	})
}
