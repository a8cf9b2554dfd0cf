package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID tags every request with a unique id, reusing the client's
// X-Request-ID when one is sent.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// logRequest logs the request in the format
// (timestamp - route - method - path - message) plus structured route fields
// and any extra fields, e.g. zap.Error(err).
func logRequest(logger *zap.Logger, r *http.Request, level string, message string, fields ...zap.Field) {
	routeName := ""
	path := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil {
		routeName = route.GetName()
		if tmpl, err := route.GetPathTemplate(); err == nil {
			path = tmpl
		}
	}

	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + r.Method + " - " + path
	if message != "" {
		logMsg += " - " + message
	}

	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", r.Method),
		zap.String("path", path),
		zap.String("request_id", GetRequestID(r.Context())),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// writeJSON encodes body as the JSON response.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// internalError reports a resource failure without leaking its details.
func internalError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, message string, err error) {
	logRequest(logger, r, "error", message, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errs.NewInternalServerError("Server error"))
}
