package database

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type requestConnKey struct{}

// Manager hands out one lazily acquired connection per request from the
// shared pool.
type Manager struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewManager creates a connection manager over the pool.
func NewManager(db *sqlx.DB, logger *zap.Logger) *Manager {
	return &Manager{
		db:     db,
		logger: logger,
	}
}

// RequestConn is the connection handle owned by a single request. The
// connection is acquired on the first call to Conn and kept until Release.
type RequestConn struct {
	mu     sync.Mutex
	db     *sqlx.DB
	logger *zap.Logger
	conn   *sqlx.Conn
}

// NewRequestConn returns an empty handle; nothing is acquired yet.
func (m *Manager) NewRequestConn() *RequestConn {
	return &RequestConn{
		db:     m.db,
		logger: m.logger,
	}
}

// Conn returns the request's connection, acquiring it from the pool on
// first use. Later calls return the same *sqlx.Conn.
func (rc *RequestConn) Conn(ctx context.Context) (*sqlx.Conn, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.conn != nil {
		return rc.conn, nil
	}
	conn, err := rc.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	rc.conn = conn
	return conn, nil
}

// Release closes the connection if one was acquired. It is a no-op
// otherwise, and safe to call more than once.
func (rc *RequestConn) Release() error {
	rc.mu.Lock()
	conn := rc.conn
	rc.conn = nil
	rc.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil {
		rc.logger.Error("Failed to release connection", zap.Error(err))
		return err
	}
	return nil
}

// WithRequestConn binds rc to ctx.
func WithRequestConn(ctx context.Context, rc *RequestConn) context.Context {
	return context.WithValue(ctx, requestConnKey{}, rc)
}

// FromContext returns the handle bound to ctx, or nil.
func FromContext(ctx context.Context) *RequestConn {
	rc, _ := ctx.Value(requestConnKey{}).(*RequestConn)
	return rc
}

// Conn returns the connection of the request bound to ctx.
func Conn(ctx context.Context) (*sqlx.Conn, error) {
	rc := FromContext(ctx)
	if rc == nil {
		return nil, fmt.Errorf("no request connection bound to context")
	}
	return rc.Conn(ctx)
}

// Middleware binds a fresh RequestConn to every request and releases it
// once the handler returns, including when it panics.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := m.NewRequestConn()
		defer func() {
			_ = rc.Release()
		}()
		next.ServeHTTP(w, r.WithContext(WithRequestConn(r.Context(), rc)))
	})
}
