package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"blog-service/database"
	"blog-service/models"
	"blog-service/session"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

type currentUserKey struct{}

// WithCurrentUser binds user (possibly nil) to ctx.
func WithCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserKey{}, user)
}

// CurrentUser returns the user loaded for this request, or nil.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(currentUserKey{}).(*models.User)
	return user
}

// Loader resolves the session's user_id into the current user before every
// request.
type Loader struct {
	sessions *session.Store
	logger   *zap.Logger
}

// NewLoader creates a Loader reading sessions from store.
func NewLoader(store *session.Store, logger *zap.Logger) *Loader {
	return &Loader{
		sessions: store,
		logger:   logger,
	}
}

// Load returns the user referenced by the request's session. A missing or
// unreadable session, or one pointing at a deleted user, yields nil without
// an error.
func (l *Loader) Load(r *http.Request) (*models.User, error) {
	sess, err := l.sessions.Get(r)
	if err != nil {
		l.logger.Debug("Ignoring unreadable session", zap.Error(err))
	}
	userID, ok := sess.UserID()
	if !ok {
		return nil, nil
	}

	conn, err := database.Conn(r.Context())
	if err != nil {
		return nil, err
	}
	user, err := database.FindUserByID(r.Context(), conn, userID)
	if errors.Is(err, database.ErrNotFound) {
		l.logger.Debug("Session references a missing user", zap.Int64("user_id", userID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Middleware binds the current user to the request context. Store failures
// end the request with a 500.
func (l *Loader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := l.Load(r)
		if err != nil {
			l.logger.Error("Failed to load current user", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(errs.NewInternalServerError("Database error"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCurrentUser(r.Context(), user)))
	})
}
