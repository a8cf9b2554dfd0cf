package handlers

import (
	"net/http"

	"blog-service/auth"
	"blog-service/database"
	"blog-service/models"
	"blog-service/session"

	"github.com/gorilla/schema"
	"go.uber.org/zap"
)

// AuthHandler serves the /auth routes: register, login, logout and me.
// Sessions live in a signed client-side cookie; the store is reached through
// the request's connection.
type AuthHandler struct {
	sessions *session.Store
	views    *Views
	decoder  *schema.Decoder
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *session.Store, views *Views, logger *zap.Logger) *AuthHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &AuthHandler{
		sessions: sessions,
		views:    views,
		decoder:  decoder,
		logger:   logger,
	}
}

// decodeCredentials reads the username/password form fields. Missing fields
// decode as empty strings and are caught by validation.
func (h *AuthHandler) decodeCredentials(r *http.Request) (models.CredentialsForm, error) {
	var form models.CredentialsForm
	if err := r.ParseForm(); err != nil {
		return form, err
	}
	err := h.decoder.Decode(&form, r.PostForm)
	return form, err
}

// Register handles GET/POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderForm(w, r, http.StatusOK, "register", page{})
		return
	}

	form, err := h.decodeCredentials(r)
	if err != nil {
		logRequest(h.logger, r, "error", "Invalid register form", zap.Error(err))
		h.renderForm(w, r, http.StatusBadRequest, "register", page{Error: "Invalid form submission"})
		return
	}

	logRequest(h.logger, r, "info", "Register request", zap.String("username", form.Username))

	conn, err := database.Conn(r.Context())
	if err != nil {
		internalError(h.logger, w, r, "DB connection error", err)
		return
	}

	id, err := auth.Register(r.Context(), conn, form.Username, form.Password)
	if verr, ok := auth.IsValidationError(err); ok {
		logRequest(h.logger, r, "info", "Registration rejected", zap.String("reason", verr.Error()))
		h.renderForm(w, r, http.StatusBadRequest, "register", page{Error: verr.Error(), Username: form.Username})
		return
	}
	if err != nil {
		internalError(h.logger, w, r, "Failed to register user", err)
		return
	}

	logRequest(h.logger, r, "info", "User registered", zap.Int64("user_id", id))
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

// Login handles GET/POST /auth/login - verifies the password and stores the
// user id in a fresh session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.renderForm(w, r, http.StatusOK, "login", page{})
		return
	}

	form, err := h.decodeCredentials(r)
	if err != nil {
		logRequest(h.logger, r, "error", "Invalid login form", zap.Error(err))
		h.renderForm(w, r, http.StatusBadRequest, "login", page{Error: "Invalid form submission"})
		return
	}

	logRequest(h.logger, r, "info", "Login request", zap.String("username", form.Username))

	conn, err := database.Conn(r.Context())
	if err != nil {
		internalError(h.logger, w, r, "DB connection error", err)
		return
	}

	user, err := auth.Login(r.Context(), conn, form.Username, form.Password)
	if verr, ok := auth.IsValidationError(err); ok {
		logRequest(h.logger, r, "info", "Login rejected", zap.String("reason", verr.Error()))
		h.renderForm(w, r, http.StatusUnauthorized, "login", page{Error: verr.Error(), Username: form.Username})
		return
	}
	if err != nil {
		internalError(h.logger, w, r, "Failed to log in", err)
		return
	}

	// never carry values over from an earlier session
	sess, err := h.sessions.Get(r)
	if err != nil {
		logRequest(h.logger, r, "debug", "Replacing unreadable session", zap.Error(err))
	}
	sess.Clear()
	sess.SetUserID(user.ID)
	if err := sess.Save(r, w); err != nil {
		internalError(h.logger, w, r, "Failed to save session", err)
		return
	}

	logRequest(h.logger, r, "info", "Login successful", zap.Int64("user_id", user.ID))
	http.Redirect(w, r, auth.IndexPath, http.StatusFound)
}

// Logout handles GET /auth/logout - always clears the session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := h.sessions.Get(r)
	if err := sess.Destroy(r, w); err != nil {
		internalError(h.logger, w, r, "Failed to clear session", err)
		return
	}

	logRequest(h.logger, r, "info", "Logged out")
	http.Redirect(w, r, auth.IndexPath, http.StatusFound)
}

// Me handles GET /auth/me - returns the current user. Routed behind
// auth.LoginRequired.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	logRequest(h.logger, r, "info", "Me retrieved", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusOK, models.NewMeResponse(user))
}

func (h *AuthHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, name string, data page) {
	data.User = auth.CurrentUser(r.Context())
	if err := h.views.render(w, status, name, data); err != nil {
		internalError(h.logger, w, r, "Failed to render form", err)
	}
}
