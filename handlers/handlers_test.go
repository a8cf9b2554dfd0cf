package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blog-service/auth"
	"blog-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", rec.Header().Get(RequestIDHeader))

	assert.Empty(t, GetRequestID(t.Context()))
}

func TestViews(t *testing.T) {
	t.Parallel()

	views, err := NewViews()
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, views.render(rec, http.StatusOK, "login", page{}))
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		body := rec.Body.String()
		assert.Contains(t, body, "<title>Log In - Blog</title>")
		assert.Contains(t, body, `href="/auth/register"`)
		assert.NotContains(t, body, "Log Out")
	})

	t.Run("logged in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, views.render(rec, http.StatusOK, "index", page{User: &models.User{ID: 1, Username: "bob"}}))
		body := rec.Body.String()
		assert.Contains(t, body, "Welcome back, bob.")
		assert.Contains(t, body, `href="/auth/logout"`)
	})

	t.Run("error is escaped", func(t *testing.T) {
		rec := httptest.NewRecorder()
		data := page{Error: "User <b> is already registered", Username: "<b>"}
		require.NoError(t, views.render(rec, http.StatusBadRequest, "register", data))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "User &lt;b&gt; is already registered")
	})

	t.Run("unknown page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.Error(t, views.render(rec, http.StatusOK, "missing", page{}))
		assert.Equal(t, 0, rec.Body.Len())
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	views, err := NewViews()
	require.NoError(t, err)
	h := NewAuthHandler(nil, views, zap.NewNop())

	user := &models.User{ID: 7, Username: "bob", Password: "hash"}
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(auth.WithCurrentUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":7,"username":"bob"}`, rec.Body.String())
}

func TestInternalErrorHidesDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	internalError(zap.NewNop(), rec, httptest.NewRequest(http.MethodGet, "/", nil), "boom", assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.False(t, strings.Contains(rec.Body.String(), assert.AnError.Error()))
}

func TestHealthAndHello(t *testing.T) {
	t.Parallel()

	views, err := NewViews()
	require.NoError(t, err)
	h := NewIndexHandler(views, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Hello(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, "Hello, World", rec.Body.String())

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"healthy","service":"blog-service"}`, rec.Body.String())
}
