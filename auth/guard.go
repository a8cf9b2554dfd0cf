package auth

import "net/http"

// Paths the auth flow redirects to.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	IndexPath    = "/"
)

// LoginRequired only lets requests with a current user through; everyone else
// is redirected to the login page and next is never called. It has the shape
// of a mux.MiddlewareFunc.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, LoginPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
