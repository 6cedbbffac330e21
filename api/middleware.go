package api

import "net/http"

// RequireAuth gates protected routes on the current session, rehydrating it
// from the persisted token when needed. Unauthenticated requests get a 401
// with a Location header pointing at the login route — the API equivalent of
// the dashboard's redirect-to-login.
func (a *API) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.sessions.CheckAuth() {
			w.Header().Set("Location", "/login")
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
