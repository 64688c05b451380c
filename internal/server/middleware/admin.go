package middleware

import "net/http"

// RequireAdmin rejects authenticated non-admin callers with 401. It must be
// chained after Auth, which guarantees a principal is present; a missing
// principal here also yields 401 rather than a redirect, since Auth already
// had its chance to redirect.
//
// The 401-for-non-admin mapping is deliberate: the admin surface treats a
// non-admin session the same as no usable credentials, while self-targeted
// denials deeper in the service map to 403.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil || !principal.Admin {
				http.Error(w, `{"title":"Unauthorized","status":401,"detail":"administrator privileges required"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
