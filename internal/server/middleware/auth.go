package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
)

// SignInPath is where unauthenticated browser requests are redirected.
const SignInPath = "/users/sign_in"

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "_portus_session"

// SessionResolver turns a session cookie value into the owning user ID.
// *redis.SessionStore (wrapped) satisfies this; see server.sessionResolver.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (uuid.UUID, error)
}

type jwtClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Admin    bool   `json:"adm"`
}

// Auth resolves the acting principal from the session cookie or a Bearer
// token and stores it in the request context. The principal is always
// rebuilt from the user store so a revoked admin bit takes effect
// immediately, not at token expiry.
//
// Requests with no usable credentials are redirected to the sign-in
// endpoint (302), preserving the distinction between "no session" and
// "authenticated but denied" that the handlers rely on.
func Auth(jwtSecret string, sessions SessionResolver, userRepo domain.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Try the browser session cookie first.
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				if userID, err := sessions.Resolve(r.Context(), cookie.Value); err == nil {
					if ctx, ok := principalContext(r.Context(), userID, userRepo); ok {
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
			}

			// Then a Bearer token.
			if tok := extractBearer(r); tok != "" {
				if userID, ok := parseJWT(tok, jwtSecret); ok {
					if ctx, ok := principalContext(r.Context(), userID, userRepo); ok {
						next.ServeHTTP(w, r.WithContext(ctx))
						return
					}
				}
			}

			http.Redirect(w, r, SignInPath, http.StatusFound)
		})
	}
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}

func parseJWT(tokenStr, secret string) (uuid.UUID, bool) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

func principalContext(ctx context.Context, userID uuid.UUID, userRepo domain.UserRepository) (context.Context, bool) {
	u, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return ctx, false
	}

	principal := &domain.Principal{
		ID:       u.ID,
		Username: u.Username,
		Admin:    u.Admin,
	}

	return WithPrincipal(ctx, principal), true
}
