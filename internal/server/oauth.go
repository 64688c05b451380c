package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/KaiWedekind/Portus/internal/server/middleware"
)

const oauthStateCookie = "_portus_oauth_state"

// handleOAuthStart redirects the browser to the provider's consent page.
// A random state value is pinned in a short-lived cookie and verified on
// the callback.
func (s *Server) handleOAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, ok := s.providers[chi.URLParam(r, "provider")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/oauth",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthorizationURL(state), http.StatusFound)
}

// handleOAuthCallback exchanges the authorization code, finds or creates the
// matching account and opens a browser session.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := s.providers[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	email, displayName, err := provider.ExchangeCode(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Str("provider", name).Msg("oauth code exchange failed")
		http.Error(w, "sign in failed", http.StatusBadGateway)
		return
	}

	user, err := s.auth.FindOrCreateFromOAuth(r.Context(), email, displayName)
	if err != nil {
		log.Error().Err(err).Str("provider", name).Msg("oauth account lookup failed")
		http.Error(w, "sign in failed", http.StatusInternalServerError)
		return
	}

	session, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("session creation failed")
		http.Error(w, "sign in failed", http.StatusInternalServerError)
		return
	}

	// Drop the state cookie and install the session.
	http.SetCookie(w, &http.Cookie{
		Name:    oauthStateCookie,
		Value:   "",
		Path:    "/oauth",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}
