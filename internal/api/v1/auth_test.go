package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/KaiWedekind/Portus/internal/api/v1"
	"github.com/KaiWedekind/Portus/internal/auth"
	"github.com/KaiWedekind/Portus/internal/domain"
	redisstore "github.com/KaiWedekind/Portus/internal/store/redis"
)

func TestSignUp(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		authSvc := &mockAuthService{
			signUpFunc: func(_ context.Context, username, email, password string) (*domain.User, error) {
				assert.Equal(t, "grace", username)
				assert.Equal(t, "grace@example.com", email)
				assert.Equal(t, "hunter2hunter2", password)
				return &domain.User{ID: uuid.New(), Username: username, Email: email, Admin: true}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, &mockSessionWriter{})

		resp := api.Post("/users", map[string]any{
			"username": "grace",
			"email":    "grace@example.com",
			"password": "hunter2hunter2",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "grace", body["username"])
		assert.Equal(t, true, body["admin"])
	})

	t.Run("duplicate_gets_422", func(t *testing.T) {
		t.Parallel()

		authSvc := &mockAuthService{
			signUpFunc: func(_ context.Context, _, _, _ string) (*domain.User, error) {
				return nil, auth.ErrUserAlreadyExists
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, &mockSessionWriter{})

		resp := api.Post("/users", map[string]any{
			"username": "grace",
			"email":    "grace@example.com",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_sets_session_cookie", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{ID: uuid.New(), Username: "grace", Email: "grace@example.com"}
		authSvc := &mockAuthService{
			loginFunc: func(_ context.Context, login, password string) (*domain.User, string, string, error) {
				assert.Equal(t, "grace", login)
				return user, "access-token", "refresh-token", nil
			},
		}
		sessions := &mockSessionWriter{
			createFunc: func(_ context.Context, userID uuid.UUID) (*redisstore.Session, error) {
				assert.Equal(t, user.ID, userID)
				return &redisstore.Session{
					ID:        "deadbeef",
					UserID:    userID,
					CreatedAt: time.Now().UTC(),
					ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
				}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, sessions)

		resp := api.Post("/users/sign_in", map[string]any{
			"login":    "grace",
			"password": "hunter2hunter2",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		cookie := resp.Header().Get("Set-Cookie")
		assert.Contains(t, cookie, "_portus_session=deadbeef")
		assert.Contains(t, cookie, "HttpOnly")

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "access-token", body["access_token"])
		assert.Equal(t, "refresh-token", body["refresh_token"])
	})

	t.Run("bad_credentials_get_401", func(t *testing.T) {
		t.Parallel()

		authSvc := &mockAuthService{
			loginFunc: func(_ context.Context, _, _ string) (*domain.User, string, string, error) {
				return nil, "", "", auth.ErrInvalidCredentials
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, &mockSessionWriter{})

		resp := api.Post("/users/sign_in", map[string]any{
			"login":    "grace",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("session_store_failure_gets_500", func(t *testing.T) {
		t.Parallel()

		authSvc := &mockAuthService{
			loginFunc: func(_ context.Context, _, _ string) (*domain.User, string, string, error) {
				return &domain.User{ID: uuid.New(), Username: "grace"}, "a", "r", nil
			},
		}
		sessions := &mockSessionWriter{
			createFunc: func(_ context.Context, _ uuid.UUID) (*redisstore.Session, error) {
				return nil, errors.New("redis down")
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, sessions)

		resp := api.Post("/users/sign_in", map[string]any{
			"login":    "grace",
			"password": "hunter2hunter2",
		})
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

func TestSignOut(t *testing.T) {
	t.Parallel()

	t.Run("deletes_session_and_expires_cookie", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessionWriter{}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{}, sessions)

		resp := api.Delete("/users/sign_out", "Cookie: _portus_session=deadbeef")
		require.Equal(t, http.StatusOK, resp.Code)

		assert.Equal(t, []string{"deadbeef"}, sessions.deleted)
		cookie := resp.Header().Get("Set-Cookie")
		assert.Contains(t, cookie, "_portus_session=")
		assert.Contains(t, cookie, "Max-Age=0")
	})

	t.Run("no_cookie_is_a_no_op", func(t *testing.T) {
		t.Parallel()

		sessions := &mockSessionWriter{}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{}, sessions)

		resp := api.Delete("/users/sign_out")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, sessions.deleted)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		authSvc := &mockAuthService{
			refreshTokenFunc: func(_ context.Context, refreshToken string) (string, error) {
				assert.Equal(t, "refresh-token", refreshToken)
				return "fresh-access", nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, &mockSessionWriter{})

		resp := api.Post("/auth/refresh", map[string]any{
			"refresh_token": "refresh-token",
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "fresh-access", body["access_token"])
	})

	t.Run("invalid_token_gets_401", func(t *testing.T) {
		t.Parallel()

		authSvc := &mockAuthService{
			refreshTokenFunc: func(_ context.Context, _ string) (string, error) {
				return "", auth.ErrInvalidToken
			},
		}

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, authSvc, &mockSessionWriter{})

		resp := api.Post("/auth/refresh", map[string]any{
			"refresh_token": "garbage",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
