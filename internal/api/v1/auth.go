package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/KaiWedekind/Portus/internal/auth"
	"github.com/KaiWedekind/Portus/internal/domain"
	"github.com/KaiWedekind/Portus/internal/server/middleware"
)

type SignUpInput struct {
	Body struct {
		Username string `json:"username" minLength:"1" maxLength:"255" doc:"Username"`
		Email    string `json:"email" minLength:"3" maxLength:"255" format:"email" doc:"Email address"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"`
	}
}

type SignUpOutput struct {
	Body *domain.User
}

type SignInInput struct {
	Body struct {
		Login    string `json:"login" minLength:"1" maxLength:"255" doc:"Username or email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"`
	}
}

type SignInOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		User         *domain.User `json:"user"`
		AccessToken  string       `json:"access_token"`
		RefreshToken string       `json:"refresh_token"`
	}
}

type SignOutInput struct {
	SessionID string `cookie:"_portus_session" required:"false" doc:"Browser session"`
}

type SignOutOutput struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"`
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"`
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService, sessions SessionWriter) {
	huma.Register(api, huma.Operation{
		OperationID:   "sign-up",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Create an account",
		Description:   "The first account of a fresh installation becomes the administrator.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *SignUpInput) (*SignUpOutput, error) {
		u, err := authSvc.SignUp(ctx, input.Body.Username, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error422UnprocessableEntity("username or email already taken")
			}
			return nil, huma.Error500InternalServerError("failed to create account", err)
		}

		return &SignUpOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-in",
		Method:      http.MethodPost,
		Path:        "/users/sign_in",
		Summary:     "Sign in with username/email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *SignInInput) (*SignInOutput, error) {
		user, access, refresh, err := authSvc.Login(ctx, input.Body.Login, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid username or password")
			}
			return nil, huma.Error500InternalServerError("sign in failed", err)
		}

		session, err := sessions.Create(ctx, user.ID)
		if err != nil {
			return nil, huma.Error500InternalServerError("sign in failed", err)
		}

		out := &SignInOutput{
			SetCookie: http.Cookie{
				Name:     middleware.SessionCookie,
				Value:    session.ID,
				Path:     "/",
				Expires:  session.ExpiresAt,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			},
		}
		out.Body.User = user
		out.Body.AccessToken = access
		out.Body.RefreshToken = refresh

		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "sign-out",
		Method:      http.MethodDelete,
		Path:        "/users/sign_out",
		Summary:     "Sign out and drop the browser session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *SignOutInput) (*SignOutOutput, error) {
		if input.SessionID != "" {
			if err := sessions.Delete(ctx, input.SessionID); err != nil {
				return nil, huma.Error500InternalServerError("sign out failed", err)
			}
		}

		// Expire the cookie either way.
		return &SignOutOutput{
			SetCookie: http.Cookie{
				Name:     middleware.SessionCookie,
				Value:    "",
				Path:     "/",
				Expires:  time.Unix(0, 0),
				MaxAge:   -1,
				HttpOnly: true,
			},
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Exchange a refresh token for a new access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		access, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = access

		return out, nil
	})
}
