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
	"github.com/KaiWedekind/Portus/internal/domain"
	"github.com/KaiWedekind/Portus/internal/users"
)

func TestListUsers(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, principal := adminCtx()
		svc := &mockLifecycle{
			listFunc: func(_ context.Context, p *domain.Principal) ([]*domain.User, error) {
				assert.Equal(t, principal.ID, p.ID)
				return []*domain.User{
					{ID: uuid.New(), Username: "alice", Email: "alice@example.com", Admin: true},
					{ID: uuid.New(), Username: "bob", Email: "bob@example.com"},
				}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(ctx, "/admin/users")
		require.Equal(t, http.StatusOK, resp.Code)

		var body []map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		require.Len(t, body, 2)
		assert.Equal(t, "alice", body[0]["username"])
		// The password hash never leaves the server.
		assert.NotContains(t, body[0], "password_hash")
	})

	t.Run("non_admin_gets_401", func(t *testing.T) {
		t.Parallel()

		svc := &mockLifecycle{
			listFunc: func(_ context.Context, p *domain.Principal) ([]*domain.User, error) {
				return nil, domain.NewForbidden(domain.ReasonNotAdmin)
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(memberCtx(), "/admin/users")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("store_error_gets_500", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		svc := &mockLifecycle{
			listFunc: func(_ context.Context, _ *domain.Principal) ([]*domain.User, error) {
				return nil, errors.New("connection reset")
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(ctx, "/admin/users")
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		svc := &mockLifecycle{
			createFunc: func(_ context.Context, _ *domain.Principal, fields users.CreateFields) (*domain.User, error) {
				assert.Equal(t, "carol", fields.Username)
				assert.Equal(t, "carol@example.com", fields.Email)
				return &domain.User{
					ID:       uuid.New(),
					Username: fields.Username,
					Email:    fields.Email,
				}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PostCtx(ctx, "/admin/users", map[string]any{
			"username":              "carol",
			"email":                 "carol@example.com",
			"password":              "s3cretpass",
			"password_confirmation": "s3cretpass",
		})
		require.Equal(t, http.StatusCreated, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "carol", body["username"])
	})

	t.Run("validation_error_gets_422", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		svc := &mockLifecycle{
			createFunc: func(_ context.Context, _ *domain.Principal, _ users.CreateFields) (*domain.User, error) {
				return nil, domain.NewValidation("username", "has already been taken")
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PostCtx(ctx, "/admin/users", map[string]any{
			"username":              "carol",
			"email":                 "carol@example.com",
			"password":              "s3cretpass",
			"password_confirmation": "s3cretpass",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Contains(t, resp.Body.String(), "has already been taken")
		assert.Contains(t, resp.Body.String(), "body.username")
	})

	t.Run("non_admin_gets_401", func(t *testing.T) {
		t.Parallel()

		svc := &mockLifecycle{
			createFunc: func(_ context.Context, _ *domain.Principal, _ users.CreateFields) (*domain.User, error) {
				return nil, domain.NewForbidden(domain.ReasonNotAdmin)
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PostCtx(memberCtx(), "/admin/users", map[string]any{
			"username":              "carol",
			"email":                 "carol@example.com",
			"password":              "s3cretpass",
			"password_confirmation": "s3cretpass",
		})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		target := uuid.New()
		svc := &mockLifecycle{
			getFunc: func(_ context.Context, _ *domain.Principal, id uuid.UUID) (*domain.User, error) {
				assert.Equal(t, target, id)
				return &domain.User{ID: id, Username: "dave", Email: "dave@example.com"}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(ctx, "/admin/users/"+target.String())
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "dave")
	})

	t.Run("unknown_user_gets_404", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		svc := &mockLifecycle{
			getFunc: func(_ context.Context, _ *domain.Principal, _ uuid.UUID) (*domain.User, error) {
				return nil, domain.ErrNotFound
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(ctx, "/admin/users/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		target := uuid.New()
		svc := &mockLifecycle{
			updateFunc: func(_ context.Context, _ *domain.Principal, id uuid.UUID, fields domain.UserFields) (*domain.User, error) {
				require.NotNil(t, fields.Email)
				assert.Equal(t, "new@example.com", *fields.Email)
				assert.Nil(t, fields.Username)
				return &domain.User{ID: id, Username: "dave", Email: *fields.Email}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PutCtx(ctx, "/admin/users/"+target.String(), map[string]any{
			"email": "new@example.com",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "new@example.com")
	})

	t.Run("admin_flag_in_body_never_reaches_service", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		target := uuid.New()
		svc := &mockLifecycle{
			updateFunc: func(_ context.Context, _ *domain.Principal, id uuid.UUID, fields domain.UserFields) (*domain.User, error) {
				// UserFields has no admin member at all; assert the rest
				// arrived intact.
				require.NotNil(t, fields.Username)
				assert.Equal(t, "renamed", *fields.Username)
				return &domain.User{ID: id, Username: *fields.Username, Admin: false}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PutCtx(ctx, "/admin/users/"+target.String(), map[string]any{
			"username": "renamed",
			"admin":    true,
		})
		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, false, body["admin"])
	})

	t.Run("self_update_gets_403", func(t *testing.T) {
		t.Parallel()

		ctx, principal := adminCtx()
		svc := &mockLifecycle{
			updateFunc: func(_ context.Context, _ *domain.Principal, _ uuid.UUID, _ domain.UserFields) (*domain.User, error) {
				return nil, domain.NewForbidden(domain.ReasonSelfAction)
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PutCtx(ctx, "/admin/users/"+principal.ID.String(), map[string]any{
			"email": "new@example.com",
		})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestToggleAdmin(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		target := uuid.New()
		svc := &mockLifecycle{
			toggleAdminFunc: func(_ context.Context, _ *domain.Principal, id uuid.UUID) (*domain.User, error) {
				assert.Equal(t, target, id)
				return &domain.User{ID: id, Username: "erin", Admin: true}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PostCtx(ctx, "/admin/users/"+target.String()+"/toggle_admin", map[string]any{})
		require.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, true, body["admin"])
	})

	t.Run("self_toggle_gets_403", func(t *testing.T) {
		t.Parallel()

		ctx, principal := adminCtx()
		svc := &mockLifecycle{
			toggleAdminFunc: func(_ context.Context, _ *domain.Principal, _ uuid.UUID) (*domain.User, error) {
				return nil, domain.NewForbidden(domain.ReasonSelfAction)
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.PostCtx(ctx, "/admin/users/"+principal.ID.String()+"/toggle_admin", map[string]any{})
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		target := uuid.New()
		called := false
		svc := &mockLifecycle{
			destroyFunc: func(_ context.Context, _ *domain.Principal, id uuid.UUID) error {
				called = true
				assert.Equal(t, target, id)
				return nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.DeleteCtx(ctx, "/admin/users/"+target.String())
		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.True(t, called)
	})

	t.Run("unknown_user_gets_404", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		svc := &mockLifecycle{
			destroyFunc: func(_ context.Context, _ *domain.Principal, _ uuid.UUID) error {
				return domain.ErrNotFound
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.DeleteCtx(ctx, "/admin/users/"+uuid.NewString())
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestListActivities(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		ctx, _ := adminCtx()
		ownerID := uuid.New()
		svc := &mockLifecycle{
			activitiesFunc: func(_ context.Context, _ *domain.Principal, limit, offset int) ([]*domain.ActivityEntry, error) {
				assert.Equal(t, 10, limit)
				assert.Equal(t, 0, offset)
				return []*domain.ActivityEntry{
					{
						ID:              uuid.New(),
						Action:          domain.ActivityCreate,
						OwnerID:         ownerID,
						OwnerName:       "root",
						SubjectUsername: "frank",
						CreatedAt:       time.Now().UTC(),
					},
				}, nil
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(ctx, "/admin/activities?limit=10")
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "frank")
	})

	t.Run("non_admin_gets_401", func(t *testing.T) {
		t.Parallel()

		svc := &mockLifecycle{
			activitiesFunc: func(_ context.Context, _ *domain.Principal, _, _ int) ([]*domain.ActivityEntry, error) {
				return nil, domain.NewForbidden(domain.ReasonNotAdmin)
			},
		}

		_, api := humatest.New(t)
		v1.RegisterUserRoutes(api, svc)

		resp := api.GetCtx(memberCtx(), "/admin/activities")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
