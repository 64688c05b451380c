package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
	"github.com/KaiWedekind/Portus/internal/server/middleware"
	"github.com/KaiWedekind/Portus/internal/users"
)

type ListUsersOutput struct {
	Body []*domain.User
}

type CreateUserInput struct {
	Body struct {
		Username             string `json:"username" minLength:"1" maxLength:"255" doc:"Unique username"`
		Email                string `json:"email" minLength:"3" maxLength:"255" format:"email" doc:"Unique email address"`
		Password             string `json:"password" minLength:"8" maxLength:"128" doc:"Password"`
		PasswordConfirmation string `json:"password_confirmation" minLength:"8" maxLength:"128" doc:"Password confirmation"`
	}
}

type CreateUserOutput struct {
	Body *domain.User
}

type GetUserInput struct {
	ID uuid.UUID `path:"id" doc:"User ID"`
}

type GetUserOutput struct {
	Body *domain.User
}

type UpdateUserInput struct {
	ID   uuid.UUID `path:"id" doc:"User ID"`
	Body struct {
		Username             *string `json:"username,omitempty" maxLength:"255" doc:"New username"`
		Email                *string `json:"email,omitempty" maxLength:"255" doc:"New email address"`
		Password             *string `json:"password,omitempty" maxLength:"128" doc:"New password"`
		PasswordConfirmation *string `json:"password_confirmation,omitempty" maxLength:"128" doc:"Password confirmation"`
		// Accepted but never applied; the admin flag is only reachable
		// through the toggle_admin operation.
		Admin *bool `json:"admin,omitempty" doc:"Ignored; use toggle_admin"`
	}
}

type UpdateUserOutput struct {
	Body *domain.User
}

type ToggleAdminInput struct {
	ID uuid.UUID `path:"id" doc:"User ID"`
}

type ToggleAdminOutput struct {
	Body *domain.User
}

type DeleteUserInput struct {
	ID uuid.UUID `path:"id" doc:"User ID"`
}

type DeleteUserOutput struct{}

type ListActivitiesInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListActivitiesOutput struct {
	Body []*domain.ActivityEntry
}

func RegisterUserRoutes(api huma.API, svc LifecycleService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/admin/users",
		Summary:     "List all users",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		list, err := svc.List(ctx, principal)
		if err != nil {
			return nil, mapError(err, "failed to list users")
		}

		return &ListUsersOutput{Body: list}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/admin/users",
		Summary:       "Create a new user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateUserInput) (*CreateUserOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		u, err := svc.Create(ctx, principal, users.CreateFields{
			Username:             input.Body.Username,
			Email:                input.Body.Email,
			Password:             input.Body.Password,
			PasswordConfirmation: input.Body.PasswordConfirmation,
		})
		if err != nil {
			return nil, mapError(err, "failed to create user")
		}

		return &CreateUserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/admin/users/{id}",
		Summary:     "Get a user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *GetUserInput) (*GetUserOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		u, err := svc.Get(ctx, principal, input.ID)
		if err != nil {
			return nil, mapError(err, "failed to get user")
		}

		return &GetUserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPut,
		Path:        "/admin/users/{id}",
		Summary:     "Update a user",
		Description: "Applies the permitted fields only. The admin flag cannot be set here.",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *UpdateUserInput) (*UpdateUserOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		// Explicit allow-list: only these fields ever reach the service.
		fields := domain.UserFields{
			Username:             input.Body.Username,
			Email:                input.Body.Email,
			Password:             input.Body.Password,
			PasswordConfirmation: input.Body.PasswordConfirmation,
		}

		u, err := svc.Update(ctx, principal, input.ID, fields)
		if err != nil {
			return nil, mapError(err, "failed to update user")
		}

		return &UpdateUserOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-admin",
		Method:      http.MethodPost,
		Path:        "/admin/users/{id}/toggle_admin",
		Summary:     "Toggle the admin flag of another user",
		Tags:        []string{"Users"},
	}, func(ctx context.Context, input *ToggleAdminInput) (*ToggleAdminOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		u, err := svc.ToggleAdmin(ctx, principal, input.ID)
		if err != nil {
			return nil, mapError(err, "failed to toggle admin")
		}

		return &ToggleAdminOutput{Body: u}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-user",
		Method:        http.MethodDelete,
		Path:          "/admin/users/{id}",
		Summary:       "Delete a user",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteUserInput) (*DeleteUserOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		if err := svc.Destroy(ctx, principal, input.ID); err != nil {
			return nil, mapError(err, "failed to delete user")
		}

		return &DeleteUserOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-activities",
		Method:      http.MethodGet,
		Path:        "/admin/activities",
		Summary:     "List recent activity log entries",
		Tags:        []string{"Activities"},
	}, func(ctx context.Context, input *ListActivitiesInput) (*ListActivitiesOutput, error) {
		principal := middleware.PrincipalFromContext(ctx)

		entries, err := svc.Activities(ctx, principal, input.Limit, input.Offset)
		if err != nil {
			return nil, mapError(err, "failed to list activities")
		}

		return &ListActivitiesOutput{Body: entries}, nil
	})
}
