package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
	redisstore "github.com/KaiWedekind/Portus/internal/store/redis"
	"github.com/KaiWedekind/Portus/internal/users"
)

// LifecycleService abstracts the user lifecycle operations for handler
// testing. *users.Service satisfies this interface.
type LifecycleService interface {
	List(ctx context.Context, principal *domain.Principal) ([]*domain.User, error)
	Get(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error)
	Create(ctx context.Context, principal *domain.Principal, fields users.CreateFields) (*domain.User, error)
	Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, fields domain.UserFields) (*domain.User, error)
	ToggleAdmin(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error)
	Destroy(ctx context.Context, principal *domain.Principal, id uuid.UUID) error
	Activities(ctx context.Context, principal *domain.Principal, limit, offset int) ([]*domain.ActivityEntry, error)
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	SignUp(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, login, password string) (*domain.User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// SessionWriter abstracts browser session creation and teardown.
// *redis.SessionStore satisfies this interface.
type SessionWriter interface {
	Create(ctx context.Context, userID uuid.UUID) (*redisstore.Session, error)
	Delete(ctx context.Context, id string) error
}
