package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
	"github.com/KaiWedekind/Portus/internal/server/middleware"
	redisstore "github.com/KaiWedekind/Portus/internal/store/redis"
	"github.com/KaiWedekind/Portus/internal/users"
)

// ---------------------------------------------------------------------------
// Context helpers: inject a principal into context for DoCtx
// ---------------------------------------------------------------------------

func adminCtx() (context.Context, *domain.Principal) {
	principal := &domain.Principal{ID: uuid.New(), Username: "root", Admin: true}
	return middleware.WithPrincipal(context.Background(), principal), principal
}

func memberCtx() context.Context {
	principal := &domain.Principal{ID: uuid.New(), Username: "bob", Admin: false}
	return middleware.WithPrincipal(context.Background(), principal)
}

// ---------------------------------------------------------------------------
// Mock LifecycleService
// ---------------------------------------------------------------------------

type mockLifecycle struct {
	listFunc        func(ctx context.Context, principal *domain.Principal) ([]*domain.User, error)
	getFunc         func(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error)
	createFunc      func(ctx context.Context, principal *domain.Principal, fields users.CreateFields) (*domain.User, error)
	updateFunc      func(ctx context.Context, principal *domain.Principal, id uuid.UUID, fields domain.UserFields) (*domain.User, error)
	toggleAdminFunc func(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error)
	destroyFunc     func(ctx context.Context, principal *domain.Principal, id uuid.UUID) error
	activitiesFunc  func(ctx context.Context, principal *domain.Principal, limit, offset int) ([]*domain.ActivityEntry, error)
}

func (m *mockLifecycle) List(ctx context.Context, principal *domain.Principal) ([]*domain.User, error) {
	return m.listFunc(ctx, principal)
}

func (m *mockLifecycle) Get(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error) {
	return m.getFunc(ctx, principal, id)
}

func (m *mockLifecycle) Create(ctx context.Context, principal *domain.Principal, fields users.CreateFields) (*domain.User, error) {
	return m.createFunc(ctx, principal, fields)
}

func (m *mockLifecycle) Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, fields domain.UserFields) (*domain.User, error) {
	return m.updateFunc(ctx, principal, id, fields)
}

func (m *mockLifecycle) ToggleAdmin(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error) {
	return m.toggleAdminFunc(ctx, principal, id)
}

func (m *mockLifecycle) Destroy(ctx context.Context, principal *domain.Principal, id uuid.UUID) error {
	return m.destroyFunc(ctx, principal, id)
}

func (m *mockLifecycle) Activities(ctx context.Context, principal *domain.Principal, limit, offset int) ([]*domain.ActivityEntry, error) {
	return m.activitiesFunc(ctx, principal, limit, offset)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	signUpFunc       func(ctx context.Context, username, email, password string) (*domain.User, error)
	loginFunc        func(ctx context.Context, login, password string) (*domain.User, string, string, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, username, email, password string) (*domain.User, error) {
	return m.signUpFunc(ctx, username, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, login, password string) (*domain.User, string, string, error) {
	return m.loginFunc(ctx, login, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Mock SessionWriter
// ---------------------------------------------------------------------------

type mockSessionWriter struct {
	createFunc func(ctx context.Context, userID uuid.UUID) (*redisstore.Session, error)
	deleteFunc func(ctx context.Context, id string) error

	deleted []string
}

func (m *mockSessionWriter) Create(ctx context.Context, userID uuid.UUID) (*redisstore.Session, error) {
	return m.createFunc(ctx, userID)
}

func (m *mockSessionWriter) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}
