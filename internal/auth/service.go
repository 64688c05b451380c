package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
)

// Service provides sign-up and credential verification. It owns the
// bootstrap rule of a fresh installation: the very first account created
// becomes the administrator.
type Service struct {
	userRepo   domain.UserRepository
	hasher     Hasher
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service.
func NewService(userRepo domain.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// SignUp creates a new user with username/email/password. The password is
// hashed with argon2id before storage. The first user of an empty store is
// granted the admin flag.
func (s *Service) SignUp(ctx context.Context, username, email, password string) (*domain.User, error) {
	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", ErrUserAlreadyExists)
	}

	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", ErrUserAlreadyExists)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Admin:        count == 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.SignUp: %w", err)
	}

	return user, nil
}

// Login validates username (or email) and password, returning the user plus
// access and refresh JWT tokens.
func (s *Service) Login(ctx context.Context, login, password string) (*domain.User, string, string, error) {
	user, err := s.lookup(ctx, login)
	if err != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if user.PasswordHash == "" || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err := IssueAccessToken(s.jwtSecret, user.ID, user.Username, user.Admin, s.accessTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err := IssueRefreshToken(s.jwtSecret, user.ID, user.Username, user.Admin, s.refreshTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid user id: %w", err)
	}

	// Verify the user still exists and fetch the current admin flag.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, user.ID, user.Username, user.Admin, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// GetUser returns a user by ID (for middleware use).
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}

	return user, nil
}

// FindOrCreateFromOAuth resolves an OAuth identity to a local user. A new
// account is provisioned on first sign-in, with the username derived from
// the display name (or the email local part when the name is empty).
// OAuth-only accounts have no credential hash.
func (s *Service) FindOrCreateFromOAuth(ctx context.Context, email, name string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("auth.FindOrCreateFromOAuth: %w", ErrInvalidCredentials)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("auth.FindOrCreateFromOAuth: %w", err)
	}

	username := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	// Append a short suffix until the username is free.
	candidate := username
	for i := 0; ; i++ {
		_, err := s.userRepo.GetByUsername(ctx, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			break
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.FindOrCreateFromOAuth: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d", username, i+1)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.FindOrCreateFromOAuth: %w", err)
	}

	now := time.Now()
	user = &domain.User{
		ID:        uuid.New(),
		Username:  candidate,
		Email:     email,
		Admin:     count == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.FindOrCreateFromOAuth: %w", err)
	}

	return user, nil
}

func (s *Service) lookup(ctx context.Context, login string) (*domain.User, error) {
	if strings.Contains(login, "@") {
		return s.userRepo.GetByEmail(ctx, login)
	}
	return s.userRepo.GetByUsername(ctx, login)
}
