// Package users implements the administrative user-lifecycle operations:
// list, create, update, toggle-admin, and destroy. Every operation consults
// the authorization guard before touching the store, and successful
// mutations append to the activity log.
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/KaiWedekind/Portus/internal/authz"
	"github.com/KaiWedekind/Portus/internal/directory"
	"github.com/KaiWedekind/Portus/internal/domain"
)

const minPasswordLength = 8

// CredentialHasher turns a plaintext password into an opaque credential
// hash. auth.Hasher satisfies this interface.
type CredentialHasher interface {
	Hash(password string) (string, error)
}

// Service orchestrates user lifecycle operations.
type Service struct {
	users      domain.UserRepository
	activities domain.ActivityRepository
	hasher     CredentialHasher
	checker    directory.Checker
}

// NewService creates a lifecycle service. checker may be directory.Disabled{}
// when no external directory is configured.
func NewService(users domain.UserRepository, activities domain.ActivityRepository, hasher CredentialHasher, checker directory.Checker) *Service {
	return &Service{
		users:      users,
		activities: activities,
		hasher:     hasher,
		checker:    checker,
	}
}

// CreateFields carries the attributes accepted when creating a user.
type CreateFields struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
}

// List returns all user records.
func (s *Service) List(ctx context.Context, principal *domain.Principal) ([]*domain.User, error) {
	if err := authz.Check(principal, authz.ActionList, uuid.Nil); err != nil {
		return nil, fmt.Errorf("users.List: %w", err)
	}

	list, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("users.List: %w", err)
	}

	return list, nil
}

// Get returns a single user record.
func (s *Service) Get(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error) {
	if err := authz.Check(principal, authz.ActionShow, id); err != nil {
		return nil, fmt.Errorf("users.Get: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("users.Get: %w", err)
	}

	return u, nil
}

// Create validates the fields, consults the external directory, and inserts
// a new user record. Any failure leaves the store and activity log untouched.
func (s *Service) Create(ctx context.Context, principal *domain.Principal, fields CreateFields) (*domain.User, error) {
	if err := authz.Check(principal, authz.ActionCreate, uuid.Nil); err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}

	if err := validateUsername(fields.Username); err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}
	if err := validateEmail(fields.Email); err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}
	if err := validatePassword(fields.Password, fields.PasswordConfirmation); err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}

	if err := s.checkTaken(ctx, fields.Username, fields.Email); err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}

	if err := s.checker.Check(ctx, fields.Username); err != nil {
		var ce *directory.CheckError
		if errors.As(err, &ce) {
			return nil, fmt.Errorf("users.Create: %w", domain.NewValidation("username", ce.Message))
		}
		return nil, fmt.Errorf("users.Create: %w", err)
	}

	hash, err := s.hasher.Hash(fields.Password)
	if err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}

	now := time.Now()
	u := &domain.User{
		ID:           uuid.New(),
		Username:     fields.Username,
		Email:        fields.Email,
		PasswordHash: hash,
		Admin:        false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("users.Create: %w", err)
	}

	s.record(ctx, domain.ActivityCreate, principal, u.Username)

	return u, nil
}

// Update applies a partial update to a user record. Only the allow-listed
// fields (username, email, password with confirmation) ever reach the store;
// anything else in the caller's payload is dropped before this point, so an
// attempt to set the admin flag here is silently ignored rather than
// rejected.
func (s *Service) Update(ctx context.Context, principal *domain.Principal, id uuid.UUID, fields domain.UserFields) (*domain.User, error) {
	if err := authz.Check(principal, authz.ActionUpdate, id); err != nil {
		return nil, fmt.Errorf("users.Update: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("users.Update: %w", err)
	}

	if fields.Username != nil && *fields.Username != u.Username {
		if err := validateUsername(*fields.Username); err != nil {
			return nil, fmt.Errorf("users.Update: %w", err)
		}
		if err := s.usernameTaken(ctx, *fields.Username); err != nil {
			return nil, fmt.Errorf("users.Update: %w", err)
		}
		u.Username = *fields.Username
	}

	if fields.Email != nil && *fields.Email != u.Email {
		if err := validateEmail(*fields.Email); err != nil {
			return nil, fmt.Errorf("users.Update: %w", err)
		}
		if err := s.emailTaken(ctx, *fields.Email); err != nil {
			return nil, fmt.Errorf("users.Update: %w", err)
		}
		u.Email = *fields.Email
	}

	if fields.Password != nil {
		confirmation := ""
		if fields.PasswordConfirmation != nil {
			confirmation = *fields.PasswordConfirmation
		}
		if err := validatePassword(*fields.Password, confirmation); err != nil {
			return nil, fmt.Errorf("users.Update: %w", err)
		}
		hash, err := s.hasher.Hash(*fields.Password)
		if err != nil {
			return nil, fmt.Errorf("users.Update: %w", err)
		}
		u.PasswordHash = hash
	}

	u.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("users.Update: %w", err)
	}

	s.record(ctx, domain.ActivityUpdate, principal, u.Username)

	return u, nil
}

// ToggleAdmin flips the admin flag of another user. Toggling oneself is
// denied by the guard so an installation can never lose its last admin
// through this path.
func (s *Service) ToggleAdmin(ctx context.Context, principal *domain.Principal, id uuid.UUID) (*domain.User, error) {
	if err := authz.Check(principal, authz.ActionToggleAdmin, id); err != nil {
		return nil, fmt.Errorf("users.ToggleAdmin: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("users.ToggleAdmin: %w", err)
	}

	u.Admin = !u.Admin
	u.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("users.ToggleAdmin: %w", err)
	}

	s.record(ctx, domain.ActivityUpdate, principal, u.Username)

	return u, nil
}

// Destroy deletes a user record. The subject's username is snapshotted into
// the activity log before the record disappears: entries the subject owned
// keep the name, and one destroy entry attributed to the acting principal is
// appended after the delete. Both writes complete before Destroy returns
// success.
func (s *Service) Destroy(ctx context.Context, principal *domain.Principal, id uuid.UUID) error {
	if err := authz.Check(principal, authz.ActionDestroy, id); err != nil {
		return fmt.Errorf("users.Destroy: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("users.Destroy: %w", err)
	}

	if err := s.activities.ReassignOwner(ctx, u.ID, u.Username); err != nil {
		return fmt.Errorf("users.Destroy: %w", err)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("users.Destroy: %w", err)
	}

	entry := &domain.ActivityEntry{
		ID:              uuid.New(),
		Action:          domain.ActivityDestroy,
		OwnerID:         principal.ID,
		OwnerName:       principal.Username,
		SubjectUsername: u.Username,
		CreatedAt:       time.Now(),
	}
	if err := s.activities.Record(ctx, entry); err != nil {
		return fmt.Errorf("users.Destroy: %w", err)
	}

	return nil
}

// Activities returns a page of the activity log, newest first.
func (s *Service) Activities(ctx context.Context, principal *domain.Principal, limit, offset int) ([]*domain.ActivityEntry, error) {
	if err := authz.Check(principal, authz.ActionList, uuid.Nil); err != nil {
		return nil, fmt.Errorf("users.Activities: %w", err)
	}

	entries, err := s.activities.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("users.Activities: %w", err)
	}

	return entries, nil
}

// record appends a lifecycle entry attributed to the acting principal.
// Append failures after a successful mutation are logged, not returned: the
// mutation has already happened and must not be reported as failed.
func (s *Service) record(ctx context.Context, action domain.ActivityAction, principal *domain.Principal, subject string) {
	entry := &domain.ActivityEntry{
		ID:              uuid.New(),
		Action:          action,
		OwnerID:         principal.ID,
		OwnerName:       principal.Username,
		SubjectUsername: subject,
		CreatedAt:       time.Now(),
	}

	if err := s.activities.Record(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", string(action)).
			Str("subject", subject).
			Msg("users: failed to record activity")
	}
}

func (s *Service) checkTaken(ctx context.Context, username, email string) error {
	if err := s.usernameTaken(ctx, username); err != nil {
		return err
	}
	return s.emailTaken(ctx, email)
}

func (s *Service) usernameTaken(ctx context.Context, username string) error {
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return domain.NewValidation("username", "has already been taken")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Service) emailTaken(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return domain.NewValidation("email", "has already been taken")
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func validateUsername(username string) error {
	err := validation.Validate(username,
		validation.Required,
		validation.Length(1, 255),
	)
	if err != nil {
		return domain.NewValidation("username", err.Error())
	}
	return nil
}

func validateEmail(email string) error {
	err := validation.Validate(email,
		validation.Required,
		is.Email,
	)
	if err != nil {
		return domain.NewValidation("email", err.Error())
	}
	return nil
}

func validatePassword(password, confirmation string) error {
	err := validation.Validate(password,
		validation.Required,
		validation.Length(minPasswordLength, 128),
	)
	if err != nil {
		return domain.NewValidation("password", err.Error())
	}
	if password != confirmation {
		return domain.NewValidation("password_confirmation", "doesn't match password")
	}
	return nil
}
