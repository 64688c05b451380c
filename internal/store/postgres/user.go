package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KaiWedekind/Portus/internal/domain"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Username, u.Email, nilIfEmpty(u.PasswordHash), u.Admin,
		u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("userRepo.Create: %w", mapUniqueViolation(err))
	}

	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.get(ctx, "userRepo.GetByID", `WHERE id = $1`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.get(ctx, "userRepo.GetByUsername", `WHERE username = $1`, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, "userRepo.GetByEmail", `WHERE email = $1`, email)
}

func (r *UserRepo) get(ctx context.Context, caller, clause string, arg any) (*domain.User, error) {
	var u domain.User
	var passwordHash *string

	err := r.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, admin, created_at, updated_at
		 FROM users `+clause,
		arg,
	).Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &u.Admin, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", caller, err)
	}

	u.PasswordHash = derefStr(passwordHash)

	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $1, email = $2, password_hash = $3, admin = $4, updated_at = now()
		 WHERE id = $5`,
		u.Username, u.Email, nilIfEmpty(u.PasswordHash), u.Admin, u.ID,
	)
	if err != nil {
		return fmt.Errorf("userRepo.Update: %w", mapUniqueViolation(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("userRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, email, password_hash, admin, created_at, updated_at
		 FROM users ORDER BY username, id
		 LIMIT 500`,
	)
	if err != nil {
		return nil, fmt.Errorf("userRepo.List: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var u domain.User
		var passwordHash *string

		err = rows.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &u.Admin, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("userRepo.List: scan: %w", err)
		}

		u.PasswordHash = derefStr(passwordHash)
		users = append(users, &u)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("userRepo.List: rows: %w", err)
	}

	return users, nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("userRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("userRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("userRepo.Count: %w", err)
	}

	return n, nil
}

// mapUniqueViolation translates a postgres unique-index violation into the
// field-level validation error the service layer reports to callers. The
// unique indexes are the authoritative guard against duplicate-username
// races: the service's read-check is advisory, the constraint is not.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return domain.NewValidation("username", "has already been taken")
	case strings.Contains(pgErr.ConstraintName, "email"):
		return domain.NewValidation("email", "has already been taken")
	default:
		return domain.ErrConflict
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
