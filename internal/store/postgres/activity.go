package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KaiWedekind/Portus/internal/domain"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Record(ctx context.Context, entry *domain.ActivityEntry) error {
	var ownerID *uuid.UUID
	if entry.OwnerID != uuid.Nil {
		ownerID = &entry.OwnerID
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO activities (id, action, owner_id, owner_name, subject_username, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.Action, ownerID,
		nilIfEmpty(entry.OwnerName), nilIfEmpty(entry.SubjectUsername),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("activityRepo.Record: %w", err)
	}

	return nil
}

func (r *ActivityRepo) ReassignOwner(ctx context.Context, ownerID uuid.UUID, ownerName string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE activities SET owner_id = NULL, owner_name = $1 WHERE owner_id = $2`,
		ownerName, ownerID,
	)
	if err != nil {
		return fmt.Errorf("activityRepo.ReassignOwner: %w", err)
	}

	return nil
}

func (r *ActivityRepo) List(ctx context.Context, limit, offset int) ([]*domain.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, action, owner_id, owner_name, subject_username, created_at
		 FROM activities
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("activityRepo.List: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		var ownerID *uuid.UUID
		var ownerName, subjectUsername *string

		err = rows.Scan(&e.ID, &e.Action, &ownerID, &ownerName, &subjectUsername, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("activityRepo.List: scan: %w", err)
		}

		if ownerID != nil {
			e.OwnerID = *ownerID
		}
		e.OwnerName = derefStr(ownerName)
		e.SubjectUsername = derefStr(subjectUsername)
		entries = append(entries, &e)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("activityRepo.List: rows: %w", err)
	}

	return entries, nil
}

func (r *ActivityRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM activities`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("activityRepo.Count: %w", err)
	}

	return n, nil
}
