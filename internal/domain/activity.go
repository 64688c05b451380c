package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActivityAction enumerates the lifecycle events the recorder accepts.
type ActivityAction string

const (
	ActivityCreate  ActivityAction = "create"
	ActivityUpdate  ActivityAction = "update"
	ActivityDestroy ActivityAction = "destroy"
)

// ActivityEntry is one append-only record in the activity log. OwnerName and
// SubjectUsername are snapshots taken when the entry is written, so entries
// stay meaningful after the user they reference is deleted. Entries are never
// mutated except by ReassignOwner, which fills the owner-name snapshot for
// entries whose owner is about to disappear.
type ActivityEntry struct {
	ID              uuid.UUID      `json:"id"`
	Action          ActivityAction `json:"action"`
	OwnerID         uuid.UUID      `json:"owner_id"` // uuid.Nil once the owner has been deleted
	OwnerName       string         `json:"owner_name"`
	SubjectUsername string         `json:"subject_username"`
	CreatedAt       time.Time      `json:"created_at"`
}

type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityEntry) error
	// ReassignOwner stamps ownerName onto every entry owned by ownerID and
	// detaches the owner reference. Called before the owner record is
	// deleted so the trail survives the deletion.
	ReassignOwner(ctx context.Context, ownerID uuid.UUID, ownerName string) error
	List(ctx context.Context, limit, offset int) ([]*ActivityEntry, error)
	Count(ctx context.Context) (int64, error)
}
