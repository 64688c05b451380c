// Package authz makes the allow/deny decisions for the administrative
// user-management surface. Decisions are pure functions of the acting
// principal, the action, and the target user ID; the package holds no state.
package authz

import (
	"github.com/google/uuid"

	"github.com/KaiWedekind/Portus/internal/domain"
)

// Action identifies an administrative operation on the users resource.
type Action string

const (
	ActionList        Action = "list"
	ActionShow        Action = "show"
	ActionCreate      Action = "create"
	ActionEdit        Action = "edit"
	ActionUpdate      Action = "update"
	ActionToggleAdmin Action = "toggle_admin"
	ActionDestroy     Action = "destroy"
)

// Check decides whether principal may perform action on the user identified
// by targetID (uuid.Nil for collection-level actions such as list/create).
//
// Denials come in two kinds: a non-admin principal is rejected outright for
// every action, and an admin principal is rejected when editing, updating,
// or un-toggling themselves. The caller maps the first kind to 401 and the
// second to 403.
func Check(principal *domain.Principal, action Action, targetID uuid.UUID) error {
	if principal == nil {
		return domain.ErrUnauthenticated
	}

	if !principal.Admin {
		return domain.NewForbidden(domain.ReasonNotAdmin)
	}

	if targetID == uuid.Nil || targetID != principal.ID {
		return nil
	}

	// Self-targeted actions: an admin may view themselves, but may not edit
	// their own record or drop their own admin bit through this surface.
	switch action {
	case ActionEdit, ActionUpdate, ActionToggleAdmin, ActionDestroy:
		return domain.NewForbidden(domain.ReasonSelfAction)
	default:
		return nil
	}
}
