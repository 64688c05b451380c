package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/KaiWedekind/Portus/internal/domain"
)

// mapError translates lifecycle-service errors into transport responses.
// The two forbidden kinds map differently on purpose: a non-admin caller is
// treated as unauthorized (401) while an admin's self-action is forbidden
// (403). Validation failures carry their field as an error detail.
func mapError(err error, fallback string) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return huma.Error422UnprocessableEntity("validation failed", &huma.ErrorDetail{
			Message:  ve.Reason,
			Location: "body." + ve.Field,
		})
	}

	var fe *domain.ForbiddenError
	if errors.As(err, &fe) {
		if fe.Reason == domain.ReasonNotAdmin {
			return huma.Error401Unauthorized("administrator privileges required")
		}
		return huma.Error403Forbidden("cannot perform this action on your own account")
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound("user not found")
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("authentication required")
	default:
		return huma.Error500InternalServerError(fallback, err)
	}
}
