package httpadapter

import (
	"net/http"

	"github.com/caseworks/evidence-intake/internal/core/domain"
)

// statusForError maps the core error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidInput), domain.IsKind(err, domain.ErrRuleConfig):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDuplicate), domain.IsKind(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrExternalService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
