package handlers

import (
	"errors"
	"net/http"

	"github.com/BradenHooton/userdesk/internal/models"
	pkgauth "github.com/BradenHooton/userdesk/pkg/auth"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
)

// writeServiceError maps a service error to its HTTP response. notFound is
// used when the error carries no message of its own.
func writeServiceError(w http.ResponseWriter, err error, notFound string) {
	var passwordErr *pkgauth.PasswordValidationError

	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, models.MessageOf(err, notFound))
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, models.MessageOf(err, "Bad request"))
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, models.MessageOf(err, "Resource already exists"))
	case errors.As(err, &passwordErr):
		pkghttp.WriteErrorWithDetails(w, http.StatusBadRequest, "validation_failed", "Invalid password", passwordErr.Error())
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
