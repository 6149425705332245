package handlers

import (
	"net/http"

	"github.com/BradenHooton/userdesk/internal/auth"
	pkghttp "github.com/BradenHooton/userdesk/pkg/http"
)

// WhoAmI returns the authenticated principal
//
// @Router /whoami [get]
func WhoAmI(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, userModelToResponse(principal))
}
