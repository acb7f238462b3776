package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vendorhub/marketplace-auth/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty and valid (presence proves the middleware ran).
//   - subject must be non-empty; a token without one is structurally valid
//     but unusable, so it is rejected with 401.
func ctxClaims(c echo.Context) (subject, role string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" || !domain.ValidRole(role) {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	subject, _ = c.Get("subject").(string)
	if subject == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing subject identity")
	}

	return subject, role, nil
}
