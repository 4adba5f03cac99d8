package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/booking"
)

// RequireRole rejects guests with 401.  When roles are given, signed-in
// callers whose role is not among them get 403.  It must run after
// JWTAuth.
func RequireRole(roles ...booking.Role) echo.MiddlewareFunc {
    allowed := make(map[booking.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id := IdentityFrom(c)
            if id.Anonymous() {
                return c.JSON(http.StatusUnauthorized, echo.Map{"code": "unauthenticated", "error": booking.ErrUnauthenticated.Error()})
            }
            if len(allowed) > 0 && !allowed[id.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"code": "forbidden", "error": "forbidden"})
            }
            return next(c)
        }
    }
}
