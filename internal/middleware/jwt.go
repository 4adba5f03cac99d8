package middleware

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/booking"
)

// JWTAuth validates an optional Bearer access token and stores the
// caller's booking.Identity in the context.  Requests without an
// Authorization header continue as guests; a header carrying a bad token
// is rejected with 401.  The token's sub claim is the occupant handle and
// its role claim the caller's role.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if auth == "" {
                c.Set(identityKey, booking.Identity{})
                return next(c)
            }
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"code": "unauthenticated", "error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"code": "unauthenticated", "error": "invalid token"})
            }
            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"code": "unauthenticated", "error": "invalid claims"})
            }

            sub, _ := claims["sub"].(string)
            role, _ := claims["role"].(string)
            id := booking.Identity{Handle: strings.TrimSpace(sub), Role: booking.ParseRole(role)}
            c.Set(identityKey, id)
            c.Set("user_id", id.Handle)
            c.Set("role", string(id.Role))
            return next(c)
        }
    }
}
