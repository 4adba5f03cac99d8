package middleware

// identity.go holds the context accessors shared by the middleware and
// the handlers.

import (
    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/booking"
)

const identityKey = "identity"

// IdentityFrom returns the caller stored by JWTAuth.  Guests, and
// requests that never passed through JWTAuth, get the zero Identity.
func IdentityFrom(c echo.Context) booking.Identity {
    if id, ok := c.Get(identityKey).(booking.Identity); ok {
        return id
    }
    return booking.Identity{}
}

// userID is the rate-limit subject: the occupant handle, or "guest".
func userID(c echo.Context) string {
    if id := IdentityFrom(c); !id.Anonymous() {
        return id.Handle
    }
    return "guest"
}
