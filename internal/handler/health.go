package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health returns a check used by load balancers.  It answers "ok" while
// the record store responds and 503 otherwise.  A nil db skips the
// store check.
func Health(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if db != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
            defer cancel()
            if err := db.PingContext(ctx); err != nil {
                return c.String(http.StatusServiceUnavailable, "store unavailable")
            }
        }
        return c.String(http.StatusOK, "ok")
    }
}
