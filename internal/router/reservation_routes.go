package router

import (
    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/handler"
    "github.com/jrwishart93/james-square-booking/internal/middleware"
)

// RegisterReservations registers the signed-in endpoints under /v1.
// Every route requires a valid JWT; limit wraps the two write routes.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(),
    )
    if limit == nil {
        limit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }

    g.GET("/schedule", h.GetSchedule)
    g.GET("/my-reservations", h.ListMine)
    g.POST("/reservations", h.Book, limit)
    g.DELETE("/reservations/:facility/:date/:time", h.Cancel, limit)
}
