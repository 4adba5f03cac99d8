// Package router registers the HTTP routes.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/handler"
)

// RegisterRoutes registers routes that need neither authentication nor
// the booking engine.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
    e.GET("/healthz", handler.Health(db))
}

// RegisterPublic registers the guest-visible schedule endpoint.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
    e.GET("/v1/facilities/:facility/slots", p.GetFacilitySlots)
}
