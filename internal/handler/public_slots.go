package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/booking"
    "github.com/jrwishart93/james-square-booking/internal/cache"
    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
)

// PublicHandler serves the schedule to anyone, signed in or not.  It
// never reads the record store.
type PublicHandler struct {
    ctl   *booking.Controller
    cache *cache.SlotCache
}

// NewPublicHandler panics on a nil controller.  A nil cache generates
// every schedule on demand.
func NewPublicHandler(ctl *booking.Controller, sc *cache.SlotCache) *PublicHandler {
    if ctl == nil {
        panic("nil controller passed to NewPublicHandler")
    }
    return &PublicHandler{ctl: ctl, cache: sc}
}

// GetFacilitySlots handles GET /v1/facilities/:facility/slots?date=.
// The date defaults to today in the building's time zone.  Slots that
// have already started are reported UNAVAILABLE.
func (h *PublicHandler) GetFacilitySlots(c echo.Context) error {
    f, err := model.ParseFacility(c.Param("facility"))
    if err != nil {
        return writeError(c, err)
    }
    date := strings.TrimSpace(c.QueryParam("date"))
    if date == "" {
        date = h.ctl.Today()
    }
    d, err := model.ParseDate(date)
    if err != nil {
        return writeError(c, err)
    }
    date = model.FormatDate(d)

    generate := func() []schedule.Slot { return h.ctl.Generator().Generate(d, f) }
    var slots []schedule.Slot
    if h.cache != nil {
        var hit bool
        slots, hit = h.cache.GetOrGenerate(c.Request().Context(), f, date, generate)
        if hit {
            c.Response().Header().Set("X-Cache", "HIT")
        } else {
            c.Response().Header().Set("X-Cache", "MISS")
        }
    } else {
        slots = generate()
    }

    return c.JSON(http.StatusOK, echo.Map{
        "facility": f,
        "date":     date,
        "slots":    h.ctl.MarkPast(d, slots),
    })
}
