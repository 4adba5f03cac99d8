package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/booking"
    "github.com/jrwishart93/james-square-booking/internal/middleware"
    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
)

// ReservationHandler exposes the booking engine to signed-in residents.
// Every request loads a fresh occupancy aggregate for its date; nothing
// is kept between requests.
type ReservationHandler struct {
    ctl *booking.Controller
}

// NewReservationHandler panics on a nil controller.
func NewReservationHandler(ctl *booking.Controller) *ReservationHandler {
    if ctl == nil {
        panic("nil controller passed to NewReservationHandler")
    }
    return &ReservationHandler{ctl: ctl}
}

type bookRequest struct {
    Facility    string `json:"facility"`
    Date        string `json:"date"`
    Time        string `json:"time"`
    ConfirmPeak bool   `json:"confirm_peak"`
}

// GetSchedule handles GET /v1/schedule?date=.  It returns every
// facility's slots annotated with the caller's view of each one, plus
// the caller's usage against the quota.
func (h *ReservationHandler) GetSchedule(c echo.Context) error {
    caller := middleware.IdentityFrom(c)
    date, err := h.dateParam(c)
    if err != nil {
        return writeError(c, err)
    }
    occ, err := h.ctl.Load(c.Request().Context(), date)
    if err != nil {
        return writeError(c, err)
    }
    days, err := h.ctl.DayView(occ, caller)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":       date,
        "facilities": days,
        "usage":      h.ctl.UsageFor(occ, caller),
    })
}

// Book handles POST /v1/reservations.  A 201 carries the new
// reservation.  A 428 means the slot is bookable once the caller resends
// with confirm_peak set.  When another resident won the slot the 409
// body reports the slot as owned_by_other.
func (h *ReservationHandler) Book(c echo.Context) error {
    caller := middleware.IdentityFrom(c)
    var body bookRequest
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"code": "invalid_request", "error": "invalid request body"})
    }
    a, err := action(body.Facility, body.Date, body.Time)
    if err != nil {
        return writeError(c, err)
    }
    a.ConfirmPeak = body.ConfirmPeak

    ctx := c.Request().Context()
    occ, err := h.ctl.Load(ctx, a.Date)
    if err != nil {
        return writeError(c, err)
    }
    occ, res, err := h.ctl.Book(ctx, occ, caller, a)
    if errors.Is(err, booking.ErrAlreadyBooked) {
        return c.JSON(http.StatusConflict, echo.Map{
            "code":  "already_booked",
            "error": err.Error(),
            "state": h.ctl.State(occ, caller, a.Facility, a.Time),
        })
    }
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "reservation": res,
        "usage":       h.ctl.UsageFor(occ, caller),
    })
}

// Cancel handles DELETE /v1/reservations/:facility/:date/:time.  Only
// the occupant may cancel; the slot must not have started yet.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    caller := middleware.IdentityFrom(c)
    a, err := action(c.Param("facility"), c.Param("date"), c.Param("time"))
    if err != nil {
        return writeError(c, err)
    }
    ctx := c.Request().Context()
    occ, err := h.ctl.Load(ctx, a.Date)
    if err != nil {
        return writeError(c, err)
    }
    if _, err := h.ctl.Cancel(ctx, occ, caller, a); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// ListMine handles GET /v1/my-reservations?date=.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    caller := middleware.IdentityFrom(c)
    date, err := h.dateParam(c)
    if err != nil {
        return writeError(c, err)
    }
    occ, err := h.ctl.Load(c.Request().Context(), date)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, h.ctl.UsageFor(occ, caller))
}

func (h *ReservationHandler) dateParam(c echo.Context) (string, error) {
    date := strings.TrimSpace(c.QueryParam("date"))
    if date == "" {
        return h.ctl.Today(), nil
    }
    d, err := model.ParseDate(date)
    if err != nil {
        return "", err
    }
    return model.FormatDate(d), nil
}

// action normalises the facility, date and time of a request.
func action(facility, date, hhmm string) (booking.Action, error) {
    f, err := model.ParseFacility(facility)
    if err != nil {
        return booking.Action{}, err
    }
    d, err := model.ParseDate(date)
    if err != nil {
        return booking.Action{}, err
    }
    t, err := schedule.ParseTimeOfDay(strings.TrimSpace(hhmm))
    if err != nil {
        return booking.Action{}, model.ErrInvalidTime
    }
    return booking.Action{Facility: f, Date: model.FormatDate(d), Time: t.String()}, nil
}
