package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/jrwishart93/james-square-booking/internal/booking"
    "github.com/jrwishart93/james-square-booking/internal/model"
)

// errorStatus maps booking outcomes to an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
    switch {
    case errors.Is(err, booking.ErrInvalidRequest),
        errors.Is(err, model.ErrUnknownFacility),
        errors.Is(err, model.ErrInvalidDate),
        errors.Is(err, model.ErrInvalidTime):
        return http.StatusBadRequest, "invalid_request"
    case errors.Is(err, booking.ErrUnauthenticated):
        return http.StatusUnauthorized, "unauthenticated"
    case errors.Is(err, booking.ErrNotOwner):
        return http.StatusForbidden, "not_owner"
    case errors.Is(err, booking.ErrNotBooked):
        return http.StatusNotFound, "not_booked"
    case errors.Is(err, booking.ErrAlreadyBooked):
        return http.StatusConflict, "already_booked"
    case errors.Is(err, booking.ErrSlotTaken):
        return http.StatusConflict, "slot_taken"
    case errors.Is(err, booking.ErrAlreadyHeld):
        return http.StatusConflict, "already_held"
    case errors.Is(err, booking.ErrSlotNotBookable):
        return http.StatusConflict, "slot_not_bookable"
    case errors.Is(err, booking.ErrConsecutiveDays):
        return http.StatusConflict, "consecutive_days"
    case errors.Is(err, booking.ErrQuotaExceeded):
        return http.StatusUnprocessableEntity, "quota_exceeded"
    case errors.Is(err, booking.ErrPeakConfirmationRequired):
        return http.StatusPreconditionRequired, "peak_confirmation_required"
    case errors.Is(err, booking.ErrStore):
        return http.StatusServiceUnavailable, "store_unavailable"
    default:
        return http.StatusInternalServerError, "internal"
    }
}

// writeError renders err as {"code", "error"} plus any detail the
// outcome carries.  Store failures never leak their cause to the client.
func writeError(c echo.Context, err error) error {
    status, code := errorStatus(err)
    body := echo.Map{"code": code, "error": err.Error()}

    var qe *booking.QuotaError
    switch {
    case errors.As(err, &qe):
        body["scope"] = qe.Scope
        body["limit"] = qe.Limit
        if qe.Facility != "" {
            body["facility"] = qe.Facility
        }
    case errors.Is(err, booking.ErrStore):
        body["error"] = booking.ErrStore.Error()
    case status == http.StatusInternalServerError:
        body["error"] = "internal error"
    }
    return c.JSON(status, body)
}
