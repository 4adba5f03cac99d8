package model

import (
    "errors"
    "fmt"
    "strings"
    "time"
)

// DateLayout and TimeLayout are the wire formats for reservation dates
// and slot start times.  Dates follow the building's civil calendar.
const (
    DateLayout = "2006-01-02"
    TimeLayout = "15:04"
)

// ErrInvalidDate and ErrInvalidTime report malformed date or time strings.
var (
    ErrInvalidDate = errors.New("invalid date")
    ErrInvalidTime = errors.New("invalid time")
)

// Reservation binds one occupant to one (facility, date, slot start)
// triple.  It is the only persisted entity; slots are derived.
//
// Fields:
//  Facility  – amenity being booked.
//  Date      – civil date, YYYY-MM-DD.
//  Time      – slot start, HH:MM on the half-hour grid.
//  Occupant  – stable user handle (verified email).
//  CreatedAt – when the store accepted the record.
type Reservation struct {
    Facility  Facility  `json:"facility"`
    Date      string    `json:"date"`
    Time      string    `json:"time"`
    Occupant  string    `json:"occupant"`
    CreatedAt time.Time `json:"created_at"`
}

// Key returns the record's store key.
func (r Reservation) Key() string { return ReservationKey(r.Facility, r.Date, r.Time) }

// ReservationKey builds the composite store key "{facility}_{date}_{time}".
// The key is the uniqueness constraint for reservations: at most one
// record can exist per key.
func ReservationKey(f Facility, date, hhmm string) string {
    return fmt.Sprintf("%s_%s_%s", f, date, hhmm)
}

// ParseReservationKey splits a composite key back into its parts.
func ParseReservationKey(key string) (Facility, string, string, error) {
    parts := strings.Split(key, "_")
    if len(parts) != 3 {
        return "", "", "", fmt.Errorf("malformed reservation key %q", key)
    }
    f, err := ParseFacility(parts[0])
    if err != nil {
        return "", "", "", err
    }
    return f, parts[1], parts[2], nil
}

// ParseDate parses a YYYY-MM-DD civil date.  The result is midnight UTC
// so that day arithmetic is free of daylight-saving gaps.
func ParseDate(s string) (time.Time, error) {
    d, err := time.Parse(DateLayout, strings.TrimSpace(s))
    if err != nil {
        return time.Time{}, ErrInvalidDate
    }
    return d, nil
}

// FormatDate renders a civil date as YYYY-MM-DD.
func FormatDate(d time.Time) string { return d.Format(DateLayout) }

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
    d, err := ParseDate(date)
    if err != nil {
        return "", err
    }
    return FormatDate(d.AddDate(0, 0, n)), nil
}

// CivilDate returns the calendar date of t in loc, at midnight UTC.
func CivilDate(t time.Time, loc *time.Location) time.Time {
    y, m, d := t.In(loc).Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
