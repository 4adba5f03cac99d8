package model

import (
    "errors"
    "strings"
)

// Facility names one of the building's bookable amenities.  The set is
// closed; new amenities require a code change.
type Facility string

const (
    Pool  Facility = "Pool"
    Gym   Facility = "Gym"
    Sauna Facility = "Sauna"
)

// ErrUnknownFacility is returned by ParseFacility for names outside the
// fixed amenity set.
var ErrUnknownFacility = errors.New("unknown facility")

// Facilities lists every amenity in display order.
func Facilities() []Facility { return []Facility{Pool, Gym, Sauna} }

// ParseFacility accepts a facility name in any letter case ("pool",
// "POOL", "Pool") and returns its canonical value.
func ParseFacility(s string) (Facility, error) {
    for _, f := range Facilities() {
        if strings.EqualFold(strings.TrimSpace(s), string(f)) {
            return f, nil
        }
    }
    return "", ErrUnknownFacility
}

// Valid reports whether f is one of the fixed amenities.
func (f Facility) Valid() bool {
    switch f {
    case Pool, Gym, Sauna:
        return true
    }
    return false
}
