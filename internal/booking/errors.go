package booking

import (
    "errors"
    "fmt"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

// Outcomes of a booking or cancellation.  Everything except ErrAlreadyBooked
// and ErrStore is decided locally, before any write reaches the store.
var (
    // ErrAlreadyBooked: the store rejected the write because another
    // occupant holds the key.
    ErrAlreadyBooked = errors.New("slot already taken")
    // ErrStore wraps transport and infrastructure failures, including
    // deadline expiry.
    ErrStore = errors.New("store unavailable, please try again")

    ErrQuotaExceeded            = errors.New("reservation quota exceeded")
    ErrConsecutiveDays          = errors.New("slot already held 3 consecutive days")
    ErrPeakConfirmationRequired = errors.New("peak-time pattern: confirmation required")

    ErrUnauthenticated = errors.New("authentication required")
    ErrInvalidRequest  = errors.New("invalid request")
    ErrSlotNotBookable = errors.New("slot is not available for booking")
    ErrSlotTaken       = errors.New("slot is booked by another resident")
    ErrAlreadyHeld     = errors.New("you already hold this slot")
    ErrNotBooked       = errors.New("slot is not booked")
    ErrNotOwner        = errors.New("reservation belongs to another resident")
)

// Quota scopes.
const (
    ScopeFacility = "facility"
    ScopeDay      = "day"
)

// QuotaError reports which cap a booking would exceed.  It matches
// ErrQuotaExceeded under errors.Is.
type QuotaError struct {
    Scope    string
    Facility model.Facility
    Limit    int
}

func (e *QuotaError) Error() string {
    if e.Scope == ScopeFacility {
        return fmt.Sprintf("%s: at most %d %s slots per day", ErrQuotaExceeded, e.Limit, e.Facility)
    }
    return fmt.Sprintf("%s: at most %d slots per day across all facilities", ErrQuotaExceeded, e.Limit)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }

func storeError(err error) error { return fmt.Errorf("%w: %w", ErrStore, err) }
