package booking

import (
    "context"
    "errors"
    "time"

    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/repository"
)

// DefaultStoreTimeout bounds every store round trip.
const DefaultStoreTimeout = 5 * time.Second

// Store is the access pattern the booking core requires of the record
// store: keyed create-if-absent, keyed delete and a by-date query.
// Insert must return repository.ErrConflict when the key is taken.
type Store interface {
    Insert(ctx context.Context, r model.Reservation) error
    Delete(ctx context.Context, key string) error
    ListByDate(ctx context.Context, date string) ([]model.Reservation, error)
}

// History is the read side used by the abuse detectors.
type History interface {
    ListForDate(ctx context.Context, date string) ([]model.Reservation, error)
}

// Gateway translates between the store and the booking core.  It applies
// a deadline to each call and folds store failures into ErrStore.
type Gateway struct {
    store   Store
    timeout time.Duration
}

// NewGateway wraps store.  A non-positive timeout selects DefaultStoreTimeout.
func NewGateway(store Store, timeout time.Duration) *Gateway {
    if timeout <= 0 {
        timeout = DefaultStoreTimeout
    }
    return &Gateway{store: store, timeout: timeout}
}

// FetchForDate reads every reservation on date into a fresh Occupancy.
func (g *Gateway) FetchForDate(ctx context.Context, date string) (*Occupancy, error) {
    rs, err := g.ListForDate(ctx, date)
    if err != nil {
        return nil, err
    }
    return NewOccupancy(date, rs), nil
}

// ListForDate returns the raw reservations on date.
func (g *Gateway) ListForDate(ctx context.Context, date string) ([]model.Reservation, error) {
    ctx, cancel := context.WithTimeout(ctx, g.timeout)
    defer cancel()
    rs, err := g.store.ListByDate(ctx, date)
    if err != nil {
        return nil, storeError(err)
    }
    return rs, nil
}

// Create writes r under its composite key.  It returns ErrAlreadyBooked
// when the key is already owned and ErrStore for anything else.
func (g *Gateway) Create(ctx context.Context, r model.Reservation) error {
    ctx, cancel := context.WithTimeout(ctx, g.timeout)
    defer cancel()
    err := g.store.Insert(ctx, r)
    switch {
    case err == nil:
        return nil
    case errors.Is(err, repository.ErrConflict):
        return ErrAlreadyBooked
    default:
        return storeError(err)
    }
}

// Delete removes the record at (f, date, hhmm) unconditionally.  Callers
// must check ownership first.
func (g *Gateway) Delete(ctx context.Context, f model.Facility, date, hhmm string) error {
    ctx, cancel := context.WithTimeout(ctx, g.timeout)
    defer cancel()
    if err := g.store.Delete(ctx, model.ReservationKey(f, date, hhmm)); err != nil {
        return storeError(err)
    }
    return nil
}
