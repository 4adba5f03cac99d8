package booking

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

func TestOccupancyUpdatesAreCopies(t *testing.T) {
    const date = "2026-02-03"
    base := NewOccupancy(date, []model.Reservation{
        res(model.Pool, date, "06:00", "a@example.com"),
        res(model.Pool, "2026-02-04", "06:00", "a@example.com"), // other date, dropped
    })
    if len(base.Reservations()) != 1 {
        t.Fatalf("base holds %d records, want 1", len(base.Reservations()))
    }

    added := base.Insert(res(model.Gym, date, "17:00", "b@example.com"))
    removed := added.Remove(model.Pool, "06:00")

    if _, ok := base.Occupant(model.Gym, "17:00"); ok {
        t.Error("Insert mutated the receiver")
    }
    if _, ok := added.Occupant(model.Pool, "06:00"); !ok {
        t.Error("Remove mutated the receiver")
    }
    if who, _ := removed.Occupant(model.Gym, "17:00"); who != "b@example.com" {
        t.Errorf("gym 17:00 occupant = %q", who)
    }
    if got := added.Insert(res(model.Gym, "2026-02-09", "17:00", "c@example.com")).Reservations(); len(got) != 2 {
        t.Errorf("insert for another date changed the aggregate: %v", got)
    }

    snap := added.Snapshot()
    if snap[model.Pool]["06:00"] != "a@example.com" || snap[model.Gym]["17:00"] != "b@example.com" {
        t.Errorf("snapshot = %v", snap)
    }
}

func TestGatewayFetchReplacesAggregate(t *testing.T) {
    store := newMemStore(res(model.Sauna, "2026-02-03", "06:00", "a@example.com"))
    gw := NewGateway(store, time.Second)

    first, err := gw.FetchForDate(context.Background(), "2026-02-03")
    if err != nil {
        t.Fatal(err)
    }
    _ = store.Delete(context.Background(), "Sauna_2026-02-03_06:00")
    second, err := gw.FetchForDate(context.Background(), "2026-02-03")
    if err != nil {
        t.Fatal(err)
    }
    if _, ok := second.Occupant(model.Sauna, "06:00"); ok {
        t.Error("refetch merged stale state")
    }
    if _, ok := first.Occupant(model.Sauna, "06:00"); !ok {
        t.Error("refetch changed an earlier aggregate")
    }

    store.deleteErr = errors.New("broken pipe")
    if err := gw.Delete(context.Background(), model.Sauna, "2026-02-03", "06:00"); !errors.Is(err, ErrStore) {
        t.Errorf("Delete error = %v, want ErrStore", err)
    }
}

func TestGatewayAppliesDeadline(t *testing.T) {
    gw := NewGateway(blockingStore{}, 20*time.Millisecond)
    start := time.Now()
    _, err := gw.FetchForDate(context.Background(), "2026-02-03")
    if !errors.Is(err, ErrStore) || !errors.Is(err, context.DeadlineExceeded) {
        t.Fatalf("FetchForDate error = %v", err)
    }
    if time.Since(start) > 2*time.Second {
        t.Error("deadline not applied")
    }
}

// blockingStore waits for the caller's deadline on every call.
type blockingStore struct{}

func (blockingStore) Insert(ctx context.Context, r model.Reservation) error {
    <-ctx.Done()
    return ctx.Err()
}

func (blockingStore) Delete(ctx context.Context, key string) error {
    <-ctx.Done()
    return ctx.Err()
}

func (blockingStore) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
    <-ctx.Done()
    return nil, ctx.Err()
}
