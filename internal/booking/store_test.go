package booking

import (
    "context"
    "errors"
    "sort"
    "sync"

    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/queue"
    "github.com/jrwishart93/james-square-booking/internal/repository"
)

// memStore is a Store whose key map enforces create-if-absent the way
// the MySQL primary key does.
type memStore struct {
    mu      sync.Mutex
    records map[string]model.Reservation

    inserts int
    deletes int
    lists   int

    insertErr error
    listErr   error
    listErrOn string
    deleteErr error
}

func newMemStore(seed ...model.Reservation) *memStore {
    s := &memStore{records: make(map[string]model.Reservation)}
    for _, r := range seed {
        s.records[r.Key()] = r
    }
    return s
}

func (s *memStore) Insert(ctx context.Context, r model.Reservation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.inserts++
    if s.insertErr != nil {
        return s.insertErr
    }
    if _, ok := s.records[r.Key()]; ok {
        return repository.ErrConflict
    }
    s.records[r.Key()] = r
    return nil
}

func (s *memStore) Delete(ctx context.Context, key string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.deletes++
    if s.deleteErr != nil {
        return s.deleteErr
    }
    delete(s.records, key)
    return nil
}

func (s *memStore) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.lists++
    if s.listErr != nil {
        return nil, s.listErr
    }
    if s.listErrOn == date {
        return nil, errors.New("list failed")
    }
    out := []model.Reservation{}
    for _, r := range s.records {
        if r.Date == date {
            out = append(out, r)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
    return out, nil
}

func (s *memStore) count() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.records)
}

func (s *memStore) writes() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.inserts + s.deletes
}

type recordingSink struct {
    mu     sync.Mutex
    events []queue.ReservationEvent
}

func (r *recordingSink) Publish(ctx context.Context, ev queue.ReservationEvent) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.events = append(r.events, ev)
    return nil
}
