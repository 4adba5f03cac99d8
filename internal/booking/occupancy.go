package booking

import (
    "sort"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

// Occupancy is the in-memory projection of one date's reservations,
// indexed facility -> start time.  It is never authoritative: every
// value is built from a store read, and updates return a new value
// instead of mutating the receiver, so a session can hold on to an
// aggregate without locking.
type Occupancy struct {
    date  string
    slots map[model.Facility]map[string]model.Reservation
}

// NewOccupancy indexes reservations for date.  Records for other dates
// are ignored.
func NewOccupancy(date string, reservations []model.Reservation) *Occupancy {
    o := &Occupancy{date: date, slots: make(map[model.Facility]map[string]model.Reservation)}
    for _, r := range reservations {
        if r.Date != date {
            continue
        }
        o.put(r)
    }
    return o
}

// Date returns the civil date the aggregate describes.
func (o *Occupancy) Date() string { return o.date }

// Reservation returns the record holding facility f at hhmm.
func (o *Occupancy) Reservation(f model.Facility, hhmm string) (model.Reservation, bool) {
    r, ok := o.slots[f][hhmm]
    return r, ok
}

// Occupant returns who holds facility f at hhmm.
func (o *Occupancy) Occupant(f model.Facility, hhmm string) (string, bool) {
    r, ok := o.Reservation(f, hhmm)
    return r.Occupant, ok
}

// Snapshot renders the aggregate as facility -> time -> occupant.
func (o *Occupancy) Snapshot() map[model.Facility]map[string]string {
    out := make(map[model.Facility]map[string]string, len(o.slots))
    for f, byTime := range o.slots {
        out[f] = make(map[string]string, len(byTime))
        for t, r := range byTime {
            out[f][t] = r.Occupant
        }
    }
    return out
}

// Insert returns a copy with r added.  A record for another date leaves
// the aggregate unchanged.
func (o *Occupancy) Insert(r model.Reservation) *Occupancy {
    c := o.clone()
    if r.Date == o.date {
        c.put(r)
    }
    return c
}

// Remove returns a copy without the record at (f, hhmm).
func (o *Occupancy) Remove(f model.Facility, hhmm string) *Occupancy {
    c := o.clone()
    delete(c.slots[f], hhmm)
    return c
}

// Reservations lists every record, ordered by facility then time.
func (o *Occupancy) Reservations() []model.Reservation {
    var out []model.Reservation
    for _, byTime := range o.slots {
        for _, r := range byTime {
            out = append(out, r)
        }
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].Facility != out[j].Facility {
            return out[i].Facility < out[j].Facility
        }
        return out[i].Time < out[j].Time
    })
    return out
}

// HeldBy lists the records owned by occupant.
func (o *Occupancy) HeldBy(occupant string) []model.Reservation {
    out := []model.Reservation{}
    for _, r := range o.Reservations() {
        if r.Occupant == occupant {
            out = append(out, r)
        }
    }
    return out
}

func (o *Occupancy) put(r model.Reservation) {
    byTime, ok := o.slots[r.Facility]
    if !ok {
        byTime = make(map[string]model.Reservation)
        o.slots[r.Facility] = byTime
    }
    byTime[r.Time] = r
}

func (o *Occupancy) clone() *Occupancy {
    c := &Occupancy{date: o.date, slots: make(map[model.Facility]map[string]model.Reservation, len(o.slots))}
    for f, byTime := range o.slots {
        m := make(map[string]model.Reservation, len(byTime))
        for t, r := range byTime {
            m[t] = r
        }
        c.slots[f] = m
    }
    return c
}
