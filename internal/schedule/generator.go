// Package schedule derives the bookable half-hour slots of a facility for
// a given civil date.  Slots are never stored; they are recomputed from
// Rules whenever a schedule is rendered or a booking is validated.
package schedule

import (
    "time"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

// Status classifies a slot.
type Status string

const (
    StatusAvailable   Status = "AVAILABLE"
    StatusUnavailable Status = "UNAVAILABLE"
    StatusCleaning    Status = "CLOSED_FOR_CLEANING"
    StatusFreeUse     Status = "FREE_USE_NO_BOOKING"
)

// Slot is one entry of a generated schedule.  Merged blocks (cleaning,
// free use) span several grid keys; Keys lists them so occupancy lookups
// can resolve any start time to the block that subsumes it.
type Slot struct {
    Start  string   `json:"start"`
    End    string   `json:"end"`
    Status Status   `json:"status"`
    Keys   []string `json:"keys"`
}

// Bookable reports whether a reservation may be created against the slot.
func (s Slot) Bookable() bool { return s.Status == StatusAvailable }

// Generator produces slot sequences from a fixed Rules value.
type Generator struct {
    rules Rules
}

// NewGenerator returns a generator for rules.  Rules are assumed valid.
func NewGenerator(rules Rules) *Generator { return &Generator{rules: rules} }

// Rules returns the rules the generator was built with.
func (g *Generator) Rules() Rules { return g.rules }

// Generate returns the ordered slots of facility f on date (a civil date,
// see model.ParseDate).  Cleaning and free-use blocks are emitted once,
// at their start; a matching calendar override replaces both blocks.
func (g *Generator) Generate(date time.Time, f model.Facility) []Slot {
    cleaning, free := g.rules.Cleaning, g.rules.FreeUse
    if o, ok := g.rules.override(date); ok {
        cleaning, free = o.Cleaning, o.FreeUse
    }
    operating := g.rules.operatingFor(f)

    first, last := g.bounds(cleaning, free)
    var slots []Slot
    for t := first; t < last; t += Step {
        switch {
        case cleaning.Contains(t):
            if t == cleaning.Start {
                slots = append(slots, block(cleaning, StatusCleaning))
            }
        case free.Contains(t):
            if t == free.Start || cleaning.Contains(t-Step) {
                slots = append(slots, block(Window{Start: t, End: free.End}, StatusFreeUse))
            }
        case g.onGrid(t):
            status := StatusUnavailable
            for _, w := range operating {
                if w.Covers(t) {
                    status = StatusAvailable
                    break
                }
            }
            slots = append(slots, Slot{
                Start:  t.String(),
                End:    (t + Step).String(),
                Status: status,
                Keys:   []string{t.String()},
            })
        }
    }
    return slots
}

// GenerateAt is Generate followed by MarkPast.
func (g *Generator) GenerateAt(date time.Time, f model.Facility, now time.Time, loc *time.Location) []Slot {
    return MarkPast(g.Generate(date, f), date, now, loc)
}

// MarkPast reclassifies available slots that have already started as
// unavailable.  date is the civil date the slots were generated for.
func MarkPast(slots []Slot, date time.Time, now time.Time, loc *time.Location) []Slot {
    out := make([]Slot, len(slots))
    for i, s := range slots {
        out[i] = s
        if s.Status != StatusAvailable {
            continue
        }
        start, err := ParseTimeOfDay(s.Start)
        if err != nil {
            continue
        }
        if !now.Before(start.On(date, loc)) {
            out[i].Status = StatusUnavailable
        }
    }
    return out
}

// Lookup returns the slot whose keys include hhmm.
func Lookup(slots []Slot, hhmm string) (Slot, bool) {
    for _, s := range slots {
        for _, k := range s.Keys {
            if k == hhmm {
                return s, true
            }
        }
    }
    return Slot{}, false
}

func (g *Generator) onGrid(t TimeOfDay) bool {
    for _, w := range g.rules.Grid {
        if w.Contains(t) {
            return true
        }
    }
    return false
}

func (g *Generator) bounds(extra ...Window) (TimeOfDay, TimeOfDay) {
    first, last := g.rules.Grid[0].Start, g.rules.Grid[0].End
    for _, w := range append(append([]Window{}, g.rules.Grid...), extra...) {
        if w.Start < first {
            first = w.Start
        }
        if w.End > last {
            last = w.End
        }
    }
    return first, last
}

func block(w Window, status Status) Slot {
    return Slot{Start: w.Start.String(), End: w.End.String(), Status: status, Keys: w.Keys()}
}
