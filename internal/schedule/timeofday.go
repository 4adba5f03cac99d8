package schedule

import (
    "fmt"
    "time"

    "gopkg.in/yaml.v3"
)

// Step is the width of one bookable slot.
const Step TimeOfDay = 30

// TimeOfDay is a wall-clock time expressed in minutes after midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
    t, err := time.Parse("15:04", s)
    if err != nil {
        return 0, fmt.Errorf("invalid time of day %q", s)
    }
    return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// MustTime is ParseTimeOfDay for compile-time constants.
func MustTime(s string) TimeOfDay {
    t, err := ParseTimeOfDay(s)
    if err != nil {
        panic(err)
    }
    return t
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60) }

// OnGrid reports whether t falls on a half-hour boundary.
func (t TimeOfDay) OnGrid() bool { return t >= 0 && t%Step == 0 }

// On returns the instant at which t occurs on the civil date d in loc.
func (t TimeOfDay) On(d time.Time, loc *time.Location) time.Time {
    return time.Date(d.Year(), d.Month(), d.Day(), int(t)/60, int(t)%60, 0, 0, loc)
}

func (t TimeOfDay) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *TimeOfDay) UnmarshalYAML(n *yaml.Node) error {
    var s string
    if err := n.Decode(&s); err != nil {
        return err
    }
    v, err := ParseTimeOfDay(s)
    if err != nil {
        return fmt.Errorf("line %d: %w", n.Line, err)
    }
    *t = v
    return nil
}

// Window is the half-open interval [Start, End).
type Window struct {
    Start TimeOfDay `yaml:"start"`
    End   TimeOfDay `yaml:"end"`
}

func (w Window) String() string { return w.Start.String() + "-" + w.End.String() }

// Contains reports whether t lies inside the window.
func (w Window) Contains(t TimeOfDay) bool { return t >= w.Start && t < w.End }

// Covers reports whether the whole slot starting at t lies inside the window.
func (w Window) Covers(t TimeOfDay) bool { return t >= w.Start && t+Step <= w.End }

// Keys lists every slot start inside the window.
func (w Window) Keys() []string {
    var keys []string
    for t := w.Start; t < w.End; t += Step {
        keys = append(keys, t.String())
    }
    return keys
}

func (w Window) empty() bool { return w.End <= w.Start }

func (w Window) validate() error {
    if !w.Start.OnGrid() || !w.End.OnGrid() {
        return fmt.Errorf("window %s is not aligned to %d minutes", w, int(Step))
    }
    if w.empty() {
        return fmt.Errorf("window %s is empty", w)
    }
    return nil
}
