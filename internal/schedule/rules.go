package schedule

// rules.go holds the declarative description of the building's daily
// timetable.  The generator never hard-codes dates or hours; everything
// it needs comes from a Rules value, either the built-in defaults or a
// YAML file maintained by the committee.

import (
    "crypto/sha1"
    "errors"
    "fmt"
    "os"
    "time"

    "gopkg.in/yaml.v3"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

// DefaultAnchor is the first Tuesday of the fortnightly deep-clean cycle.
const DefaultAnchor = "2025-01-07"

// Rules describes the daily grid and its exceptions.
//
// Fields:
//  Grid       – windows walked in half-hour steps (morning, evening).
//  Operating  – windows in which a grid slot is bookable.
//  Cleaning   – block merged into one ClosedForCleaning slot.
//  FreeUse    – block reported as FreeUseNoBooking.
//  Peak       – start times subject to the peak-pattern gate.
//  Facilities – per-facility replacement for Operating.
//  Overrides  – recurring calendar exceptions, first match wins.
type Rules struct {
    Grid       []Window                    `yaml:"grid"`
    Operating  []Window                    `yaml:"operating"`
    Cleaning   Window                      `yaml:"cleaning"`
    FreeUse    Window                      `yaml:"free_use"`
    Peak       Window                      `yaml:"peak"`
    Facilities map[model.Facility][]Window `yaml:"facilities,omitempty"`
    Overrides  []CalendarRule              `yaml:"overrides,omitempty"`
}

// CalendarRule replaces the cleaning and free-use blocks on every date
// that lies a whole number of periods on or after Anchor.
type CalendarRule struct {
    Name       string `yaml:"name"`
    Anchor     string `yaml:"anchor"`
    PeriodDays int    `yaml:"period_days"`
    Cleaning   Window `yaml:"cleaning"`
    FreeUse    Window `yaml:"free_use"`
}

// Applies reports whether the rule fires on date (a civil date at
// midnight UTC).  Dates before the anchor never match.
func (r CalendarRule) Applies(date time.Time) bool {
    anchor, err := model.ParseDate(r.Anchor)
    if err != nil || r.PeriodDays <= 0 {
        return false
    }
    if date.Before(anchor) {
        return false
    }
    days := int(date.Sub(anchor).Hours() / 24)
    return days%r.PeriodDays == 0
}

// DefaultRules returns the building's standard timetable: bookable
// 05:30-09:30 and 17:00-23:00, cleaning 09:30-11:00, free use until
// 17:00, and a fortnightly Tuesday deep clean running to 12:30.
func DefaultRules() Rules {
    return Rules{
        Grid: []Window{
            {Start: MustTime("05:30"), End: MustTime("11:00")},
            {Start: MustTime("17:00"), End: MustTime("23:00")},
        },
        Operating: []Window{
            {Start: MustTime("05:30"), End: MustTime("09:30")},
            {Start: MustTime("17:00"), End: MustTime("23:00")},
        },
        Cleaning: Window{Start: MustTime("09:30"), End: MustTime("11:00")},
        FreeUse:  Window{Start: MustTime("11:00"), End: MustTime("17:00")},
        Peak:     Window{Start: MustTime("17:00"), End: MustTime("21:00")},
        Overrides: []CalendarRule{{
            Name:       "fortnightly-deep-clean",
            Anchor:     DefaultAnchor,
            PeriodDays: 14,
            Cleaning:   Window{Start: MustTime("09:30"), End: MustTime("12:30")},
            FreeUse:    Window{Start: MustTime("12:30"), End: MustTime("17:00")},
        }},
    }
}

// LoadRules reads a YAML rules file.  Keys missing from the file keep
// their default values.
func LoadRules(path string) (Rules, error) {
    raw, err := os.ReadFile(path)
    if err != nil {
        return Rules{}, fmt.Errorf("read schedule rules: %w", err)
    }
    return ParseRules(raw)
}

// ParseRules decodes YAML rules on top of DefaultRules and validates them.
func ParseRules(raw []byte) (Rules, error) {
    r := DefaultRules()
    if err := yaml.Unmarshal(raw, &r); err != nil {
        return Rules{}, fmt.Errorf("parse schedule rules: %w", err)
    }
    if err := r.Validate(); err != nil {
        return Rules{}, err
    }
    return r, nil
}

// Validate checks alignment and internal consistency.
func (r Rules) Validate() error {
    if len(r.Grid) == 0 {
        return errors.New("schedule rules: grid is empty")
    }
    windows := append([]Window{}, r.Grid...)
    windows = append(windows, r.Operating...)
    windows = append(windows, r.Cleaning, r.FreeUse, r.Peak)
    for f, ws := range r.Facilities {
        if !f.Valid() {
            return fmt.Errorf("schedule rules: %w %q", model.ErrUnknownFacility, f)
        }
        windows = append(windows, ws...)
    }
    for _, o := range r.Overrides {
        if _, err := model.ParseDate(o.Anchor); err != nil {
            return fmt.Errorf("schedule rules: override %q: bad anchor %q", o.Name, o.Anchor)
        }
        if o.PeriodDays <= 0 {
            return fmt.Errorf("schedule rules: override %q: period_days must be positive", o.Name)
        }
        windows = append(windows, o.Cleaning, o.FreeUse)
    }
    for _, w := range windows {
        if err := w.validate(); err != nil {
            return fmt.Errorf("schedule rules: %w", err)
        }
    }
    return nil
}

// Fingerprint identifies a rules value; cached schedules are keyed by it
// so an edited rules file never serves stale slots.
func (r Rules) Fingerprint() string {
    raw, err := yaml.Marshal(r)
    if err != nil {
        return "default"
    }
    sum := sha1.Sum(raw)
    return fmt.Sprintf("%x", sum[:6])
}

// IsPeak reports whether a slot starting at hhmm lies in the peak window.
func (r Rules) IsPeak(hhmm string) bool {
    t, err := ParseTimeOfDay(hhmm)
    if err != nil {
        return false
    }
    return r.Peak.Contains(t)
}

func (r Rules) override(date time.Time) (CalendarRule, bool) {
    for _, o := range r.Overrides {
        if o.Applies(date) {
            return o, true
        }
    }
    return CalendarRule{}, false
}

func (r Rules) operatingFor(f model.Facility) []Window {
    if ws, ok := r.Facilities[f]; ok {
        return ws
    }
    return r.Operating
}
