package booking

import (
    "context"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

// LookbackDays is how far back both abuse detectors look.
const LookbackDays = 3

// ConsecutiveDetector finds occupants who have held the same facility
// and start time on each of the immediately preceding days.
type ConsecutiveDetector struct {
    history History
    days    int
}

// NewConsecutiveDetector returns a detector over history.
func NewConsecutiveDetector(h History) *ConsecutiveDetector {
    return &ConsecutiveDetector{history: h, days: LookbackDays}
}

// HasThreeConsecutiveDays walks back from date-1 and counts the
// contiguous run of days on which occupant held (f, hhmm).  The walk
// stops at the first gap.  It reports whether the run reached the full
// lookback.
func (d *ConsecutiveDetector) HasThreeConsecutiveDays(ctx context.Context, occupant string, f model.Facility, hhmm, date string) (bool, error) {
    run := 0
    for i := 1; i <= d.days; i++ {
        day, err := model.AddDays(date, -i)
        if err != nil {
            return false, err
        }
        rs, err := d.history.ListForDate(ctx, day)
        if err != nil {
            return false, err
        }
        if !holds(rs, occupant, func(r model.Reservation) bool { return r.Facility == f && r.Time == hhmm }) {
            break
        }
        run++
    }
    return run == d.days, nil
}

// PeakDetector finds occupants who booked a peak slot, in any facility,
// on every one of the preceding days.
type PeakDetector struct {
    history   History
    isPeak    func(hhmm string) bool
    days      int
    threshold int
}

// NewPeakDetector returns a detector over history using isPeak to
// classify start times.
func NewPeakDetector(h History, isPeak func(string) bool) *PeakDetector {
    return &PeakDetector{history: h, isPeak: isPeak, days: LookbackDays, threshold: LookbackDays}
}

// HasPeakPatternLast3Days counts the preceding days on which occupant
// held at least one peak slot and reports whether the count reached the
// threshold.  Unlike the consecutive detector it does not stop at gaps.
func (d *PeakDetector) HasPeakPatternLast3Days(ctx context.Context, occupant, date string) (bool, error) {
    count := 0
    for i := 1; i <= d.days; i++ {
        day, err := model.AddDays(date, -i)
        if err != nil {
            return false, err
        }
        rs, err := d.history.ListForDate(ctx, day)
        if err != nil {
            return false, err
        }
        if holds(rs, occupant, func(r model.Reservation) bool { return d.isPeak(r.Time) }) {
            count++
        }
    }
    return count >= d.threshold, nil
}

func holds(rs []model.Reservation, occupant string, match func(model.Reservation) bool) bool {
    for _, r := range rs {
        if r.Occupant == occupant && match(r) {
            return true
        }
    }
    return false
}
