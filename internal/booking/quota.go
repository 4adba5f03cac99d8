package booking

import "github.com/jrwishart93/james-square-booking/internal/model"

// Quota holds the per-occupant daily caps.
type Quota struct {
    PerFacility int // slots in one facility on one date
    PerDay      int // slots across all facilities on one date
}

// DefaultQuota is two slots per facility and six per day.
func DefaultQuota() Quota { return Quota{PerFacility: 2, PerDay: 6} }

// CountsFor returns how many slots occupant holds in facility f, and in
// total, on the aggregate's date.
func CountsFor(occupant string, f model.Facility, occ *Occupancy) (facilityCount, totalCount int) {
    for _, r := range occ.HeldBy(occupant) {
        totalCount++
        if r.Facility == f {
            facilityCount++
        }
    }
    return facilityCount, totalCount
}

// Check returns a *QuotaError when one more booking in f would exceed
// either cap.
func (q Quota) Check(occupant string, f model.Facility, occ *Occupancy) error {
    fc, tc := CountsFor(occupant, f, occ)
    if fc >= q.PerFacility {
        return &QuotaError{Scope: ScopeFacility, Facility: f, Limit: q.PerFacility}
    }
    if tc >= q.PerDay {
        return &QuotaError{Scope: ScopeDay, Limit: q.PerDay}
    }
    return nil
}
