package booking

import (
    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
)

// SlotView is a generated slot annotated for one caller.
type SlotView struct {
    schedule.Slot
    State    SlotState `json:"state"`
    Occupant string    `json:"occupant,omitempty"`
}

// FacilityDay is one facility's column of the day grid.
type FacilityDay struct {
    Facility model.Facility `json:"facility"`
    Slots    []SlotView     `json:"slots"`
}

// Usage is the caller's standing against the quota on one date.
type Usage struct {
    Date         string                 `json:"date"`
    ByFacility   map[model.Facility]int `json:"by_facility"`
    Total        int                    `json:"total"`
    PerFacility  int                    `json:"per_facility_limit"`
    PerDay       int                    `json:"per_day_limit"`
    Reservations []model.Reservation    `json:"reservations"`
}

// DayView renders every facility's schedule for the aggregate's date.
// Occupant handles of other residents are shown only to callers whose
// role allows it.
func (c *Controller) DayView(occ *Occupancy, caller Identity) ([]FacilityDay, error) {
    days := make([]FacilityDay, 0, len(model.Facilities()))
    for _, f := range model.Facilities() {
        slots, err := c.Slots(occ.Date(), f)
        if err != nil {
            return nil, err
        }
        views := make([]SlotView, 0, len(slots))
        for _, s := range slots {
            v := SlotView{Slot: s, State: c.State(occ, caller, f, s.Start)}
            if who, ok := occ.Occupant(f, s.Start); ok && (v.State == OwnedByCaller || caller.SeesOccupants()) {
                v.Occupant = who
            }
            views = append(views, v)
        }
        days = append(days, FacilityDay{Facility: f, Slots: views})
    }
    return days, nil
}

// UsageFor summarises caller's reservations on the aggregate's date.
func (c *Controller) UsageFor(occ *Occupancy, caller Identity) Usage {
    u := Usage{
        Date:         occ.Date(),
        ByFacility:   make(map[model.Facility]int),
        PerFacility:  c.quota.PerFacility,
        PerDay:       c.quota.PerDay,
        Reservations: occ.HeldBy(caller.Handle),
    }
    if u.Reservations == nil {
        u.Reservations = []model.Reservation{}
    }
    for _, f := range model.Facilities() {
        fc, tc := CountsFor(caller.Handle, f, occ)
        u.ByFacility[f] = fc
        u.Total = tc
    }
    return u
}
