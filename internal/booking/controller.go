// Package booking is the reservation engine: it decides whether a
// resident may book or cancel a slot and commits the change through the
// record store.  Quota and abuse checks run before any write; only key
// conflicts and store failures are discovered by writing.
package booking

import (
    "context"
    "errors"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/jrwishart93/james-square-booking/internal/model"
    "github.com/jrwishart93/james-square-booking/internal/queue"
    "github.com/jrwishart93/james-square-booking/internal/schedule"
)

// SlotState is a slot as seen by one caller.
type SlotState string

const (
    Unbooked      SlotState = "unbooked"
    OwnedByCaller SlotState = "owned_by_caller"
    OwnedByOther  SlotState = "owned_by_other"
)

// EventSink receives an event after every confirmed write.  Publishing
// is best effort.
type EventSink interface {
    Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// Action names the slot a book or cancel request targets.
type Action struct {
    Facility    model.Facility
    Date        string
    Time        string
    ConfirmPeak bool // caller accepted the peak-pattern warning
}

// Controller runs the book/cancel state machine.
type Controller struct {
    gateway     *Gateway
    slots       *schedule.Generator
    quota       Quota
    consecutive *ConsecutiveDetector
    peak        *PeakDetector
    events      EventSink
    log         *zap.Logger
    loc         *time.Location
    now         func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithQuota overrides DefaultQuota.
func WithQuota(q Quota) Option { return func(c *Controller) { c.quota = q } }

// WithEvents publishes reservation events to s.
func WithEvents(s EventSink) Option { return func(c *Controller) { c.events = s } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Controller) { c.log = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// NewController wires the engine.  loc is the building's time zone; slot
// start times and "today" are interpreted in it.
func NewController(gw *Gateway, gen *schedule.Generator, loc *time.Location, opts ...Option) *Controller {
    if loc == nil {
        loc = time.UTC
    }
    c := &Controller{
        gateway:     gw,
        slots:       gen,
        quota:       DefaultQuota(),
        consecutive: NewConsecutiveDetector(gw),
        peak:        NewPeakDetector(gw, gen.Rules().IsPeak),
        log:         zap.NewNop(),
        loc:         loc,
        now:         time.Now,
    }
    for _, o := range opts {
        o(c)
    }
    return c
}

// Quota returns the caps in force.
func (c *Controller) Quota() Quota { return c.quota }

// Load fetches a fresh aggregate for date.  Every date selection, and
// every refresh, produces a new value.
func (c *Controller) Load(ctx context.Context, date string) (*Occupancy, error) {
    if _, err := model.ParseDate(date); err != nil {
        return nil, ErrInvalidRequest
    }
    return c.gateway.FetchForDate(ctx, date)
}

// Slots returns the schedule of f on date with already-started slots
// reported unavailable.
func (c *Controller) Slots(date string, f model.Facility) ([]schedule.Slot, error) {
    d, err := model.ParseDate(date)
    if err != nil || !f.Valid() {
        return nil, ErrInvalidRequest
    }
    return c.slots.GenerateAt(d, f, c.now(), c.loc), nil
}

// Generator returns the schedule generator the controller checks against.
func (c *Controller) Generator() *schedule.Generator { return c.slots }

// MarkPast reports already-started slots of a schedule generated for
// date as unavailable, using the controller's clock.
func (c *Controller) MarkPast(date time.Time, slots []schedule.Slot) []schedule.Slot {
    return schedule.MarkPast(slots, date, c.now(), c.loc)
}

// Today is the building's current civil date.
func (c *Controller) Today() string { return model.FormatDate(model.CivilDate(c.now(), c.loc)) }

// State classifies (f, hhmm) on the aggregate's date for caller.
func (c *Controller) State(occ *Occupancy, caller Identity, f model.Facility, hhmm string) SlotState {
    who, ok := occ.Occupant(f, hhmm)
    switch {
    case !ok:
        return Unbooked
    case !caller.Anonymous() && who == caller.Handle:
        return OwnedByCaller
    default:
        return OwnedByOther
    }
}

// Book attempts Unbooked -> OwnedByCaller.  On success it returns the
// aggregate with the new record applied.  On ErrAlreadyBooked it returns
// a refreshed aggregate in which the slot is OwnedByOther.  Every other
// error leaves occ as it was and is returned with it.
func (c *Controller) Book(ctx context.Context, occ *Occupancy, caller Identity, a Action) (*Occupancy, model.Reservation, error) {
    if err := c.checkSlot(occ, caller, a); err != nil {
        c.reject("book", caller, a, err)
        return occ, model.Reservation{}, err
    }
    switch c.State(occ, caller, a.Facility, a.Time) {
    case OwnedByCaller:
        return occ, model.Reservation{}, ErrAlreadyHeld
    case OwnedByOther:
        return occ, model.Reservation{}, ErrSlotTaken
    }
    if err := c.quota.Check(caller.Handle, a.Facility, occ); err != nil {
        c.reject("book", caller, a, err)
        return occ, model.Reservation{}, err
    }

    blocked, err := c.consecutive.HasThreeConsecutiveDays(ctx, caller.Handle, a.Facility, a.Time, a.Date)
    if err != nil {
        c.storeFailure("consecutive-day lookup", a, err)
        return occ, model.Reservation{}, err
    }
    if blocked {
        c.reject("book", caller, a, ErrConsecutiveDays)
        return occ, model.Reservation{}, ErrConsecutiveDays
    }

    if c.slots.Rules().IsPeak(a.Time) && !a.ConfirmPeak {
        pattern, err := c.peak.HasPeakPatternLast3Days(ctx, caller.Handle, a.Date)
        if err != nil {
            c.storeFailure("peak-pattern lookup", a, err)
            return occ, model.Reservation{}, err
        }
        if pattern {
            c.reject("book", caller, a, ErrPeakConfirmationRequired)
            return occ, model.Reservation{}, ErrPeakConfirmationRequired
        }
    }

    res := model.Reservation{
        Facility:  a.Facility,
        Date:      a.Date,
        Time:      a.Time,
        Occupant:  caller.Handle,
        CreatedAt: c.now().UTC(),
    }
    switch err := c.gateway.Create(ctx, res); {
    case errors.Is(err, ErrAlreadyBooked):
        c.log.Info("booking lost the race", zap.String("key", res.Key()), zap.String("occupant", caller.Handle))
        return c.afterConflict(ctx, occ, res), model.Reservation{}, ErrAlreadyBooked
    case err != nil:
        c.storeFailure("create", a, err)
        return occ, model.Reservation{}, err
    }

    c.log.Info("reservation created", zap.String("key", res.Key()), zap.String("occupant", caller.Handle))
    c.publish(ctx, queue.EventCreated, res)
    return occ.Insert(res), res, nil
}

// Cancel performs OwnedByCaller -> Unbooked.
func (c *Controller) Cancel(ctx context.Context, occ *Occupancy, caller Identity, a Action) (*Occupancy, error) {
    if err := c.checkSlot(occ, caller, a); err != nil {
        c.reject("cancel", caller, a, err)
        return occ, err
    }
    switch c.State(occ, caller, a.Facility, a.Time) {
    case Unbooked:
        return occ, ErrNotBooked
    case OwnedByOther:
        return occ, ErrNotOwner
    }
    res, _ := occ.Reservation(a.Facility, a.Time)
    if err := c.gateway.Delete(ctx, a.Facility, a.Date, a.Time); err != nil {
        c.storeFailure("delete", a, err)
        return occ, err
    }
    c.log.Info("reservation cancelled", zap.String("key", res.Key()), zap.String("occupant", caller.Handle))
    c.publish(ctx, queue.EventCancelled, res)
    return occ.Remove(a.Facility, a.Time), nil
}

// checkSlot applies the guards shared by book and cancel: a known
// caller, a well-formed action on the aggregate's date, and a slot
// currently classified Available.
func (c *Controller) checkSlot(occ *Occupancy, caller Identity, a Action) error {
    if caller.Anonymous() {
        return ErrUnauthenticated
    }
    if occ == nil || a.Date != occ.Date() {
        return ErrInvalidRequest
    }
    slots, err := c.Slots(a.Date, a.Facility)
    if err != nil {
        return err
    }
    slot, ok := schedule.Lookup(slots, a.Time)
    if !ok || slot.Start != a.Time || !slot.Bookable() {
        return ErrSlotNotBookable
    }
    return nil
}

// afterConflict refreshes the date so the winner shows up as the
// occupant.  If the refresh fails the slot is marked taken by an
// unknown occupant.
func (c *Controller) afterConflict(ctx context.Context, occ *Occupancy, lost model.Reservation) *Occupancy {
    fresh, err := c.gateway.FetchForDate(ctx, occ.Date())
    if err == nil {
        if _, ok := fresh.Reservation(lost.Facility, lost.Time); ok {
            return fresh
        }
    }
    lost.Occupant = ""
    return occ.Insert(lost)
}

func (c *Controller) publish(ctx context.Context, typ string, r model.Reservation) {
    if c.events == nil {
        return
    }
    ev := queue.ReservationEvent{
        ID:         uuid.NewString(),
        Type:       typ,
        Key:        r.Key(),
        Facility:   string(r.Facility),
        Date:       r.Date,
        Time:       r.Time,
        Occupant:   r.Occupant,
        OccurredAt: c.now().UTC().Format(time.RFC3339),
    }
    if err := c.events.Publish(ctx, ev); err != nil {
        c.log.Warn("publish reservation event", zap.String("type", typ), zap.String("key", ev.Key), zap.Error(err))
    }
}

func (c *Controller) reject(op string, caller Identity, a Action, err error) {
    c.log.Debug("booking rejected",
        zap.String("op", op),
        zap.String("occupant", caller.Handle),
        zap.String("facility", string(a.Facility)),
        zap.String("date", a.Date),
        zap.String("time", a.Time),
        zap.Error(err))
}

func (c *Controller) storeFailure(op string, a Action, err error) {
    c.log.Warn("store call failed",
        zap.String("op", op),
        zap.String("key", model.ReservationKey(a.Facility, a.Date, a.Time)),
        zap.Error(err))
}
