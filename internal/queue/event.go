// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationEventsQueue is the durable queue carrying reservation events.
const ReservationEventsQueue = "reservation.events"

// Event types.
const (
    EventCreated   = "reservation.created"
    EventCancelled = "reservation.cancelled"
)

// ReservationEvent is published after the store confirms a create or a
// delete.  It carries enough to audit the change without reading the
// store again.
type ReservationEvent struct {
    ID         string `json:"id"`
    Type       string `json:"type"`
    Key        string `json:"key"`
    Facility   string `json:"facility"`
    Date       string `json:"date"`
    Time       string `json:"time"`
    Occupant   string `json:"occupant"`
    OccurredAt string `json:"occurred_at"`
}
