// Package repository defines the MySQL-backed record store and the error
// values it shares with higher layers.  Callers compare with errors.Is.
package repository

import "errors"

// ErrConflict is returned when an insert collides with a record that
// already owns the same key.  The booking layer translates it into an
// "already booked" outcome.
var ErrConflict = errors.New("conflict")
