package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/jrwishart93/james-square-booking/internal/model"
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// ReservationRepo persists reservations in the reservations table.  The
// primary key is the composite reservation key, so the database itself
// serialises concurrent writers: the first insert wins and every later
// insert for the same key fails with ErrConflict.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to db.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// Insert creates the record if its key is free.  It never overwrites:
// a duplicate key returns ErrConflict.  CreatedAt is stored in UTC with
// millisecond precision.
func (r *ReservationRepo) Insert(ctx context.Context, res model.Reservation) error {
    const q = `INSERT INTO reservations (id, facility, date, time, occupant, created_at) VALUES (?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q,
        res.Key(), string(res.Facility), res.Date, res.Time, res.Occupant, res.CreatedAt.UTC())
    if isDuplicate(err) {
        return ErrConflict
    }
    return err
}

// Delete removes the record stored under key.  Deleting a key that does
// not exist is not an error.
func (r *ReservationRepo) Delete(ctx context.Context, key string) error {
    _, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, key)
    return err
}

// ListByDate returns every reservation on date, ordered by facility and
// start time.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
    const q = `SELECT facility, date, time, occupant, created_at
               FROM reservations
               WHERE date = ?
               ORDER BY facility, time`
    rows, err := r.db.QueryContext(ctx, q, date)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Reservation{}
    for rows.Next() {
        var (
            res       model.Reservation
            facility  string
            createdAt time.Time
        )
        if err := rows.Scan(&facility, &res.Date, &res.Time, &res.Occupant, &createdAt); err != nil {
            return nil, err
        }
        res.Facility = model.Facility(facility)
        res.CreatedAt = createdAt.UTC()
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

func isDuplicate(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
