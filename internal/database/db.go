package database

import (
	"context"
	"database/sql"
	"net"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = name
	// parseTime -> DATETIME scans into time.Time; created_at is written in UTC
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Schema creates the reservations table.  id holds the composite
// "{facility}_{date}_{time}" key and is the only uniqueness constraint.
const Schema = `CREATE TABLE IF NOT EXISTS reservations (
	id         VARCHAR(64)  NOT NULL,
	facility   VARCHAR(16)  NOT NULL,
	date       CHAR(10)     NOT NULL,
	time       CHAR(5)      NOT NULL,
	occupant   VARCHAR(255) NOT NULL,
	created_at DATETIME(3)  NOT NULL,
	PRIMARY KEY (id),
	KEY idx_reservations_date (date),
	KEY idx_reservations_occupant_date (occupant, date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Migrate applies Schema.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}
