package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// AuditLogName is the file the consumer appends to inside its directory.
const AuditLogName = "reservations.log"

// AuditConsumer reads ReservationEventsQueue and appends one line per
// event to <dir>/reservations.log.
type AuditConsumer struct {
    url string
    dir string
    log *zap.Logger
}

// NewAuditConsumer returns a consumer writing under dir.
func NewAuditConsumer(url, dir string, log *zap.Logger) *AuditConsumer {
    if log == nil {
        log = zap.NewNop()
    }
    if dir == "" {
        dir = "logs"
    }
    return &AuditConsumer{url: url, dir: dir, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with backoff whenever the connection drops.  It returns
// ctx.Err().
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(a.url)
        if err != nil {
            a.log.Warn("audit consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = a.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.log.Warn("audit consumer: consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.log.Warn("audit consumer: set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(ReservationEventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReservationEventsQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := a.handle(d.Body); err != nil {
                a.log.Warn("audit consumer: handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // drop, requeueing a bad payload loops forever
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (a *AuditConsumer) handle(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.Key == "" {
        return errors.New("event missing type or key")
    }
    if err := os.MkdirAll(a.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", a.dir, err)
    }
    f, err := os.OpenFile(filepath.Join(a.dir, AuditLogName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders ev as one newline-terminated log line.
func FormatAuditLine(ev ReservationEvent) string {
    return fmt.Sprintf("[%s] %s | key=%s | facility=%s | date=%s | time=%s | occupant=%q | event_id=%s\n",
        ev.OccurredAt, ev.Type, ev.Key, ev.Facility, ev.Date, ev.Time, ev.Occupant, ev.ID)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
