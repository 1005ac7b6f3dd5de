// Package eventlog is a Postgres-backed audit sink for executor
// lifecycle events: it appends what happened for later
// replay/inspection. It is an event sink, not plan persistence -- it
// does not durably queue plans across restarts, it only records the
// history of invocations that already ran.
package eventlog

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"sxlrun/internal/exec"
)

// EventLog appends executor lifecycle events to Postgres.
type EventLog struct {
	db *sqlx.DB
}

// Open connects to the Postgres database named by connStr.
func Open(connStr string) (*EventLog, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("eventlog: connect: %w", err)
	}
	return &EventLog{db: db}, nil
}

// NewEventLog wraps an already-open *sqlx.DB, primarily for tests that
// inject a sqlmock connection.
func NewEventLog(db *sqlx.DB) *EventLog {
	return &EventLog{db: db}
}

// Close releases the underlying database connection.
func (e *EventLog) Close() error {
	return e.db.Close()
}

const insertEventSQL = `
INSERT INTO invocation_events
	(invocation_id, parent_invocation_id, kind, name, event_type, duration_ms, attributes, recorded_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8)
`

// Emit persists one lifecycle event. InvocationEmitter has no error
// return, so a write failure is logged rather than propagated -- the
// executor's own run must not be interrupted by an audit-sink outage.
func (e *EventLog) Emit(event exec.ExecutionEvent) {
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		log.Printf("eventlog: marshal attributes for invocation %s: %v", event.InvocationID, err)
		return
	}

	_, err = e.db.Exec(insertEventSQL,
		event.InvocationID,
		nullableString(event.ParentInvocationID),
		string(event.Kind),
		event.Name,
		string(event.Type),
		event.DurationMS,
		attrs,
		time.Now(),
	)
	if err != nil {
		log.Printf("eventlog: insert event for invocation %s: %v", event.InvocationID, err)
	}
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// StoredEvent is one row read back from the event log, used by history
// queries (e.g. a CLI listing recent invocations of an action).
type StoredEvent struct {
	InvocationID       string    `db:"invocation_id"`
	ParentInvocationID *string   `db:"parent_invocation_id"`
	Kind               string    `db:"kind"`
	Name               string    `db:"name"`
	EventType          string    `db:"event_type"`
	DurationMS         int64     `db:"duration_ms"`
	Attributes         []byte    `db:"attributes"`
	RecordedAt         time.Time `db:"recorded_at"`
}

// History returns the most recent limit events recorded for name,
// newest first.
func (e *EventLog) History(name string, limit int) ([]StoredEvent, error) {
	var rows []StoredEvent
	err := e.db.Select(&rows,
		`SELECT invocation_id, parent_invocation_id, kind, name, event_type, duration_ms, attributes, recorded_at
		 FROM invocation_events
		 WHERE name = $1
		 ORDER BY recorded_at DESC
		 LIMIT $2`,
		name, limit)
	if err != nil {
		return nil, fmt.Errorf("eventlog: history for %q: %w", name, err)
	}
	return rows, nil
}
