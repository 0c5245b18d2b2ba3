package sink

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

const columnsPerRecord = 9

type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteBatch(records []*domain.TickRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Idempotent on replays: one row per tick.
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (tick, ts, energy_label, energy_kw, entry_id, ladle_id, operation, hash, message) VALUES ")

	args := make([]any, 0, len(records)*columnsPerRecord)
	for i, r := range records {
		if i > 0 {
			b.WriteString(",")
		}
		n := len(args)
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9))

		args = append(args,
			r.Tick,
			r.At,
			r.Energy.Time,
			r.Energy.Value,
			r.Entry.ID,
			r.Entry.LadleID,
			r.Entry.Operation,
			r.Entry.Hash,
			r.Entry.Message,
		)
	}

	b.WriteString(" ON CONFLICT (tick, ts) DO NOTHING")

	_, err := t.db.Exec(b.String(), args...)
	return err
}

var _ ports.Sink = (*TimescaleSink)(nil)
