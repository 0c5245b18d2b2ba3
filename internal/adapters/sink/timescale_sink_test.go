package sink

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
)

func TestTimescaleSinkWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "hud_ticks")
	ts := time.Date(2025, 3, 15, 14, 31, 0, 0, time.UTC)

	records := []*domain.TickRecord{
		{
			Tick:   1,
			At:     ts,
			Energy: domain.EnergySample{Time: "23:00", Value: 412.5},
			Entry: domain.LedgerEntry{
				ID:        "1742049060000",
				Timestamp: "2025-03-15 14:31:00",
				LadleID:   "SL-124",
				Operation: "Position Change",
				Hash:      "0x0a0b0c0d...",
				Message:   "Position Change completed for SL-124",
			},
		},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO hud_ticks (tick, ts, energy_label, energy_kw, entry_id, ladle_id, operation, hash, message) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (tick, ts) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs(uint64(1), ts, "23:00", 412.5, "1742049060000", "SL-124", "Position Change", "0x0a0b0c0d...", "Position Change completed for SL-124").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := sink.WriteBatch(records); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkWriteBatchMultipleRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "hud_ticks")

	mock.ExpectExec(regexp.QuoteMeta("($1,$2,$3,$4,$5,$6,$7,$8,$9),($10,$11,$12,$13,$14,$15,$16,$17,$18)")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	records := []*domain.TickRecord{{Tick: 1}, {Tick: 2}}
	if err := sink.WriteBatch(records); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkWriteBatchPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO hud_ticks").WillReturnError(boom)

	sink := NewTimescaleSink(db, "hud_ticks")
	if err := sink.WriteBatch([]*domain.TickRecord{{Tick: 1}}); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestTimescaleSinkWriteBatchNoRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "hud_ticks")
	if err := sink.WriteBatch(nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	sink := NewTimescaleSink(db, "hud_ticks")
	if sink.Name() != "timescaledb" {
		t.Fatalf("expected sink name timescaledb, got %s", sink.Name())
	}
}
