package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"water_tank/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func ctx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	t.Cleanup(cancel)
	return c
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestAppend_Success_WithDefaults(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(insertEventSQL)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(),
			"AUTO_CUTOFF", "cutoff reached",
			`{"level":95}`,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.TankEvent{
		Type:        "  auto_cutoff ",
		Description: "cutoff reached",
		Metadata:    map[string]any{"level": 95},
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_FormatsOccurredAtInUTC(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	mock.ExpectExec("INSERT INTO tank_events").
		WithArgs("e1", "2025-06-01 05:00:00.000", "PUMP_ON", "pump on", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(ctx(t), models.TankEvent{EventID: "e1", OccurredAt: at, Type: "PUMP_ON", Description: "pump on"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	mock.ExpectExec("INSERT INTO tank_events").
		WillReturnError(errors.New("down"))

	err := repo.Append(ctx(t), models.TankEvent{
		Type:        "pump_off",
		Description: "x",
		Metadata:    map[string]string{"k": "v"},
	})
	if err == nil || !strings.Contains(err.Error(), "down") {
		t.Fatalf("expected error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestAppend_UnmarshalableMetadata(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	err := repo.Append(ctx(t), models.TankEvent{Type: "x", Metadata: map[string]any{"ch": make(chan int)}})
	if err == nil {
		t.Fatalf("expected marshal error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_NoFilters_And_MetadataParsing(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	js, _ := json.Marshal(map[string]any{"a": "b"})

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("1", now, "PUMP_ON", "m1", string(js)).
		AddRow("2", "2025-01-01 11:00:00.000", "NIGHT_LOCKOUT", "m2", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, type, message, meta FROM tank_events ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2, got %d", len(got))
	}
	if !got[0].OccurredAt.Equal(now) || !got[1].OccurredAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected times: %v, %v", got[0].OccurredAt, got[1].OccurredAt)
	}
	b1, _ := json.Marshal(got[0].Metadata)
	if string(b1) != string(js) {
		t.Fatalf("metadata mismatch: %s vs %s", string(b1), string(js))
	}
	if got[1].Metadata != nil {
		t.Fatalf("expected nil meta, got %#v", got[1].Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_WithFilters_OrderAndArgs(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	from := time.Date(2025, 1, 1, 11, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	query := `SELECT id, occurred_at, type, message, meta FROM tank_events WHERE occurred_at >= ? AND occurred_at <= ? AND type = ? ORDER BY occurred_at ASC`

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("2", from, "AUTO_CUTOFF", "b", nil).
		AddRow("3", to, "AUTO_CUTOFF", "c", nil)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs("2025-01-01 11:00:00.000", "2025-01-01 12:00:00.000", "AUTO_CUTOFF").
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), from, to, " auto_cutoff ")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].EventID != "2" || got[1].EventID != "3" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_BadTimestamp(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "occurred_at", "type", "message", "meta"}).
		AddRow("x", "yesterday", "PUMP_ON", "msg", nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, occurred_at, type, message, meta FROM tank_events ORDER BY occurred_at ASC`)).
		WillReturnRows(rows)

	if _, err := repo.List(ctx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected parse error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestList_QueryError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewEventSQLite(db)

	mock.ExpectQuery("SELECT id, occurred_at").WillReturnError(errors.New("locked"))
	if _, err := repo.List(ctx(t), time.Time{}, time.Time{}, ""); err == nil {
		t.Fatalf("expected query error")
	}
}
