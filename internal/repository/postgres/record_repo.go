package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	"github.com/xela07ax/httplog-starter/internal/shipper"
)

const createRecordsTable = `CREATE TABLE IF NOT EXISTS log_records (
	id        UUID PRIMARY KEY,
	level     TEXT        NOT NULL,
	message   TEXT        NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL
)`

// RecordRepo пишет пачки записей shipper'а в таблицу log_records.
type RecordRepo struct {
	db *sql.DB
}

// NewRecordRepo открывает пул соединений. Доступность базы проверяется через Ping.
func NewRecordRepo(connString string, maxConns int) (*RecordRepo, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	return &RecordRepo{db: db}, nil
}

// NewRecordRepoWithDB — для уже открытого *sql.DB (тесты, общий пул).
func NewRecordRepoWithDB(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// EnsureSchema создает таблицу, если ее еще нет.
func (r *RecordRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRecordsTable); err != nil {
		return fmt.Errorf("postgres: failed to create log_records: %w", err)
	}
	return nil
}

func (r *RecordRepo) WriteBatch(ctx context.Context, records []shipper.Record) error {
	if len(records) == 0 {
		return nil
	}

	const numFields = 4
	var placeholders strings.Builder
	vals := make([]interface{}, 0, len(records)*numFields)

	// Динамически строим запрос для пакетной вставки
	for i, rec := range records {
		if i > 0 {
			placeholders.WriteString(", ")
		}
		p := i * numFields
		fmt.Fprintf(&placeholders, "($%d, $%d, $%d, $%d)", p+1, p+2, p+3, p+4)
		vals = append(vals, rec.ID, string(rec.Level), rec.Message, rec.Timestamp)
	}

	query := "INSERT INTO log_records (id, level, message, timestamp) VALUES " + placeholders.String()
	if _, err := r.db.ExecContext(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: failed to write %d records: %w", len(records), err)
	}
	return nil
}

// Ping проверяет доступность базы при старте
func (r *RecordRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *RecordRepo) Close() error {
	return r.db.Close()
}
