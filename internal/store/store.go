// Package store persists finished intake records in SQLite and serves them
// back as display-keyed mappings for search and inspection.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/borovskvet/intake-bot/internal/record"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS records (
	record_id     TEXT PRIMARY KEY,
	visit_date    TEXT NOT NULL,
	staff         TEXT NOT NULL,
	fio           TEXT NOT NULL,
	phone         TEXT NOT NULL,
	telegram      TEXT NOT NULL DEFAULT '',
	address       TEXT NOT NULL DEFAULT '',
	consent       TEXT NOT NULL DEFAULT '',
	animal_type   TEXT NOT NULL DEFAULT '',
	nickname      TEXT NOT NULL DEFAULT '',
	sex           TEXT NOT NULL DEFAULT '',
	age_or_dob    TEXT NOT NULL DEFAULT '',
	vaccine_type  TEXT NOT NULL DEFAULT '',
	vaccine_date  TEXT NOT NULL DEFAULT '',
	term_months   TEXT NOT NULL DEFAULT '',
	channel       TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	comment       TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_visit
ON records(visit_date, staff);
`

// #endregion schema

// #region store-struct
// RecordStore is a record.Sink backed by SQLite.
type RecordStore struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewRecordStore opens a SQLite database and runs migrations.
func NewRecordStore(dbPath string) (*RecordStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &RecordStore{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *RecordStore) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. the
// event audit log).
func (s *RecordStore) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region append
// Append inserts one finished 17-cell row.
func (s *RecordStore) Append(ctx context.Context, row []string) error {
	if len(row) != record.ColumnCount {
		return fmt.Errorf("append: expected %d cells, got %d", record.ColumnCount, len(row))
	}

	args := make([]interface{}, 0, record.ColumnCount+2)
	args = append(args, uuid.New().String())
	for _, cell := range row {
		args = append(args, cell)
	}
	args = append(args, time.Now().UTC().Format(time.RFC3339Nano))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records
		(record_id, visit_date, staff, fio, phone, telegram, address, consent,
		 animal_type, nickname, sex, age_or_dob, vaccine_type, vaccine_date,
		 term_months, channel, status, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// #endregion append

// #region query
// Query returns all saved records as display-keyed mappings, oldest first.
func (s *RecordStore) Query(ctx context.Context) ([]record.Stored, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT visit_date, staff, fio, phone, telegram, address, consent,
		       animal_type, nickname, sex, age_or_dob, vaccine_type,
		       vaccine_date, term_months, channel, status, comment
		FROM records ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []record.Stored
	for rows.Next() {
		var c [record.ColumnCount]string
		dest := make([]interface{}, record.ColumnCount)
		for i := range c {
			dest[i] = &c[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, record.Stored{
			record.FieldVisitDate:   c[0],
			record.FieldStaff:       c[1],
			record.FieldOwner:       c[2],
			record.FieldPhone:       c[3],
			record.FieldHandle:      c[4],
			record.FieldAddress:     c[5],
			record.FieldConsent:     c[6],
			record.FieldSpecies:     c[7],
			record.FieldNickname:    c[8],
			record.FieldSex:         c[9],
			record.FieldAgeOrDOB:    c[10],
			record.FieldVaccineType: c[11],
			record.FieldVaccineDate: c[12],
			record.FieldTermMonths:  c[13],
			record.FieldChannel:     c[14],
			record.FieldStatus:      c[15],
			record.FieldComment:     c[16],
		})
	}
	return out, rows.Err()
}

// #endregion query
