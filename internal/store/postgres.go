package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/facegate/facegate/internal/config"
)

// Postgres is the durable Store. The one-per-day rule is enforced by a
// unique index on (attendee_id, attended_on); CreateAttendance is a single
// INSERT ... ON CONFLICT statement, so the check and the write cannot race.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against the configured database.
func NewPostgres(cfg *config.DatabaseConfig) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Migrate creates the schema if it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS students (
			student_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name  TEXT NOT NULL DEFAULT '',
			image_file TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS attendances (
			id          UUID PRIMARY KEY,
			attendee_id TEXT NOT NULL,
			ts          BIGINT NOT NULL,
			attended_on DATE NOT NULL,
			status      TEXT NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS attendances_one_per_day
			ON attendances (attendee_id, attended_on)`,
	}

	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func (p *Postgres) CreateAttendance(ctx context.Context, attendeeID string, timestamp int64) (*Attendance, error) {
	record := Attendance{
		ID:         uuid.NewString(),
		AttendeeID: attendeeID,
		Timestamp:  timestamp,
		Status:     ClassifyStatus(timestamp),
	}

	var id string
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO attendances (id, attendee_id, ts, attended_on, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (attendee_id, attended_on) DO NOTHING
		 RETURNING id`,
		record.ID, record.AttendeeID, record.Timestamp, utcDay(timestamp), record.Status,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		// The conditional write found an existing row for this day.
		return nil, ErrDuplicateAttendance
	}
	if err != nil {
		return nil, fmt.Errorf("could not insert attendance: %w", err)
	}

	return &record, nil
}

func (p *Postgres) ListAttendances(ctx context.Context, from, to int64) ([]Attendance, error) {
	query := `SELECT id, attendee_id, ts, status FROM attendances WHERE 1=1`
	args := []any{}
	if from > 0 {
		args = append(args, from)
		query += fmt.Sprintf(" AND ts >= $%d", len(args))
	}
	if to > 0 {
		args = append(args, to)
		query += fmt.Sprintf(" AND ts <= $%d", len(args))
	}
	query += " ORDER BY ts"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query attendances: %w", err)
	}
	defer rows.Close()

	var result []Attendance
	for rows.Next() {
		var r Attendance
		if err := rows.Scan(&r.ID, &r.AttendeeID, &r.Timestamp, &r.Status); err != nil {
			return nil, fmt.Errorf("could not scan attendance: %w", err)
		}
		result = append(result, r)
	}

	return result, rows.Err()
}

func (p *Postgres) CountByStatus(ctx context.Context, from, to int64) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM attendances WHERE 1=1`
	args := []any{}
	if from > 0 {
		args = append(args, from)
		query += fmt.Sprintf(" AND ts >= $%d", len(args))
	}
	if to > 0 {
		args = append(args, to)
		query += fmt.Sprintf(" AND ts <= $%d", len(args))
	}
	query += " GROUP BY status"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("could not scan count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (p *Postgres) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT student_id, first_name, last_name, image_file FROM students ORDER BY student_id`)
	if err != nil {
		return nil, fmt.Errorf("could not query students: %w", err)
	}
	defer rows.Close()

	var result []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.StudentID, &s.FirstName, &s.LastName, &s.ImageFile); err != nil {
			return nil, fmt.Errorf("could not scan student: %w", err)
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

func (p *Postgres) AddStudent(ctx context.Context, s Student) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO students (student_id, first_name, last_name, image_file)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id) DO UPDATE
		 SET first_name = EXCLUDED.first_name,
		     last_name  = EXCLUDED.last_name,
		     image_file = EXCLUDED.image_file`,
		s.StudentID, s.FirstName, s.LastName, s.ImageFile)
	if err != nil {
		return fmt.Errorf("could not upsert student: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
