// Package store is the attendance server's storage layer. Whatever the
// backend, CreateAttendance is an atomic conditional write: the existence
// check and the insert happen under one lock or one statement, so two
// concurrent submissions for the same student and day can never both
// succeed.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateAttendance is returned by CreateAttendance when the student
// already has a record whose timestamp falls in the same UTC calendar day.
var ErrDuplicateAttendance = errors.New("attendance already recorded for today")

// Attendance is one stored attendance event.
type Attendance struct {
	ID         string `json:"id"`
	AttendeeID string `json:"attendee_id"`
	Timestamp  int64  `json:"timestamp"`
	Status     string `json:"status"`
}

// Student is one enrolled student.
type Student struct {
	StudentID string `json:"student_id" yaml:"student_id"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	ImageFile string `json:"-" yaml:"image_file"`
}

// Store persists students and attendance events.
type Store interface {
	// CreateAttendance stores a new event or returns ErrDuplicateAttendance
	// when one already exists for the student's UTC day.
	CreateAttendance(ctx context.Context, attendeeID string, timestamp int64) (*Attendance, error)
	// ListAttendances returns events ordered by timestamp, optionally
	// bounded by a unix-second range (zero values omit the bound).
	ListAttendances(ctx context.Context, from, to int64) ([]Attendance, error)
	// CountByStatus returns per-status counts over the given range.
	CountByStatus(ctx context.Context, from, to int64) (map[string]int, error)
	ListStudents(ctx context.Context) ([]Student, error)
	AddStudent(ctx context.Context, s Student) error
	Close() error
}

// Attendance status values, classified from the event time of day.
const (
	StatusOnTime = "ON_TIME"
	StatusLate   = "LATE"
	StatusAbsent = "ABSENT"
)

// Class schedule boundaries. Check-ins before lateStart are on time,
// before classEnd late, afterwards counted as absent.
var (
	lateStart = 9*time.Hour + 15*time.Minute
	classEnd  = 10 * time.Hour
)

// ClassifyStatus derives the attendance status from the event timestamp,
// evaluated in UTC like the per-day uniqueness rule.
func ClassifyStatus(timestamp int64) string {
	t := time.Unix(timestamp, 0).UTC()
	sinceMidnight := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second

	switch {
	case sinceMidnight >= classEnd:
		return StatusAbsent
	case sinceMidnight >= lateStart:
		return StatusLate
	default:
		return StatusOnTime
	}
}

// utcDay returns the UTC calendar day of a unix timestamp as YYYY-MM-DD.
func utcDay(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format("2006-01-02")
}
