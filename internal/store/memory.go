package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Store for demos and tests. A single mutex spans
// the duplicate check and the insert, which makes CreateAttendance atomic.
type Memory struct {
	mu       sync.Mutex
	records  []Attendance
	byDay    map[string]bool // attendeeID + "|" + utcDay
	students []Student
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byDay: make(map[string]bool)}
}

func (m *Memory) CreateAttendance(ctx context.Context, attendeeID string, timestamp int64) (*Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := attendeeID + "|" + utcDay(timestamp)
	if m.byDay[key] {
		return nil, ErrDuplicateAttendance
	}

	record := Attendance{
		ID:         uuid.NewString(),
		AttendeeID: attendeeID,
		Timestamp:  timestamp,
		Status:     ClassifyStatus(timestamp),
	}
	m.byDay[key] = true
	m.records = append(m.records, record)

	return &record, nil
}

func (m *Memory) ListAttendances(ctx context.Context, from, to int64) ([]Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Attendance, 0, len(m.records))
	for _, r := range m.records {
		if from > 0 && r.Timestamp < from {
			continue
		}
		if to > 0 && r.Timestamp > to {
			continue
		}
		result = append(result, r)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp < result[j].Timestamp })
	return result, nil
}

func (m *Memory) CountByStatus(ctx context.Context, from, to int64) (map[string]int, error) {
	records, err := m.ListAttendances(ctx, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range records {
		counts[r.Status]++
	}
	return counts, nil
}

func (m *Memory) ListStudents(ctx context.Context) ([]Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]Student, len(m.students))
	copy(result, m.students)
	return result, nil
}

func (m *Memory) AddStudent(ctx context.Context, s Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.students {
		if m.students[i].StudentID == s.StudentID {
			m.students[i] = s
			return nil
		}
	}
	m.students = append(m.students, s)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
