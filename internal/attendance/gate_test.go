package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/facegate/facegate/internal/ledger"
)

// fakeSubmitter records submissions and returns canned results.
type fakeSubmitter struct {
	calls []string
	err   error
}

func (f *fakeSubmitter) Submit(ctx context.Context, attendeeID string, timestamp int64) (*ledger.AttendanceRecord, error) {
	f.calls = append(f.calls, attendeeID)
	if f.err != nil {
		return nil, f.err
	}
	return &ledger.AttendanceRecord{ID: "rec-1", AttendeeID: attendeeID, Timestamp: timestamp}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGate_FirstRecognitionSubmitsOnce(t *testing.T) {
	sub := &fakeSubmitter{}
	gate := NewGate(sub)

	if outcome := gate.Check(context.Background(), "65010001"); outcome != Success {
		t.Fatalf("expected SUCCESS, got %s", outcome)
	}

	if len(sub.calls) != 1 {
		t.Errorf("expected exactly one submission attempt, got %d", len(sub.calls))
	}

	if !gate.Handled("65010001") {
		t.Error("expected student in the sent set after success")
	}
}

func TestGate_FastPathSuppressesNetwork(t *testing.T) {
	sub := &fakeSubmitter{}
	gate := NewGate(sub)

	gate.Check(context.Background(), "65010001")

	// Same student seen again: zero additional network calls.
	for i := 0; i < 5; i++ {
		if outcome := gate.Check(context.Background(), "65010001"); outcome != AlreadyAttended {
			t.Fatalf("expected ALREADY_ATTENDED on fast path, got %s", outcome)
		}
	}

	if len(sub.calls) != 1 {
		t.Errorf("expected 1 submission total, got %d", len(sub.calls))
	}
}

func TestGate_DuplicateResponseJoinsSentSet(t *testing.T) {
	// Simulates a restart: the sent set is empty but the server already has
	// a record for today.
	sub := &fakeSubmitter{err: fmt.Errorf("%w: from server", ledger.ErrDuplicateAttendance)}
	gate := NewGate(sub)

	if outcome := gate.Check(context.Background(), "65010001"); outcome != AlreadyAttended {
		t.Fatalf("expected ALREADY_ATTENDED for duplicate response, got %s", outcome)
	}

	if !gate.Handled("65010001") {
		t.Error("expected student in the sent set immediately after a duplicate response")
	}

	// The next recognition must hit the fast path.
	gate.Check(context.Background(), "65010001")
	if len(sub.calls) != 1 {
		t.Errorf("expected 1 submission total, got %d", len(sub.calls))
	}
}

func TestGate_NetworkErrorRetriesLater(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("connection refused")}
	gate := NewGate(sub)

	if outcome := gate.Check(context.Background(), "65010001"); outcome != NetworkError {
		t.Fatalf("expected NETWORK_ERROR, got %s", outcome)
	}

	if gate.Handled("65010001") {
		t.Error("student must not join the sent set on a network error")
	}

	// Server recovers: the next recognition submits again and succeeds.
	sub.err = nil
	if outcome := gate.Check(context.Background(), "65010001"); outcome != Success {
		t.Fatalf("expected SUCCESS after recovery, got %s", outcome)
	}

	if len(sub.calls) != 2 {
		t.Errorf("expected 2 submission attempts, got %d", len(sub.calls))
	}
}

func TestGate_TimeoutIsNetworkError(t *testing.T) {
	sub := &fakeSubmitter{err: context.DeadlineExceeded}
	gate := NewGate(sub)

	if outcome := gate.Check(context.Background(), "65010001"); outcome != NetworkError {
		t.Fatalf("expected NETWORK_ERROR for timeout, got %s", outcome)
	}
}

func TestGate_DailyReset(t *testing.T) {
	sub := &fakeSubmitter{}
	gate := NewGate(sub)

	day1 := time.Date(2026, 3, 9, 23, 50, 0, 0, time.UTC)
	gate.now = fixedClock(day1)

	gate.Check(context.Background(), "65010001")
	if !gate.Handled("65010001") {
		t.Fatal("expected student handled on day one")
	}

	// Cross the UTC day boundary: the sent set is cleared and the next
	// recognition submits again.
	day2 := time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC)
	gate.now = fixedClock(day2)

	if gate.Handled("65010001") {
		t.Error("sent set must not survive the day boundary")
	}

	if outcome := gate.Check(context.Background(), "65010001"); outcome != Success {
		t.Fatalf("expected SUCCESS on the new day, got %s", outcome)
	}

	if len(sub.calls) != 2 {
		t.Errorf("expected 2 submissions across the boundary, got %d", len(sub.calls))
	}
}

func TestGate_DistinctStudentsIndependent(t *testing.T) {
	sub := &fakeSubmitter{}
	gate := NewGate(sub)

	gate.Check(context.Background(), "65010001")
	gate.Check(context.Background(), "65010002")

	if len(sub.calls) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(sub.calls))
	}

	if !gate.Handled("65010001") || !gate.Handled("65010002") {
		t.Error("expected both students in the sent set")
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{Success, "SUCCESS"},
		{AlreadyAttended, "ALREADY_ATTENDED"},
		{NetworkError, "NETWORK_ERROR"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.expected {
			t.Errorf("expected '%s', got '%s'", tt.expected, got)
		}
	}
}
