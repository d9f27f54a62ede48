// Package attendance decides, per recognized student, whether to submit an
// attendance event to the server. It keeps a non-durable set of students
// already handled today so a person lingering in view does not generate a
// network call on every frame. The server, not this set, enforces the
// one-record-per-day rule: losing the set on restart only costs one extra
// round trip that the server answers with a duplicate response.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/facegate/facegate/internal/ledger"
)

// Outcome is the result of one gate decision. Every submission attempt maps
// to exactly one of these; raw network errors never escape the gate.
type Outcome int

const (
	// Success means a new attendance event was created.
	Success Outcome = iota
	// AlreadyAttended means the student already has a record for today,
	// either locally (fast path) or per the server's duplicate response.
	// This is an expected steady state, not an error.
	AlreadyAttended
	// NetworkError means the submission failed for any other reason and
	// will be retried on a future recognition.
	NetworkError
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case AlreadyAttended:
		return "ALREADY_ATTENDED"
	case NetworkError:
		return "NETWORK_ERROR"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Submitter posts a candidate attendance event to the server.
type Submitter interface {
	Submit(ctx context.Context, attendeeID string, timestamp int64) (*ledger.AttendanceRecord, error)
}

// Gate tracks the sent set and turns recognitions into at most one durable
// attendance event per student per UTC day. It is owned by the capture loop
// and not safe for concurrent use.
type Gate struct {
	submitter Submitter
	now       func() time.Time

	sent map[string]bool
	day  string // UTC day the sent set belongs to
}

// NewGate creates a gate with an empty sent set.
func NewGate(submitter Submitter) *Gate {
	return &Gate{
		submitter: submitter,
		now:       time.Now,
		sent:      make(map[string]bool),
	}
}

// Check handles one recognition of attendeeID and reports the outcome.
//
// The sent set is cleared on the first call of a new UTC day, so a
// long-running kiosk does not suppress next-day submissions. On Success and
// AlreadyAttended the student is added to the set; on NetworkError it is
// not, so a later frame retries.
func (g *Gate) Check(ctx context.Context, attendeeID string) Outcome {
	now := g.now()
	day := now.UTC().Format("2006-01-02")
	if day != g.day {
		g.sent = make(map[string]bool)
		g.day = day
	}

	if g.sent[attendeeID] {
		return AlreadyAttended
	}

	_, err := g.submitter.Submit(ctx, attendeeID, now.Unix())
	switch {
	case err == nil:
		g.sent[attendeeID] = true
		fmt.Printf("[SUCCESS] attendance recorded for %s at %s\n", attendeeID, now.Format("15:04:05"))
		return Success
	case errors.Is(err, ledger.ErrDuplicateAttendance):
		g.sent[attendeeID] = true
		fmt.Printf("[WARNING] already recorded today for %s\n", attendeeID)
		return AlreadyAttended
	default:
		fmt.Fprintf(os.Stderr, "[ERROR] could not submit attendance for %s: %v\n", attendeeID, err)
		return NetworkError
	}
}

// Handled reports whether the student is in the sent set for the current day.
func (g *Gate) Handled(attendeeID string) bool {
	if g.now().UTC().Format("2006-01-02") != g.day {
		return false
	}
	return g.sent[attendeeID]
}
