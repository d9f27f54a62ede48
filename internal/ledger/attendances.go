package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// ErrDuplicateAttendance is returned by Submit when the server reports that
// the student already has a record for the current day. HTTP 400 is the sole
// signal for this condition; it is an expected outcome, not a failure.
var ErrDuplicateAttendance = errors.New("attendance already recorded for today")

// AttendanceRecord is one stored attendance event as returned by the server.
type AttendanceRecord struct {
	ID         string `json:"id"`
	AttendeeID string `json:"attendee_id"`
	Timestamp  int64  `json:"timestamp"`
	Status     string `json:"status,omitempty"` // ON_TIME, LATE or ABSENT
}

type submitRequest struct {
	AttendeeID string `json:"attendee_id"`
	Timestamp  int64  `json:"timestamp"`
}

// Submit posts a candidate attendance event for the given student. On a 2xx
// response it returns the stored record. On a 400 response it returns
// ErrDuplicateAttendance. Any other failure is returned as a plain error.
func (c *Client) Submit(ctx context.Context, attendeeID string, timestamp int64) (*AttendanceRecord, error) {
	body, err := json.Marshal(submitRequest{AttendeeID: attendeeID, Timestamp: timestamp})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL("attendances")+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateAttendance, readErrorBody(resp.Body))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("submission failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var record AttendanceRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &record, nil
}

// ListAttendances fetches stored attendance events, optionally bounded by a
// unix-second range. Zero values omit the corresponding bound.
func (c *Client) ListAttendances(ctx context.Context, from, to int64) ([]AttendanceRecord, error) {
	endpoint := "attendances/"
	query := ""
	if from > 0 {
		query = "from=" + strconv.FormatInt(from, 10)
	}
	if to > 0 {
		if query != "" {
			query += "&"
		}
		query += "to=" + strconv.FormatInt(to, 10)
	}
	if query != "" {
		endpoint += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolveURL(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, readErrorBody(resp.Body))
	}

	var records []AttendanceRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return records, nil
}
