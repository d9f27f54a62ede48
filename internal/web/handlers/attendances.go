package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/facegate/facegate/internal/store"
)

// AttendancesHandler records and lists attendance events.
type AttendancesHandler struct {
	store store.Store
}

// NewAttendancesHandler creates a new attendances handler.
func NewAttendancesHandler(s store.Store) *AttendancesHandler {
	return &AttendancesHandler{store: s}
}

// CreateAttendanceRequest is the submission body sent by kiosks.
type CreateAttendanceRequest struct {
	AttendeeID string `json:"attendee_id"`
	Timestamp  int64  `json:"timestamp"`
}

// Create records one attendance event. The store enforces the one-per-day
// rule atomically; a second submission for the same student and UTC day
// gets a 400 no matter how closely the two requests race.
func (h *AttendancesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, errInvalidRequestBody)
		return
	}

	if req.AttendeeID == "" {
		respondError(w, http.StatusUnprocessableEntity, "attendee_id is required")
		return
	}
	if req.Timestamp <= 0 {
		respondError(w, http.StatusUnprocessableEntity, "timestamp must be a positive unix timestamp")
		return
	}

	record, err := h.store.CreateAttendance(r.Context(), req.AttendeeID, req.Timestamp)
	if errors.Is(err, store.ErrDuplicateAttendance) {
		respondError(w, http.StatusBadRequest, "attendance already recorded for today")
		return
	}
	if err != nil {
		log.Printf("Failed to create attendance: %v", err)
		respondError(w, http.StatusInternalServerError, "could not record attendance")
		return
	}

	respondJSON(w, http.StatusCreated, record)
}

// List returns attendance records, optionally bounded by from/to unix seconds.
func (h *AttendancesHandler) List(w http.ResponseWriter, r *http.Request) {
	from, ok := queryInt64(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryInt64(w, r, "to")
	if !ok {
		return
	}

	records, err := h.store.ListAttendances(r.Context(), from, to)
	if err != nil {
		log.Printf("Failed to list attendances: %v", err)
		respondError(w, http.StatusInternalServerError, "could not list attendances")
		return
	}

	if records == nil {
		records = []store.Attendance{}
	}
	respondJSON(w, http.StatusOK, records)
}

// Counts returns per-status totals, optionally bounded by from/to unix seconds.
func (h *AttendancesHandler) Counts(w http.ResponseWriter, r *http.Request) {
	from, ok := queryInt64(w, r, "from")
	if !ok {
		return
	}
	to, ok := queryInt64(w, r, "to")
	if !ok {
		return
	}

	counts, err := h.store.CountByStatus(r.Context(), from, to)
	if err != nil {
		log.Printf("Failed to count attendances: %v", err)
		respondError(w, http.StatusInternalServerError, "could not count attendances")
		return
	}

	// Stable shape for the dashboard chart.
	respondJSON(w, http.StatusOK, map[string]int{
		store.StatusOnTime: counts[store.StatusOnTime],
		store.StatusLate:   counts[store.StatusLate],
		store.StatusAbsent: counts[store.StatusAbsent],
	})
}

// queryInt64 parses an optional integer query parameter. On a malformed
// value it writes a 422 and returns ok=false.
func queryInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, name+" must be a unix timestamp")
		return 0, false
	}
	return v, true
}
