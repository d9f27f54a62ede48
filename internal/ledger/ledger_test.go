package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(url, 2*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestListStudents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/students/" {
			t.Errorf("expected path '/students/', got '%s'", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Student{
			{StudentID: "65010001", FirstName: "Somchai", LastName: "J.", ImageURL: "/images/65010001.jpg"},
			{StudentID: "65010002", FirstName: "Ploy", LastName: "K.", ImageURL: "/images/65010002.jpg"},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	students, err := client.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}

	if students[0].StudentID != "65010001" {
		t.Errorf("expected student_id '65010001', got '%s'", students[0].StudentID)
	}

	if students[0].FirstName != "Somchai" {
		t.Errorf("expected first_name 'Somchai', got '%s'", students[0].FirstName)
	}
}

func TestListStudents_ServerDown(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1") // nothing listens here

	_, err := client.ListStudents(context.Background())
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestDownloadImage(t *testing.T) {
	imageData := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/65010001.jpg" {
			t.Errorf("expected path '/images/65010001.jpg', got '%s'", r.URL.Path)
		}
		w.Write(imageData)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	dest := filepath.Join(t.TempDir(), "65010001.jpg")
	// Absolute URL on a different host: only the path must be used.
	if err := client.DownloadImage(context.Background(), "http://internal-host/images/65010001.jpg", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if len(got) != len(imageData) {
		t.Errorf("expected %d bytes, got %d", len(imageData), len(got))
	}
}

func TestDownloadImage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	dest := filepath.Join(t.TempDir(), "missing.jpg")
	err := client.DownloadImage(context.Background(), "/images/missing.jpg", dest)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("expected no file to be left behind after failed download")
	}
}

func TestSubmit_Created(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/attendances/" {
			t.Errorf("expected path '/attendances/', got '%s'", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req["attendee_id"] != "65010001" {
			t.Errorf("expected attendee_id '65010001', got '%v'", req["attendee_id"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(AttendanceRecord{
			ID:         "rec-1",
			AttendeeID: "65010001",
			Timestamp:  int64(req["timestamp"].(float64)),
			Status:     "ON_TIME",
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	record, err := client.Submit(context.Background(), "65010001", 1700000000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.AttendeeID != "65010001" {
		t.Errorf("expected attendee_id '65010001', got '%s'", record.AttendeeID)
	}

	if record.Status != "ON_TIME" {
		t.Errorf("expected status 'ON_TIME', got '%s'", record.Status)
	}
}

func TestSubmit_Duplicate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "attendance already recorded for today"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), "65010001", 1700000000)
	if !errors.Is(err, ErrDuplicateAttendance) {
		t.Fatalf("expected ErrDuplicateAttendance, got %v", err)
	}
}

func TestSubmit_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Submit(context.Background(), "65010001", 1700000000)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if errors.Is(err, ErrDuplicateAttendance) {
		t.Error("500 must not be treated as a duplicate")
	}
}

func TestListAttendances_RangeQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") != "1700000000" {
			t.Errorf("expected from=1700000000, got '%s'", r.URL.Query().Get("from"))
		}
		if r.URL.Query().Get("to") != "1700086400" {
			t.Errorf("expected to=1700086400, got '%s'", r.URL.Query().Get("to"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]AttendanceRecord{
			{ID: "rec-1", AttendeeID: "65010001", Timestamp: 1700000100},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	records, err := client.ListAttendances(context.Background(), 1700000000, 1700086400)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestImageFileName(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{"relative path", "/images/65010001.jpg", "65010001.jpg", false},
		{"absolute url", "http://host/images/65010002.png", "65010002.png", false},
		{"no file", "http://host/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageFileName(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for '%s'", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
