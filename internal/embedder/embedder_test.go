package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("expected path '/embed/face', got '%s'", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("expected multipart request, got '%s'", r.Header.Get("Content-Type"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(FaceResponse{
			FacesCount: 1,
			Faces: []Face{
				{
					FaceIndex: 0,
					Dim:       4,
					Embedding: []float32{0.1, 0.2, 0.3, 0.4},
					BBox:      []float64{10, 20, 50, 60},
					DetScore:  0.99,
				},
			},
			Model: "buffalo_l",
		})
	}))
	defer server.Close()

	client := New(server.URL)

	resp, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.FacesCount != 1 {
		t.Errorf("expected 1 face, got %d", resp.FacesCount)
	}

	if len(resp.Faces[0].Embedding) != 4 {
		t.Errorf("expected embedding of length 4, got %d", len(resp.Faces[0].Embedding))
	}

	if resp.Faces[0].BBox[2] != 50 {
		t.Errorf("expected bbox x2 50, got %f", resp.Faces[0].BBox[2])
	}
}

func TestDetectFaces_NoFaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(FaceResponse{FacesCount: 0, Faces: []Face{}})
	}))
	defer server.Close()

	client := New(server.URL)

	resp, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.FacesCount != 0 || len(resp.Faces) != 0 {
		t.Errorf("expected zero faces, got %d", resp.FacesCount)
	}
}

func TestDetectFaces_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)

	_, err := client.DetectFaces(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0})
	if err == nil {
		t.Fatal("expected error for server failure")
	}

	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status 500 in error, got '%v'", err)
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"too short", []byte{0xFF, 0xD8}, "application/octet-stream"},
		{"unknown", []byte{0, 1, 2, 3, 4, 5, 6, 7}, "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectMIMEType(tt.data); got != tt.expected {
				t.Errorf("expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}
