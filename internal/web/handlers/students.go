package handlers

import (
	"log"
	"net/http"

	"github.com/facegate/facegate/internal/store"
)

// StudentsHandler serves the enrollment roster.
type StudentsHandler struct {
	store store.Store
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(s store.Store) *StudentsHandler {
	return &StudentsHandler{store: s}
}

// StudentResponse is one roster entry. The image URL points back at this
// server's /images/ route so kiosks can download reference faces from the
// same host they got the roster from.
type StudentResponse struct {
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// List returns all enrolled students.
func (h *StudentsHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.store.ListStudents(r.Context())
	if err != nil {
		log.Printf("Failed to list students: %v", err)
		respondError(w, http.StatusInternalServerError, "could not list students")
		return
	}

	response := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		entry := StudentResponse{
			StudentID: s.StudentID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
		}
		if s.ImageFile != "" {
			entry.ImageURL = "/images/" + s.ImageFile
		}
		response = append(response, entry)
	}

	respondJSON(w, http.StatusOK, response)
}
