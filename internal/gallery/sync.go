// Package gallery maintains the local cache of reference images and the
// in-memory embedding gallery built from it.
package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/facegate/facegate/internal/ledger"
)

// StudentInfo is display metadata for one enrolled student.
type StudentInfo struct {
	FirstName string
	LastName  string
}

// RosterSource provides the student roster and reference image downloads.
type RosterSource interface {
	ListStudents(ctx context.Context) ([]ledger.Student, error)
	DownloadImage(ctx context.Context, imageURL, destPath string) error
}

// Sync fetches the roster and downloads reference images that are not yet
// cached locally. Existing files are never overwritten, so re-running only
// performs missing downloads.
//
// If the roster cannot be fetched, Sync returns an empty map together with
// the error; the caller may proceed with whatever local cache exists. A
// failing download for one student never aborts the rest.
func Sync(ctx context.Context, src RosterSource, faceDir string) (map[string]StudentInfo, error) {
	if err := os.MkdirAll(faceDir, 0750); err != nil {
		return nil, fmt.Errorf("could not create face directory: %w", err)
	}

	students, err := src.ListStudents(ctx)
	if err != nil {
		return map[string]StudentInfo{}, fmt.Errorf("could not fetch roster: %w", err)
	}

	info := make(map[string]StudentInfo, len(students))
	for _, student := range students {
		if student.StudentID == "" || student.ImageURL == "" {
			continue
		}

		info[student.StudentID] = StudentInfo{
			FirstName: student.FirstName,
			LastName:  student.LastName,
		}

		fileName, err := ledger.ImageFileName(student.ImageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping image for %s: %v\n", student.StudentID, err)
			continue
		}

		destPath := filepath.Join(faceDir, fileName)
		if _, err := os.Stat(destPath); err == nil {
			continue // already cached
		}

		fmt.Printf("new student %s, downloading reference image...\n", student.StudentID)
		if err := src.DownloadImage(ctx, student.ImageURL, destPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not download image for %s: %v\n", student.StudentID, err)
			continue
		}
	}

	return info, nil
}
