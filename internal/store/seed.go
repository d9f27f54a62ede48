package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Students []Student `yaml:"students"`
}

// Seed loads a YAML roster file into the store. Used by the serve command
// to bootstrap a demo server without an enrollment UI.
//
//	students:
//	  - student_id: "65010001"
//	    first_name: Somchai
//	    image_file: 65010001.jpg
func Seed(ctx context.Context, s Store, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("could not read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("could not parse seed file: %w", err)
	}

	for _, student := range seed.Students {
		if student.StudentID == "" {
			return 0, fmt.Errorf("seed file contains a student without student_id")
		}
		if err := s.AddStudent(ctx, student); err != nil {
			return 0, fmt.Errorf("could not add student %s: %w", student.StudentID, err)
		}
	}

	return len(seed.Students), nil
}
