// Package matcher compares face observations from sampled frames against
// the reference embedding gallery.
package matcher

import (
	"context"
	"fmt"

	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
)

// FaceEmbedder extracts faces and their embeddings from an image.
type FaceEmbedder interface {
	DetectFaces(ctx context.Context, imageData []byte) (*embedder.FaceResponse, error)
}

// Match is the result of comparing one observation against the gallery.
// AttendeeID is empty when no reference embedding is within tolerance.
type Match struct {
	AttendeeID string
	Distance   float64
	BBox       []float64 // [x1, y1, x2, y2] in pixels of the submitted frame
}

// Known reports whether the observation matched an enrolled student.
func (m Match) Known() bool {
	return m.AttendeeID != ""
}

// Matcher extracts observations from frames and classifies them.
type Matcher struct {
	emb       FaceEmbedder
	gallery   *gallery.Gallery
	tolerance float64
}

// New creates a matcher over the given gallery. The tolerance is a single
// scalar for the whole gallery; there are no per-student thresholds.
func New(emb FaceEmbedder, g *gallery.Gallery, tolerance float64) *Matcher {
	return &Matcher{emb: emb, gallery: g, tolerance: tolerance}
}

// MatchFrame extracts all observations from one (downsampled) frame and
// returns a match result per observation, in detection order.
func (m *Matcher) MatchFrame(ctx context.Context, frameData []byte) ([]Match, error) {
	resp, err := m.emb.DetectFaces(ctx, frameData)
	if err != nil {
		return nil, fmt.Errorf("could not extract faces: %w", err)
	}

	matches := make([]Match, 0, len(resp.Faces))
	for _, face := range resp.Faces {
		id, dist := Classify(face.Embedding, m.gallery, m.tolerance)
		matches = append(matches, Match{AttendeeID: id, Distance: dist, BBox: face.BBox})
	}

	return matches, nil
}

// Classify scans the gallery in build order and returns the first entry
// whose distance is strictly below tolerance. A distance exactly equal to
// the tolerance does not match. This is deliberately a linear first-match
// scan, not a nearest-neighbor search: when several entries are within
// tolerance, the earliest one in gallery order wins. For an unknown
// observation the returned distance is the smallest one seen.
func Classify(embedding []float32, g *gallery.Gallery, tolerance float64) (string, float64) {
	best := EuclideanDistance(nil, nil) // +Inf
	for i, ref := range g.Embeddings {
		d := EuclideanDistance(embedding, ref)
		if d < tolerance {
			return g.IDs[i], d
		}
		if d < best {
			best = d
		}
	}
	return "", best
}
