// Package kiosk runs the check-in loop: sample a frame, match it against the
// gallery, gate recognized students through the attendance server, publish a
// status snapshot for display.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/facegate/facegate/internal/attendance"
	"github.com/facegate/facegate/internal/capture"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/matcher"
)

// feedbackDuration is how long a feedback banner stays on screen after the
// event that produced it.
const feedbackDuration = 3 * time.Second

// FeedbackLevel classifies a feedback message for display.
type FeedbackLevel string

const (
	FeedbackSuccess FeedbackLevel = "success"
	FeedbackWarning FeedbackLevel = "warning"
	FeedbackError   FeedbackLevel = "error"
)

// Status is an immutable snapshot of the kiosk state. The worker publishes a
// fresh value each cycle; readers poll the latest one and tolerate a stale
// read of at most one polling interval.
type Status struct {
	Running       bool
	GallerySize   int
	Feedback      string
	FeedbackLevel FeedbackLevel
	Faces         [][]float64 // full-frame pixel boxes from the last processed frame
	UpdatedAt     time.Time
}

// Kiosk owns the capture loop state. All mutation happens on the loop
// goroutine; the only cross-goroutine traffic is the published Status.
type Kiosk struct {
	sampler *capture.Sampler
	matcher *matcher.Matcher
	gate    *attendance.Gate
	names   map[string]gallery.StudentInfo

	gallerySize int
	now         func() time.Time
	feedbackFor time.Duration

	status atomic.Pointer[Status]

	feedback      string
	feedbackLevel FeedbackLevel
	feedbackAt    time.Time
}

// New assembles a kiosk. names maps identities to display metadata for
// feedback banners; it may be empty on a degraded start.
func New(sampler *capture.Sampler, m *matcher.Matcher, gate *attendance.Gate, g *gallery.Gallery, names map[string]gallery.StudentInfo) *Kiosk {
	k := &Kiosk{
		sampler:     sampler,
		matcher:     m,
		gate:        gate,
		names:       names,
		gallerySize: g.Len(),
		now:         time.Now,
		feedbackFor: feedbackDuration,
	}
	k.publish(false, nil)
	return k
}

// Status returns the latest published snapshot.
func (k *Kiosk) Status() *Status {
	return k.status.Load()
}

// Run executes the capture loop until the context is cancelled or the frame
// source is done for good. Frames are processed strictly in capture order;
// there is no queue, so under overload frames are dropped by the sampler,
// never buffered.
func (k *Kiosk) Run(ctx context.Context) error {
	defer k.publish(false, nil)

	for {
		frame, err := k.sampler.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("capture loop stopped: %w", err)
		}

		faces := k.processFrame(ctx, frame)
		k.publish(true, faces)
	}
}

// RunBackground runs the loop on a dedicated goroutine, the deployment
// variant where a lightweight UI polls Status while the worker captures.
// The returned channel yields the loop's result exactly once.
func (k *Kiosk) RunBackground(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- k.Run(ctx)
	}()
	return done
}

// processFrame matches one sampled frame and gates every recognized student.
// Returns the full-frame pixel boxes of all observations.
func (k *Kiosk) processFrame(ctx context.Context, frame *capture.Frame) [][]float64 {
	data, err := frame.JPEG()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}

	matches, err := k.matcher.MatchFrame(ctx, data)
	if err != nil {
		// Embedding service hiccup: transient, try again on the next frame.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return nil
	}

	faces := make([][]float64, 0, len(matches))
	for _, match := range matches {
		faces = append(faces, capture.RescaleBBox(match.BBox, frame.Scale))

		if !match.Known() {
			k.setFeedback("Unknown Face Detected", FeedbackError)
			continue
		}

		switch k.gate.Check(ctx, match.AttendeeID) {
		case attendance.Success:
			name := gallery.DisplayName(match.AttendeeID, k.names)
			k.setFeedback("Check-in Success: "+name, FeedbackSuccess)
		case attendance.AlreadyAttended:
			k.setFeedback("Already Checked In Today", FeedbackWarning)
		case attendance.NetworkError:
			k.setFeedback("Could Not Reach Server", FeedbackError)
		}
	}

	return faces
}

func (k *Kiosk) setFeedback(message string, level FeedbackLevel) {
	k.feedback = message
	k.feedbackLevel = level
	k.feedbackAt = k.now()
}

// publish stores a fresh immutable snapshot. Expired feedback is cleared
// here so a banner disappears even when nothing new happens.
func (k *Kiosk) publish(running bool, faces [][]float64) {
	feedback, level := k.feedback, k.feedbackLevel
	if k.feedback != "" && k.now().Sub(k.feedbackAt) >= k.feedbackFor {
		feedback, level = "", ""
	}

	k.status.Store(&Status{
		Running:       running,
		GallerySize:   k.gallerySize,
		Feedback:      feedback,
		FeedbackLevel: level,
		Faces:         faces,
		UpdatedAt:     k.now(),
	})
}
