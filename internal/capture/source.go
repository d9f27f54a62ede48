// Package capture reads frames from a camera stream and prepares them for
// matching: every Nth frame is forwarded, downscaled to bound the embedding
// cost, and bounding boxes are mapped back to full-frame pixels.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrBadFrame marks a transient read failure: one frame could not be read or
// decoded. The sampler logs it and retries; it never terminates the loop.
var ErrBadFrame = errors.New("could not read frame")

// Source produces frames from a capture device in capture order.
type Source interface {
	// Read returns the next frame. An error wrapping ErrBadFrame is
	// transient; any other error means the source is done for good.
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// MJPEGSource reads frames from an MJPEG-over-HTTP camera stream
// (multipart/x-mixed-replace), the interface exposed by IP cameras and
// USB camera gateways.
type MJPEGSource struct {
	resp   *http.Response
	reader *multipart.Reader
}

// OpenMJPEG connects to the camera stream. A failure here is fatal for the
// kiosk: nothing downstream can work without frames.
func OpenMJPEG(ctx context.Context, url string) (*MJPEGSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	// No client timeout: the stream is long-lived. Cancellation comes from ctx.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not open camera stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("camera stream returned status %d", resp.StatusCode)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/x-mixed-replace" || params["boundary"] == "" {
		resp.Body.Close()
		return nil, fmt.Errorf("camera stream has unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	return &MJPEGSource{
		resp:   resp,
		reader: multipart.NewReader(resp.Body, params["boundary"]),
	}, nil
}

// Read returns the next decoded frame from the stream.
func (s *MJPEGSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	part, err := s.reader.NextPart()
	if err != nil {
		// The stream itself ended or broke; this is not a per-frame condition.
		return nil, fmt.Errorf("camera stream ended: %w", err)
	}
	defer part.Close()

	img, err := jpeg.Decode(part)
	if err != nil {
		io.Copy(io.Discard, part)
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}

	return img, nil
}

// Close tears down the stream connection.
func (s *MJPEGSource) Close() error {
	return s.resp.Body.Close()
}

// TickerSource wraps a Source and paces reads to at most one frame per
// interval, for demo file sources that would otherwise be consumed instantly.
type TickerSource struct {
	Source
	interval time.Duration
	last     time.Time
}

// NewTickerSource paces src to one frame per interval.
func NewTickerSource(src Source, interval time.Duration) *TickerSource {
	return &TickerSource{Source: src, interval: interval}
}

func (s *TickerSource) Read(ctx context.Context) (image.Image, error) {
	if wait := s.interval - time.Since(s.last); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.last = time.Now()
	return s.Source.Read(ctx)
}
