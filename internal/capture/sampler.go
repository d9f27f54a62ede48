package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"time"

	"golang.org/x/image/draw"
)

// Frame is one sampled, downscaled frame ready for matching. Scale is the
// factor that was applied; divide matched box coordinates by it to get back
// to full-frame pixels.
type Frame struct {
	Image    image.Image
	Scale    float64
	FullSize image.Point // dimensions of the original frame
}

// JPEG encodes the downscaled frame for the embedding service.
func (f *Frame) JPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("could not encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// RescaleBBox maps a bounding box from downscaled-frame pixels back to
// full-frame pixels.
func RescaleBBox(bbox []float64, scale float64) []float64 {
	if len(bbox) != 4 || scale <= 0 {
		return bbox
	}
	return []float64{bbox[0] / scale, bbox[1] / scale, bbox[2] / scale, bbox[3] / scale}
}

// Sampler pulls frames from a source at the source's native rate and
// forwards every Nth one, downscaled. Frames in between are dropped, never
// queued, so memory stays bounded under overload.
type Sampler struct {
	src        Source
	skipRate   int
	scale      float64
	retryDelay time.Duration

	count int
}

// NewSampler wraps src. Every skipRate-th frame is forwarded, downscaled by
// scale (0 < scale <= 1).
func NewSampler(src Source, skipRate int, scale float64) *Sampler {
	if skipRate < 1 {
		skipRate = 1
	}
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	return &Sampler{
		src:        src,
		skipRate:   skipRate,
		scale:      scale,
		retryDelay: time.Second,
	}
}

// Next blocks until the next sampled frame is available. Transient read
// failures are logged and retried after a short delay; Next only returns an
// error when the context is cancelled or the source is done for good.
func (s *Sampler) Next(ctx context.Context) (*Frame, error) {
	for {
		img, err := s.src.Read(ctx)
		if err != nil {
			if errors.Is(err, ErrBadFrame) {
				fmt.Fprintf(os.Stderr, "warning: %v, retrying...\n", err)
				select {
				case <-time.After(s.retryDelay):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return nil, err
		}

		s.count++
		if s.count%s.skipRate != 0 {
			continue
		}

		return s.downscale(img), nil
	}
}

func (s *Sampler) downscale(img image.Image) *Frame {
	bounds := img.Bounds()
	full := image.Pt(bounds.Dx(), bounds.Dy())

	if s.scale == 1 {
		return &Frame{Image: img, Scale: 1, FullSize: full}
	}

	w := int(float64(full.X) * s.scale)
	h := int(float64(full.Y) * s.scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), img, bounds, draw.Over, nil)

	return &Frame{Image: small, Scale: s.scale, FullSize: full}
}

// Close closes the underlying source.
func (s *Sampler) Close() error {
	return s.src.Close()
}
