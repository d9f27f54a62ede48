package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
)

// FileSource replays a fixed sequence of image files as frames. Used by the
// demo mode and tests; the sequence is not restartable, matching the
// non-restartable contract of a live stream.
type FileSource struct {
	paths []string
	idx   int
}

// NewFileSource creates a source over the given image files.
func NewFileSource(paths []string) *FileSource {
	return &FileSource{paths: paths}
}

func (s *FileSource) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if s.idx >= len(s.paths) {
		return nil, io.EOF
	}

	path := s.paths[s.idx]
	s.idx++

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadFrame, path, err)
	}

	return img, nil
}

func (s *FileSource) Close() error {
	return nil
}
