package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/facegate/facegate/internal/embedder"
)

// FaceEmbedder extracts faces and their embeddings from an image.
type FaceEmbedder interface {
	DetectFaces(ctx context.Context, imageData []byte) (*embedder.FaceResponse, error)
}

// Gallery holds the reference embeddings as parallel slices. The slice order
// is the build order and is the tie-break order for matching: the first
// entry within tolerance wins, not the closest. Immutable after Build.
type Gallery struct {
	IDs        []string
	Embeddings [][]float32
}

// Len returns the number of enrolled reference embeddings.
func (g *Gallery) Len() int {
	return len(g.IDs)
}

// BuildOptions controls the gallery build.
type BuildOptions struct {
	// IDs restricts the build to these identities. When empty, identities
	// are derived from the cached file names instead, so a degraded start
	// without a roster can still use the existing local cache.
	IDs          []string
	ShowProgress bool
}

// Build extracts one reference embedding per student from the local image
// cache. For each identity the first file whose name has the identity as
// prefix is used, and the first detected face in it. Images yielding no face
// are skipped with a warning. The resulting order is sorted by identity so
// matching is reproducible across runs.
func Build(ctx context.Context, emb FaceEmbedder, faceDir string, opts BuildOptions) (*Gallery, error) {
	entries, err := os.ReadDir(faceDir)
	if err != nil {
		return nil, fmt.Errorf("could not read face directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	ids := opts.IDs
	if len(ids) == 0 {
		ids = idsFromFiles(files)
	}
	sort.Strings(ids)

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(ids)), "loading faces")
	}

	g := &Gallery{}
	for _, id := range ids {
		if bar != nil {
			bar.Add(1)
		}

		fileName := findImage(files, id)
		if fileName == "" {
			fmt.Fprintf(os.Stderr, "warning: no cached image for %s\n", id)
			continue
		}

		imageData, err := os.ReadFile(filepath.Join(faceDir, fileName))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", fileName, err)
			continue
		}

		resp, err := emb.DetectFaces(ctx, imageData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not process %s: %v\n", fileName, err)
			continue
		}

		if len(resp.Faces) == 0 {
			fmt.Fprintf(os.Stderr, "warning: no face found in %s\n", fileName)
			continue
		}

		g.IDs = append(g.IDs, id)
		g.Embeddings = append(g.Embeddings, resp.Faces[0].Embedding)
	}

	return g, nil
}

// findImage returns the first file (in sorted order) whose name has the
// identity as prefix, or "" when none exists.
func findImage(sortedFiles []string, id string) string {
	for _, name := range sortedFiles {
		if strings.HasPrefix(name, id) {
			return name
		}
	}
	return ""
}

// idsFromFiles derives identities from cached file names, the part before
// the first dot (e.g. "65010001.jpg" -> "65010001").
func idsFromFiles(files []string) []string {
	seen := make(map[string]bool, len(files))
	ids := make([]string, 0, len(files))
	for _, name := range files {
		id, _, _ := strings.Cut(name, ".")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
