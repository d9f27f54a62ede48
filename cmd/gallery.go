package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Build the embedding gallery and show what got enrolled",
	Long: `Syncs the roster, runs every cached reference image through the
embedding service and prints the resulting gallery. Useful to verify
enrollment before putting a kiosk in front of people.`,
	RunE: runGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)

	galleryCmd.Flags().Bool("offline", false, "Skip the roster sync, use only the local image cache")
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := cmd.Context()

	names := map[string]gallery.StudentInfo{}
	if !mustGetBool(cmd, "offline") {
		names = syncRoster(ctx, cfg)
	}

	ids := make([]string, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}

	emb := embedder.New(cfg.Embedding.URL)
	g, err := gallery.Build(ctx, emb, cfg.Server.FaceDir, gallery.BuildOptions{
		IDs:          ids,
		ShowProgress: true,
	})
	if err != nil {
		return fmt.Errorf("failed to build gallery: %w", err)
	}

	fmt.Printf("Gallery: %d reference embeddings\n", g.Len())
	for i, id := range g.IDs {
		fmt.Printf("  %s  %s  (%d dims)\n", id, gallery.DisplayName(id, names), len(g.Embeddings[i]))
	}

	return nil
}
