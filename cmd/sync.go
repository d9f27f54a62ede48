package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/ledger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download reference images for newly enrolled students",
	Long: `Fetches the student roster from the attendance server and downloads
reference images that are not yet in the local face directory. Existing
images are never overwritten, so running sync repeatedly is cheap.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	client, err := ledger.New(cfg.Server.URL, cfg.Server.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create server client: %w", err)
	}

	info, err := gallery.Sync(cmd.Context(), client, cfg.Server.FaceDir)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Roster: %d students, images cached in %s\n", len(info), cfg.Server.FaceDir)
	return nil
}

// syncRoster is the shared degraded-start sync used by run and gallery: a
// roster failure is reported but never fatal, the local cache still works.
func syncRoster(ctx context.Context, cfg *config.Config) map[string]gallery.StudentInfo {
	client, err := ledger.New(cfg.Server.URL, cfg.Server.RequestTimeout)
	if err != nil {
		fmt.Printf("Warning: invalid server URL, starting with local cache only: %v\n", err)
		return map[string]gallery.StudentInfo{}
	}

	info, err := gallery.Sync(ctx, client, cfg.Server.FaceDir)
	if err != nil {
		fmt.Printf("Warning: could not sync roster, starting with local cache only: %v\n", err)
	}
	return info
}
