package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/store"
	"github.com/facegate/facegate/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance server",
	Long: `Starts the attendance server that kiosks talk to. It serves the
student roster, the reference images and the attendance log, and enforces
the one-record-per-student-per-day rule.

With DATABASE_URL set, records go to PostgreSQL; otherwise an in-memory
store is used, which is fine for demos and tests but forgets everything
on restart.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8000, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().String("seed", "", "YAML roster file to load on startup")
	serveCmd.Flags().String("images", "faces", "Directory reference face images are served from")
}

// openStore picks the storage backend based on DATABASE_URL.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set, using in-memory store")
		return store.NewMemory(), nil
	}

	fmt.Println("Connecting to PostgreSQL database...")
	pg, err := store.NewPostgres(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pg.Migrate(ctx); err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return pg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if seedPath := mustGetString(cmd, "seed"); seedPath != "" {
		n, err := store.Seed(ctx, s, seedPath)
		if err != nil {
			return fmt.Errorf("failed to seed roster: %w", err)
		}
		fmt.Printf("Seeded %d students from %s\n", n, seedPath)
	}

	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	imageDir := mustGetString(cmd, "images")

	server := web.NewServer(s, imageDir, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance server on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
