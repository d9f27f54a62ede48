package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/facegate/facegate/internal/attendance"
	"github.com/facegate/facegate/internal/capture"
	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/gallery"
	"github.com/facegate/facegate/internal/kiosk"
	"github.com/facegate/facegate/internal/ledger"
	"github.com/facegate/facegate/internal/matcher"
)

var runCmd = &cobra.Command{
	Use:   "run [image files...]",
	Short: "Start the attendance kiosk",
	Long: `Starts the check-in loop: sync the roster, build the embedding
gallery, then watch the camera stream and record attendance for every
recognized student.

With image file arguments the camera is replaced by those files, which is
handy for smoke-testing a deployment without a live stream.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("background", false, "Run the capture loop on a worker goroutine and print status updates")
	runCmd.Flags().Duration("interval", 0, "Minimum delay between frame reads (0 = as fast as the source delivers)")
}

// openSource picks the frame source: image files when given, otherwise the
// configured camera stream. A kiosk without a working source is useless, so
// failing to open the camera is fatal rather than retried.
func openSource(ctx context.Context, cfg *config.Config, args []string, interval time.Duration) (capture.Source, error) {
	var src capture.Source
	if len(args) > 0 {
		src = capture.NewFileSource(args)
	} else {
		if cfg.Camera.URL == "" {
			return nil, errors.New("FACEGATE_CAMERA_URL environment variable is required (or pass image files)")
		}
		mjpeg, err := capture.OpenMJPEG(ctx, cfg.Camera.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open camera stream: %w", err)
		}
		src = mjpeg
	}

	if interval > 0 {
		src = capture.NewTickerSource(src, interval)
	}
	return src, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	names := syncRoster(ctx, cfg)

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
	fmt.Printf("Gallery ready with %d reference embeddings\n", g.Len())

	submitClient, err := ledger.New(cfg.Server.URL, cfg.Server.SubmitTimeout)
	if err != nil {
		return fmt.Errorf("failed to create server client: %w", err)
	}

	src, err := openSource(ctx, cfg, args, mustGetDuration(cmd, "interval"))
	if err != nil {
		return err
	}
	defer src.Close()

	sampler := capture.NewSampler(src, cfg.Camera.SkipRate, cfg.Camera.Downscale)
	m := matcher.New(emb, g, cfg.Match.Tolerance)
	gate := attendance.NewGate(submitClient)
	k := kiosk.New(sampler, m, gate, g, names)

	fmt.Println("Kiosk running. Press Ctrl+C to stop")

	if mustGetBool(cmd, "background") {
		return runWorker(ctx, k)
	}
	return k.Run(ctx)
}

// runWorker is the deployment variant with the capture loop on a worker
// goroutine. The main goroutine plays the role of a display: it polls the
// published snapshot and prints feedback transitions.
func runWorker(ctx context.Context, k *kiosk.Kiosk) error {
	done := k.RunBackground(ctx)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastFeedback := ""
	for {
		select {
		case err := <-done:
			return err
		case <-ticker.C:
			status := k.Status()
			if status.Feedback != lastFeedback && status.Feedback != "" {
				fmt.Printf("[%s] %s\n", status.FeedbackLevel, status.Feedback)
			}
			lastFeedback = status.Feedback
		}
	}
}
