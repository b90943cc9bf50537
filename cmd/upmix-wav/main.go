// Command upmix-wav converts stereo audio files to multichannel WAV.
//
// Usage:
//
//	upmix-wav -mode surround51 input.wav output.wav
//	upmix-wav -mode surround71 -workers 4 input.mp3 output.wav
//	upmix-wav -config profile.yaml input.ogg output.wav
//	upmix-wav -mode surround51-fast -metrics :9090 input.wav output.wav
//
// Input format is selected by extension (.wav, .mp3, .ogg); the decoded
// stream is collapsed to stereo and adapted to 44.1kHz before synthesis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	upmixer "github.com/tphakala/go-audio-upmixer"
	"github.com/tphakala/go-audio-upmixer/internal/observe"
)

const (
	minRequiredArgs = 2

	// Progress lines are throttled to every N percent.
	progressInterval = 10

	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 2 * time.Second
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	mode := flag.String("mode", "", "Output mode: binaural, surround51, surround51-immersive, surround71, surround51-fast")
	workers := flag.Int("workers", 0, "Parallel workers per chunk (default 2)")
	chunk := flag.Int("chunk", 0, "Frames per scheduling chunk (default 4096)")
	bits := flag.Int("bits", 0, "Output bit depth: 16, 24 or 32 (default 16)")
	gain := flag.Float64("gain", 0, "Output gain before clamping (default 1.0)")
	configPath := flag.String("config", "", "YAML conversion profile (flags override profile values)")
	metricsAddr := flag.String("metrics", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Verbose output")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.{wav,mp3,ogg} output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -mode surround51 song.wav song_51.wav      # Stereo to 5.1\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode surround71 -workers 4 song.mp3 out.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -mode binaural podcast.ogg wide.wav        # Widened stereo\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	profile, err := resolveProfile(*configPath, flagOverrides{
		mode:    *mode,
		workers: *workers,
		chunk:   *chunk,
		bits:    *bits,
		gain:    *gain,
	})
	if err != nil {
		return err
	}
	if *metricsAddr != "" {
		profile.MetricsAddr = *metricsAddr
	}

	setupLogging(profile.LogLevel, *verbose)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	inputPath := args[0]
	outputPath := args[1]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if profile.MetricsAddr != "" {
		shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
			ServiceName:    "upmix-wav",
			ServiceVersion: version,
		})
		if err != nil {
			return fmt.Errorf("metrics init failed: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			_ = shutdown(sctx)
		}()
		serveMetrics(ctx, g, profile.MetricsAddr)
	}

	cfg := converterConfig(profile)
	cfg.Progress = progressPrinter(*verbose)

	conv, err := upmixer.New(cfg)
	if err != nil {
		return err
	}

	slog.Info("starting conversion",
		"input", inputPath,
		"output", outputPath,
		"mode", cfg.Mode.String(),
		"workers", cfg.Workers,
		"chunk_frames", cfg.ChunkFrames,
		"bit_depth", cfg.BitDepth)

	start := time.Now()
	var result *upmixer.ProcessResult
	g.Go(func() error {
		var cerr error
		result, cerr = conv.ConvertFile(ctx, inputPath, outputPath)
		stop() // release the metrics server once the conversion ends
		return cerr
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("conversion interrupted")
		}
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Upmixed %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  mode %s: 2 channels -> %d channels (%d-bit, %d Hz)\n",
		result.Mode, result.ChannelCount, cfg.BitDepth, result.SampleRate)
	fmt.Printf("  %d frames written\n", result.Frames)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(result.Frames)/float64(result.SampleRate)/elapsed.Seconds())

	return nil
}

// serveMetrics starts the Prometheus scrape endpoint and ties its lifetime
// to ctx.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	g.Go(func() error {
		slog.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

// progressPrinter returns a callback that prints throttled progress lines.
// Verbose mode prints every callback including stage changes.
func progressPrinter(verbose bool) upmixer.ProgressFunc {
	lastPrinted := -progressInterval
	return func(percent int, stage string) {
		if verbose {
			log.Printf("  %3d%% %s", percent, stage)
			return
		}
		if percent >= lastPrinted+progressInterval || percent == 100 {
			fmt.Printf("  %d%%\n", percent)
			lastPrinted = percent
		}
	}
}
