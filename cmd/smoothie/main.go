// Package main is the entry point for smoothie.
// smoothie opens a page in Chrome and smoothly scrolls it to a target.
//
// Usage:
//
//	smoothie <url> <target> [adjust]
//
// target is a pixel offset, "top", "bottom" or a CSS selector. adjust is
// added to the resolved offset. Configuration comes from environment
// variables, see internal/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Rorqualx/smoothie-go/internal/browser"
	"github.com/Rorqualx/smoothie-go/internal/config"
	"github.com/Rorqualx/smoothie-go/internal/driver"
	"github.com/Rorqualx/smoothie-go/internal/easing"
	"github.com/Rorqualx/smoothie-go/internal/metrics"
	"github.com/Rorqualx/smoothie-go/internal/page"
	"github.com/Rorqualx/smoothie-go/internal/scroller"
	"github.com/Rorqualx/smoothie-go/internal/target"
	"github.com/Rorqualx/smoothie-go/internal/tui"
	"github.com/Rorqualx/smoothie-go/pkg/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// request is a parsed command line.
type request struct {
	url    string
	target target.Target
	adjust float64
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Load configuration
	cfg := config.Load()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))

	// Setup logging. The progress view owns stdout when it is a terminal.
	if interactive {
		setupLogging(cfg.LogLevel, os.Stderr)
	} else {
		setupLogging(cfg.LogLevel, os.Stdout)
	}

	// Validate configuration
	cfg.Validate()

	req, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smoothie: %v\n\nusage: smoothie <url> <target> [adjust]\n", err)
		return exitUsage
	}

	if !interactive {
		printBanner()
	}

	// Easing registry
	registry := easing.Default()
	if cfg.EasingPath != "" {
		registry, err = easing.NewRegistryWithFile(cfg.EasingPath, cfg.EasingHotReload)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize easing registry")
			return exitFailure
		}
		defer registry.Close()
	}
	if !registry.Has(cfg.DefaultEasing) {
		log.Warn().
			Str("easing", cfg.DefaultEasing).
			Strs("available", registry.Names()).
			Msg("Unknown default easing, using linear")
		cfg.DefaultEasing = easing.Linear
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Browser
	b, err := browser.Launch(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to launch browser")
		return exitFailure
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Error().Err(err).Msg("Browser close error")
		}
	}()

	rodPage, err := b.OpenPage(ctx, req.url)
	if err != nil {
		log.Error().Err(err).Str("url", req.url).Msg("Failed to open page")
		return exitFailure
	}
	pg := page.New(rodPage)

	var frames driver.FrameSource = pg.Frames()
	if cfg.FrameSource == config.FrameSourceTicker {
		frames = driver.NewTickerFrames(cfg.FrameInterval)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var program *tea.Program
	var observer func(scroller.Progress)
	if interactive {
		program = tea.NewProgram(tui.New(req.target.String(), cancelRun))
		observer = func(p scroller.Progress) {
			program.Send(tui.ProgressMsg{
				AnimationID: p.State.ID,
				Target:      req.target.String(),
				Easing:      p.State.Easing,
				Duration:    p.State.Duration,
				StartOffset: p.State.StartOffset,
				EndOffset:   p.State.EndOffset,
				Elapsed:     p.Elapsed,
				Offset:      p.Offset,
			})
		}
	}

	s := scroller.New(scroller.Config{
		Document: pg,
		Viewport: pg.Viewport(),
		Frames:   frames,
		History:  pg,
		Curves:   registry,
		Defaults: scroller.Options{
			Easing:   cfg.DefaultEasing,
			Duration: cfg.DefaultDuration,
		},
		Observer: observer,
	})
	s.SetPopstateHandler(func(hash string) {
		log.Info().Str("hash", hash).Msg("History navigation")
	})

	listener, err := page.ListenPopstate(ctx, pg, s.OnPopstate)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to install popstate listener, continuing without it")
	} else {
		defer listener.Close()
	}

	g, gctx := errgroup.WithContext(runCtx)

	if cfg.MetricsEnabled {
		metrics.SetBuildInfo(version.Full(), version.GoVersion())
		startMetricsServer(gctx, g, cfg)
		g.Go(func() error {
			metrics.StartRuntimeCollector(10*time.Second, gctx.Done())
			return nil
		})
	}

	if program != nil {
		g.Go(func() error {
			if _, err := program.Run(); err != nil {
				return fmt.Errorf("progress view: %w", err)
			}
			return nil
		})
	}

	var scrollErr error
	g.Go(func() error {
		defer cancelRun()

		log.Info().
			Str("url", req.url).
			Str("target", req.target.String()).
			Float64("adjust", req.adjust).
			Str("easing", cfg.DefaultEasing).
			Dur("duration", cfg.DefaultDuration).
			Str("frame_source", cfg.FrameSource).
			Msg("Scrolling")

		future := s.ScrollTo(gctx, req.target, scroller.Options{Adjust: req.adjust}, func() {
			st := s.State()
			log.Info().
				Str("animation_id", st.ID).
				Float64("offset", st.EndOffset).
				Str("hash", st.Hash).
				Msg("Scroll completed")
		})

		// The future always settles: canceling gctx aborts the drive.
		scrollErr = future.Wait(context.Background())
		if program != nil {
			program.Send(tui.DoneMsg{Err: scrollErr})
		}
		return scrollErr
	})

	if err := g.Wait(); err != nil && !errors.Is(err, scrollErr) {
		log.Error().Err(err).Msg("Run failed")
	}

	if scrollErr != nil {
		log.Error().Err(scrollErr).Msg("Scroll failed")
		return exitFailure
	}
	return exitOK
}

// parseArgs parses <url> <target> [adjust].
func parseArgs(args []string) (request, error) {
	if len(args) < 2 || len(args) > 3 {
		return request{}, errors.New("expected a url and a target")
	}

	t, err := target.Parse(args[1])
	if err != nil {
		return request{}, err
	}

	if err := validateURL(args[0]); err != nil {
		return request{}, err
	}

	req := request{url: args[0], target: t}
	if len(args) == 3 {
		adjust, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return request{}, fmt.Errorf("invalid adjust %q: %w", args[2], err)
		}
		req.adjust = adjust
	}
	return req, nil
}

// allowedSchemes are the URL schemes smoothie navigates to.
var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"file":  true,
}

// validateURL rejects URLs the browser should not be pointed at, such as
// javascript: and data: URLs.
func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || rawURL == "" {
		return fmt.Errorf("invalid url %q", rawURL)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if !allowedSchemes[scheme] {
		return fmt.Errorf("url scheme %q not allowed", parsed.Scheme)
	}
	if scheme != "file" && parsed.Hostname() == "" {
		return fmt.Errorf("url %q has no host", rawURL)
	}
	return nil
}

// startMetricsServer serves /metrics until ctx is done.
func startMetricsServer(ctx context.Context, g *errgroup.Group, cfg *config.Config) {
	metricsAddr := fmt.Sprintf("%s:%d", cfg.MetricsBindAddr, cfg.MetricsPort)
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().
			Str("addr", metricsAddr).
			Msg("Prometheus metrics server started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown error")
		}
		return nil
	})
}

func setupLogging(level string, out io.Writer) {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func printBanner() {
	banner := `
                          _   _     _
 ___ _ __ ___   ___   ___ | |_| |__ (_) ___
/ __| '_ ' _ \ / _ \ / _ \| __| '_ \| |/ _ \
\__ \ | | | | | (_) | (_) | |_| | | | |  __/
|___/_| |_| |_|\___/ \___/ \__|_| |_|_|\___|
`
	fmt.Println(banner)
	log.Info().
		Str("version", version.Full()).
		Str("go_version", version.GoVersion()).
		Msg("Starting smoothie")
}
