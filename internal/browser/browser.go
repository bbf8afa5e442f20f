// Package browser launches the Chrome instance that scroll animations run in.
package browser

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"

	"github.com/Rorqualx/smoothie-go/internal/config"
)

// closeTimeout bounds how long Close waits for the browser to exit.
const closeTimeout = 10 * time.Second

// Browser is a launched browser and the launcher that owns its process.
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	config   *config.Config
}

// Launch starts a browser configured from cfg and connects to it over CDP.
func Launch(ctx context.Context, cfg *config.Config) (*Browser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	log.Info().
		Bool("headless", cfg.Headless).
		Str("browser_path", cfg.BrowserPath).
		Int("width", cfg.WindowWidth).
		Int("height", cfg.WindowHeight).
		Msg("Launching browser")

	l := createLauncher(cfg)

	url, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	// Only ignore certificate errors if explicitly configured
	if cfg.IgnoreCertErrors {
		log.Warn().Msg("Certificate validation disabled - MITM attacks possible")
		if err := b.IgnoreCertErrors(true); err != nil {
			log.Warn().Err(err).Msg("Failed to set IgnoreCertErrors")
		}
	}

	log.Debug().Str("url", url).Msg("Browser launched successfully")
	return &Browser{browser: b, launcher: l, config: cfg}, nil
}

// createLauncher creates a configured Rod launcher.
func createLauncher(cfg *config.Config) *launcher.Launcher {
	l := launcher.New()

	if cfg.BrowserPath != "" {
		l = l.Bin(cfg.BrowserPath)
	}

	if cfg.Headless {
		l = l.Set("headless", "new")
	} else {
		l = l.Headless(false)
	}

	// Container-friendly sandbox settings
	l = l.Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage")

	l = l.Set("window-size", strconv.Itoa(cfg.WindowWidth)+","+strconv.Itoa(cfg.WindowHeight))

	l = l.Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-infobars").
		Set("disable-search-engine-choice-screen")

	// Keep requestAnimationFrame running at full rate when the window is
	// not focused.
	l = l.Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding")

	l = l.Set("mute-audio").
		Set("disable-default-apps").
		Set("disable-sync")

	if isARM() {
		l = l.Set("disable-gpu-compositing")
		log.Debug().Msg("ARM detected: using software compositing")
	}

	return l
}

// OpenPage opens a new tab, navigates to url and waits for the load event.
// Navigation is bounded by the configured page load timeout.
func (b *Browser) OpenPage(ctx context.Context, url string) (*rod.Page, error) {
	var (
		page *rod.Page
		err  error
	)
	if b.config.Stealth {
		page, err = stealth.Page(b.browser)
	} else {
		page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if err := setViewport(page, b.config.WindowWidth, b.config.WindowHeight); err != nil {
		log.Warn().Err(err).Msg("Failed to set viewport")
	}

	loadCtx := ctx
	if b.config.PageLoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, b.config.PageLoadTimeout)
		defer cancel()
	}

	if err := page.Context(loadCtx).Navigate(url); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.Context(loadCtx).WaitLoad(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("WaitLoad failed, continuing anyway")
	}

	log.Debug().
		Str("url", url).
		Bool("stealth", b.config.Stealth).
		Msg("Page opened")

	return page, nil
}

// Close shuts the browser down and removes its profile directory.
// If the browser does not exit in time the process is killed.
func (b *Browser) Close() error {
	closeDone := make(chan error, 1)
	closeStarted := time.Now()

	go func() {
		closeDone <- b.browser.Close()
	}()

	select {
	case err := <-closeDone:
		if err != nil {
			log.Warn().Err(err).Msg("Error closing browser")
		}
		b.launcher.Cleanup()
		log.Debug().
			Dur("duration", time.Since(closeStarted)).
			Msg("Browser closed successfully")
		return err
	case <-time.After(closeTimeout):
		log.Warn().
			Dur("elapsed", time.Since(closeStarted)).
			Msg("Browser close timed out, killing process")
		b.launcher.Kill()
		return fmt.Errorf("browser close timed out after %s", closeTimeout)
	}
}

func setViewport(page *rod.Page, width, height int) error {
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

// isARM returns true if running on ARM architecture.
func isARM() bool {
	arch := runtime.GOARCH
	return arch == "arm" || arch == "arm64"
}
