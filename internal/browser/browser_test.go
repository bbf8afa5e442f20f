package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/Rorqualx/smoothie-go/internal/config"
)

// testConfig returns a configuration suitable for testing.
func testConfig() *config.Config {
	return &config.Config{
		Headless:        true,
		WindowWidth:     1024,
		WindowHeight:    768,
		PageLoadTimeout: 10 * time.Second,
	}
}

// skipCI skips tests that require a browser in CI environments.
func skipCI(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
}

func TestCreateLauncherFlags(t *testing.T) {
	cfg := testConfig()
	l := createLauncher(cfg)

	if got, ok := l.Get("window-size"), l.Has("window-size"); !ok || got != "1024,768" {
		t.Errorf("window-size = %q (set=%v), want 1024,768", got, ok)
	}
	if got, ok := l.Get("headless"), l.Has("headless"); !ok || got != "new" {
		t.Errorf("headless = %q (set=%v), want new", got, ok)
	}
	for _, flag := range []string{"no-sandbox", "disable-renderer-backgrounding", "disable-background-timer-throttling"} {
		if !l.Has(flags.Flag(flag)) {
			t.Errorf("expected flag %s", flag)
		}
	}
}

func TestCreateLauncherHeaded(t *testing.T) {
	cfg := testConfig()
	cfg.Headless = false
	cfg.BrowserPath = "/usr/bin/chromium"

	l := createLauncher(cfg)
	if l.Has("headless") {
		t.Error("headed launcher should not set the headless flag")
	}
	if got, ok := l.Get("rod-bin"), l.Has("rod-bin"); !ok || got != "/usr/bin/chromium" {
		t.Errorf("browser binary = %q (set=%v)", got, ok)
	}
}

func TestLaunchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Launch(ctx, testConfig()); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestLaunchAndOpenPage(t *testing.T) {
	skipCI(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body style="height:3000px"></body></html>`))
	}))
	defer srv.Close()

	for _, stealthOn := range []bool{false, true} {
		cfg := testConfig()
		cfg.Stealth = stealthOn

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		b, err := Launch(ctx, cfg)
		if err != nil {
			cancel()
			t.Skipf("browser unavailable: %v", err)
		}

		page, err := b.OpenPage(ctx, srv.URL)
		if err != nil {
			t.Errorf("OpenPage(stealth=%v) failed: %v", stealthOn, err)
		} else {
			res, err := page.Eval(`() => window.innerWidth`)
			if err != nil {
				t.Errorf("Eval failed: %v", err)
			} else if w := res.Value.Int(); w != cfg.WindowWidth {
				t.Errorf("innerWidth = %d, want %d", w, cfg.WindowWidth)
			}
		}

		if err := b.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
		cancel()
	}
}
