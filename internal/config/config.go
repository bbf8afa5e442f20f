// Package config provides application configuration management.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Frame sources selectable with FRAME_SOURCE.
const (
	FrameSourceRAF    = "raf"
	FrameSourceTicker = "ticker"
)

// Configuration bounds.
const (
	minDefaultDuration = time.Millisecond
	maxDefaultDuration = 60 * time.Second
	minFrameInterval   = time.Millisecond
	maxFrameInterval   = time.Second
	maxPageLoadTimeout = 5 * time.Minute
	minWindowDimension = 100
	maxWindowDimension = 7680
)

// Config holds all application configuration.
// Configuration is loaded from environment variables at startup.
type Config struct {
	// Browser settings
	Headless         bool
	BrowserPath      string
	WindowWidth      int
	WindowHeight     int
	Stealth          bool          // Apply go-rod/stealth patches to opened pages
	IgnoreCertErrors bool          // Ignore TLS certificate errors
	PageLoadTimeout  time.Duration // Bound for navigation and the load event

	// Animation defaults, used when a request leaves them unset
	DefaultEasing   string
	DefaultDuration time.Duration
	FrameInterval   time.Duration // Interval of the ticker frame source
	FrameSource     string        // "raf" or "ticker"

	// Easing catalog settings
	EasingPath      string // Path to external curves.yaml override file
	EasingHotReload bool   // Enable file watching for hot-reload of curves

	// Logging
	LogLevel string

	// Metrics
	MetricsEnabled  bool
	MetricsPort     int
	MetricsBindAddr string // Bind address for the metrics server (default: localhost only)
}

// Load loads configuration from environment variables.
// Returns a Config with values from environment or sensible defaults.
func Load() *Config {
	width, height := getEnvSize("WINDOW_SIZE", 1280, 800)

	return &Config{
		// Browser
		Headless:         getEnvBool("HEADLESS", true),
		BrowserPath:      getEnvString("BROWSER_PATH", ""),
		WindowWidth:      width,
		WindowHeight:     height,
		Stealth:          getEnvBool("STEALTH", false),
		IgnoreCertErrors: getEnvBool("IGNORE_CERT_ERRORS", false),
		PageLoadTimeout:  getEnvDuration("PAGE_LOAD_TIMEOUT", 30*time.Second),

		// Animation
		DefaultEasing:   getEnvString("DEFAULT_EASING", "linear"),
		DefaultDuration: getEnvDuration("DEFAULT_DURATION", 500*time.Millisecond),
		FrameInterval:   getEnvDuration("FRAME_INTERVAL", 16*time.Millisecond),
		FrameSource:     strings.ToLower(getEnvString("FRAME_SOURCE", FrameSourceRAF)),

		// Easing catalog
		EasingPath:      getEnvString("EASING_PATH", ""),
		EasingHotReload: getEnvBool("EASING_HOT_RELOAD", false),

		// Logging
		LogLevel: getEnvString("LOG_LEVEL", "info"),

		// Metrics - disabled by default
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", false),
		MetricsPort:     getEnvInt("METRICS_PORT", 9191),
		MetricsBindAddr: getEnvString("METRICS_BIND_ADDR", "127.0.0.1"),
	}
}

// Validate checks configuration values and logs warnings for invalid values.
// Invalid values are corrected to sensible defaults.
func (c *Config) Validate() {
	// BrowserPath validation - prevent path traversal
	if c.BrowserPath != "" {
		if strings.Contains(c.BrowserPath, "..") {
			log.Error().
				Str("path", c.BrowserPath).
				Msg("BrowserPath contains path traversal sequence (..), ignoring")
			c.BrowserPath = ""
		} else if !strings.HasPrefix(c.BrowserPath, "/") && !strings.HasPrefix(c.BrowserPath, "C:") && !strings.HasPrefix(c.BrowserPath, "c:") {
			log.Warn().
				Str("path", c.BrowserPath).
				Msg("BrowserPath should be an absolute path")
		}
	}

	c.WindowWidth = clampInt("window width", c.WindowWidth, minWindowDimension, maxWindowDimension, 1280)
	c.WindowHeight = clampInt("window height", c.WindowHeight, minWindowDimension, maxWindowDimension, 800)

	if c.PageLoadTimeout > maxPageLoadTimeout {
		log.Warn().
			Dur("timeout", c.PageLoadTimeout).
			Dur("max", maxPageLoadTimeout).
			Msg("Page load timeout too high, capping to maximum")
		c.PageLoadTimeout = maxPageLoadTimeout
	}

	if strings.TrimSpace(c.DefaultEasing) == "" {
		log.Warn().Msg("Empty default easing, using linear")
		c.DefaultEasing = "linear"
	}

	if c.DefaultDuration < minDefaultDuration {
		log.Warn().
			Dur("duration", c.DefaultDuration).
			Dur("min", minDefaultDuration).
			Msg("Default duration too short, using minimum")
		c.DefaultDuration = minDefaultDuration
	} else if c.DefaultDuration > maxDefaultDuration {
		log.Warn().
			Dur("duration", c.DefaultDuration).
			Dur("max", maxDefaultDuration).
			Msg("Default duration too long, capping to maximum")
		c.DefaultDuration = maxDefaultDuration
	}

	if c.FrameInterval < minFrameInterval {
		log.Warn().
			Dur("interval", c.FrameInterval).
			Dur("min", minFrameInterval).
			Msg("Frame interval too short, using minimum")
		c.FrameInterval = minFrameInterval
	} else if c.FrameInterval > maxFrameInterval {
		log.Warn().
			Dur("interval", c.FrameInterval).
			Dur("max", maxFrameInterval).
			Msg("Frame interval too long, capping to maximum")
		c.FrameInterval = maxFrameInterval
	}

	switch c.FrameSource {
	case FrameSourceRAF, FrameSourceTicker:
	default:
		log.Warn().
			Str("frame_source", c.FrameSource).
			Msg("Unknown frame source, using raf")
		c.FrameSource = FrameSourceRAF
	}

	if c.EasingHotReload && c.EasingPath == "" {
		log.Warn().Msg("EASING_HOT_RELOAD set without EASING_PATH, disabling hot-reload")
		c.EasingHotReload = false
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		log.Warn().Int("port", c.MetricsPort).Msg("Invalid metrics port, using default 9191")
		c.MetricsPort = 9191
	}
}

func clampInt(name string, v, lo, hi, def int) int {
	if v < lo || v > hi {
		log.Warn().
			Int("value", v).
			Int("min", lo).
			Int("max", hi).
			Int("default", def).
			Msgf("Invalid %s, using default", name)
		return def
	}
	return v
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intValue, err := strconv.ParseInt(value, 10, 32)
		if err == nil {
			return int(intValue)
		}
		log.Warn().
			Str("key", key).
			Str("value", value).
			Err(err).
			Int("default", defaultValue).
			Msg("Invalid integer in environment variable, using default")
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
		log.Warn().
			Str("key", key).
			Str("value", value).
			Err(err).
			Bool("default", defaultValue).
			Msg("Invalid boolean in environment variable, using default")
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err == nil {
			// Reject negative or zero durations
			if duration > 0 {
				return duration
			}
			log.Warn().
				Str("key", key).
				Str("value", value).
				Dur("default", defaultValue).
				Msg("Duration must be positive, using default")
			return defaultValue
		}
		log.Warn().
			Str("key", key).
			Str("value", value).
			Err(err).
			Dur("default", defaultValue).
			Msg("Invalid duration in environment variable, using default")
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Parse comma-separated values, trimming whitespace
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// getEnvSize parses a "width,height" pair.
func getEnvSize(key string, defaultWidth, defaultHeight int) (int, int) {
	parts := getEnvStringSlice(key, nil)
	if parts == nil {
		return defaultWidth, defaultHeight
	}
	if len(parts) == 2 {
		w, errW := strconv.Atoi(parts[0])
		h, errH := strconv.Atoi(parts[1])
		if errW == nil && errH == nil {
			return w, h
		}
	}
	log.Warn().
		Str("key", key).
		Str("value", os.Getenv(key)).
		Int("default_width", defaultWidth).
		Int("default_height", defaultHeight).
		Msg("Invalid size in environment variable, expected width,height, using default")
	return defaultWidth, defaultHeight
}
