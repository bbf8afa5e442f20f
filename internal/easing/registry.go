package easing

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/Rorqualx/smoothie-go/internal/metrics"
	"github.com/Rorqualx/smoothie-go/internal/types"
)

// ReloadStats contains statistics about catalog reloads.
type ReloadStats struct {
	LastReloadTime time.Time `json:"lastReloadTime,omitempty"`
	ReloadCount    int64     `json:"reloadCount"`
	LastError      error     `json:"-"`
	LastErrorStr   string    `json:"lastError,omitempty"`
}

// Registry resolves easing names to curves.
// The polynomial built-ins are always present. Cubic-bezier curves come from
// the embedded catalog and, optionally, an external YAML file that can be
// hot-reloaded. Lookups are lock-free using atomic.Value.
type Registry struct {
	embedded     map[string]Func // Compiled-in catalog curves (immutable)
	current      atomic.Value    // map[string]Func, built-ins merged last
	externalPath string
	watcher      *fsnotify.Watcher
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex // Protects reload operations
	stats        ReloadStats
	closed       bool
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry holding the built-ins and the
// embedded catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with the built-in curves and the embedded
// catalog. A broken embedded catalog is logged and skipped.
func NewRegistry() *Registry {
	r := &Registry{
		stopCh: make(chan struct{}),
	}

	catalog, err := loadEmbedded()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load embedded easing catalog, using built-ins only")
		r.embedded = map[string]Func{}
	} else {
		r.embedded = catalog.funcs()
	}

	r.current.Store(r.merge(nil))

	log.Debug().
		Int("builtin_curves", len(builtins)).
		Int("catalog_curves", len(r.embedded)).
		Msg("Easing registry initialized")

	return r
}

// NewRegistryWithFile creates a registry that also loads curves from an
// external YAML file. If hotReload is true, file changes trigger reloads.
// A file that fails to load is logged and the embedded catalog is used.
func NewRegistryWithFile(path string, hotReload bool) (*Registry, error) {
	r := NewRegistry()
	r.externalPath = path

	if path == "" {
		return r, nil
	}

	if err := r.loadExternal(); err != nil {
		log.Warn().
			Err(err).
			Str("path", path).
			Msg("Failed to load external easing catalog, using embedded curves")
	} else {
		log.Info().
			Str("path", path).
			Msg("Loaded external easing catalog")
	}

	if hotReload {
		if err := r.startWatcher(); err != nil {
			log.Warn().
				Err(err).
				Str("path", path).
				Msg("Failed to start file watcher, hot-reload disabled")
		} else {
			log.Info().
				Str("path", path).
				Msg("Hot-reload enabled for easing catalog")
		}
	}

	return r, nil
}

// Lookup returns the curve registered under name.
// Unknown names fail with an error wrapping types.ErrUnknownEasing.
func (r *Registry) Lookup(name string) (Func, error) {
	curves := r.current.Load().(map[string]Func)
	fn, ok := curves[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownEasing, name)
	}
	return fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, err := r.Lookup(name)
	return err == nil
}

// Names returns all registered curve names in sorted order.
func (r *Registry) Names() []string {
	curves := r.current.Load().(map[string]Func)
	names := make([]string, 0, len(curves))
	for name := range curves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload re-reads the external catalog file.
// On failure, the previous curves remain in use.
func (r *Registry) Reload() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.externalPath == "" {
		return fmt.Errorf("no external easing catalog configured")
	}
	return r.loadExternalLocked()
}

// Stats returns the current reload statistics.
func (r *Registry) Stats() ReloadStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.stats
	if stats.LastError != nil {
		stats.LastErrorStr = stats.LastError.Error()
	}
	return stats
}

// Close stops the file watcher. Safe to call multiple times.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.stopCh)
	r.wg.Wait()

	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

func (r *Registry) loadExternal() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadExternalLocked()
}

// loadExternalLocked must be called with r.mu held.
func (r *Registry) loadExternalLocked() error {
	data, err := os.ReadFile(r.externalPath)
	if err != nil {
		r.stats.LastError = err
		metrics.RecordEasingReload(false)
		return fmt.Errorf("failed to read easing catalog: %w", err)
	}

	catalog, err := parseCatalog(data)
	if err != nil {
		r.stats.LastError = err
		metrics.RecordEasingReload(false)
		return fmt.Errorf("failed to parse easing catalog: %w", err)
	}

	r.current.Store(r.merge(catalog.funcs()))

	r.stats.LastReloadTime = time.Now()
	r.stats.ReloadCount++
	r.stats.LastError = nil
	metrics.RecordEasingReload(true)

	log.Info().
		Int64("reload_count", r.stats.ReloadCount).
		Int("curves", len(catalog.Curves)).
		Msg("Easing catalog reloaded")

	return nil
}

// merge layers external over embedded, then built-ins over both so that
// the polynomial names can never be shadowed.
func (r *Registry) merge(external map[string]Func) map[string]Func {
	out := make(map[string]Func, len(r.embedded)+len(external)+len(builtins))
	for name, fn := range r.embedded {
		out[name] = fn
	}
	for name, fn := range external {
		if _, isBuiltin := builtins[name]; isBuiltin {
			log.Warn().Str("name", name).Msg("External easing catalog cannot override a built-in curve, ignoring")
			continue
		}
		out[name] = fn
	}
	for name, fn := range builtins {
		out[name] = fn
	}
	return out
}

func (r *Registry) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(r.externalPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch file: %w", err)
	}

	r.watcher = watcher

	r.wg.Add(1)
	go r.watchFile()

	return nil
}

// watchFile reloads the catalog on write/create events, debounced.
func (r *Registry) watchFile() {
	defer r.wg.Done()

	const debounceDelay = 100 * time.Millisecond
	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			log.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("Easing catalog changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				if err := r.Reload(); err != nil {
					log.Warn().
						Err(err).
						Str("path", r.externalPath).
						Msg("Hot-reload failed, keeping previous easing catalog")
				}
			})

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("File watcher error")

		case <-r.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}
