package config

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source provides the configuration in effect right now. Readers call
// Current on every use so that reloads take effect without restarting.
type Source interface {
	Current() *Config
}

// Holder is a Source whose value can be swapped atomically.
type Holder struct {
	cur atomic.Pointer[Config]
}

// NewHolder returns a Holder initialised with cfg (Defaults when nil).
func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	if cfg == nil {
		cfg = Defaults()
	}
	h.cur.Store(cfg)
	return h
}

func (h *Holder) Current() *Config { return h.cur.Load() }

// Set replaces the current configuration.
func (h *Holder) Set(cfg *Config) {
	if cfg != nil {
		h.cur.Store(cfg)
	}
}

// Static returns a Source that always yields cfg.
func Static(cfg *Config) Source { return NewHolder(cfg) }

// Watcher reloads a config file whenever it changes on disk and publishes
// the parsed result on Changes. Parse failures are logged and skipped.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	changes chan *Config
	done    chan struct{}
	log     *zap.Logger

	// Debounce coalesces the burst of events editors emit on save.
	Debounce time.Duration
}

// Watch starts watching path. The parent directory is watched rather than
// the file itself so atomic-rename saves are seen.
func Watch(path string, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("resolving config path %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		path:     abs,
		fs:       fsw,
		changes:  make(chan *Config, 1),
		done:     make(chan struct{}),
		log:      log,
		Debounce: 50 * time.Millisecond,
	}
	go w.loop()
	return w, nil
}

// Changes delivers each successfully reloaded configuration. The channel is
// closed when the watcher stops.
func (w *Watcher) Changes() <-chan *Config { return w.changes }

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fs.Close()
}

func (w *Watcher) loop() {
	defer close(w.changes)

	var fire <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			fire = time.After(w.Debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			cfg, err := LoadFile(w.path)
			if err != nil {
				w.log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
				continue
			}
			for _, warn := range cfg.Warnings {
				w.log.Warn("config value rejected", zap.String("path", w.path), zap.String("detail", warn))
			}
			w.log.Info("config reloaded", zap.String("path", w.path), zap.String("preset", cfg.Preset))
			// Keep only the newest pending config.
			select {
			case <-w.changes:
			default:
			}
			select {
			case w.changes <- cfg:
			case <-w.done:
				return
			}
		}
	}
}
