// Package watcher reloads the config file when it changes on disk.
package watcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FahadBinHussain/Xenovate/internal/config"
	log "github.com/FahadBinHussain/Xenovate/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 300 * time.Millisecond

// LoadFunc reads and validates the config at path.
type LoadFunc func(path string) (*config.Config, error)

// ReloadFunc receives each successfully loaded config.
type ReloadFunc func(cfg *config.Config)

// Watcher watches the directory holding the config file so that atomic
// rename-on-save is seen as well as in-place writes.
type Watcher struct {
	path     string
	load     LoadFunc
	reload   ReloadFunc
	debounce time.Duration

	fs       *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	lastHash [sha256.Size]byte
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, load LoadFunc, reload ReloadFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	w := &Watcher{
		path:     abs,
		load:     load,
		reload:   reload,
		debounce: DefaultDebounce,
		fs:       fs,
		done:     make(chan struct{}),
	}
	if data, err := os.ReadFile(abs); err == nil {
		w.lastHash = sha256.Sum256(data)
	}
	return w, nil
}

// SetDebounce overrides the quiet period before a reload. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Start begins watching. The watcher stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Infof("watching %s for config changes", w.path)
	go w.run(ctx)
	return nil
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fs.Close()
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.apply)
}

// apply reloads the file unless its content is unchanged.
func (w *Watcher) apply() {
	select {
	case <-w.done:
		return
	default:
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("failed to read changed config")
		}
		return
	}
	sum := sha256.Sum256(data)
	w.mu.Lock()
	if sum == w.lastHash {
		w.mu.Unlock()
		return
	}
	w.lastHash = sum
	w.mu.Unlock()

	cfg, err := w.load(w.path)
	if err != nil {
		log.WithError(err).Warn("config reload rejected, keeping previous settings")
		return
	}
	log.Infof("config reloaded from %s", w.path)
	w.reload(cfg)
}
