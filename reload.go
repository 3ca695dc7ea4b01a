package kvconf

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
)

// Reloader owns the current Store of a config file and swaps in a freshly
// loaded one when the file changes. It is the lock around the store: all
// access goes through Read and Write.
type Reloader struct {
	path   string
	opt    Options
	logger *slog.Logger

	// reloadMu serializes Reload and Save, so the file read last is the
	// one installed. It is taken before mu.
	reloadMu sync.Mutex

	mu     sync.RWMutex
	store  *Store
	sum    uint64
	loads  int
	closed bool
}

func NewReloader(path string, opt Options) (*Reloader, error) {
	opt = opt.withDefaults()
	data, err := readSource(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data, opt)
	if err != nil {
		return nil, fmt.Errorf("kvconf: %s: %w", path, err)
	}
	return &Reloader{
		path:   path,
		opt:    opt,
		logger: opt.Logger,
		store:  s,
		sum:    xxhash.Sum64(data),
		loads:  1,
	}, nil
}

func (r *Reloader) Path() string {
	return r.path
}

// Loads returns how many times the file has been parsed.
func (r *Reloader) Loads() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loads
}

// Reload re-reads the file. If its contents changed, a new store replaces
// the current one and true is returned. If parsing fails, the current store
// is kept.
func (r *Reloader) Reload() (bool, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	data, err := readSource(r.path)
	if err != nil {
		return false, err
	}
	sum := xxhash.Sum64(data)

	r.mu.RLock()
	same := sum == r.sum
	r.mu.RUnlock()
	if same {
		return false, nil
	}

	s, err := Parse(data, r.opt)
	if err != nil {
		return false, fmt.Errorf("kvconf: %s: %w", r.path, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.Close()
		return false, fmt.Errorf("kvconf: reloader closed")
	}
	old := r.store
	r.store, r.sum = s, sum
	r.loads++
	n := s.Len()
	r.mu.Unlock()
	old.Close()

	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "kvconf: reloaded",
		slog.String("path", r.path),
		slog.Int("lines", n))
	return true, nil
}

// Read calls f with the current store under the read lock. f must not keep
// the store or any View past its return.
func (r *Reloader) Read(f func(s *Store)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.checkOpen()
	f(r.store)
}

// Write calls f with the current store under the write lock.
func (r *Reloader) Write(f func(s *Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkOpen()
	return f(r.store)
}

func (r *Reloader) checkOpen() {
	if r.closed {
		panic("kvconf: reloader is closed")
	}
}

// Save writes the current store back to the file. The saved contents become
// the new baseline, so the watcher does not reload them.
func (r *Reloader) Save() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkOpen()
	data := r.store.Render()
	if err := writeFileAtomic(r.path, data); err != nil {
		return err
	}
	r.sum = xxhash.Sum64(data)
	return nil
}

// Watch reloads the file whenever it is written, created or renamed into
// place. The directory is watched rather than the file so that editors that
// replace the file are noticed. Watching stops when ctx is done.
func (r *Reloader) Watch(ctx context.Context) error {
	abs, err := filepath.Abs(r.path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if _, err := r.Reload(); err != nil {
					r.logger.LogAttrs(ctx, slog.LevelWarn, "kvconf: reload failed",
						slog.String("path", r.path),
						slog.Any("err", err))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				r.logger.LogAttrs(ctx, slog.LevelWarn, "kvconf: watch error", slog.Any("err", err))
			}
		}
	}()
	return nil
}

// Close releases the current store.
func (r *Reloader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.store.Close()
	r.store = nil
}
