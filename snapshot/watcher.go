// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snapshot

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reports on-disk changes to loaded files. Snapshots are never
// rebuilt; the callback only notifies. onChange runs on a timer goroutine.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onChange func(path string)

	mu     sync.Mutex
	files  map[string]struct{}
	dirs   map[string]int
	timers map[string]*time.Timer
}

// NewWatcher creates a watcher. Call Run to start delivering events.
func NewWatcher(logger *slog.Logger, onChange func(path string)) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  w,
		logger:   logger,
		onChange: onChange,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Add starts watching path. The parent directory is watched so that
// replace-by-rename saves are seen too.
func (w *Watcher) Add(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; ok {
		return nil
	}
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[path] = struct{}{}
	return nil
}

// Remove stops watching path.
func (w *Watcher) Remove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	delete(w.files, path)
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		if err := w.watcher.Remove(dir); err != nil {
			w.logger.Debug("unwatch failed", "dir", dir, "error", err)
		}
	}
}

// Run delivers change notifications until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		_, watched := w.files[path]
		w.mu.Unlock()
		if !watched {
			return
		}
		w.logger.Warn("file changed on disk", "path", path)
		if w.onChange != nil {
			w.onChange(path)
		}
	})
}

// Close stops the underlying watcher and pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for p, t := range w.timers {
		t.Stop()
		delete(w.timers, p)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
