package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates the library when files under its root change. Bursts
// of events are coalesced into one invalidation.
type Watcher struct {
	lib       *Library
	fsWatcher *fsnotify.Watcher
	log       *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// Watch starts watching the library root, every book directory and their
// chapter folders.
func (l *Library) Watch() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		lib:       l,
		fsWatcher: fsWatcher,
		log:       l.log.Named("watch"),
		stopChan:  make(chan struct{}),
	}
	if err := w.addTree(l.root, 0); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// addTree watches dir and its sub-directories up to the chapter level.
func (w *Watcher) addTree(dir string, depth int) error {
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}
	w.log.Debug("watching directory", zap.String("directory", dir))
	if depth >= 2 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := w.addTree(filepath.Join(dir, e.Name()), depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) depth(p string) int {
	rel, err := filepath.Rel(w.lib.root, p)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// relevant filters out the library's own state writes and hidden files.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) ||
		ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
}

func (w *Watcher) run() {
	defer w.wg.Done()
	var settle <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if d := w.depth(ev.Name); d <= 2 {
						if err := w.addTree(ev.Name, d); err != nil {
							w.log.Warn("watching new directory failed", zap.String("directory", ev.Name), zap.Error(err))
						}
					}
				}
			}
			if settle == nil {
				settle = time.After(w.lib.delay)
			}

		case <-settle:
			settle = nil
			w.lib.Invalidate()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("fsnotify watcher error", zap.Error(err))

		case <-w.stopChan:
			return
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}
