package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"kith-backend/domain/layout"
)

// LoadTuning reads simulation tuning from a YAML file. An empty path means
// stock defaults; missing fields fall back individually inside the layout
// engine.
func LoadTuning(path string) (layout.Tuning, error) {
	if path == "" {
		return layout.DefaultTuning(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return layout.Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	var t layout.Tuning
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return layout.Tuning{}, fmt.Errorf("parse tuning file: %w", err)
	}
	return t, nil
}

// TuningWatcher hot-reloads the tuning file and hands each valid new
// version to a callback. A broken file is logged and skipped; the previous
// tuning stays active.
type TuningWatcher struct {
	path     string
	onChange func(layout.Tuning)
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// NewTuningWatcher creates a watcher for the given tuning file.
func NewTuningWatcher(path string, onChange func(layout.Tuning), logger *zap.Logger) (*TuningWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	// Watch the directory: editors replace files on save, which drops the
	// watch when it is attached to the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch tuning directory: %w", err)
	}
	return &TuningWatcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are handled on a
// background goroutine until Stop.
func (w *TuningWatcher) Start() {
	go w.run()
}

// Stop ends watching and releases the underlying watcher.
func (w *TuningWatcher) Stop() {
	close(w.done)
	_ = w.watcher.Close()
}

func (w *TuningWatcher) run() {
	// Debounce bursts: editors emit several events per save.
	var pending <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(200 * time.Millisecond)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Tuning watcher error", zap.Error(err))
		case <-pending:
			pending = nil
			tuning, err := LoadTuning(w.path)
			if err != nil {
				w.logger.Warn("Ignoring invalid tuning file",
					zap.String("path", w.path),
					zap.Error(err),
				)
				continue
			}
			w.logger.Info("Reloaded simulation tuning", zap.String("path", w.path))
			w.onChange(tuning)
		}
	}
}
