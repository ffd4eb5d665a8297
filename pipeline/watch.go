package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/sdkgen/errors"
	"github.com/teranos/sdkgen/logger"
)

// DefaultDebounce groups rapid file changes into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher rebuilds inputs when their files change. Only the inputs whose
// files changed are processed again.
type Watcher struct {
	driver   *Driver
	batch    *Batch
	debounce time.Duration
	fsw      *fsnotify.Watcher
	log      *zap.SugaredLogger

	// OnResult receives every processed input, including the initial build
	OnResult func(FileResult)

	mu      sync.Mutex
	inputs  map[string]Input // watched file -> input
	dirs    map[string]bool
	pending map[string]Input // input key -> input
	timer   *time.Timer

	// runMu serializes rebuilds
	runMu sync.Mutex
}

// NewWatcher prepares a watcher for the driver's configured inputs.
func (d *Driver) NewWatcher(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	batch, err := d.NewBatch()
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	return &Watcher{
		driver:   d,
		batch:    batch,
		debounce: debounce,
		fsw:      fsw,
		log:      logger.ComponentLogger("pipeline.watch").With(logger.FieldRunID, batch.RunID),
		inputs:   make(map[string]Input),
		dirs:     make(map[string]bool),
		pending:  make(map[string]Input),
	}, nil
}

// Run builds every input once and then rebuilds changed inputs until ctx
// is cancelled. A rebuild in progress finishes its current input first.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	ctx = logger.WithRunID(ctx, w.batch.RunID)

	disc, err := w.driver.Discover()
	if err != nil {
		return err
	}
	for _, res := range disc.Failed {
		w.emit(res)
	}
	if err := w.track(disc.Inputs); err != nil {
		return err
	}
	w.rebuild(ctx, disc.Inputs)

	w.log.Infow("Watching for changes", logger.FieldCount, len(disc.Inputs))
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			w.runMu.Lock()
			defer w.runMu.Unlock()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	in, known := w.inputs[path]
	w.mu.Unlock()

	if !known {
		if _, _, ok := splitExt(path); !ok || event.Op&fsnotify.Create == 0 {
			return
		}
		// a new file may complete or add an input
		disc, err := w.driver.Discover()
		if err != nil {
			w.log.Warnw("Rediscovery failed", logger.FieldError, err)
			return
		}
		var added []Input
		for _, candidate := range disc.Inputs {
			for _, p := range candidate.Paths() {
				if abs, err := filepath.Abs(p); err == nil && abs == path {
					added = append(added, candidate)
				}
			}
		}
		if err := w.track(added); err != nil {
			w.log.Warnw("Cannot watch new input", logger.FieldError, err)
			return
		}
		for _, candidate := range added {
			w.schedule(ctx, candidate)
		}
		return
	}

	w.log.Debugw("Change detected", logger.FieldFile, event.Name, "op", event.Op.String())
	w.schedule(ctx, in)
}

// track registers inputs and watches their directories.
func (w *Watcher) track(inputs []Input) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, in := range inputs {
		for _, p := range in.Paths() {
			abs, err := filepath.Abs(p)
			if err != nil {
				return errors.Wrapf(err, "resolve %s", p)
			}
			w.inputs[abs] = in
			dir := filepath.Dir(abs)
			if w.dirs[dir] {
				continue
			}
			// directories, not files: editors replace files on save
			if err := w.fsw.Add(dir); err != nil {
				return errors.Wrapf(err, "failed to watch %s", dir)
			}
			w.dirs[dir] = true
		}
	}
	return nil
}

// schedule debounces rebuilds of changed inputs.
func (w *Watcher) schedule(ctx context.Context, in Input) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[in.Key()] = in
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		inputs := make([]Input, 0, len(w.pending))
		for _, p := range w.pending {
			inputs = append(inputs, p)
		}
		w.pending = make(map[string]Input)
		w.mu.Unlock()

		sort.Slice(inputs, func(i, j int) bool { return inputs[i].Key() < inputs[j].Key() })
		w.rebuild(ctx, inputs)
	})
}

func (w *Watcher) rebuild(ctx context.Context, inputs []Input) {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	for _, in := range inputs {
		if ctx.Err() != nil {
			return
		}
		w.emit(w.driver.Process(ctx, w.batch, in))
	}
}

func (w *Watcher) emit(res FileResult) {
	if w.OnResult != nil {
		w.OnResult(res)
	}
}
