package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileTrigger wakes the poll loop when a file changes. The parent directory
// is watched so that editors replacing the file by rename are noticed.
type FileTrigger struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger

	c         chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewFileTrigger starts watching path. Events are debounced by debounce.
func NewFileTrigger(path string, debounce time.Duration, logger *slog.Logger) (*FileTrigger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %q: %w", filepath.Dir(abs), err)
	}

	t := &FileTrigger{
		path:    abs,
		watcher: watcher,
		logger:  logger,
		c:       make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	t.debouncer = NewDebouncer(debounce, func(name string, merged int) {
		t.logger.Debug("file changed", slog.String("path", name), slog.Int("events", merged))
		t.notify()
	})

	t.wg.Add(1)

	go t.loop()

	return t, nil
}

// C returns the channel to pass as Options.Trigger.
func (t *FileTrigger) C() <-chan struct{} { return t.c }

// Close stops watching. It is safe to call more than once.
func (t *FileTrigger) Close() error {
	var err error

	t.closeOnce.Do(func() {
		close(t.done)
		err = t.watcher.Close()
		t.wg.Wait()
		t.debouncer.Stop()
	})

	return err
}

// notify queues a wake-up. A pending wake-up absorbs further ones.
func (t *FileTrigger) notify() {
	select {
	case t.c <- struct{}{}:
	default:
	}
}

func (t *FileTrigger) loop() {
	defer t.wg.Done()

	for {
		select {
		case <-t.done:
			return

		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}

			if t.isRelevant(event) {
				t.debouncer.Trigger(event.Name)
			}

		case watchErr, ok := <-t.watcher.Errors:
			if !ok {
				return
			}

			t.logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// isRelevant keeps content-affecting events on the watched file.
func (t *FileTrigger) isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return name == t.path
}
