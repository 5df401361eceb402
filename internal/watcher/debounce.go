package watcher

import (
	"sync"
	"time"
)

// DebouncedWatcher wraps a Watcher with event debouncing.
// Rapid changes to the same file are coalesced into one event delivered
// once the file has been quiet for the delay.
//
// All pending state is owned by a single goroutine; timers only report
// back to it.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	events  chan Event
	errors  chan error
	due     chan deadline
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// deadline is sent by a timer when a path's quiet period ends. gen
// identifies the timer so that a superseded one is ignored.
type deadline struct {
	path string
	gen  uint64
}

type pending struct {
	event Event
	gen   uint64
	timer *time.Timer
}

// NewDebouncedWatcher creates a debounced wrapper around inner.
func NewDebouncedWatcher(inner Watcher, delay time.Duration, bufSize int) *DebouncedWatcher {
	if delay <= 0 {
		delay = DefaultConfig().Debounce
	}
	if bufSize <= 0 {
		bufSize = DefaultConfig().BufferSize
	}

	dw := &DebouncedWatcher{
		inner:   inner,
		delay:   delay,
		events:  make(chan Event, bufSize),
		errors:  make(chan error, bufSize),
		due:     make(chan deadline),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go dw.run()
	return dw
}

// Watch starts watching a path.
func (dw *DebouncedWatcher) Watch(path string) error {
	return dw.inner.Watch(path)
}

// Unwatch stops watching a path.
func (dw *DebouncedWatcher) Unwatch(path string) error {
	return dw.inner.Unwatch(path)
}

// Events returns the debounced event channel.
func (dw *DebouncedWatcher) Events() <-chan Event {
	return dw.events
}

// Errors returns the error channel.
func (dw *DebouncedWatcher) Errors() <-chan error {
	return dw.errors
}

// IsWatching returns true if the path is being watched.
func (dw *DebouncedWatcher) IsWatching(path string) bool {
	return dw.inner.IsWatching(path)
}

// WatchedPaths returns all watched paths.
func (dw *DebouncedWatcher) WatchedPaths() []string {
	return dw.inner.WatchedPaths()
}

// Close stops the debounced watcher and the watcher it wraps. Events still
// inside their quiet period are discarded.
func (dw *DebouncedWatcher) Close() error {
	var err error
	dw.once.Do(func() {
		close(dw.done)
		<-dw.stopped
		err = dw.inner.Close()
	})
	return err
}

func (dw *DebouncedWatcher) run() {
	defer close(dw.stopped)
	defer close(dw.errors)
	defer close(dw.events)

	waiting := make(map[string]*pending)
	var gen uint64
	defer func() {
		for _, p := range waiting {
			p.timer.Stop()
		}
	}()

	for {
		select {
		case <-dw.done:
			return

		case ev, ok := <-dw.inner.Events():
			if !ok {
				return
			}
			gen++
			if p, ok := waiting[ev.Path]; ok {
				p.timer.Stop()
				ev.Op |= p.event.Op
			}
			waiting[ev.Path] = &pending{event: ev, gen: gen, timer: dw.schedule(ev.Path, gen)}

		case d := <-dw.due:
			p, ok := waiting[d.path]
			if !ok || p.gen != d.gen {
				continue
			}
			delete(waiting, d.path)
			select {
			case dw.events <- p.event:
			default:
				// Channel full, drop event
			}

		case err, ok := <-dw.inner.Errors():
			if !ok {
				return
			}
			select {
			case dw.errors <- err:
			default:
			}
		}
	}
}

// schedule arranges for path's deadline to reach run after the delay.
func (dw *DebouncedWatcher) schedule(path string, gen uint64) *time.Timer {
	return time.AfterFunc(dw.delay, func() {
		select {
		case dw.due <- deadline{path: path, gen: gen}:
		case <-dw.done:
		}
	})
}

var _ Watcher = (*DebouncedWatcher)(nil)
