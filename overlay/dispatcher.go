package overlay

import (
	"sync"
	"time"
)

// errorAutoHide is how long an error stays on screen before the overlay
// hides itself, unless a newer update arrives first.
const errorAutoHide = 2 * time.Second

type updateKind int

const (
	updRecording updateKind = iota
	updProcessing
	updResult
	updError
	updHide
)

type update struct {
	kind updateKind
	text string
}

// Dispatcher decouples the session state machine from the sink. Calls
// return immediately; a single consumer goroutine applies updates in
// order. Only the most recent pending update is kept, so a backlogged
// sink skips straight to the current status instead of replaying stale
// ones.
type Dispatcher struct {
	sink Sink

	mu      sync.Mutex
	cond    *sync.Cond
	pending *update
	seq     uint64
	closed  bool
	done    chan struct{}
}

func NewDispatcher(sink Sink) *Dispatcher {
	d := &Dispatcher{
		sink: sink,
		done: make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.run()
	return d
}

func (d *Dispatcher) enqueue(u update) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return d.seq
	}
	d.seq++
	d.pending = &u
	d.cond.Signal()
	return d.seq
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for d.pending == nil && !d.closed {
			d.cond.Wait()
		}
		if d.closed && d.pending == nil {
			d.mu.Unlock()
			return
		}
		u := *d.pending
		d.pending = nil
		d.mu.Unlock()

		d.apply(u)
	}
}

func (d *Dispatcher) apply(u update) {
	switch u.kind {
	case updRecording:
		d.sink.ShowRecording()
	case updProcessing:
		d.sink.ShowProcessing()
	case updResult:
		d.sink.ShowResult(u.text)
	case updError:
		d.sink.ShowError(u.text)
	case updHide:
		d.sink.Hide()
	}
}

func (d *Dispatcher) ShowRecording()  { d.enqueue(update{kind: updRecording}) }
func (d *Dispatcher) ShowProcessing() { d.enqueue(update{kind: updProcessing}) }
func (d *Dispatcher) Hide()           { d.enqueue(update{kind: updHide}) }

func (d *Dispatcher) ShowResult(text string) {
	d.enqueue(update{kind: updResult, text: text})
}

// ShowError displays the error and schedules a hide. The hide fires only
// if no newer update has been enqueued in the meantime.
func (d *Dispatcher) ShowError(message string) {
	seq := d.enqueue(update{kind: updError, text: message})
	time.AfterFunc(errorAutoHide, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.seq != seq || d.closed {
			return
		}
		d.seq++
		d.pending = &update{kind: updHide}
		d.cond.Signal()
	})
}

// Close stops the consumer after the pending update, if any, is applied.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.cond.Signal()
	d.mu.Unlock()
	<-d.done
}
