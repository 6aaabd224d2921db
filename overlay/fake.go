package overlay

import "sync"

// FakeSink records updates for tests. Block, when set, stalls the first
// update until released so supersede behavior can be exercised.
type FakeSink struct {
	mu      sync.Mutex
	calls   []string
	notify  chan string
	Block   chan struct{}
	blocked bool
}

func NewFakeSink() *FakeSink {
	return &FakeSink{notify: make(chan string, 64)}
}

func (f *FakeSink) record(call string) {
	f.mu.Lock()
	if f.Block != nil && !f.blocked {
		f.blocked = true
		f.mu.Unlock()
		<-f.Block
		f.mu.Lock()
	}
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	f.notify <- call
}

func (f *FakeSink) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Next returns the channel of applied updates, in order.
func (f *FakeSink) Next() <-chan string { return f.notify }

func (f *FakeSink) ShowRecording()           { f.record("recording") }
func (f *FakeSink) ShowProcessing()          { f.record("processing") }
func (f *FakeSink) ShowResult(text string)   { f.record("result:" + text) }
func (f *FakeSink) ShowError(message string) { f.record("error:" + message) }
func (f *FakeSink) Hide()                    { f.record("hide") }
