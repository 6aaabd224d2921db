package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

type fakeRecorder struct {
	mu     sync.Mutex
	armed  bool
	arms   int
	pcm    []byte
	armErr error
}

func (f *fakeRecorder) Arm() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.armErr != nil {
		return f.armErr
	}
	f.armed = true
	f.arms++
	return nil
}

func (f *fakeRecorder) Disarm() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.armed {
		return nil
	}
	f.armed = false
	return f.pcm
}

func (f *fakeRecorder) Armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.armed
}

func (f *fakeRecorder) Arms() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.arms
}

type fakeTranscriber struct {
	text string
	err  error
	// release, when set, blocks Transcribe until closed
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	return f.text, f.err
}

func (f *fakeTranscriber) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSink struct {
	mu     sync.Mutex
	calls  []string
	notify chan string
}

func newFakeSink() *fakeSink {
	return &fakeSink{notify: make(chan string, 64)}
}

func (f *fakeSink) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	f.notify <- call
}

func (f *fakeSink) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeSink) ShowRecording()           { f.record("recording") }
func (f *fakeSink) ShowProcessing()          { f.record("processing") }
func (f *fakeSink) ShowResult(text string)   { f.record("result:" + text) }
func (f *fakeSink) ShowError(message string) { f.record("error:" + message) }
func (f *fakeSink) Hide()                    { f.record("hide") }

type fakeInserter struct {
	mu     sync.Mutex
	texts  []string
	err    error
	notify chan string
}

func newFakeInserter() *fakeInserter {
	return &fakeInserter{notify: make(chan string, 8)}
}

func (f *fakeInserter) Insert(text string) error {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	f.notify <- text
	return f.err
}

func (f *fakeInserter) Texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.texts))
	copy(out, f.texts)
	return out
}

type fakeCues struct {
	mu     sync.Mutex
	played []Cue
}

func (f *fakeCues) Play(c Cue) {
	f.mu.Lock()
	f.played = append(f.played, c)
	f.mu.Unlock()
}

func (f *fakeCues) Played() []Cue {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Cue, len(f.played))
	copy(out, f.played)
	return out
}

type fixture struct {
	rec    *fakeRecorder
	tr     *fakeTranscriber
	sink   *fakeSink
	insert *fakeInserter
	cues   *fakeCues
	clock  *fakeClock
	c      *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rec:    &fakeRecorder{pcm: []byte{1, 2, 3, 4}},
		tr:     &fakeTranscriber{text: "hello world"},
		sink:   newFakeSink(),
		insert: newFakeInserter(),
		cues:   &fakeCues{},
		clock:  newFakeClock(),
	}
	f.c = New(f.rec, f.tr, f.sink, f.insert, f.cues, Config{})
	f.c.now = f.clock.Now
	return f
}

func waitSink(t *testing.T, sink *fakeSink, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-sink.notify:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for sink update %q, saw %v", want, sink.Calls())
		}
	}
}

func waitInsert(t *testing.T, ins *fakeInserter) string {
	t.Helper()
	select {
	case text := <-ins.notify:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for insertion")
		return ""
	}
}

// endAfter advances the clock past the minimum duration and releases the key.
func (f *fixture) endAfter(d time.Duration) {
	f.clock.Advance(d)
	f.c.Handle(IntentEnd)
}

func TestBeginStartsRecording(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)

	if got := f.c.State(); got != StateRecording {
		t.Fatalf("state = %v, want recording", got)
	}
	if !f.rec.Armed() {
		t.Error("recorder not armed")
	}
	waitSink(t, f.sink, "recording")
}

func TestBeginWhileRecordingIgnored(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.c.Handle(IntentBegin)

	if got := f.rec.Arms(); got != 1 {
		t.Errorf("recorder armed %d times, want 1", got)
	}
	if got := f.c.State(); got != StateRecording {
		t.Errorf("state = %v, want recording", got)
	}
}

func TestArmFailureStaysIdle(t *testing.T) {
	f := newFixture(t)
	f.rec.armErr = errors.New("device busy")

	f.c.Handle(IntentBegin)

	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	waitSink(t, f.sink, "error:Microphone unavailable")
}

func TestTooShortRejected(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.endAfter(100 * time.Millisecond)

	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	waitSink(t, f.sink, "error:Too short")
	if f.tr.Calls() != 0 {
		t.Error("transcriber called for a too-short recording")
	}
}

func TestNoAudioRejected(t *testing.T) {
	f := newFixture(t)
	f.rec.pcm = nil

	f.c.Handle(IntentBegin)
	f.endAfter(500 * time.Millisecond)

	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	waitSink(t, f.sink, "error:No audio")
	if f.tr.Calls() != 0 {
		t.Error("transcriber called with no audio")
	}
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.tr.text = "  hello world "

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)

	waitSink(t, f.sink, "processing")
	waitSink(t, f.sink, "result:hello world")
	if got := f.c.State(); got != StateConfirming {
		t.Fatalf("state = %v, want confirming", got)
	}

	f.c.Handle(IntentConfirm)
	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	waitSink(t, f.sink, "hide")

	if got := waitInsert(t, f.insert); got != "hello world" {
		t.Errorf("inserted %q, want trimmed text", got)
	}
}

func TestConfirmInsertsExactlyOnce(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)
	waitSink(t, f.sink, "result:hello world")

	f.c.Handle(IntentConfirm)
	f.c.Handle(IntentConfirm)
	waitInsert(t, f.insert)

	time.Sleep(50 * time.Millisecond)
	if got := len(f.insert.Texts()); got != 1 {
		t.Errorf("inserted %d times, want 1", got)
	}
}

func TestEmptyTranscriptionFails(t *testing.T) {
	f := newFixture(t)
	f.tr.text = "   "

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)

	waitSink(t, f.sink, "error:Recognition failed")
	if got := f.c.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestTranscriptionErrorFails(t *testing.T) {
	f := newFixture(t)
	f.tr.err = errors.New("http 500")

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)

	waitSink(t, f.sink, "error:Recognition failed")
	if got := f.c.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
	if got := len(f.insert.Texts()); got != 0 {
		t.Error("failed transcription must not insert")
	}
}

func TestCancelWhileRecording(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.c.Handle(IntentCancel)

	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	if f.rec.Armed() {
		t.Error("recorder still armed after cancel")
	}
	waitSink(t, f.sink, "hide")
	if f.tr.Calls() != 0 {
		t.Error("cancelled recording must not be transcribed")
	}
}

func TestCancelWhileProcessingDiscardsLateResult(t *testing.T) {
	f := newFixture(t)
	f.tr.release = make(chan struct{})

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)
	waitSink(t, f.sink, "processing")

	f.c.Handle(IntentCancel)
	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	waitSink(t, f.sink, "hide")

	// The transcription finishes after the cancel; its result must be
	// discarded, not shown.
	close(f.tr.release)
	time.Sleep(100 * time.Millisecond)

	if got := f.c.State(); got != StateIdle {
		t.Errorf("state = %v, want idle after late result", got)
	}
	for _, call := range f.sink.Calls() {
		if call == "result:hello world" {
			t.Error("late result was shown after cancel")
		}
	}
	if got := len(f.insert.Texts()); got != 0 {
		t.Error("late result was inserted after cancel")
	}
}

func TestLateResultAfterNewRecordingDiscarded(t *testing.T) {
	f := newFixture(t)
	f.tr.release = make(chan struct{})

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)
	waitSink(t, f.sink, "processing")

	// Abandon the first task and start a second recording while the first
	// transcription is still in flight.
	f.c.Handle(IntentCancel)
	f.c.Handle(IntentBegin)
	close(f.tr.release)
	time.Sleep(100 * time.Millisecond)

	if got := f.c.State(); got != StateRecording {
		t.Errorf("state = %v, want recording (late result must not disturb it)", got)
	}
}

func TestCancelWhileConfirmingDiscards(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)
	waitSink(t, f.sink, "result:hello world")

	f.c.Handle(IntentCancel)
	if got := f.c.State(); got != StateIdle {
		t.Fatalf("state = %v, want idle", got)
	}
	waitSink(t, f.sink, "hide")

	// Confirm after discard is a no-op
	f.c.Handle(IntentConfirm)
	time.Sleep(50 * time.Millisecond)
	if got := len(f.insert.Texts()); got != 0 {
		t.Error("discarded text was inserted")
	}
}

func TestUnmappedIntentsIgnored(t *testing.T) {
	f := newFixture(t)

	// All of these have no transition from Idle
	f.c.Handle(IntentEnd)
	f.c.Handle(IntentConfirm)
	f.c.Handle(IntentCancel)

	if got := f.c.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
	if f.rec.Arms() != 0 {
		t.Error("recorder armed by unmapped intent")
	}
}

func TestCuesPlayedInOrder(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)
	waitSink(t, f.sink, "result:hello world")
	f.c.Handle(IntentConfirm)
	waitInsert(t, f.insert)

	deadline := time.Now().Add(2 * time.Second)
	for {
		played := f.cues.Played()
		if len(played) >= 3 {
			if played[0] != CueStart || played[1] != CueStop || played[2] != CueSuccess {
				t.Errorf("cues = %v, want [start stop success]", played)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for cues, got %v", f.cues.Played())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestInsertionFailurePlaysErrorCue(t *testing.T) {
	f := newFixture(t)
	f.insert.err = errors.New("uinput gone")

	f.c.Handle(IntentBegin)
	f.endAfter(time.Second)
	waitSink(t, f.sink, "result:hello world")
	f.c.Handle(IntentConfirm)
	waitInsert(t, f.insert)

	deadline := time.Now().Add(2 * time.Second)
	for {
		played := f.cues.Played()
		if len(played) > 0 && played[len(played)-1] == CueError {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("no error cue after failed insertion, got %v", played)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMinDurationConfigurable(t *testing.T) {
	f := newFixture(t)
	f.c.minDuration = 50 * time.Millisecond

	f.c.Handle(IntentBegin)
	f.endAfter(100 * time.Millisecond)

	waitSink(t, f.sink, "processing")
}

func TestShutdownWhileRecording(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.c.Shutdown()

	if f.rec.Armed() {
		t.Error("recorder still armed after shutdown")
	}
	if got := f.c.State(); got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
}

func TestUserMessagesFollowTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: device busy", ErrCaptureUnavailable), "Microphone unavailable"},
		{ErrTooShort, "Too short"},
		{ErrNoAudio, "No audio"},
		{fmt.Errorf("%w: http 500", ErrTranscription), "Recognition failed"},
		{fmt.Errorf("%w: empty result", ErrTranscription), "Recognition failed"},
	}
	for _, c := range cases {
		if got := userMessage(c.err); got != c.want {
			t.Errorf("userMessage(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestPolicyRejectionSkipsErrorCue(t *testing.T) {
	f := newFixture(t)

	f.c.Handle(IntentBegin)
	f.endAfter(100 * time.Millisecond)
	waitSink(t, f.sink, "error:Too short")

	for _, cue := range f.cues.Played() {
		if cue == CueError {
			t.Fatal("error cue played for a policy rejection")
		}
	}
}

func TestArmFailurePlaysErrorCue(t *testing.T) {
	f := newFixture(t)
	f.rec.armErr = errors.New("device busy")

	f.c.Handle(IntentBegin)
	waitSink(t, f.sink, "error:Microphone unavailable")

	played := f.cues.Played()
	if len(played) != 1 || played[0] != CueError {
		t.Errorf("cues = %v, want [error]", played)
	}
}
