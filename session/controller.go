package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Valeron2206/voice-dictation-pro/log"
)

// Error taxonomy. All of these are recovered locally by returning to Idle;
// none are fatal to the process.
var (
	ErrCaptureUnavailable = errors.New("capture device unavailable")
	ErrTooShort           = errors.New("recording too short")
	ErrNoAudio            = errors.New("no audio captured")
	ErrTranscription      = errors.New("transcription failed")
	ErrInsertion          = errors.New("text insertion failed")
)

const DefaultMinDuration = 300 * time.Millisecond

// Config carries the static policy knobs for a Controller.
type Config struct {
	// MinDuration is the shortest recording that will be sent to the
	// transcriber. Zero means DefaultMinDuration.
	MinDuration time.Duration
}

// Controller is the single serialization point for the session state machine.
// It drives the Recorder, spawns the transcription task, and pushes status
// updates; everything else only requests transitions through Handle.
type Controller struct {
	rec    Recorder
	tr     Transcriber
	status StatusSink
	insert Inserter
	cues   CuePlayer

	minDuration time.Duration
	now         func() time.Time

	mu          sync.Mutex
	state       State
	gen         uint64
	startedAt   time.Time
	pendingText string
	cancelTask  context.CancelFunc
}

func New(rec Recorder, tr Transcriber, status StatusSink, insert Inserter, cues CuePlayer, cfg Config) *Controller {
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	return &Controller{
		rec:         rec,
		tr:          tr,
		status:      status,
		insert:      insert,
		cues:        cues,
		minDuration: cfg.MinDuration,
		now:         time.Now,
		state:       StateIdle,
	}
}

// State reports the current session state. Safe to call from the hotkey
// event goroutine; the lock is never held across blocking work.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Handle applies one intent to the state machine. Intents that have no
// transition for the current state are ignored.
func (c *Controller) Handle(intent Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.state == StateIdle && intent == IntentBegin:
		c.beginLocked()
	case c.state == StateRecording && intent == IntentEnd:
		c.endLocked()
	case c.state == StateRecording && intent == IntentCancel:
		c.rec.Disarm()
		c.toIdleLocked()
		c.status.Hide()
	case c.state == StateProcessing && intent == IntentCancel:
		c.abandonTaskLocked()
		c.toIdleLocked()
		c.status.Hide()
	case c.state == StateConfirming && intent == IntentConfirm:
		c.confirmLocked()
	case c.state == StateConfirming && intent == IntentCancel:
		c.pendingText = ""
		c.toIdleLocked()
		c.status.Hide()
	default:
		log.Info("intent_ignored: " + intent.String() + " in " + c.state.String())
	}
}

func (c *Controller) beginLocked() {
	if err := c.rec.Arm(); err != nil {
		c.failLocked(fmt.Errorf("%w: %v", ErrCaptureUnavailable, err))
		return
	}
	c.startedAt = c.now()
	c.setStateLocked(StateRecording)
	c.cues.Play(CueStart)
	c.status.ShowRecording()
}

func (c *Controller) endLocked() {
	pcm := c.rec.Disarm()
	c.cues.Play(CueStop)

	duration := c.now().Sub(c.startedAt)
	if duration < c.minDuration {
		c.failLocked(ErrTooShort)
		return
	}
	if len(pcm) == 0 {
		c.failLocked(ErrNoAudio)
		return
	}

	c.setStateLocked(StateProcessing)
	c.status.ShowProcessing()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelTask = cancel
	// The task carries the generation of the Processing state it belongs to;
	// a completion whose generation no longer matches is discarded.
	go c.runTask(ctx, c.gen, pcm)
}

// runTask executes the transcription strictly outside the controller's
// critical section, so CancelIntent stays responsive while it runs.
func (c *Controller) runTask(ctx context.Context, gen uint64, pcm []byte) {
	text, err := c.tr.Transcribe(ctx, pcm)
	c.completeTask(gen, text, err)
}

func (c *Controller) completeTask(gen uint64, text string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateProcessing || c.gen != gen {
		log.Info("stale_result_discarded")
		return
	}
	c.cancelTask = nil

	text = strings.TrimSpace(text)
	if err != nil {
		c.failLocked(fmt.Errorf("%w: %v", ErrTranscription, err))
		return
	}
	if text == "" {
		c.failLocked(fmt.Errorf("%w: empty result", ErrTranscription))
		return
	}

	c.pendingText = text
	c.setStateLocked(StateConfirming)
	c.status.ShowResult(text)
}

// failLocked returns the machine to Idle and surfaces err. Policy rejections
// already got the stop cue on release and skip the error cue; every other
// failure plays it.
func (c *Controller) failLocked(err error) {
	if errors.Is(err, ErrTooShort) || errors.Is(err, ErrNoAudio) {
		log.Warnf("recording rejected: %v", err)
	} else {
		log.Errorf("session error: %v", err)
		c.cues.Play(CueError)
	}
	c.toIdleLocked()
	c.status.ShowError(userMessage(err))
}

// userMessage maps the error taxonomy to the short strings the overlay shows.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrCaptureUnavailable):
		return "Microphone unavailable"
	case errors.Is(err, ErrTooShort):
		return "Too short"
	case errors.Is(err, ErrNoAudio):
		return "No audio"
	default:
		return "Recognition failed"
	}
}

func (c *Controller) confirmLocked() {
	if c.pendingText == "" {
		return
	}
	text := c.pendingText
	c.pendingText = ""
	c.toIdleLocked()
	c.status.Hide()
	go c.insertText(text)
}

// insertText runs off the lock; clipboard and keystroke synthesis can stall.
func (c *Controller) insertText(text string) {
	log.TranscriptionText(text)
	if err := c.insert.Insert(text); err != nil {
		log.Errorf("%v", fmt.Errorf("%w: %v", ErrInsertion, err))
		c.cues.Play(CueError)
		return
	}
	c.cues.Play(CueSuccess)
}

// Shutdown stops any active capture and abandons in-flight work. Called once
// on interrupt before the process exits.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRecording {
		c.rec.Disarm()
	}
	c.abandonTaskLocked()
	c.pendingText = ""
	c.toIdleLocked()
	c.status.Hide()
}

func (c *Controller) abandonTaskLocked() {
	if c.cancelTask != nil {
		c.cancelTask()
		c.cancelTask = nil
	}
}

func (c *Controller) toIdleLocked() {
	if c.state != StateIdle {
		c.setStateLocked(StateIdle)
	}
}

// setStateLocked is the only writer of c.state. Every transition bumps the
// generation so stale async completions can be told apart.
func (c *Controller) setStateLocked(s State) {
	log.Info("transition: " + c.state.String() + " -> " + s.String())
	c.state = s
	c.gen++
}
