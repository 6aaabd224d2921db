package audio

import (
	"fmt"
	"sync"
)

// Recorder accumulates PCM from a capture device for one recording session.
// Arm and Disarm are called by the session controller; the data callback
// runs on the real-time capture thread and only appends while armed, it
// never blocks on anything but the buffer mutex.
type Recorder struct {
	device CaptureDevice

	mu    sync.Mutex
	armed bool
	buf   []byte
}

func NewRecorder(device CaptureDevice) *Recorder {
	return &Recorder{device: device}
}

// Arm clears the buffer, installs the callback, and starts the stream. A
// device that cannot be opened surfaces as an error, not a crash.
func (r *Recorder) Arm() error {
	r.mu.Lock()
	r.armed = true
	r.buf = nil
	r.mu.Unlock()

	r.device.SetCallback(r.append)
	if err := r.device.Start(); err != nil {
		r.device.ClearCallback()
		r.mu.Lock()
		r.armed = false
		r.mu.Unlock()
		return fmt.Errorf("starting capture: %w", err)
	}
	return nil
}

// Disarm stops the stream and returns the accumulated buffer, transferring
// ownership to the caller. Safe to call repeatedly; a disarmed recorder
// returns nil.
func (r *Recorder) Disarm() []byte {
	r.mu.Lock()
	if !r.armed {
		r.mu.Unlock()
		return nil
	}
	r.armed = false
	r.mu.Unlock()

	r.device.Stop()
	r.device.ClearCallback()

	r.mu.Lock()
	buf := r.buf
	r.buf = nil
	r.mu.Unlock()
	return buf
}

func (r *Recorder) append(data []byte, _ uint32) {
	if len(data) == 0 {
		return
	}
	r.mu.Lock()
	if r.armed {
		r.buf = append(r.buf, data...)
	}
	r.mu.Unlock()
}

// DeviceName names the underlying capture device for diagnostics.
func (r *Recorder) DeviceName() string {
	return r.device.DeviceName()
}
