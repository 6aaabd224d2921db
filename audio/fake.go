package audio

import (
	"sync"
	"sync/atomic"
)

// FakeContext hands out FakeCapture devices fed from an in-memory PCM slice.
type FakeContext struct {
	pcm []byte
}

func NewFakeContext(pcm []byte) *FakeContext {
	return &FakeContext{pcm: pcm}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm}, nil
}

const fakeChunkBytes = 2048

// FakeCapture delivers its PCM to the callback in fixed-size chunks on
// Start, synchronously, then stays "running" until Stop. Good enough to
// exercise arm/disarm cycles deterministically.
type FakeCapture struct {
	pcm      []byte
	callback atomic.Pointer[DataCallback]

	mu      sync.Mutex
	running bool
	starts  int
	failArm error
}

// FailArm makes the next Start return err, simulating an unavailable device.
func (f *FakeCapture) FailArm(err error) {
	f.mu.Lock()
	f.failArm = err
	f.mu.Unlock()
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	if f.failArm != nil {
		err := f.failArm
		f.mu.Unlock()
		return err
	}
	f.running = true
	f.starts++
	f.mu.Unlock()

	cb := f.callback.Load()
	if cb == nil {
		return nil
	}
	for pos := 0; pos < len(f.pcm); pos += fakeChunkBytes {
		end := min(pos+fakeChunkBytes, len(f.pcm))
		chunk := make([]byte, end-pos)
		copy(chunk, f.pcm[pos:end])
		(*cb)(chunk, uint32(len(chunk)/2))
	}
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
}

func (f *FakeCapture) Close() {}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.callback.Store(&cb)
}

func (f *FakeCapture) ClearCallback() {
	f.callback.Store(nil)
}

func (f *FakeCapture) DeviceName() string { return "fake" }

// Running reports whether the device is between Start and Stop.
func (f *FakeCapture) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Starts counts how many times the device was started.
func (f *FakeCapture) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}
