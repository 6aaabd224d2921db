package audio

import (
	"bytes"
	"errors"
	"testing"
)

func makePCM(n int) []byte {
	pcm := make([]byte, n)
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}
	return pcm
}

func TestRecorderArmDisarm(t *testing.T) {
	pcm := makePCM(10 * fakeChunkBytes)
	cap := &FakeCapture{pcm: pcm}
	rec := NewRecorder(cap)

	if err := rec.Arm(); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if !cap.Running() {
		t.Error("device not running after Arm")
	}

	got := rec.Disarm()
	if !bytes.Equal(got, pcm) {
		t.Errorf("Disarm returned %d bytes, want %d", len(got), len(pcm))
	}
	if cap.Running() {
		t.Error("device still running after Disarm")
	}
}

func TestRecorderDisarmTwice(t *testing.T) {
	cap := &FakeCapture{pcm: makePCM(fakeChunkBytes)}
	rec := NewRecorder(cap)

	if err := rec.Arm(); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	if got := rec.Disarm(); len(got) == 0 {
		t.Fatal("first Disarm returned no audio")
	}
	if got := rec.Disarm(); got != nil {
		t.Errorf("second Disarm returned %d bytes, want nil", len(got))
	}
}

func TestRecorderRepeatedCycles(t *testing.T) {
	pcm := makePCM(3 * fakeChunkBytes)
	cap := &FakeCapture{pcm: pcm}
	rec := NewRecorder(cap)

	for i := 0; i < 5; i++ {
		if err := rec.Arm(); err != nil {
			t.Fatalf("cycle %d: Arm: %v", i, err)
		}
		got := rec.Disarm()
		if !bytes.Equal(got, pcm) {
			t.Fatalf("cycle %d: got %d bytes, want %d", i, len(got), len(pcm))
		}
	}
	if cap.Starts() != 5 {
		t.Errorf("device started %d times, want 5", cap.Starts())
	}
}

func TestRecorderArmFailure(t *testing.T) {
	cap := &FakeCapture{}
	cap.FailArm(errors.New("device busy"))
	rec := NewRecorder(cap)

	if err := rec.Arm(); err == nil {
		t.Fatal("Arm succeeded, want error")
	}
	if got := rec.Disarm(); got != nil {
		t.Errorf("Disarm after failed Arm returned %d bytes, want nil", len(got))
	}
}

func TestCallbackIgnoredWhileDisarmed(t *testing.T) {
	cap := &FakeCapture{}
	rec := NewRecorder(cap)

	// Straggler block arriving after disarm must be dropped.
	if err := rec.Arm(); err != nil {
		t.Fatalf("Arm: %v", err)
	}
	rec.Disarm()
	rec.append(makePCM(64), 32)
	if err := rec.Arm(); err != nil {
		t.Fatalf("re-Arm: %v", err)
	}
	if got := rec.Disarm(); len(got) != 0 {
		t.Errorf("straggler block leaked into next session: %d bytes", len(got))
	}
}
