package overlay

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func waitCall(t *testing.T, sink *FakeSink) string {
	t.Helper()
	select {
	case call := <-sink.Next():
		return call
	case <-time.After(errorAutoHide + 2*time.Second):
		t.Fatal("timed out waiting for sink update")
		return ""
	}
}

func TestDispatcherAppliesInOrder(t *testing.T) {
	sink := NewFakeSink()
	d := NewDispatcher(sink)
	defer d.Close()

	d.ShowRecording()
	if got := waitCall(t, sink); got != "recording" {
		t.Fatalf("got %q, want recording", got)
	}

	d.ShowProcessing()
	if got := waitCall(t, sink); got != "processing" {
		t.Fatalf("got %q, want processing", got)
	}

	d.ShowResult("hello")
	if got := waitCall(t, sink); got != "result:hello" {
		t.Fatalf("got %q, want result:hello", got)
	}
}

func TestDispatcherSkipsSuperseded(t *testing.T) {
	sink := NewFakeSink()
	sink.Block = make(chan struct{})
	d := NewDispatcher(sink)
	defer d.Close()

	// First update stalls in the sink; the next two land while it is
	// blocked, so only the newest should be applied afterwards.
	d.ShowRecording()
	time.Sleep(50 * time.Millisecond)
	d.ShowProcessing()
	d.ShowResult("late")
	close(sink.Block)

	if got := waitCall(t, sink); got != "recording" {
		t.Fatalf("got %q, want recording", got)
	}
	if got := waitCall(t, sink); got != "result:late" {
		t.Fatalf("got %q, want result:late (processing superseded)", got)
	}

	select {
	case call := <-sink.Next():
		t.Fatalf("unexpected extra update %q", call)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherErrorAutoHides(t *testing.T) {
	sink := NewFakeSink()
	d := NewDispatcher(sink)
	defer d.Close()

	d.ShowError("boom")
	if got := waitCall(t, sink); got != "error:boom" {
		t.Fatalf("got %q, want error:boom", got)
	}
	if got := waitCall(t, sink); got != "hide" {
		t.Fatalf("got %q, want hide after auto-hide delay", got)
	}
}

func TestDispatcherErrorHideCancelledByNewerUpdate(t *testing.T) {
	sink := NewFakeSink()
	d := NewDispatcher(sink)
	defer d.Close()

	d.ShowError("boom")
	if got := waitCall(t, sink); got != "error:boom" {
		t.Fatalf("got %q, want error:boom", got)
	}

	// A new recording starts before the auto-hide fires; the scheduled
	// hide must not clobber it.
	d.ShowRecording()
	if got := waitCall(t, sink); got != "recording" {
		t.Fatalf("got %q, want recording", got)
	}

	select {
	case call := <-sink.Next():
		t.Fatalf("unexpected update %q after superseded auto-hide", call)
	case <-time.After(errorAutoHide + 500*time.Millisecond):
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 150); got != "short" {
		t.Errorf("got %q, want unchanged", got)
	}
	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}
	got := Truncate(long, 150)
	if len(got) > 155 {
		t.Errorf("truncated text too long: %d chars", len(got))
	}
	if got[len(got)-3:] != "…" {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}
}

// Cyrillic runes are two bytes; the cut must count runes, not bytes.
func TestTruncateMultiByteRunes(t *testing.T) {
	long := "а" + strings.Repeat("я", 200)
	got := Truncate(long, 150)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated text is invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 151 {
		t.Errorf("rune count = %d, want 151 (150 + ellipsis)", n)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}

	exact := strings.Repeat("ё", 150)
	if out := Truncate(exact, 150); out != exact {
		t.Errorf("text at the limit should be unchanged, got %q", out)
	}
}
