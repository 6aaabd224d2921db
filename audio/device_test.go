package audio

import "testing"

func pickerDevices() []DeviceInfo {
	return []DeviceInfo{
		{ID: "0", Name: "Built-in Microphone"},
		{ID: "1", Name: "USB Desktop Mic"},
		{ID: "2", Name: "AirPods Pro"},
	}
}

func TestPickerNavigationBounds(t *testing.T) {
	p := newPicker(pickerDevices(), "")

	p.handleKey([]byte{'k'})
	if p.cursor != 0 {
		t.Errorf("cursor moved above first entry: %d", p.cursor)
	}

	p.handleKey([]byte{'j'})
	p.handleKey([]byte{0x1b, '[', 'B'})
	p.handleKey([]byte{'j'})
	if p.cursor != 2 {
		t.Errorf("cursor = %d, want clamped to 2", p.cursor)
	}

	p.handleKey([]byte{0x1b, '[', 'A'})
	if p.cursor != 1 {
		t.Errorf("cursor = %d after up arrow, want 1", p.cursor)
	}
}

func TestPickerPreferredPreselect(t *testing.T) {
	p := newPicker(pickerDevices(), "USB Desktop")
	if p.cursor != 1 {
		t.Errorf("cursor = %d, want preselected 1", p.cursor)
	}

	p = newPicker(pickerDevices(), "no such device")
	if p.cursor != 0 {
		t.Errorf("cursor = %d with no match, want 0", p.cursor)
	}
}

func TestPickerAcceptAndAbortKeys(t *testing.T) {
	p := newPicker(pickerDevices(), "")

	if got := p.handleKey([]byte{'j'}); got != pickNone {
		t.Errorf("j = %v, want none", got)
	}
	if got := p.handleKey([]byte{'\r'}); got != pickAccept {
		t.Errorf("enter = %v, want accept", got)
	}
	if got := p.handleKey([]byte{0x1b}); got != pickAbort {
		t.Errorf("esc = %v, want abort", got)
	}
	if got := p.handleKey([]byte{3}); got != pickAbort {
		t.Errorf("ctrl+c = %v, want abort", got)
	}
}
