package audio

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type pickAction int

const (
	pickNone pickAction = iota
	pickAccept
	pickAbort
)

// picker holds the cursor state for the interactive device menu, kept apart
// from terminal IO so the navigation rules are testable.
type picker struct {
	devices []DeviceInfo
	cursor  int
}

// newPicker preselects the device whose name matches preferred, so a
// configured device is one Enter away.
func newPicker(devices []DeviceInfo, preferred string) *picker {
	p := &picker{devices: devices}
	if preferred == "" {
		return p
	}
	for i, d := range devices {
		if strings.Contains(d.Name, preferred) {
			p.cursor = i
			break
		}
	}
	return p
}

// handleKey applies one raw-mode read. Arrows and j/k move, Enter accepts,
// Esc and Ctrl+C abort. A lone 0x1b is Esc; arrow sequences arrive as three
// bytes in a single read.
func (p *picker) handleKey(buf []byte) pickAction {
	if len(buf) == 1 {
		switch buf[0] {
		case '\r':
			return pickAccept
		case 3, 0x1b:
			return pickAbort
		case 'j':
			p.down()
		case 'k':
			p.up()
		}
		return pickNone
	}
	if len(buf) == 3 && buf[0] == 0x1b && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			p.up()
		case 'B':
			p.down()
		}
	}
	return pickNone
}

func (p *picker) up() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *picker) down() {
	if p.cursor < len(p.devices)-1 {
		p.cursor++
	}
}

func (p *picker) render() {
	fmt.Print("\r\x1b[J")
	fmt.Print("Select input device (↑/↓ or j/k, Enter to confirm, Esc to abort):\r\n\r\n")
	for i, d := range p.devices {
		line := d.Name
		if IsBluetooth(d.Name) {
			line += " \x1b[33m[⚠ lower audio quality]\x1b[0m"
		}
		if i == p.cursor {
			fmt.Printf("  \x1b[1;36m▶ %s\x1b[0m\r\n", line)
		} else {
			fmt.Printf("    %s\r\n", line)
		}
	}
}

// SelectDevice presents an interactive picker and returns the chosen capture
// device. A single device is returned without prompting; preferred preselects
// the cursor on the matching device name.
func SelectDevice(ctx Context, preferred string) (*DeviceInfo, error) {
	devices, err := ctx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}
	if len(devices) == 1 {
		return &devices[0], nil
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("setting raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	p := newPicker(devices, preferred)
	p.render()

	buf := make([]byte, 3)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		switch p.handleKey(buf[:n]) {
		case pickAccept:
			fmt.Print("\r\n")
			return &devices[p.cursor], nil
		case pickAbort:
			fmt.Print("\r\n")
			return nil, fmt.Errorf("selection aborted")
		}
		fmt.Printf("\x1b[%dA", len(devices)+2)
		p.render()
	}
}
