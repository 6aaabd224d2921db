package overlay

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Terminal message types
type recordingMsg struct{}
type processingMsg struct{}
type resultMsg struct{ Text string }
type errorMsg struct{ Text string }
type hideMsg struct{}
type infoMsg struct{ Device, Provider, Hotkey string }
type tickMsg time.Time

type panelState int

const (
	panelIdle panelState = iota
	panelRecording
	panelProcessing
	panelConfirming
	panelError
)

var (
	styleRec     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleProc    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleResult  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleHint    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHintKey = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type terminalModel struct {
	fetchInfo     func() infoMsg
	state         panelState
	frame         int
	startedAt     time.Time
	resultText    string
	errorText     string
	deviceLine    string
	providerLine  string
	hotkeyLine    string
	lastText      string
	msgCount      int
	width, height int
}

func terminalTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m terminalModel) Init() tea.Cmd {
	if m.fetchInfo == nil {
		return terminalTick()
	}
	fetch := m.fetchInfo
	return tea.Batch(terminalTick(), func() tea.Msg { return fetch() })
}

func (m terminalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, terminalTick()

	case recordingMsg:
		m.state = panelRecording
		m.startedAt = time.Now()

	case processingMsg:
		m.state = panelProcessing

	case resultMsg:
		m.state = panelConfirming
		m.resultText = msg.Text

	case errorMsg:
		m.state = panelError
		m.errorText = msg.Text

	case hideMsg:
		if m.state == panelConfirming {
			m.msgCount++
			m.lastText = m.resultText
		}
		m.state = panelIdle
		m.resultText = ""
		m.errorText = ""

	case infoMsg:
		m.deviceLine = msg.Device
		m.providerLine = msg.Provider
		m.hotkeyLine = msg.Hotkey
	}
	return m, nil
}

func (m terminalModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	switch m.state {
	case panelRecording:
		elapsed := time.Since(m.startedAt).Seconds()
		b.WriteString("  " + styleRec.Render(fmt.Sprintf("● REC %.1fs", elapsed)) + "\n")
		b.WriteString("  " + styleHint.Render("release to transcribe, ") +
			styleHintKey.Render("Esc") + styleHint.Render(" to discard") + "\n")

	case panelProcessing:
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString("  " + styleProc.Render(spin+" transcribing…") + "\n")
		b.WriteString("  " + styleHintKey.Render("Esc") + styleHint.Render(" to discard") + "\n")

	case panelConfirming:
		b.WriteString("  " + styleResult.Render(Truncate(m.resultText, maxResultChars)) + "\n\n")
		b.WriteString("  " + styleHintKey.Render(m.hotkeyConfirm()) + styleHint.Render(" to insert • ") +
			styleHintKey.Render("Esc") + styleHint.Render(" to discard") + "\n")

	case panelError:
		b.WriteString("  " + styleErr.Render("✗ "+m.errorText) + "\n")

	default:
		b.WriteString("  " + styleIdle.Render("○ STANDBY") + "\n")
		if m.hotkeyLine != "" {
			b.WriteString("  " + styleHintKey.Render(m.hotkeyLine) + styleHint.Render(" to dictate") + "\n")
		}
	}

	b.WriteString("\n")
	if m.lastText != "" {
		title := styleIdle.Render(fmt.Sprintf("Last insertion (#%d)", m.msgCount))
		b.WriteString("  " + title + "\n")
		b.WriteString("  " + styleHint.Render(Truncate(m.lastText, maxResultChars)) + "\n\n")
	}
	if m.providerLine != "" {
		b.WriteString("  " + styleIdle.Render(m.providerLine) + "\n")
	}
	if m.deviceLine != "" {
		b.WriteString("  " + styleIdle.Render(m.deviceLine) + "\n")
	}
	return b.String()
}

func (m terminalModel) hotkeyConfirm() string {
	if m.hotkeyLine == "" {
		return "Space"
	}
	parts := strings.Split(m.hotkeyLine, "+")
	return parts[len(parts)-1]
}

// Terminal is the default status panel, rendered with bubbletea in the
// launching terminal.
type Terminal struct {
	program *tea.Program
	done    chan struct{}

	mu   sync.Mutex
	info infoMsg
}

func NewTerminal() *Terminal {
	t := &Terminal{done: make(chan struct{})}
	t.program = tea.NewProgram(terminalModel{fetchInfo: t.snapshotInfo})
	return t
}

// Run blocks until the user quits the panel with Ctrl+C.
func (t *Terminal) Run() error {
	defer close(t.done)
	_, err := t.program.Run()
	return err
}

// Done is closed when the panel exits.
func (t *Terminal) Done() <-chan struct{} { return t.done }

func (t *Terminal) Quit() { t.program.Quit() }

// SetInfo populates the static lines shown under the status. It only stores
// them; the event loop picks them up on startup, so it is safe to call before
// Run is consuming messages.
func (t *Terminal) SetInfo(device, provider, hotkey string) {
	t.mu.Lock()
	t.info = infoMsg{Device: device, Provider: provider, Hotkey: hotkey}
	t.mu.Unlock()
}

func (t *Terminal) snapshotInfo() infoMsg {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

func (t *Terminal) ShowRecording()           { t.program.Send(recordingMsg{}) }
func (t *Terminal) ShowProcessing()          { t.program.Send(processingMsg{}) }
func (t *Terminal) ShowResult(text string)   { t.program.Send(resultMsg{Text: text}) }
func (t *Terminal) ShowError(message string) { t.program.Send(errorMsg{Text: message}) }
func (t *Terminal) Hide()                    { t.program.Send(hideMsg{}) }
