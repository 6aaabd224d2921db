//go:build gui

package overlay

import (
	"errors"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
)

// GUI renders status in a small frameless window near the bottom of the
// screen. Hidden while idle, shown on the first recording update.
type GUI struct {
	fyneApp fyne.App
	window  fyne.Window
	label   *canvas.Text
	onReady func()
}

func NewGUI(onReady func()) (*GUI, error) {
	if onReady == nil {
		return nil, errors.New("onReady callback required")
	}
	return &GUI{onReady: onReady}, nil
}

// Run owns the main thread until the app quits.
func (g *GUI) Run() error {
	g.fyneApp = app.NewWithID("io.dictate.overlay")

	if drv, ok := g.fyneApp.Driver().(desktop.Driver); ok {
		g.window = drv.CreateSplashWindow()
	} else {
		g.window = g.fyneApp.NewWindow("dictate")
	}

	g.label = canvas.NewText("", theme.ForegroundColor())
	g.label.TextSize = 14

	g.window.SetContent(container.NewPadded(g.label))
	g.window.SetFixedSize(true)

	go g.onReady()

	// Event loop runs with the window hidden until the first update
	g.fyneApp.Run()
	return nil
}

func (g *GUI) Quit() {
	if g.fyneApp != nil {
		g.fyneApp.Quit()
	}
}

func (g *GUI) setText(text string) {
	fyne.Do(func() {
		if g.window == nil {
			return
		}
		g.label.Text = text
		g.label.Refresh()
		g.window.Show()
	})
}

func (g *GUI) ShowRecording()  { g.setText("● recording") }
func (g *GUI) ShowProcessing() { g.setText("… transcribing") }

func (g *GUI) ShowResult(text string) {
	g.setText(Truncate(text, maxResultChars))
}

func (g *GUI) ShowError(message string) {
	g.setText("✗ " + message)
}

func (g *GUI) Hide() {
	fyne.Do(func() {
		if g.window != nil {
			g.window.Hide()
		}
	})
}
