//go:build !gui

package overlay

import "errors"

// GUI stub for builds without -tags gui.
type GUI struct{}

func NewGUI(onReady func()) (*GUI, error) {
	return nil, errors.New("built without GUI support (rebuild with -tags gui)")
}

func (g *GUI) Run() error        { return nil }
func (g *GUI) Quit()             {}
func (g *GUI) ShowRecording()    {}
func (g *GUI) ShowProcessing()   {}
func (g *GUI) ShowResult(string) {}
func (g *GUI) ShowError(string)  {}
func (g *GUI) Hide()             {}
