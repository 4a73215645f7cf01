package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/temirov/repomerge/internal/workspace"
)

const (
	progressBarWidthConstant         = 40
	percentScaleConstant             = 100.0
	cloneStartedTemplateConstant     = "Cloning %s repository from %s\n"
	cloneProgressTemplateConstant    = "\r%s"
	cloneFailedTemplateConstant      = "\nClone of %s repository exited with status %d\n"
	cloneInterruptedTemplateConstant = "\nClone of %s repository interrupted\n"
	lineTerminatorConstant           = "\n"
)

// CloneProgressRenderer draws one progress bar per clone. It implements workspace.ProgressReporter.
type CloneProgressRenderer struct {
	mutex   sync.Mutex
	output  io.Writer
	bar     progress.Model
	drawing bool
}

// NewCloneProgressRenderer constructs a renderer writing to output.
func NewCloneProgressRenderer(output io.Writer) *CloneProgressRenderer {
	return &CloneProgressRenderer{
		output: output,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidthConstant)),
	}
}

// CloneStarted announces the clone.
func (renderer *CloneProgressRenderer) CloneStarted(role workspace.Role, sourceURL string) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	fmt.Fprintf(renderer.output, cloneStartedTemplateConstant, role, sourceURL)
}

// CloneProgressed redraws the bar in place.
func (renderer *CloneProgressRenderer) CloneProgressed(_ workspace.Role, percent int) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	renderer.drawing = true
	fmt.Fprintf(renderer.output, cloneProgressTemplateConstant, renderer.bar.ViewAs(float64(percent)/percentScaleConstant))
}

// CloneFinished terminates the bar line and reports failed clones.
func (renderer *CloneProgressRenderer) CloneFinished(role workspace.Role, exitStatus int) {
	renderer.mutex.Lock()
	defer renderer.mutex.Unlock()
	switch {
	case exitStatus < 0:
		fmt.Fprintf(renderer.output, cloneInterruptedTemplateConstant, role)
	case exitStatus > 0:
		fmt.Fprintf(renderer.output, cloneFailedTemplateConstant, role, exitStatus)
	case renderer.drawing:
		fmt.Fprint(renderer.output, lineTerminatorConstant)
	}
	renderer.drawing = false
}
