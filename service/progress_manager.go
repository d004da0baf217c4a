package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/cubelab/solfilter/domain"
	"github.com/cubelab/solfilter/internal/analyzer"
)

// ProgressManagerImpl implements the ProgressManager interface
type ProgressManagerImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	progressBar *progressbar.ProgressBar
	interactive bool
	maxValue    int // Maximum value for progress (set by Initialize)
	description string
}

// NewProgressManager creates a new progress manager
func NewProgressManager() domain.ProgressManager {
	return &ProgressManagerImpl{
		writer:      os.Stderr,
		interactive: IsInteractiveEnvironment(),
		description: "Labeling",
	}
}

// Initialize sets up progress tracking with the maximum value
func (pm *ProgressManagerImpl) Initialize(maxValue int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.maxValue = maxValue
	if pm.progressBar != nil {
		pm.progressBar.ChangeMax(maxValue)
		pm.progressBar.Reset()
	}
}

// Start starts the progress bar
func (pm *ProgressManagerImpl) Start() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Create progress bar if interactive and not already created
	if pm.interactive && pm.progressBar == nil {
		pm.progressBar = pm.createProgressBar(pm.description, pm.maxValue)
	}
}

// Describe changes the caption shown in front of the progress bar
func (pm *ProgressManagerImpl) Describe(description string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.description = description
	if pm.progressBar != nil {
		pm.progressBar.Describe(description)
	}
}

// Complete marks the progress as completed (finishes the progress bar)
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Finish progress bar if it exists
	if pm.progressBar != nil {
		_ = pm.progressBar.Finish()
	}
}

// Update updates the progress
func (pm *ProgressManagerImpl) Update(processed, total int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Create progress bar on first update if not created by Start
	if pm.progressBar == nil && pm.interactive {
		pm.progressBar = pm.createProgressBar(pm.description, total)
	}

	// Update progress bar if it exists
	if pm.progressBar != nil {
		if total != pm.maxValue {
			pm.maxValue = total
			pm.progressBar.ChangeMax(total)
		}
		_ = pm.progressBar.Set(processed)
	}
}

// SetWriter sets the output writer for progress bars
func (pm *ProgressManagerImpl) SetWriter(writer io.Writer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.writer = writer

	// Update interactivity check based on new writer
	if file, ok := writer.(*os.File); ok {
		pm.interactive = term.IsTerminal(int(file.Fd()))
	} else {
		pm.interactive = false
	}
}

// IsInteractive returns true if progress bars should be shown
func (pm *ProgressManagerImpl) IsInteractive() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.interactive
}

// Close cleans up any resources
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	// Finish progress bar if it exists
	if pm.progressBar != nil {
		_ = pm.progressBar.Finish()
	}
}

// createProgressBar creates a new progress bar with consistent styling
func (pm *ProgressManagerImpl) createProgressBar(description string, max int) *progressbar.ProgressBar {
	writer := pm.writer
	if writer == nil {
		writer = io.Discard
	}

	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
}

// IsInteractiveEnvironment reports whether stderr is a terminal outside CI.
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("SOLFILTER_NO_PROGRESS") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// PipelineProgress adapts a ProgressManager to the pipeline observer
// callbacks, captioning the bar with the current stage.
type PipelineProgress struct {
	pm domain.ProgressManager
}

// NewPipelineProgress creates an observer feeding pm.
func NewPipelineProgress(pm domain.ProgressManager) *PipelineProgress {
	return &PipelineProgress{pm: pm}
}

// StageStarted implements analyzer.Observer
func (p *PipelineProgress) StageStarted(stage analyzer.Stage, total int) {
	p.pm.Describe(stageCaption(stage))
	p.pm.Initialize(total)
	p.pm.Start()
}

// Progress implements analyzer.Observer
func (p *PipelineProgress) Progress(_ analyzer.Stage, done, total int) {
	p.pm.Update(done, total)
}

func stageCaption(stage analyzer.Stage) string {
	switch stage {
	case analyzer.StageEncode:
		return "Encoding"
	case analyzer.StageCluster:
		return "Clustering"
	case analyzer.StageLabel:
		return "Labeling"
	case analyzer.StageRank:
		return "Ranking"
	default:
		return string(stage)
	}
}
