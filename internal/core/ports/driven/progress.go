package driven

// Progress creates progress indicators for long-running stages.
type Progress interface {
	// Start begins a stage with a known number of steps.
	Start(description string, total int) ProgressBar
}

// ProgressBar tracks one stage.
type ProgressBar interface {
	// Add advances the bar by n steps.
	Add(n int)

	// Finish completes the bar.
	Finish()
}
