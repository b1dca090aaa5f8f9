package services

import "github.com/medgenius/docindex/internal/core/ports/driven"

// startProgress starts a bar on p, or a silent one when p is nil.
func startProgress(p driven.Progress, description string, total int) driven.ProgressBar {
	if p == nil {
		return noopBar{}
	}
	return p.Start(description, total)
}

type noopBar struct{}

func (noopBar) Add(int) {}
func (noopBar) Finish() {}
