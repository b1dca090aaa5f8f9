// Package progress renders stage progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/medgenius/docindex/internal/core/ports/driven"
)

// Verify interface compliance.
var (
	_ driven.Progress    = (*Reporter)(nil)
	_ driven.ProgressBar = (*Bar)(nil)
)

// Reporter starts progress bars on a writer. Bars are animated only when
// the writer is a terminal; otherwise one summary line is printed per stage.
type Reporter struct {
	w   io.Writer
	tty bool
}

// New creates a reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w, tty: isTerminal(w)}
}

// NewStderr creates a reporter on standard error.
func NewStderr() *Reporter {
	return New(os.Stderr)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Start begins a stage with a known number of steps.
func (r *Reporter) Start(description string, total int) driven.ProgressBar {
	b := &Bar{w: r.w, description: description, total: total, tty: r.tty}
	if r.tty {
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(r.w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "█",
				SaucerHead:    "█",
				SaucerPadding: "░",
				BarStart:      "│",
				BarEnd:        "│",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(r.w, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
	}
	return b
}

// Bar tracks one stage.
type Bar struct {
	mu          sync.Mutex
	w           io.Writer
	bar         *progressbar.ProgressBar
	description string
	total       int
	done        int
	finished    bool
	tty         bool
}

// Add advances the bar by n steps.
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.done += n
	if b.bar != nil {
		_ = b.bar.Add(n)
	}
}

// Finish completes the bar. Later calls are ignored.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true

	if b.bar != nil {
		_ = b.bar.Finish()
		return
	}
	fmt.Fprintf(b.w, "%s: %d/%d\n", b.description, b.done, b.total)
}
