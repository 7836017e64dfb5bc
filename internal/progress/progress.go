// Package progress shows a terminal spinner while a near-orthogonal set grows.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const SPIN_INTERVAL = 120 * time.Millisecond

type Reporter interface {
	Start(dim uint32)
	Update(size int)
	Finish()
}

// SearchProgress renders a spinner described with the current dimension and
// set size. The zero value is disabled.
type SearchProgress struct {
	enabled bool
	out     io.Writer
	dim     uint32
	bar     *progressbar.ProgressBar
	done    chan struct{}
}

func NewSearchProgress(enabled bool, out io.Writer) *SearchProgress {
	if out == nil {
		out = os.Stderr
	}

	return &SearchProgress{enabled: enabled, out: out}
}

// DefaultEnabled reports whether stderr is a terminal.
func DefaultEnabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (p *SearchProgress) Start(dim uint32) {
	if !p.enabled {
		return
	}

	p.dim = dim
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSpinnerType(9),
		progressbar.OptionSetDescription(describe(dim, 0)),
		progressbar.OptionSetWidth(10),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	done := make(chan struct{})
	p.done = done

	go func(bar *progressbar.ProgressBar) {
		ticker := time.NewTicker(SPIN_INTERVAL)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = bar.Add(1)
			case <-done:
				return
			}
		}
	}(p.bar)
}

func (p *SearchProgress) Update(size int) {
	if p.bar == nil {
		return
	}

	p.bar.Describe(describe(p.dim, size))
}

func (p *SearchProgress) Finish() {
	if p.bar == nil {
		return
	}

	close(p.done)
	_ = p.bar.Finish()

	p.bar = nil
	p.done = nil
}

func describe(dim uint32, size int) string {
	return fmt.Sprintf("searching dim=%d size=%d", dim, size)
}
