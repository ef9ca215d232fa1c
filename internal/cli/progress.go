package cli

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress is a spinner shown while a long step runs. The zero value and
// a nil *Progress do nothing.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner on w with the given suffix. Nothing is
// shown when quiet is set or w is not a terminal.
func StartProgress(w io.Writer, suffix string, quiet bool) *Progress {
	if quiet || !IsTerminal(w) {
		return &Progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return &Progress{s: s}
}

// Stop removes the spinner.
func (p *Progress) Stop() {
	if p == nil || p.s == nil {
		return
	}
	p.s.Stop()
}
