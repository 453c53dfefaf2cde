// Package status renders transient console state during long waits.
package status

import (
	"time"

	"github.com/briandowns/spinner"
)

// Notifier shows what the bot is currently blocked on.
type Notifier interface {
	Start(message string)
	Stop()
}

// Spinner is a Notifier backed by a console spinner.
type Spinner struct {
	s *spinner.Spinner
}

func NewSpinner() *Spinner {
	return &Spinner{s: spinner.New(spinner.CharSets[9], 100*time.Millisecond)}
}

func (s *Spinner) Start(message string) {
	s.s.Suffix = " " + message
	if !s.s.Active() {
		s.s.Start()
	}
}

func (s *Spinner) Stop() {
	s.s.Stop()
}

// Noop discards all notifications; used in tests and non-interactive runs.
type Noop struct{}

func (Noop) Start(string) {}
func (Noop) Stop()        {}
