// Package question resolves questionnaire items against a persistent answer
// cache, falling back to an interactive prompt on a miss.
package question

import "github.com/GabrielBortolote/catho-bot/internal/dom"

// Kind is the shape of a questionnaire item.
type Kind string

const (
	// KindText is a free-text question.
	KindText Kind = "text"
	// KindSingleChoice is a grouped set of exclusive options.
	KindSingleChoice Kind = "single_choice"
)

// Option is one selectable choice of a single-choice question.
type Option struct {
	Label   string
	Control dom.Element
}

// Question is one questionnaire item with handles to its form controls.
// The title doubles as the cache key.
type Question struct {
	Title string
	Kind  Kind

	// Input is the free-text control; set for KindText.
	Input dom.Element
	// Options are the choices in document order; set for KindSingleChoice.
	Options []Option
}

func (q *Question) labels() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Label
	}
	return out
}
