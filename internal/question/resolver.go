package question

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Prompter supplies answers interactively on a cache miss. AskChoice
// returns a 0-based option index; the resolver validates the range and
// re-asks, so implementations may return whatever the user typed.
type Prompter interface {
	AskText(title string) (string, error)
	AskChoice(title string, options []string) (int, error)
}

// Resolver resolves one question to an answer and applies it to the form.
type Resolver struct {
	cache  *Cache
	prompt Prompter
}

func NewResolver(cache *Cache, prompt Prompter) *Resolver {
	return &Resolver{cache: cache, prompt: prompt}
}

// Resolve produces the answer for q, consulting the cache first and
// prompting only on a miss, then applies it to the question's form
// controls. New answers are persisted before any form interaction, so a
// crash during submission still keeps them for future runs. The returned
// string is the resolved answer (an option label for single choice).
func (r *Resolver) Resolve(q *Question) (string, error) {
	switch q.Kind {
	case KindText:
		return r.resolveText(q)
	case KindSingleChoice:
		return r.resolveChoice(q)
	default:
		return "", fmt.Errorf("unknown question kind %q", q.Kind)
	}
}

func (r *Resolver) resolveText(q *Question) (string, error) {
	answer, cached := r.cache.Get(q.Title)
	if !cached {
		var err error
		answer, err = r.prompt.AskText(q.Title)
		if err != nil {
			return "", fmt.Errorf("failed to read answer for %q: %w", q.Title, err)
		}
		if err := r.cache.Put(q.Title, answer); err != nil {
			return "", err
		}
	} else {
		log.Debug("answer cache hit", "question", q.Title)
	}

	// An empty answer means the question is skipped.
	if answer == "" {
		return "", nil
	}
	if err := q.Input.Type(answer); err != nil {
		return "", fmt.Errorf("failed to fill answer for %q: %w", q.Title, err)
	}
	return answer, nil
}

func (r *Resolver) resolveChoice(q *Question) (string, error) {
	if len(q.Options) == 0 {
		return "", fmt.Errorf("question %q has no options", q.Title)
	}

	if answer, cached := r.cache.Get(q.Title); cached {
		// Cached value is the option label; a label missing from the
		// live options (the portal changed the question) is a miss.
		for _, opt := range q.Options {
			if opt.Label == answer {
				log.Debug("answer cache hit", "question", q.Title, "option", answer)
				return answer, r.selectOption(q, opt)
			}
		}
		log.Warn("cached answer no longer offered, asking again",
			"question", q.Title, "cached", answer)
	}

	idx, err := r.askChoice(q)
	if err != nil {
		return "", err
	}
	answer := q.Options[idx].Label
	if err := r.cache.Put(q.Title, answer); err != nil {
		return "", err
	}
	return answer, r.selectOption(q, q.Options[idx])
}

// askChoice keeps asking until the prompter returns an index in range.
func (r *Resolver) askChoice(q *Question) (int, error) {
	labels := q.labels()
	for {
		idx, err := r.prompt.AskChoice(q.Title, labels)
		if err != nil {
			return 0, fmt.Errorf("failed to read choice for %q: %w", q.Title, err)
		}
		if idx >= 0 && idx < len(q.Options) {
			return idx, nil
		}
		log.Warn("choice out of range, asking again",
			"question", q.Title, "got", idx, "options", len(q.Options))
	}
}

func (r *Resolver) selectOption(q *Question, opt Option) error {
	if err := opt.Control.Click(); err != nil {
		return fmt.Errorf("failed to select option %q for %q: %w", opt.Label, q.Title, err)
	}
	return nil
}
