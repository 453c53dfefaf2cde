// Package dom defines the document adapter contract the rest of the bot is
// written against. A Browser is a live (or simulated) page session, an
// Element is a handle to a node inside it. All portal I/O goes through these
// two interfaces; everything above them is markup-agnostic.
package dom

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is returned when a bounded wait expires.
	ErrTimeout = errors.New("wait timed out")
)

// Finder is the lookup capability shared by Browser and Element.
// FindOne returns the first match or ErrNotFound; FindMany returns all
// matches in document order and an empty slice when there are none.
type Finder interface {
	FindOne(query string) (Element, error)
	FindMany(query string) ([]Element, error)
}

// Element is a handle to a single node.
type Element interface {
	Finder

	// Attribute returns the named attribute, or ErrNotFound if absent.
	Attribute(name string) (string, error)
	// Text returns the rendered text content of the node.
	Text() (string, error)
	// HTML returns the outer HTML of the node.
	HTML() (string, error)
	// Click activates the node.
	Click() error
	// Type sends the given text to the node.
	Type(text string) error
}

// Browser is a page session.
type Browser interface {
	Finder

	Navigate(ctx context.Context, url string) error
	// Location returns the URL of the current page.
	Location() (string, error)
}

// Locator identifies a node by a CSS query, optionally constrained to nodes
// whose trimmed text equals Text. The text constraint is resolved here
// rather than in the adapters so both the live and the static adapter only
// have to implement plain CSS lookups.
type Locator struct {
	Query string
	Text  string
}

func (l Locator) String() string {
	if l.Text == "" {
		return l.Query
	}
	return l.Query + `[text=` + l.Text + `]`
}

// Find returns the first node matching the locator, or ErrNotFound.
func Find(f Finder, loc Locator) (Element, error) {
	if loc.Text == "" {
		return f.FindOne(loc.Query)
	}
	els, err := f.FindMany(loc.Query)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(t) == loc.Text {
			return el, nil
		}
	}
	return nil, ErrNotFound
}

// FindAll returns every node matching the locator in document order.
func FindAll(f Finder, loc Locator) ([]Element, error) {
	els, err := f.FindMany(loc.Query)
	if err != nil || loc.Text == "" {
		return els, err
	}
	matched := els[:0]
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(t) == loc.Text {
			matched = append(matched, el)
		}
	}
	return matched, nil
}

// Poll invokes probe at the given interval until it reports done, the
// timeout expires (ErrTimeout), the probe fails, or ctx is cancelled. The
// first probe runs immediately. Poll is the only suspension mechanism in
// the bot: every bounded wait in the paginator, the workflow and the
// resolver goes through it.
func Poll(ctx context.Context, timeout, interval time.Duration, probe func() (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		done, err := probe()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrTimeout
		case <-tick.C:
		}
	}
}

// pollInterval derives a poll interval from a timeout so short test
// timeouts still get several probes while long waits stay cheap.
func pollInterval(timeout time.Duration) time.Duration {
	interval := timeout / 20
	if interval < 5*time.Millisecond {
		interval = 5 * time.Millisecond
	}
	if interval > 250*time.Millisecond {
		interval = 250 * time.Millisecond
	}
	return interval
}

// Wait blocks until a node matching the locator appears, returning it, or
// ErrTimeout once the bound expires.
func Wait(ctx context.Context, f Finder, loc Locator, timeout time.Duration) (Element, error) {
	var found Element
	err := Poll(ctx, timeout, pollInterval(timeout), func() (bool, error) {
		el, err := Find(f, loc)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		found = el
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// WaitAny blocks until any of the locators matches, returning the index of
// the locator that matched first and its node. Locators are probed in the
// order given, so when several appear in the same poll the earliest one in
// the list wins.
func WaitAny(ctx context.Context, f Finder, timeout time.Duration, locs ...Locator) (int, Element, error) {
	var (
		matched int
		found   Element
	)
	err := Poll(ctx, timeout, pollInterval(timeout), func() (bool, error) {
		for i, loc := range locs {
			el, err := Find(f, loc)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return false, err
			}
			matched, found = i, el
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return 0, nil, err
	}
	return matched, found, nil
}
