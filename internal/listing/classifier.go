package listing

import (
	"regexp"
	"strings"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
)

var appliedDateRe = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// Selectors locates the data fields inside one listing fragment. The
// concrete queries are supplied by the portal adapter.
type Selectors struct {
	TitleLink    dom.Locator
	Salary       dom.Locator
	LocationTags dom.Locator
	Positions    dom.Locator
	PostedDate   dom.Locator
	Description  dom.Locator
	AppliedDate  dom.Locator
}

// Markers are the literal phrases that decide classification. They are
// matched against the fragment's outer HTML.
type Markers struct {
	Unavailable    string
	AlreadyApplied []string
	External       string
	EasyApply      string
	Questionnaire  string
	DefaultApply   string
	Compatible     string
}

// Classifier converts listing fragments into Records. It never fails: a
// broken field lookup yields the sentinel for that field and extraction
// continues with the rest.
type Classifier struct {
	sel Selectors
	mk  Markers
}

func NewClassifier(sel Selectors, mk Markers) *Classifier {
	return &Classifier{sel: sel, mk: mk}
}

// Classify extracts one Record from a listing fragment and assigns its
// classification. Exactly one classification holds per record, decided by a
// fixed short-circuiting priority: unavailable beats already-applied beats
// the apply variants beats not-applicable. Ambiguous markup (two apply
// markers at once) resolves to the first match.
func (c *Classifier) Classify(frag dom.Element) Record {
	html, err := frag.HTML()
	if err != nil {
		html = ""
	}

	rec := Record{
		Title:       c.text(frag, c.sel.TitleLink),
		Salary:      c.text(frag, c.sel.Salary),
		Location:    c.locations(frag),
		Positions:   c.text(frag, c.sel.Positions),
		PostedDate:  c.text(frag, c.sel.PostedDate),
		Description: c.text(frag, c.sel.Description),
		Compatible:  has(html, c.mk.Compatible),
		Outcome:     Outcome{Kind: NotAttempted},
	}
	rec.Link = c.attr(frag, c.sel.TitleLink, "href")

	switch {
	case has(html, c.mk.Unavailable):
		rec.Classification = Unavailable

	case containsAny(html, c.mk.AlreadyApplied):
		rec.Classification = AlreadyApplied
		rec.AppliedDate = c.appliedDate(frag)

	case has(html, c.mk.External):
		rec.Classification = ExternalApply

	case has(html, c.mk.EasyApply):
		rec.Classification = EasyApply
		rec.HasQuestions = has(html, c.mk.Questionnaire)

	case has(html, c.mk.DefaultApply):
		rec.Classification = DefaultApply

	default:
		rec.Classification = NotApplicable
	}

	return rec
}

func (c *Classifier) text(frag dom.Element, loc dom.Locator) string {
	el, err := dom.Find(frag, loc)
	if err != nil {
		return NotExtracted
	}
	t, err := el.Text()
	if err != nil {
		return NotExtracted
	}
	return strings.TrimSpace(t)
}

func (c *Classifier) attr(frag dom.Element, loc dom.Locator, name string) string {
	el, err := dom.Find(frag, loc)
	if err != nil {
		return NotExtracted
	}
	v, err := el.Attribute(name)
	if err != nil {
		return NotExtracted
	}
	return v
}

// locations joins every location tag with ", ". A failed lookup yields the
// sentinel; a fragment without tags yields the empty string.
func (c *Classifier) locations(frag dom.Element) string {
	els, err := dom.FindAll(frag, c.sel.LocationTags)
	if err != nil {
		return NotExtracted
	}
	parts := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		parts = append(parts, strings.TrimSpace(t))
	}
	return strings.Join(parts, ", ")
}

// appliedDate searches the already-applied sub-fragment for the first
// dd/mm/yyyy substring.
func (c *Classifier) appliedDate(frag dom.Element) string {
	el, err := dom.Find(frag, c.sel.AppliedDate)
	if err != nil {
		return NotExtracted
	}
	t, err := el.Text()
	if err != nil {
		return NotExtracted
	}
	date := appliedDateRe.FindString(t)
	if date == "" {
		return NotExtracted
	}
	return date
}

// has treats an unset marker as never matching.
func has(html, marker string) bool {
	return marker != "" && strings.Contains(html, marker)
}

func containsAny(html string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(html, m) {
			return true
		}
	}
	return false
}
