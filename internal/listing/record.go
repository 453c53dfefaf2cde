// Package listing holds the scraped job posting model and the classifier
// that turns one result-page fragment into a Record.
package listing

// NotExtracted is the sentinel stored in any field whose extraction failed.
const NotExtracted = "Not possible to extract"

// Classification is the mutually exclusive eligibility state of a listing.
type Classification string

const (
	// Unavailable marks listings that explicitly refuse applications.
	Unavailable Classification = "unavailable"
	// AlreadyApplied marks listings with a started or sent application.
	AlreadyApplied Classification = "already_applied"
	// ExternalApply marks listings that redirect to the company site.
	ExternalApply Classification = "external_apply"
	// EasyApply marks in-portal one-click listings.
	EasyApply Classification = "easy_apply"
	// DefaultApply marks in-portal form listings.
	DefaultApply Classification = "default_apply"
	// NotApplicable marks listings with no recognized apply marker.
	NotApplicable Classification = "not_applicable"
)

// OutcomeKind is the terminal result of an application attempt.
type OutcomeKind string

const (
	NotAttempted OutcomeKind = "not_attempted"
	Submitted    OutcomeKind = "submitted"
	TimedOut     OutcomeKind = "timed_out"
	Failed       OutcomeKind = "failed"
)

// Outcome carries the attempt result; Message is set only for Failed and
// preserves the original error text verbatim.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Record is one scraped job posting.
type Record struct {
	Title       string
	Link        string
	Salary      string
	Location    string
	Positions   string
	PostedDate  string
	Description string
	Compatible  bool

	Classification Classification
	// HasQuestions is only meaningful when Classification is EasyApply.
	HasQuestions bool
	// AppliedDate is the dd/mm/yyyy date parsed from an AlreadyApplied
	// fragment, NotExtracted when the parse failed, empty otherwise.
	AppliedDate string

	Outcome Outcome
}

// Applicable reports whether the workflow may be invoked on this record.
// ExternalApply listings require leaving the portal and are only recorded.
func (r *Record) Applicable() bool {
	return r.Classification == EasyApply || r.Classification == DefaultApply
}
