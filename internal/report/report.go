// Package report aggregates the finished run into summary counts and the
// exported tabular report. It consumes records only; all pipeline logic
// lives upstream.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/GabrielBortolote/catho-bot/internal/listing"
)

// Summary holds the per-category counts of one run.
type Summary struct {
	Total            int
	ByClassification map[listing.Classification]int
	ByOutcome        map[listing.OutcomeKind]int
	Compatible       int
}

// Summarize counts the finished records.
func Summarize(records []listing.Record) Summary {
	s := Summary{
		Total:            len(records),
		ByClassification: make(map[listing.Classification]int),
		ByOutcome:        make(map[listing.OutcomeKind]int),
	}
	for _, rec := range records {
		s.ByClassification[rec.Classification]++
		s.ByOutcome[rec.Outcome.Kind]++
		if rec.Compatible {
			s.Compatible++
		}
	}
	return s
}

var csvHeader = []string{
	"title", "link", "salary", "location", "number_of_positions",
	"posted_date", "description", "compatible", "classification",
	"has_questions", "applied_date", "application_outcome", "outcome_message",
}

// Render produces the report as RFC 4180 CSV, one row per record in run
// order. Booleans are always rendered as "true"/"false".
func Render(records []listing.Record) string {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	w.Write(csvHeader)
	for _, rec := range records {
		w.Write([]string{
			rec.Title,
			rec.Link,
			rec.Salary,
			rec.Location,
			rec.Positions,
			rec.PostedDate,
			rec.Description,
			strconv.FormatBool(rec.Compatible),
			string(rec.Classification),
			strconv.FormatBool(rec.HasQuestions),
			rec.AppliedDate,
			string(rec.Outcome.Kind),
			rec.Outcome.Message,
		})
	}
	w.Flush()
	return buf.String()
}

// WriteCSV writes the report to path.
func WriteCSV(path string, records []listing.Record) error {
	if err := os.WriteFile(path, []byte(Render(records)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RenderSummary produces the end-of-run console block.
func RenderSummary(s Summary) string {
	t := table.NewWriter()
	t.SetTitle("Summary")
	t.AppendRows([]table.Row{
		{"roles read", s.Total},
		{"already applied", s.ByClassification[listing.AlreadyApplied]},
		{"external", s.ByClassification[listing.ExternalApply]},
		{"easy apply", s.ByClassification[listing.EasyApply]},
		{"default apply", s.ByClassification[listing.DefaultApply]},
		{"unavailable", s.ByClassification[listing.Unavailable]},
		{"not applicable", s.ByClassification[listing.NotApplicable]},
		{"compatible with CV", s.Compatible},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"applications done", s.ByOutcome[listing.Submitted]},
		{"applications timed out", s.ByOutcome[listing.TimedOut]},
		{"applications with errors", s.ByOutcome[listing.Failed]},
	})
	return t.Render()
}
