// Package search drives queries end to end: load a result page, classify
// every listing fragment on it, optionally hand eligible listings to the
// application workflow, and advance through pages until the portal runs
// out. Records accumulate in encounter order across all pages and queries.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
	"github.com/GabrielBortolote/catho-bot/internal/listing"
	"github.com/GabrielBortolote/catho-bot/internal/status"
)

// Applier is the workflow surface the paginator needs.
type Applier interface {
	Apply(ctx context.Context, rec *listing.Record) listing.Outcome
}

// Locators names the result-page structure. The portal adapter supplies
// the concrete queries.
type Locators struct {
	// Results is the container the listing fragments live in.
	Results dom.Locator
	// Items are the listing fragments inside the container.
	Items dom.Locator
	// NextPage is the pagination control.
	NextPage dom.Locator
	// LoadError is the portal's "something went wrong" marker.
	LoadError dom.Locator
	// Banner is the dismiss control of the app banner shown on the first
	// visit; closing it is best effort.
	Banner dom.Locator
}

// Options tunes the query loop.
type Options struct {
	// LoadTimeout bounds each wait for the results container.
	LoadTimeout time.Duration
	// LoadAttempts is the total number of tries per query before it is
	// abandoned (the initial load plus the retries).
	LoadAttempts int
	// ApplyNow submits applications; when false the run is read-only and
	// every listing stays NotAttempted.
	ApplyNow bool
	// PageSettle is slept after advancing to the next page.
	PageSettle time.Duration
}

func (o *Options) setDefaults() {
	if o.LoadTimeout == 0 {
		o.LoadTimeout = 5 * time.Second
	}
	if o.LoadAttempts == 0 {
		o.LoadAttempts = 4
	}
	if o.PageSettle == 0 {
		o.PageSettle = time.Second
	}
}

// Paginator walks queries sequentially over one browser session.
type Paginator struct {
	browser    dom.Browser
	classifier *listing.Classifier
	workflow   Applier
	loc        Locators
	opts       Options
	notify     status.Notifier

	bannerClosed bool
	records      []listing.Record
}

func New(browser dom.Browser, classifier *listing.Classifier, workflow Applier, loc Locators, opts Options) *Paginator {
	opts.setDefaults()
	return &Paginator{
		browser:    browser,
		classifier: classifier,
		workflow:   workflow,
		loc:        loc,
		opts:       opts,
		notify:     status.Noop{},
	}
}

// SetNotifier replaces the console status sink.
func (p *Paginator) SetNotifier(n status.Notifier) {
	p.notify = n
}

// Run processes every query and returns the accumulated records in
// encounter order. A query that cannot be loaded is abandoned and the run
// continues with the next one.
func (p *Paginator) Run(ctx context.Context, queries []string) []listing.Record {
	log.Info("starting execution", "searches", len(queries))

	for i, query := range queries {
		log.Info("processing search", "number", i+1, "of", len(queries))
		if err := p.runQuery(ctx, query); err != nil {
			log.Error("not possible to load this search", "query", query, "error", err)
		}
	}
	return p.records
}

// runQuery loads one query (retrying up to the attempt cap) and walks its
// pages until no next-page control remains.
func (p *Paginator) runQuery(ctx context.Context, query string) error {
	if err := p.loadQuery(ctx, query); err != nil {
		return err
	}

	for page := 1; ; page++ {
		p.closeBanner()

		count, err := p.processPage(ctx, query)
		if err != nil {
			return err
		}
		log.Info("page processed", "page", page, "listings", count, "total", len(p.records))

		if !p.nextPage(ctx) {
			return nil
		}
	}
}

// loadQuery navigates to the query and waits for the results container,
// retrying the full load when the wait expires or the portal shows its
// error marker instead.
func (p *Paginator) loadQuery(ctx context.Context, query string) error {
	p.notify.Start("loading search results")
	defer p.notify.Stop()

	var lastErr error
	for attempt := 1; attempt <= p.opts.LoadAttempts; attempt++ {
		if err := p.browser.Navigate(ctx, query); err != nil {
			lastErr = err
			log.Warn("search load failed", "attempt", attempt, "error", err)
			continue
		}

		which, _, err := dom.WaitAny(ctx, p.browser, p.opts.LoadTimeout,
			p.loc.Results, p.loc.LoadError)
		if err == nil && which == 0 {
			return nil
		}
		if err == nil {
			lastErr = fmt.Errorf("portal reported a load error")
		} else {
			lastErr = err
		}
		log.Warn("search load failed", "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("after %d attempts: %w", p.opts.LoadAttempts, lastErr)
}

// processPage classifies every listing on the current page and, in apply
// mode, runs the workflow for the eligible ones. Because the workflow
// navigates away from the results page, classification of the whole page
// happens first and the paginator returns to the query page before
// advancing.
func (p *Paginator) processPage(ctx context.Context, query string) (int, error) {
	pageURL, err := p.browser.Location()
	if err != nil || pageURL == "" {
		pageURL = query
	}

	container, err := dom.Find(p.browser, p.loc.Results)
	if err != nil {
		return 0, fmt.Errorf("results container disappeared: %w", err)
	}
	items, err := dom.FindAll(container, p.loc.Items)
	if err != nil {
		return 0, fmt.Errorf("enumerating listings: %w", err)
	}

	start := len(p.records)
	for _, item := range items {
		rec := p.classifier.Classify(item)
		log.Info("listing read",
			"number", len(p.records)+1,
			"title", rec.Title,
			"classification", rec.Classification)
		p.records = append(p.records, rec)
	}

	if p.opts.ApplyNow {
		if err := p.applyPage(ctx, pageURL, p.records[start:]); err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

// applyPage runs the workflow for this page's eligible records, then
// restores the results page. A single listing's failure is recorded on
// that record only; the page keeps going.
func (p *Paginator) applyPage(ctx context.Context, pageURL string, recs []listing.Record) error {
	applied := false
	for i := range recs {
		if !recs[i].Applicable() {
			continue
		}
		recs[i].Outcome = p.workflow.Apply(ctx, &recs[i])
		applied = true
	}
	if !applied {
		return nil
	}

	// The workflow left the results page; come back for pagination.
	if err := p.browser.Navigate(ctx, pageURL); err != nil {
		return fmt.Errorf("returning to results page: %w", err)
	}
	if _, err := dom.Wait(ctx, p.browser, p.loc.Results, p.opts.LoadTimeout); err != nil {
		return fmt.Errorf("returning to results page: %w", err)
	}
	return nil
}

// nextPage advances to the next result page, reporting false when the
// query is exhausted. A missing or broken control ends the query rather
// than failing it.
func (p *Paginator) nextPage(ctx context.Context) bool {
	next, err := dom.Find(p.browser, p.loc.NextPage)
	if err != nil {
		return false
	}
	if err := next.Click(); err != nil {
		log.Debug("next page control not interactable", "error", err)
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.opts.PageSettle):
	}
	return true
}

// closeBanner dismisses the app banner the portal shows once per session.
func (p *Paginator) closeBanner() {
	if p.bannerClosed {
		return
	}
	p.bannerClosed = true

	el, err := dom.Find(p.browser, p.loc.Banner)
	if err != nil {
		return
	}
	if err := el.Click(); err != nil {
		log.Debug("failed to close app banner", "error", err)
	}
}
