// Package apply drives the per-listing application workflow: a small state
// machine that navigates to a listing, clicks through the portal's apply
// sequence and, when a questionnaire appears, resolves every item through
// the question resolver. One invocation touches exactly one listing; any
// error surfaces as a Failed outcome on that record and nothing else.
package apply

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
	"github.com/GabrielBortolote/catho-bot/internal/listing"
	"github.com/GabrielBortolote/catho-bot/internal/question"
	"github.com/GabrielBortolote/catho-bot/internal/status"
)

// Locators names the controls and markers the workflow interacts with.
// The portal adapter supplies the concrete queries.
type Locators struct {
	// Default apply path.
	ApplyButton   dom.Locator
	ConfirmButton dom.Locator
	AckButton     dom.Locator

	// Easy apply path.
	EasyApplyButton dom.Locator
	// SuccessMarker appears once the portal records the submission.
	SuccessMarker dom.Locator
	// SubmitConfirmed appears when the portal already holds a submission
	// for this listing. It is a post-submit marker only; the list-view
	// phrase with the same text belongs to the classifier.
	SubmitConfirmed dom.Locator

	// Questionnaire dialog.
	QuestionnaireDialog dom.Locator
	QuestionItems       dom.Locator
	QuestionTitle       dom.Locator
	TextInput           dom.Locator
	ChoiceOptions       dom.Locator
	SubmitAnswers       dom.Locator
}

// Options bounds every wait in the workflow.
type Options struct {
	// ControlTimeout bounds the wait for the primary apply control.
	ControlTimeout time.Duration
	// DialogTimeout bounds confirmation and acknowledgement dialogs.
	DialogTimeout time.Duration
	// ManualTimeout bounds the manual-interaction window on easy apply:
	// the portal may present secondary steps outside the bot's control,
	// so this is deliberately long and its expiry is a TimedOut outcome,
	// not a failure.
	ManualTimeout time.Duration
	// SubmitTimeout bounds the success wait after submitting answers.
	SubmitTimeout time.Duration
}

func (o *Options) setDefaults() {
	if o.ControlTimeout == 0 {
		o.ControlTimeout = 10 * time.Second
	}
	if o.DialogTimeout == 0 {
		o.DialogTimeout = 5 * time.Second
	}
	if o.ManualTimeout == 0 {
		o.ManualTimeout = 10 * time.Minute
	}
	if o.SubmitTimeout == 0 {
		o.SubmitTimeout = 30 * time.Second
	}
}

// Workflow applies to one listing at a time over a shared browser session.
type Workflow struct {
	browser  dom.Browser
	resolver *question.Resolver
	loc      Locators
	opts     Options
	notify   status.Notifier
}

func New(browser dom.Browser, resolver *question.Resolver, loc Locators, opts Options) *Workflow {
	opts.setDefaults()
	return &Workflow{
		browser:  browser,
		resolver: resolver,
		loc:      loc,
		opts:     opts,
		notify:   status.Noop{},
	}
}

// SetNotifier replaces the console status sink.
func (w *Workflow) SetNotifier(n status.Notifier) {
	w.notify = n
}

// Apply runs the workflow for one record and returns its terminal outcome.
// Only EasyApply and DefaultApply records are attempted; anything else
// stays NotAttempted.
func (w *Workflow) Apply(ctx context.Context, rec *listing.Record) listing.Outcome {
	log.Info("applying", "title", rec.Title, "classification", rec.Classification)

	switch rec.Classification {
	case listing.DefaultApply:
		return w.defaultApply(ctx, rec)
	case listing.EasyApply:
		if rec.HasQuestions {
			return w.easyApplyQuestions(ctx, rec)
		}
		return w.easyApply(ctx, rec)
	default:
		return listing.Outcome{Kind: listing.NotAttempted}
	}
}

// defaultApply walks the in-portal form sequence: apply control,
// confirmation dialog, acknowledgement dialog. Every wait is short; any
// expiry or interaction failure fails the listing.
func (w *Workflow) defaultApply(ctx context.Context, rec *listing.Record) listing.Outcome {
	if err := w.navigate(ctx, rec); err != nil {
		return failed(err)
	}

	for _, step := range []struct {
		loc     dom.Locator
		timeout time.Duration
	}{
		{w.loc.ApplyButton, w.opts.ControlTimeout},
		{w.loc.ConfirmButton, w.opts.DialogTimeout},
		{w.loc.AckButton, w.opts.DialogTimeout},
	} {
		el, err := dom.Wait(ctx, w.browser, step.loc, step.timeout)
		if err != nil {
			return failed(fmt.Errorf("waiting for %s: %w", step.loc, err))
		}
		if err := el.Click(); err != nil {
			return failed(fmt.Errorf("clicking %s: %w", step.loc, err))
		}
	}

	log.Info("application submitted", "title", rec.Title)
	return listing.Outcome{Kind: listing.Submitted}
}

// easyApply clicks the one-click control and then waits out the long
// manual-interaction window for the success marker. The portal may demand
// extra manual steps here, hence the long bound; its expiry is reported as
// TimedOut, a distinct non-exceptional outcome.
func (w *Workflow) easyApply(ctx context.Context, rec *listing.Record) listing.Outcome {
	if err := w.activateEasyApply(ctx, rec); err != nil {
		return failed(err)
	}

	w.notify.Start("waiting for submission confirmation: " + rec.Title)
	defer w.notify.Stop()

	_, _, err := dom.WaitAny(ctx, w.browser, w.opts.ManualTimeout,
		w.loc.SuccessMarker, w.loc.SubmitConfirmed)
	if errors.Is(err, dom.ErrTimeout) {
		log.Warn("no confirmation before the manual window expired", "title", rec.Title)
		return listing.Outcome{Kind: listing.TimedOut}
	}
	if err != nil {
		return failed(err)
	}

	log.Info("application submitted", "title", rec.Title)
	return listing.Outcome{Kind: listing.Submitted}
}

// easyApplyQuestions clicks the one-click control and then races the
// questionnaire dialog against an immediate success marker: the portal may
// have already recorded a prior submission, in which case the listing
// short-circuits to Submitted.
func (w *Workflow) easyApplyQuestions(ctx context.Context, rec *listing.Record) listing.Outcome {
	if err := w.activateEasyApply(ctx, rec); err != nil {
		return failed(err)
	}

	which, dialog, err := dom.WaitAny(ctx, w.browser, w.opts.ControlTimeout,
		w.loc.QuestionnaireDialog, w.loc.SuccessMarker, w.loc.SubmitConfirmed)
	if err != nil {
		return failed(fmt.Errorf("waiting for questionnaire: %w", err))
	}
	if which > 0 {
		log.Info("submission already recorded", "title", rec.Title)
		return listing.Outcome{Kind: listing.Submitted}
	}

	if err := w.answerQuestionnaire(dialog); err != nil {
		return failed(err)
	}

	submit, err := dom.Wait(ctx, dialog, w.loc.SubmitAnswers, w.opts.DialogTimeout)
	if err != nil {
		return failed(fmt.Errorf("waiting for %s: %w", w.loc.SubmitAnswers, err))
	}
	if err := submit.Click(); err != nil {
		return failed(fmt.Errorf("submitting answers: %w", err))
	}

	_, _, err = dom.WaitAny(ctx, w.browser, w.opts.SubmitTimeout,
		w.loc.SuccessMarker, w.loc.SubmitConfirmed)
	if err != nil {
		return failed(fmt.Errorf("waiting for submission confirmation: %w", err))
	}

	log.Info("application submitted", "title", rec.Title, "questions", true)
	return listing.Outcome{Kind: listing.Submitted}
}

func (w *Workflow) activateEasyApply(ctx context.Context, rec *listing.Record) error {
	if err := w.navigate(ctx, rec); err != nil {
		return err
	}
	el, err := dom.Wait(ctx, w.browser, w.loc.EasyApplyButton, w.opts.ControlTimeout)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", w.loc.EasyApplyButton, err)
	}
	if err := el.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", w.loc.EasyApplyButton, err)
	}
	return nil
}

func (w *Workflow) navigate(ctx context.Context, rec *listing.Record) error {
	if rec.Link == "" || rec.Link == listing.NotExtracted {
		return fmt.Errorf("listing %q has no link", rec.Title)
	}
	if err := w.browser.Navigate(ctx, rec.Link); err != nil {
		return fmt.Errorf("navigating to %s: %w", rec.Link, err)
	}
	return nil
}

// answerQuestionnaire enumerates the dialog's question items in document
// order and resolves each one. An item that is neither free-text nor
// single-choice fails the whole listing; skipping a question would submit
// an incomplete form.
func (w *Workflow) answerQuestionnaire(dialog dom.Element) error {
	items, err := dom.FindAll(dialog, w.loc.QuestionItems)
	if err != nil {
		return fmt.Errorf("enumerating questions: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("questionnaire dialog has no questions")
	}

	for i, item := range items {
		q, err := w.readQuestion(item)
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		answer, err := w.resolver.Resolve(q)
		if err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		log.Debug("question answered", "title", q.Title, "kind", q.Kind, "answer", answer)
	}
	return nil
}

// readQuestion classifies one questionnaire item by its form controls.
func (w *Workflow) readQuestion(item dom.Element) (*question.Question, error) {
	title, err := w.questionTitle(item)
	if err != nil {
		return nil, err
	}

	if input, err := dom.Find(item, w.loc.TextInput); err == nil {
		return &question.Question{Title: title, Kind: question.KindText, Input: input}, nil
	} else if !errors.Is(err, dom.ErrNotFound) {
		return nil, err
	}

	controls, err := dom.FindAll(item, w.loc.ChoiceOptions)
	if err != nil {
		return nil, err
	}
	if len(controls) > 0 {
		opts := make([]question.Option, 0, len(controls))
		for _, c := range controls {
			label, err := c.Text()
			if err != nil {
				return nil, fmt.Errorf("reading option label for %q: %w", title, err)
			}
			opts = append(opts, question.Option{Label: strings.TrimSpace(label), Control: c})
		}
		return &question.Question{Title: title, Kind: question.KindSingleChoice, Options: opts}, nil
	}

	return nil, fmt.Errorf("unrecognized question shape: %q", title)
}

func (w *Workflow) questionTitle(item dom.Element) (string, error) {
	el, err := dom.Find(item, w.loc.QuestionTitle)
	if err != nil {
		return "", fmt.Errorf("reading question title: %w", err)
	}
	title, err := el.Text()
	if err != nil {
		return "", fmt.Errorf("reading question title: %w", err)
	}
	return strings.TrimSpace(title), nil
}

// failed flattens any workflow error into the single Failed channel,
// keeping the original message for diagnosis.
func failed(err error) listing.Outcome {
	log.Error("application failed", "error", err)
	return listing.Outcome{Kind: listing.Failed, Message: err.Error()}
}
