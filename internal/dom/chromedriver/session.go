// Package chromedriver implements the dom contract on top of a chromedp
// browser session. One Session drives one Chrome instance; element handles
// are CDP node IDs scoped to the session.
package chromedriver

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
)

// Options configures the browser process.
type Options struct {
	Headless  bool
	UserAgent string
}

// Session is a live dom.Browser.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

// New starts a Chrome instance and returns a session bound to it.
func New(opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a broken Chrome install fails here
	// instead of on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, err
	}

	return &Session{ctx: ctx, cancel: cancel, allocCancel: allocCancel}, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return err
	}
	return nil
}

func (s *Session) Location() (string, error) {
	var url string
	if err := chromedp.Run(s.ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// lookupCtx bounds every individual lookup so a wedged renderer cannot hang
// the run; waiting is the caller's job via dom.Poll.
func (s *Session) lookupCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.ctx, 10*time.Second)
}

func (s *Session) FindOne(query string) (dom.Element, error) {
	return findOne(s, nil, query)
}

func (s *Session) FindMany(query string) ([]dom.Element, error) {
	return findMany(s, nil, query)
}

func findOne(s *Session, scope *cdp.Node, query string) (dom.Element, error) {
	nodes, err := lookup(s, scope, query, chromedp.ByQuery)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, dom.ErrNotFound
	}
	return &node{s: s, n: nodes[0]}, nil
}

func findMany(s *Session, scope *cdp.Node, query string) ([]dom.Element, error) {
	nodes, err := lookup(s, scope, query, chromedp.ByQueryAll)
	if err != nil {
		return nil, err
	}
	els := make([]dom.Element, len(nodes))
	for i, n := range nodes {
		els[i] = &node{s: s, n: n}
	}
	return els, nil
}

func lookup(s *Session, scope *cdp.Node, query string, by chromedp.QueryOption) ([]*cdp.Node, error) {
	ctx, cancel := s.lookupCtx()
	defer cancel()

	var nodes []*cdp.Node
	opts := []chromedp.QueryOption{by, chromedp.AtLeast(0)}
	if scope != nil {
		opts = append(opts, chromedp.FromNode(scope))
	}
	if err := chromedp.Run(ctx, chromedp.Nodes(query, &nodes, opts...)); err != nil {
		return nil, err
	}
	return nodes, nil
}

// node is a dom.Element backed by a CDP node handle.
type node struct {
	s *Session
	n *cdp.Node
}

func (e *node) FindOne(query string) (dom.Element, error) {
	return findOne(e.s, e.n, query)
}

func (e *node) FindMany(query string) ([]dom.Element, error) {
	return findMany(e.s, e.n, query)
}

func (e *node) Attribute(name string) (string, error) {
	e.n.RLock()
	defer e.n.RUnlock()
	for i := 0; i < len(e.n.Attributes)-1; i += 2 {
		if e.n.Attributes[i] == name {
			return e.n.Attributes[i+1], nil
		}
	}
	return "", dom.ErrNotFound
}

func (e *node) Text() (string, error) {
	ctx, cancel := e.s.lookupCtx()
	defer cancel()

	var text string
	err := chromedp.Run(ctx, chromedp.Text([]cdp.NodeID{e.n.NodeID}, &text, chromedp.ByNodeID))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *node) HTML() (string, error) {
	ctx, cancel := e.s.lookupCtx()
	defer cancel()

	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML([]cdp.NodeID{e.n.NodeID}, &html, chromedp.ByNodeID))
	if err != nil {
		return "", err
	}
	return html, nil
}

func (e *node) Click() error {
	ctx, cancel := e.s.lookupCtx()
	defer cancel()

	return chromedp.Run(ctx, chromedp.Click([]cdp.NodeID{e.n.NodeID}, chromedp.ByNodeID))
}

func (e *node) Type(text string) error {
	ctx, cancel := e.s.lookupCtx()
	defer cancel()

	return chromedp.Run(ctx, chromedp.SendKeys([]cdp.NodeID{e.n.NodeID}, text, chromedp.ByNodeID))
}
