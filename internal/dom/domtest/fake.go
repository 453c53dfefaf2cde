// Package domtest provides a scripted in-memory implementation of the dom
// interfaces for workflow and paginator tests. Pages are trees of Nodes
// keyed by URL; lookups match on the exact query string a component uses.
package domtest

import (
	"context"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
)

// Browser is a fake dom.Browser backed by static node trees.
type Browser struct {
	// Pages maps a URL to the root node served after navigating to it.
	Pages map[string]*Node
	// NavErr makes Navigate fail for specific URLs.
	NavErr map[string]error
	// Navigations records every Navigate call in order.
	Navigations []string

	current string
}

// Navigate records the call and switches the current page.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.Navigations = append(b.Navigations, url)
	if err := b.NavErr[url]; err != nil {
		return err
	}
	b.current = url
	return nil
}

func (b *Browser) Location() (string, error) {
	return b.current, nil
}

// Page returns the current page root, or nil when nothing is loaded.
func (b *Browser) Page() *Node {
	return b.Pages[b.current]
}

func (b *Browser) FindOne(query string) (dom.Element, error) {
	root := b.Page()
	if root == nil {
		return nil, dom.ErrNotFound
	}
	return root.FindOne(query)
}

func (b *Browser) FindMany(query string) ([]dom.Element, error) {
	root := b.Page()
	if root == nil {
		return nil, nil
	}
	return root.FindMany(query)
}

// Node is a fake dom.Element. A node matches a lookup when its Query field
// equals the query string. Hidden nodes are invisible to lookups until
// something (usually an OnClick hook) reveals them.
type Node struct {
	Query string
	Txt   string
	Attrs map[string]string
	Outer string

	Children []*Node
	Hidden   bool

	ClickErr error
	OnClick  func()
	Clicks   int
	Typed    []string
}

// El is shorthand for building a node.
func El(query, text string, children ...*Node) *Node {
	return &Node{Query: query, Txt: text, Children: children}
}

func (n *Node) find(query string, all bool) []*Node {
	var out []*Node
	for _, child := range n.Children {
		if child.Hidden {
			continue
		}
		if child.Query == query {
			out = append(out, child)
			if !all {
				return out
			}
		}
		out = append(out, child.find(query, all)...)
		if !all && len(out) > 0 {
			return out[:1]
		}
	}
	return out
}

func (n *Node) FindOne(query string) (dom.Element, error) {
	found := n.find(query, false)
	if len(found) == 0 {
		return nil, dom.ErrNotFound
	}
	return found[0], nil
}

func (n *Node) FindMany(query string) ([]dom.Element, error) {
	found := n.find(query, true)
	els := make([]dom.Element, len(found))
	for i, f := range found {
		els[i] = f
	}
	return els, nil
}

func (n *Node) Attribute(name string) (string, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return "", dom.ErrNotFound
	}
	return v, nil
}

func (n *Node) Text() (string, error) {
	return n.Txt, nil
}

func (n *Node) HTML() (string, error) {
	if n.Outer != "" {
		return n.Outer, nil
	}
	return n.Txt, nil
}

func (n *Node) Click() error {
	n.Clicks++
	if n.ClickErr != nil {
		return n.ClickErr
	}
	if n.OnClick != nil {
		n.OnClick()
	}
	return nil
}

func (n *Node) Type(text string) error {
	n.Typed = append(n.Typed, text)
	return nil
}
