// Package fragment adapts a captured HTML fragment to the dom.Element
// contract. It backs classification of static markup (saved listing
// fragments, test fixtures) where no live browser session exists.
package fragment

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
)

// ErrStatic is returned by interactions that need a live session.
var ErrStatic = errors.New("fragment: static document, interaction not supported")

// Parse wraps an HTML fragment as a dom.Element rooted at its body.
func Parse(html string) (dom.Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &element{sel: doc.Selection.Find("body")}, nil
}

type element struct {
	sel *goquery.Selection
}

func (e *element) FindOne(query string) (dom.Element, error) {
	found := e.sel.Find(query).First()
	if found.Length() == 0 {
		return nil, dom.ErrNotFound
	}
	return &element{sel: found}, nil
}

func (e *element) FindMany(query string) ([]dom.Element, error) {
	var els []dom.Element
	e.sel.Find(query).Each(func(_ int, s *goquery.Selection) {
		els = append(els, &element{sel: s})
	})
	return els, nil
}

func (e *element) Attribute(name string) (string, error) {
	v, ok := e.sel.Attr(name)
	if !ok {
		return "", dom.ErrNotFound
	}
	return v, nil
}

func (e *element) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *element) HTML() (string, error) {
	return goquery.OuterHtml(e.sel)
}

func (e *element) Click() error {
	return ErrStatic
}

func (e *element) Type(string) error {
	return ErrStatic
}
