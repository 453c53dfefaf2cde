package dom_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GabrielBortolote/catho-bot/internal/dom"
	"github.com/GabrielBortolote/catho-bot/internal/dom/domtest"
)

func TestPollSucceedsWhenProbeFlips(t *testing.T) {
	calls := 0
	err := dom.Poll(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		calls++
		return calls >= 3, nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestPollTimesOut(t *testing.T) {
	err := dom.Poll(context.Background(), 20*time.Millisecond, 5*time.Millisecond, func() (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, dom.ErrTimeout)
}

func TestPollPropagatesProbeError(t *testing.T) {
	boom := errors.New("boom")
	err := dom.Poll(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		return false, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestPollHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := dom.Poll(ctx, time.Minute, time.Millisecond, func() (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func page(children ...*domtest.Node) *domtest.Browser {
	b := &domtest.Browser{Pages: map[string]*domtest.Node{
		"page": {Children: children},
	}}
	_ = b.Navigate(context.Background(), "page")
	return b
}

func TestFindMatchesByQuery(t *testing.T) {
	b := page(
		domtest.El("button", "Cancelar"),
		domtest.El("button", "Quero me candidatar"),
	)

	el, err := dom.Find(b, dom.Locator{Query: "button"})
	require.NoError(t, err)
	text, err := el.Text()
	require.NoError(t, err)
	require.Equal(t, "Cancelar", text)
}

func TestFindTextConstraintPicksTheRightNode(t *testing.T) {
	b := page(
		domtest.El("button", "Cancelar"),
		domtest.El("button", "  Quero me candidatar  "),
	)

	el, err := dom.Find(b, dom.Locator{Query: "button", Text: "Quero me candidatar"})
	require.NoError(t, err)
	text, err := el.Text()
	require.NoError(t, err)
	require.Equal(t, "  Quero me candidatar  ", text)

	_, err = dom.Find(b, dom.Locator{Query: "button", Text: "Enviar"})
	require.ErrorIs(t, err, dom.ErrNotFound)
}

func TestFindAllTextConstraint(t *testing.T) {
	b := page(
		domtest.El("li", "a"),
		domtest.El("li", "b"),
		domtest.El("li", "a"),
	)

	all, err := dom.FindAll(b, dom.Locator{Query: "li"})
	require.NoError(t, err)
	require.Len(t, all, 3)

	matched, err := dom.FindAll(b, dom.Locator{Query: "li", Text: "a"})
	require.NoError(t, err)
	require.Len(t, matched, 2)
}

// appearing serves a node only from the Nth lookup onward.
type appearing struct {
	after int
	calls int
	node  *domtest.Node
}

func (a *appearing) FindOne(query string) (dom.Element, error) {
	a.calls++
	if a.calls < a.after || a.node.Query != query {
		return nil, dom.ErrNotFound
	}
	return a.node, nil
}

func (a *appearing) FindMany(query string) ([]dom.Element, error) {
	el, err := a.FindOne(query)
	if err != nil {
		return nil, nil
	}
	return []dom.Element{el}, nil
}

func TestWaitReturnsOnceNodeAppears(t *testing.T) {
	f := &appearing{after: 3, node: domtest.El("span", "Perfil")}

	el, err := dom.Wait(context.Background(), f, dom.Locator{Query: "span", Text: "Perfil"}, time.Second)
	require.NoError(t, err)
	require.NotNil(t, el)
	require.GreaterOrEqual(t, f.calls, 3)
}

func TestWaitTimesOut(t *testing.T) {
	b := page()
	_, err := dom.Wait(context.Background(), b, dom.Locator{Query: "span"}, 30*time.Millisecond)
	require.ErrorIs(t, err, dom.ErrTimeout)
}

func TestWaitAnyReportsWhichLocatorMatched(t *testing.T) {
	b := page(domtest.El("span", "Algo deu errado"))

	which, el, err := dom.WaitAny(context.Background(), b, time.Second,
		dom.Locator{Query: "#search-result"},
		dom.Locator{Query: "span", Text: "Algo deu errado"})
	require.NoError(t, err)
	require.Equal(t, 1, which)
	require.NotNil(t, el)
}

func TestWaitAnyPrefersEarlierLocator(t *testing.T) {
	b := page(
		domtest.El("span", "Algo deu errado"),
		domtest.El("#search-result", ""),
	)

	which, _, err := dom.WaitAny(context.Background(), b, time.Second,
		dom.Locator{Query: "#search-result"},
		dom.Locator{Query: "span", Text: "Algo deu errado"})
	require.NoError(t, err)
	require.Equal(t, 0, which)
}
