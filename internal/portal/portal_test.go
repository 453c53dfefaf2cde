package portal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GabrielBortolote/catho-bot/internal/dom/domtest"
	"github.com/GabrielBortolote/catho-bot/internal/portal"
)

const loginURL = "https://seguro.catho.com.br/signin/"

func loginPage() (*domtest.Node, *domtest.Node, *domtest.Node, *domtest.Node) {
	email := &domtest.Node{Query: `input[name="email"]`}
	password := &domtest.Node{Query: `input[name="password"]`}
	profile := &domtest.Node{Query: "span", Txt: "Perfil", Hidden: true}
	submit := &domtest.Node{Query: `button[type="submit"]`}
	submit.OnClick = func() { profile.Hidden = false }

	page := &domtest.Node{Children: []*domtest.Node{email, password, submit, profile}}
	return page, email, password, submit
}

func TestLoginFillsFormAndWaitsForProfile(t *testing.T) {
	page, email, password, submit := loginPage()
	b := &domtest.Browser{Pages: map[string]*domtest.Node{loginURL: page}}

	err := portal.Login(context.Background(), b, loginURL, "user@mail.com", "s3cret")
	require.NoError(t, err)

	require.Equal(t, []string{loginURL}, b.Navigations)
	require.Equal(t, []string{"user@mail.com"}, email.Typed)
	require.Equal(t, []string{"s3cret"}, password.Typed)
	require.Equal(t, 1, submit.Clicks)
}

func TestLoginFailsWhenFormIsMissing(t *testing.T) {
	b := &domtest.Browser{Pages: map[string]*domtest.Node{loginURL: {}}}

	err := portal.Login(context.Background(), b, loginURL, "user@mail.com", "s3cret")
	require.Error(t, err)
	require.Contains(t, err.Error(), `input[name="email"]`)
}

func TestWorkflowLocatorsSeparateSubmitConfirmationFromListMarker(t *testing.T) {
	loc := portal.WorkflowLocators()
	mk := portal.ListingMarkers()

	// The same phrase confirms a fresh submission on the apply page and
	// flags an old application on the list view.
	require.Equal(t, loc.SubmitConfirmed.Text, mk.AlreadyApplied[1])
	require.NotEmpty(t, loc.SubmitConfirmed.Query)
}
