// Package portal binds the markup-agnostic core to Catho: the literal
// marker phrases, the CSS queries for every control, and the login
// sequence. Porting the bot to another portal means replacing this package
// and nothing else.
package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/GabrielBortolote/catho-bot/internal/apply"
	"github.com/GabrielBortolote/catho-bot/internal/dom"
	"github.com/GabrielBortolote/catho-bot/internal/listing"
	"github.com/GabrielBortolote/catho-bot/internal/search"
)

// Marker phrases as they appear in Catho's markup. The "Currículo já
// enviado" phrase exists in two contexts: on a list-view fragment it means
// an application already exists (classifier), on a post-submit view it
// confirms the submission that just happened (workflow). The two bindings
// below keep those contexts separate.
const (
	MarkerUnavailable        = "Candidatura indisponível"
	MarkerApplicationStarted = "Candidatura Iniciada"
	MarkerResumeSent         = "Currículo já enviado"
	MarkerExternal           = "Candidate-se no site da empresa"
	MarkerEasyApply          = "Enviar Candidatura Fácil"
	MarkerQuestionnaire      = "Vaga com questionário"
	MarkerDefaultApply       = "Quero me candidatar"
	MarkerCompatible         = "Alta compatibilidade com seu CV"
	MarkerSubmitted          = "Seu currículo foi enviado :)"
	MarkerConfirmResume      = "Enviar meu currículo"
	MarkerAck                = "Ok, entendi"
	MarkerNextPage           = "Próximo"
	MarkerLoadError          = "Algo deu errado"
	MarkerSubmitAnswers      = "Enviar respostas"
	MarkerProfile            = "Perfil"
)

// ListingSelectors locates the data fields of one listing fragment.
func ListingSelectors() listing.Selectors {
	return listing.Selectors{
		TitleLink:    dom.Locator{Query: "h2 a"},
		Salary:       dom.Locator{Query: "header .job-salary"},
		LocationTags: dom.Locator{Query: "header button a"},
		Positions:    dom.Locator{Query: "header strong"},
		PostedDate:   dom.Locator{Query: "header time span"},
		Description:  dom.Locator{Query: ".job-description span"},
		AppliedDate:  dom.Locator{Query: ".application-status span"},
	}
}

// ListingMarkers binds the classification phrases.
func ListingMarkers() listing.Markers {
	return listing.Markers{
		Unavailable:    MarkerUnavailable,
		AlreadyApplied: []string{MarkerApplicationStarted, MarkerResumeSent},
		External:       MarkerExternal,
		EasyApply:      MarkerEasyApply,
		Questionnaire:  MarkerQuestionnaire,
		DefaultApply:   MarkerDefaultApply,
		Compatible:     MarkerCompatible,
	}
}

// WorkflowLocators names the apply-sequence controls.
func WorkflowLocators() apply.Locators {
	return apply.Locators{
		ApplyButton:   dom.Locator{Query: "button", Text: MarkerDefaultApply},
		ConfirmButton: dom.Locator{Query: "button", Text: MarkerConfirmResume},
		AckButton:     dom.Locator{Query: "button", Text: MarkerAck},

		EasyApplyButton: dom.Locator{Query: "button", Text: MarkerEasyApply},
		SuccessMarker:   dom.Locator{Query: "span", Text: MarkerSubmitted},
		SubmitConfirmed: dom.Locator{Query: "span", Text: MarkerResumeSent},

		QuestionnaireDialog: dom.Locator{Query: ".questionnaire-modal"},
		QuestionItems:       dom.Locator{Query: ".question"},
		QuestionTitle:       dom.Locator{Query: ".question-title"},
		TextInput:           dom.Locator{Query: "input[type=text], textarea"},
		ChoiceOptions:       dom.Locator{Query: ".question-options label"},
		SubmitAnswers:       dom.Locator{Query: "button", Text: MarkerSubmitAnswers},
	}
}

// SearchLocators names the result-page structure.
func SearchLocators() search.Locators {
	return search.Locators{
		Results:   dom.Locator{Query: "#search-result"},
		Items:     dom.Locator{Query: "ul > li"},
		NextPage:  dom.Locator{Query: "a", Text: MarkerNextPage},
		LoadError: dom.Locator{Query: "span", Text: MarkerLoadError},
		Banner:    dom.Locator{Query: ".container-close-app-banner"},
	}
}

// Login signs into the portal and waits for the profile marker that
// confirms the session.
func Login(ctx context.Context, b dom.Browser, loginURL, email, password string) error {
	log.Info("logging in", "url", loginURL)

	if err := b.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("loading login page: %w", err)
	}

	for _, field := range []struct {
		query string
		value string
	}{
		{`input[name="email"]`, email},
		{`input[name="password"]`, password},
	} {
		el, err := b.FindOne(field.query)
		if err != nil {
			return fmt.Errorf("login form field %s: %w", field.query, err)
		}
		if err := el.Type(field.value); err != nil {
			return fmt.Errorf("filling %s: %w", field.query, err)
		}
	}

	submit, err := b.FindOne(`button[type="submit"]`)
	if err != nil {
		return fmt.Errorf("login submit button: %w", err)
	}
	if err := submit.Click(); err != nil {
		return fmt.Errorf("submitting login: %w", err)
	}

	_, err = dom.Wait(ctx, b, dom.Locator{Query: "span", Text: MarkerProfile}, 5*time.Second)
	if err != nil {
		return fmt.Errorf("login not confirmed: %w", err)
	}

	log.Info("login confirmed")
	return nil
}
