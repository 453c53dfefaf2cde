package listing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GabrielBortolote/catho-bot/internal/dom/fragment"
	"github.com/GabrielBortolote/catho-bot/internal/listing"
	"github.com/GabrielBortolote/catho-bot/internal/portal"
)

func classify(t *testing.T, html string) listing.Record {
	t.Helper()
	frag, err := fragment.Parse(html)
	require.NoError(t, err)
	c := listing.NewClassifier(portal.ListingSelectors(), portal.ListingMarkers())
	return c.Classify(frag)
}

const fullListing = `
<article>
  <header>
    <h2><a href="https://example.com/vagas/dev">Desenvolvedor Go</a></h2>
    <div class="job-salary">R$ 8.000,00</div>
    <button><a>São Paulo</a></button>
    <button><a>Remoto</a></button>
    <strong>2 vagas</strong>
    <time><span>há 3 dias</span></time>
  </header>
  <div class="job-description"><span>Construir serviços de backend.</span></div>
  <footer><button>Enviar Candidatura Fácil</button></footer>
</article>`

func TestFieldExtraction(t *testing.T) {
	rec := classify(t, fullListing)

	require.Equal(t, "Desenvolvedor Go", rec.Title)
	require.Equal(t, "https://example.com/vagas/dev", rec.Link)
	require.Equal(t, "R$ 8.000,00", rec.Salary)
	require.Equal(t, "São Paulo, Remoto", rec.Location)
	require.Equal(t, "2 vagas", rec.Positions)
	require.Equal(t, "há 3 dias", rec.PostedDate)
	require.Equal(t, "Construir serviços de backend.", rec.Description)
	require.False(t, rec.Compatible)
	require.Equal(t, listing.NotAttempted, rec.Outcome.Kind)
}

func TestMissingFieldsYieldSentinelAndExtractionContinues(t *testing.T) {
	rec := classify(t, `<article><header><strong>1 vaga</strong></header></article>`)

	require.Equal(t, listing.NotExtracted, rec.Title)
	require.Equal(t, listing.NotExtracted, rec.Link)
	require.Equal(t, listing.NotExtracted, rec.Salary)
	require.Equal(t, listing.NotExtracted, rec.Description)
	// The lookup after the failed ones still extracted.
	require.Equal(t, "1 vaga", rec.Positions)
	require.Equal(t, listing.NotApplicable, rec.Classification)
}

func TestClassificationStates(t *testing.T) {
	tests := []struct {
		name string
		html string
		want listing.Classification
	}{
		{
			name: "unavailable",
			html: `<article><span>Candidatura indisponível</span></article>`,
			want: listing.Unavailable,
		},
		{
			name: "already applied via started marker",
			html: `<article><span>Candidatura Iniciada</span></article>`,
			want: listing.AlreadyApplied,
		},
		{
			name: "already applied via resume sent marker",
			html: `<article><span>Currículo já enviado</span></article>`,
			want: listing.AlreadyApplied,
		},
		{
			name: "external",
			html: `<article><button>Candidate-se no site da empresa</button></article>`,
			want: listing.ExternalApply,
		},
		{
			name: "easy apply",
			html: `<article><button>Enviar Candidatura Fácil</button></article>`,
			want: listing.EasyApply,
		},
		{
			name: "default apply",
			html: `<article><button>Quero me candidatar</button></article>`,
			want: listing.DefaultApply,
		},
		{
			name: "nothing recognized",
			html: `<article><span>anything else</span></article>`,
			want: listing.NotApplicable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := classify(t, tt.html)
			require.Equal(t, tt.want, rec.Classification)
		})
	}
}

func TestClassificationPriorityOrder(t *testing.T) {
	// Ambiguous markup: the first match in priority order wins.
	tests := []struct {
		name string
		html string
		want listing.Classification
	}{
		{
			name: "unavailable beats already applied",
			html: `<article><span>Candidatura indisponível</span><span>Candidatura Iniciada</span></article>`,
			want: listing.Unavailable,
		},
		{
			name: "already applied beats easy apply",
			html: `<article><span>Currículo já enviado</span><button>Enviar Candidatura Fácil</button></article>`,
			want: listing.AlreadyApplied,
		},
		{
			name: "external beats easy apply",
			html: `<article><button>Candidate-se no site da empresa</button><button>Enviar Candidatura Fácil</button></article>`,
			want: listing.ExternalApply,
		},
		{
			name: "easy apply beats default apply",
			html: `<article><button>Enviar Candidatura Fácil</button><button>Quero me candidatar</button></article>`,
			want: listing.EasyApply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := classify(t, tt.html)
			require.Equal(t, tt.want, rec.Classification)
		})
	}
}

func TestAppliedDateExtraction(t *testing.T) {
	rec := classify(t, `
<article>
  <span>Candidatura Iniciada</span>
  <div class="application-status"><span>applied on 05/06/2024</span></div>
</article>`)

	require.Equal(t, listing.AlreadyApplied, rec.Classification)
	require.Equal(t, "05/06/2024", rec.AppliedDate)
}

func TestAppliedDateFirstMatchWins(t *testing.T) {
	rec := classify(t, `
<article>
  <span>Currículo já enviado</span>
  <div class="application-status"><span>em 01/02/2023 e 05/06/2024</span></div>
</article>`)

	require.Equal(t, "01/02/2023", rec.AppliedDate)
}

func TestAppliedDateMissingYieldsSentinel(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "status fragment absent",
			html: `<article><span>Candidatura Iniciada</span></article>`,
		},
		{
			name: "status fragment without a date",
			html: `<article><span>Candidatura Iniciada</span><div class="application-status"><span>sem data</span></div></article>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := classify(t, tt.html)
			require.Equal(t, listing.AlreadyApplied, rec.Classification)
			require.Equal(t, listing.NotExtracted, rec.AppliedDate)
		})
	}
}

func TestHasQuestionsOnlyOnEasyApply(t *testing.T) {
	rec := classify(t, `<article><button>Enviar Candidatura Fácil</button><span>Vaga com questionário</span></article>`)
	require.Equal(t, listing.EasyApply, rec.Classification)
	require.True(t, rec.HasQuestions)

	// The questionnaire marker without an easy-apply marker never sets
	// the flag on another classification.
	rec = classify(t, `<article><button>Quero me candidatar</button><span>Vaga com questionário</span></article>`)
	require.Equal(t, listing.DefaultApply, rec.Classification)
	require.False(t, rec.HasQuestions)
}

func TestCompatibleMarker(t *testing.T) {
	rec := classify(t, `<article><span>Alta compatibilidade com seu CV</span><button>Quero me candidatar</button></article>`)
	require.True(t, rec.Compatible)
	require.Equal(t, listing.DefaultApply, rec.Classification)
}

func TestNoLocationTagsIsEmptyNotSentinel(t *testing.T) {
	rec := classify(t, `<article><header><h2><a href="x">t</a></h2></header></article>`)
	require.Equal(t, "", rec.Location)
}

func TestApplicable(t *testing.T) {
	tests := []struct {
		classification listing.Classification
		want           bool
	}{
		{listing.Unavailable, false},
		{listing.AlreadyApplied, false},
		{listing.ExternalApply, false},
		{listing.EasyApply, true},
		{listing.DefaultApply, true},
		{listing.NotApplicable, false},
	}
	for _, tt := range tests {
		rec := listing.Record{Classification: tt.classification}
		require.Equal(t, tt.want, rec.Applicable(), "classification %s", tt.classification)
	}
}
