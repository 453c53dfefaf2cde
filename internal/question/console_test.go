package question_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GabrielBortolote/catho-bot/internal/question"
)

func TestConsoleAskText(t *testing.T) {
	var out strings.Builder
	p := question.NewConsolePrompter(strings.NewReader("5 years\n"), &out)

	answer, err := p.AskText("How many years of experience?")
	require.NoError(t, err)
	require.Equal(t, "5 years", answer)
	require.Contains(t, out.String(), "How many years of experience?")
}

func TestConsoleAskChoiceIsOneBasedForTheUser(t *testing.T) {
	var out strings.Builder
	p := question.NewConsolePrompter(strings.NewReader("2\n"), &out)

	idx, err := p.AskChoice("Available to relocate?", []string{"Yes", "No"})
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Contains(t, out.String(), "1) Yes")
	require.Contains(t, out.String(), "2) No")
}

func TestConsoleAskChoiceNonNumericIsOutOfRange(t *testing.T) {
	var out strings.Builder
	p := question.NewConsolePrompter(strings.NewReader("maybe\n"), &out)

	idx, err := p.AskChoice("Available to relocate?", []string{"Yes", "No"})
	require.NoError(t, err)
	require.Negative(t, idx)
}
