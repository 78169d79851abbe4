package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmemorize/jmemorize/internal/learn"
	"github.com/jmemorize/jmemorize/internal/lesson"
)

func newTestStudyCLI(t *testing.T, input string, cards ...*lesson.Card) (*StudyCLI, *learn.Provider, *bytes.Buffer) {
	t.Helper()

	l := lesson.New()
	for _, card := range cards {
		l.RootCategory().AddCard(card)
	}
	provider := learn.NewProvider(l)

	cli := NewStudyCLI(provider)
	cli.stdinReader = bufio.NewReader(strings.NewReader(input))
	output := &bytes.Buffer{}
	cli.stdoutWriter = output
	return cli, provider, output
}

func newStudySettings() *learn.Settings {
	settings := learn.NewSettings()
	settings.RetestFailedCards = false
	return settings
}

func TestStudyCLI_Run(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		cards        []*lesson.Card
		wantContains []string
		check        func(t *testing.T, provider *learn.Provider)
	}{
		{
			name:  "passing the only card finishes the session",
			input: "\ny\n",
			cards: []*lesson.Card{lesson.NewCard("question", "answer")},
			wantContains: []string{
				"question",
				"answer",
				"Session finished",
				"Passed:    1",
				"Failed:    0",
			},
			check: func(t *testing.T, provider *learn.Provider) {
				summaries := provider.Lesson().History().Summaries()
				require.Len(t, summaries, 1)
				assert.Equal(t, 1, summaries[0].Passed)
			},
		},
		{
			name:  "failing a card records the fail",
			input: "\nn\n",
			cards: []*lesson.Card{lesson.NewCard("question", "answer")},
			wantContains: []string{
				"Failed:    1",
			},
		},
		{
			name:  "skipping a card is not a grade",
			input: "\ns\n\ny\n",
			cards: []*lesson.Card{lesson.NewCard("question", "answer")},
			wantContains: []string{
				"Skipped:   1",
				"Passed:    1",
			},
		},
		{
			name:  "quit ends the session early",
			input: "\nq\n",
			cards: []*lesson.Card{
				lesson.NewCard("one", "1"),
				lesson.NewCard("two", "2"),
			},
			wantContains: []string{
				"Session finished",
			},
			check: func(t *testing.T, provider *learn.Provider) {
				assert.Empty(t, provider.Lesson().History().Summaries())
			},
		},
		{
			name:  "unknown input prompts again",
			input: "\nmaybe\ny\n",
			cards: []*lesson.Card{lesson.NewCard("question", "answer")},
			wantContains: []string{
				"Please answer",
				"Passed:    1",
			},
		},
		{
			name:         "empty lesson ends immediately",
			input:        "",
			wantContains: []string{"No cards to learn!"},
		},
		{
			name:  "closed input ends the session",
			input: "\n",
			cards: []*lesson.Card{lesson.NewCard("question", "answer")},
			wantContains: []string{
				"answer",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, provider, output := newTestStudyCLI(t, tt.input, tt.cards...)

			err := cli.Run(context.Background(), newStudySettings(), nil, true, true)
			require.NoError(t, err)

			for _, want := range tt.wantContains {
				assert.Contains(t, output.String(), want)
			}
			assert.False(t, provider.IsSessionRunning())
		})
	}
}
