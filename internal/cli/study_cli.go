// Package cli implements the interactive terminal frontends.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/jmemorize/jmemorize/internal/learn"
	"github.com/jmemorize/jmemorize/internal/lesson"
)

var errEnd = errors.New("end")

// timerInterval is how often the running session's timer hook fires.
const timerInterval = time.Second

// StudyCLI runs an interactive learn session on the terminal. It observes
// the session for card and lifecycle updates and feeds grading input back
// into it. All session calls happen on the Run goroutine; stdin is pumped
// through a channel so the timer keeps firing while the user thinks.
type StudyCLI struct {
	provider *learn.Provider
	session  *learn.Session

	stdinReader  *bufio.Reader
	stdoutWriter io.Writer

	bold   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color

	revealed bool
}

// NewStudyCLI creates a study CLI on top of the given provider.
func NewStudyCLI(provider *learn.Provider) *StudyCLI {
	return &StudyCLI{
		provider:     provider,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		green:        color.New(color.FgGreen),
		red:          color.New(color.FgRed),
		yellow:       color.New(color.FgYellow),
	}
}

// Run starts a session over the given category and drives it until the
// session ends, the input closes or the user interrupts.
func (cli *StudyCLI) Run(
	ctx context.Context,
	settings *learn.Settings,
	category *lesson.Category,
	learnUnlearned bool,
	learnExpired bool,
) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	cli.provider.AddSessionObserver(cli)
	defer cli.provider.RemoveSessionObserver(cli)

	session, err := cli.provider.StartSession(settings, nil, category, learnUnlearned, learnExpired)
	if err != nil {
		return fmt.Errorf("provider.StartSession() > %w", err)
	}

	if session.State() != learn.StateRunning {
		return nil
	}
	if session.CurrentCard() == nil {
		fmt.Fprintln(cli.stdoutWriter, "No cards to learn!")
		session.End()
		return nil
	}

	lines := make(chan string)
	readErrCh := make(chan error, 1)
	go func() {
		for {
			line, err := cli.stdinReader.ReadString('\n')
			if err != nil {
				readErrCh <- err
				return
			}
			select {
			case lines <- strings.TrimSpace(line):
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(timerInterval)
	defer ticker.Stop()

	for session.State() == learn.StateRunning {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
			session.End()
		case <-ticker.C:
			cli.provider.ExpireCards(time.Now())
			session.OnTimer()
		case err := <-readErrCh:
			session.End()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("error reading input: %w", err)
		case line := <-lines:
			if err := cli.handleInput(line); err != nil {
				if errors.Is(err, errEnd) {
					if session.State() == learn.StateRunning {
						session.End()
					}
					return nil
				}
				return err
			}
		}
	}
	return nil
}

func (cli *StudyCLI) handleInput(line string) error {
	card := cli.session.CurrentCard()
	if card == nil {
		return errEnd
	}

	if !cli.revealed {
		cli.revealed = true
		answer := card.Side(cli.session.CurrentFlipped()).Text()
		_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s\n", answer)
		fmt.Fprint(cli.stdoutWriter, "Did you know it? (y)es / (n)o / (s)kip / (q)uit: ")
		return nil
	}

	flipped := cli.session.CurrentFlipped()
	switch strings.ToLower(line) {
	case "y", "yes":
		cli.session.CardChecked(true, flipped)
	case "n", "no":
		cli.session.CardChecked(false, flipped)
	case "s", "skip":
		cli.session.CardSkipped()
	case "q", "quit":
		return errEnd
	default:
		fmt.Fprint(cli.stdoutWriter, "Please answer (y)es / (n)o / (s)kip / (q)uit: ")
	}
	return nil
}

// SessionStarted registers the CLI as card observer before the first card
// is drawn.
func (cli *StudyCLI) SessionStarted(session *learn.Session) {
	cli.session = session
	session.AddCardObserver(cli)

	fmt.Fprintln(cli.stdoutWriter, "Starting learn session...")
}

// SessionEnded prints the session summary.
func (cli *StudyCLI) SessionEnded(session *learn.Session) {
	fmt.Fprintln(cli.stdoutWriter)
	_, _ = cli.bold.Fprintln(cli.stdoutWriter, "Session finished")
	fmt.Fprintf(cli.stdoutWriter, "Duration: %s\n", session.Elapsed().Round(time.Second))
	_, _ = cli.green.Fprintf(cli.stdoutWriter, "Passed:    %d\n", len(session.PassedCards()))
	_, _ = cli.red.Fprintf(cli.stdoutWriter, "Failed:    %d\n", len(session.FailedCards()))
	_, _ = cli.yellow.Fprintf(cli.stdoutWriter, "Skipped:   %d\n", len(session.SkippedCards()))
	fmt.Fprintf(cli.stdoutWriter, "Relearned: %d\n", len(session.RelearnedCards()))
}

// NextCardFetched shows the question side of the next card.
func (cli *StudyCLI) NextCardFetched(card *lesson.Card, flipped bool) {
	cli.revealed = false

	fmt.Fprintln(cli.stdoutWriter)
	fmt.Fprintf(cli.stdoutWriter, "[%d left, %d checked] Level %d\n",
		len(cli.session.CardsLeft()), len(cli.session.CheckedCards()), card.Level())
	question := card.Side(!flipped).Text()
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s\n", question)
	fmt.Fprint(cli.stdoutWriter, "Press enter to show the answer...")
}
