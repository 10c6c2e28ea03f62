// Package cli provides the interactive study session front end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mfukuda/studyset/internal/block"
	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/review"
)

// errEnd signals a clean end of the study loop.
var errEnd = errors.New("end of session")

//go:generate mockgen -source=study_session.go -destination=../mocks/cli/mock_study_service.go -package=mock_cli StudyService

// StudyService is the slice of the study API the interactive session needs.
type StudyService interface {
	StartSession(ctx context.Context) (*review.Session, error)
	EndSession(ctx context.Context, sessionID int64) (*review.Session, error)
	GetStudyBlock(ctx context.Context, req block.Request) ([]card.Card, error)
	ReviewCard(ctx context.Context, sessionID, cardID int64, rawQuality int, confidence review.Confidence, correct bool, timeTakenSeconds int) (*card.Card, *review.Record, error)
}

// StudySessionCLI runs one interactive study session over a generated block.
type StudySessionCLI struct {
	service      StudyService
	request      block.Request
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color

	// now is replaceable in tests.
	now func() time.Time

	sessionID int64
	cards     []card.Card
	position  int
}

// NewStudySessionCLI creates the interactive session CLI.
func NewStudySessionCLI(service StudyService, request block.Request) *StudySessionCLI {
	return &StudySessionCLI{
		service:      service,
		request:      request,
		stdinReader:  bufio.NewReader(os.Stdin),
		stdoutWriter: os.Stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		now:          time.Now,
	}
}

// Run starts a session, fetches the block, and reviews cards one by one
// until the block is done, the user quits, or an interrupt arrives.
func (cli *StudySessionCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	session, err := cli.service.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("service.StartSession() > %w", err)
	}
	cli.sessionID = session.ID

	cli.cards, err = cli.service.GetStudyBlock(ctx, cli.request)
	if err != nil {
		return fmt.Errorf("service.GetStudyBlock() > %w", err)
	}
	if len(cli.cards) == 0 {
		fmt.Fprintln(cli.stdoutWriter, "Nothing to study right now.")
		return cli.finish(ctx)
	}
	fmt.Fprintf(cli.stdoutWriter, "Studying %d cards. Type 'quit' at any prompt to stop.\n\n", len(cli.cards))

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := cli.step(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(cli.stdoutWriter, "Received interrupt signal, exiting...")
		// The session stays open; recorded reviews remain valid.
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("study session: %w", err)
		}
	}

	return cli.finish(ctx)
}

// step reviews the next card in the block.
func (cli *StudySessionCLI) step(ctx context.Context) error {
	if cli.position >= len(cli.cards) {
		return errEnd
	}
	current := cli.cards[cli.position]
	cli.position++

	fmt.Fprintf(cli.stdoutWriter, "[%d/%d] %s / %s (difficulty %d)\n",
		cli.position, len(cli.cards), current.Subject, current.Topic, current.Difficulty)
	if _, err := cli.bold.Fprintln(cli.stdoutWriter, current.Question); err != nil {
		return err
	}

	started := cli.now()
	if _, err := cli.prompt("Press Enter to reveal the answer"); err != nil {
		return err
	}
	if _, err := cli.italic.Fprintln(cli.stdoutWriter, current.Answer); err != nil {
		return err
	}

	correct, err := cli.promptBool("Did you get it right? (y/n)")
	if err != nil {
		return err
	}
	quality, err := cli.promptQuality()
	if err != nil {
		return err
	}
	confidence, err := cli.promptConfidence()
	if err != nil {
		return err
	}
	timeTaken := int(cli.now().Sub(started).Seconds())

	updated, record, err := cli.service.ReviewCard(ctx, cli.sessionID, current.ID, quality, confidence, correct, timeTaken)
	if err != nil {
		return fmt.Errorf("service.ReviewCard() > %w", err)
	}

	if record.AdjustedQuality < review.FailureThreshold {
		fmt.Fprintf(cli.stdoutWriter, "Back to square one. See it again tomorrow.\n\n")
	} else {
		fmt.Fprintf(cli.stdoutWriter, "Next review in %d day(s).\n\n", updated.IntervalDays)
	}
	return nil
}

// finish ends the session and prints the summary.
func (cli *StudySessionCLI) finish(ctx context.Context) error {
	session, err := cli.service.EndSession(ctx, cli.sessionID)
	if err != nil {
		return fmt.Errorf("service.EndSession() > %w", err)
	}
	fmt.Fprintf(cli.stdoutWriter,
		"Session complete: accuracy %.0f%%, avg confidence %.1f, quality score %.2f\n",
		session.Accuracy*100, session.AvgConfidence, session.QualityScore)
	return nil
}

func (cli *StudySessionCLI) prompt(message string) (string, error) {
	fmt.Fprintf(cli.stdoutWriter, "%s: ", message)
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", errEnd
		}
		return "", fmt.Errorf("read input > %w", err)
	}
	answer := strings.TrimSpace(line)
	if strings.EqualFold(answer, "quit") {
		return "", errEnd
	}
	return answer, nil
}

func (cli *StudySessionCLI) promptBool(message string) (bool, error) {
	for {
		answer, err := cli.prompt(message)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(cli.stdoutWriter, "Please answer y or n.")
	}
}

func (cli *StudySessionCLI) promptQuality() (int, error) {
	for {
		answer, err := cli.prompt("How well did you recall it? (0-5)")
		if err != nil {
			return 0, err
		}
		quality, err := strconv.Atoi(answer)
		if err == nil && quality >= 0 && quality <= 5 {
			return quality, nil
		}
		fmt.Fprintln(cli.stdoutWriter, "Please enter a number between 0 and 5.")
	}
}

func (cli *StudySessionCLI) promptConfidence() (review.Confidence, error) {
	for {
		answer, err := cli.prompt("How confident were you? (l/m/h)")
		if err != nil {
			return "", err
		}
		switch strings.ToLower(answer) {
		case "l":
			return review.ConfidenceLow, nil
		case "m":
			return review.ConfidenceMedium, nil
		case "h":
			return review.ConfidenceHigh, nil
		}
		if confidence, parseErr := review.ParseConfidence(answer); parseErr == nil {
			return confidence, nil
		}
		fmt.Fprintln(cli.stdoutWriter, "Please answer l, m, or h.")
	}
}
