package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfukuda/studyset/internal/block"
	"github.com/mfukuda/studyset/internal/card"
	mock_cli "github.com/mfukuda/studyset/internal/mocks/cli"
	"github.com/mfukuda/studyset/internal/review"
	"github.com/mfukuda/studyset/internal/testutil"
)

func newTestCLI(service StudyService, input string) (*StudySessionCLI, *bytes.Buffer) {
	var out bytes.Buffer
	return &StudySessionCLI{
		service:      service,
		request:      block.Request{BlockSize: 10, IncludeNew: true, IncludeReview: true},
		stdinReader:  bufio.NewReader(strings.NewReader(input)),
		stdoutWriter: &out,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		now:          func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}, &out
}

func closedSession(id int64, accuracy, avgConfidence, qualityScore float64) *review.Session {
	end := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	return &review.Session{
		ID:            id,
		EndTime:       &end,
		Accuracy:      accuracy,
		AvgConfidence: avgConfidence,
		QualityScore:  qualityScore,
	}
}

func TestStudySessionCLI_ReviewsWholeBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	c := testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2)
	updated := c
	updated.IntervalDays = 1

	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return([]card.Card{c}, nil)
	service.EXPECT().ReviewCard(gomock.Any(), int64(11), int64(7), 4, review.ConfidenceMedium, true, 0).
		Return(&updated, &review.Record{AdjustedQuality: 4}, nil)
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 1, 2, 0.9), nil)

	// Reveal, correct, quality 4, medium confidence.
	cli, out := newTestCLI(service, "\ny\n4\nm\n")
	require.NoError(t, cli.Run(context.Background()))

	assert.Contains(t, out.String(), "Studying 1 cards")
	assert.Contains(t, out.String(), "question 7?")
	assert.Contains(t, out.String(), "answer 7")
	assert.Contains(t, out.String(), "Next review in 1 day(s).")
	assert.Contains(t, out.String(), "Session complete: accuracy 100%")
}

func TestStudySessionCLI_FailureFeedback(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	c := testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2)
	updated := c
	updated.IntervalDays = 1

	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return([]card.Card{c}, nil)
	service.EXPECT().ReviewCard(gomock.Any(), int64(11), int64(7), 2, review.ConfidenceHigh, false, 0).
		Return(&updated, &review.Record{AdjustedQuality: 1}, nil)
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 0, 3, 0.1), nil)

	cli, out := newTestCLI(service, "\nn\n2\nh\n")
	require.NoError(t, cli.Run(context.Background()))

	assert.Contains(t, out.String(), "Back to square one.")
}

func TestStudySessionCLI_QuitEndsSessionEarly(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	cards := []card.Card{
		testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2),
		testutil.NewCard(8, card.SubjectMath, card.TopicGeometry, 2),
	}
	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return(cards, nil)
	// No ReviewCard call: the user quits at the first prompt.
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 0, 0, 0), nil)

	cli, out := newTestCLI(service, "quit\n")
	require.NoError(t, cli.Run(context.Background()))

	assert.Contains(t, out.String(), "Session complete")
}

func TestStudySessionCLI_EOFEndsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).
		Return([]card.Card{testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2)}, nil)
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 0, 0, 0), nil)

	cli, _ := newTestCLI(service, "")
	require.NoError(t, cli.Run(context.Background()))
}

func TestStudySessionCLI_EmptyBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return(nil, nil)
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 0, 0, 0), nil)

	cli, out := newTestCLI(service, "")
	require.NoError(t, cli.Run(context.Background()))

	assert.Contains(t, out.String(), "Nothing to study right now.")
}

func TestStudySessionCLI_RepromptsOnInvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	c := testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2)
	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return([]card.Card{c}, nil)
	service.EXPECT().ReviewCard(gomock.Any(), int64(11), int64(7), 5, review.ConfidenceHigh, true, 0).
		Return(&c, &review.Record{AdjustedQuality: 5}, nil)
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 1, 3, 1), nil)

	// Bad answers before each valid one.
	input := "\n" + // reveal
		"maybe\ny\n" + // bool retry
		"9\nabc\n5\n" + // quality retries
		"z\nh\n" // confidence retry
	cli, out := newTestCLI(service, input)
	require.NoError(t, cli.Run(context.Background()))

	assert.Contains(t, out.String(), "Please answer y or n.")
	assert.Contains(t, out.String(), "Please enter a number between 0 and 5.")
	assert.Contains(t, out.String(), "Please answer l, m, or h.")
}

func TestStudySessionCLI_AcceptsFullConfidenceWords(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	c := testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2)
	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return([]card.Card{c}, nil)
	service.EXPECT().ReviewCard(gomock.Any(), int64(11), int64(7), 3, review.ConfidenceLow, true, 0).
		Return(&c, &review.Record{AdjustedQuality: 3.3}, nil)
	service.EXPECT().EndSession(gomock.Any(), int64(11)).Return(closedSession(11, 1, 1, 0.8), nil)

	cli, _ := newTestCLI(service, "\ny\n3\nlow\n")
	require.NoError(t, cli.Run(context.Background()))
}

func TestStudySessionCLI_ServiceErrorPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mock_cli.NewMockStudyService(ctrl)

	c := testutil.NewCard(7, card.SubjectMath, card.TopicAlgebra, 2)
	service.EXPECT().StartSession(gomock.Any()).Return(&review.Session{ID: 11}, nil)
	service.EXPECT().GetStudyBlock(gomock.Any(), gomock.Any()).Return([]card.Card{c}, nil)
	service.EXPECT().ReviewCard(gomock.Any(), int64(11), int64(7), 4, review.ConfidenceMedium, true, 0).
		Return(nil, nil, assert.AnError)

	cli, _ := newTestCLI(service, "\ny\n4\nm\n")
	err := cli.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
