package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubject(t *testing.T) {
	tests := []struct {
		input   string
		want    Subject
		wantErr bool
	}{
		{input: "math", want: SubjectMath},
		{input: " Physics ", want: SubjectPhysics},
		{input: "CHEMISTRY", want: SubjectChemistry},
		{input: "biology", want: SubjectBiology},
		{input: "history", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSubject(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseTopic(t *testing.T) {
	tests := []struct {
		subject Subject
		input   string
		want    Topic
		wantErr bool
	}{
		{subject: SubjectMath, input: "algebra", want: TopicAlgebra},
		{subject: SubjectPhysics, input: " Optics ", want: TopicOptics},
		{subject: SubjectChemistry, input: "stoichiometry", want: TopicStoichio},
		// Valid topic, wrong subject.
		{subject: SubjectMath, input: "mechanics", wantErr: true},
		{subject: SubjectBiology, input: "astrology", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseTopic(tt.subject, tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrValidation, "subject %q topic %q", tt.subject, tt.input)
			continue
		}
		require.NoError(t, err, "subject %q topic %q", tt.subject, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestSubjectsAndTopicsAreStable(t *testing.T) {
	assert.Equal(t, []Subject{SubjectBiology, SubjectChemistry, SubjectMath, SubjectPhysics}, Subjects())
	assert.Equal(t, []Topic{TopicAlgebra, TopicCalculus, TopicGeometry, TopicStatistics}, Topics(SubjectMath))
	assert.Empty(t, Topics(Subject("history")))
}

func TestCard_NewAndDue(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	fresh := Card{}
	assert.True(t, fresh.IsNew())
	assert.False(t, fresh.IsDue(today))

	overdue := Card{DueDate: &yesterday}
	assert.False(t, overdue.IsNew())
	assert.True(t, overdue.IsDue(today))

	dueToday := Card{DueDate: &today}
	assert.True(t, dueToday.IsDue(today))

	notYet := Card{DueDate: &tomorrow}
	assert.False(t, notYet.IsDue(today))
}

func TestCard_SchedulingRoundTrip(t *testing.T) {
	due := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	reviewed := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	var c Card
	c.ApplyScheduling(Scheduling{
		EaseFactor:     2.6,
		IntervalDays:   6,
		Repetitions:    2,
		DueDate:        &due,
		LastReviewedAt: &reviewed,
	})

	state := c.Scheduling()
	assert.Equal(t, 2.6, state.EaseFactor)
	assert.Equal(t, 6, state.IntervalDays)
	assert.Equal(t, 2, state.Repetitions)
	require.NotNil(t, state.DueDate)
	assert.Equal(t, due, *state.DueDate)
}

func TestTagList_ScanAndValue(t *testing.T) {
	var tags TagList
	require.NoError(t, tags.Scan("exam,weak-spot"))
	assert.Equal(t, TagList{"exam", "weak-spot"}, tags)

	require.NoError(t, tags.Scan([]byte("formula")))
	assert.Equal(t, TagList{"formula"}, tags)

	require.NoError(t, tags.Scan(""))
	assert.Nil(t, tags)

	require.NoError(t, tags.Scan(nil))
	assert.Nil(t, tags)

	assert.Error(t, tags.Scan(42))

	value, err := TagList{"exam", "formula"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "exam,formula", value)
}
