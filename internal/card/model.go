// Package card provides the card domain model, closed subject/topic
// enumerations, and repository interfaces.
package card

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Subject is a closed enumeration of study subjects.
type Subject string

const (
	SubjectMath      Subject = "math"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
)

// Topic is a closed enumeration of topics, each scoped to one subject.
type Topic string

const (
	TopicAlgebra     Topic = "algebra"
	TopicGeometry    Topic = "geometry"
	TopicCalculus    Topic = "calculus"
	TopicStatistics  Topic = "statistics"
	TopicMechanics   Topic = "mechanics"
	TopicElectricity Topic = "electricity"
	TopicOptics      Topic = "optics"
	TopicOrganic     Topic = "organic"
	TopicInorganic   Topic = "inorganic"
	TopicStoichio    Topic = "stoichiometry"
	TopicCellBiology Topic = "cell_biology"
	TopicGenetics    Topic = "genetics"
	TopicEcology     Topic = "ecology"
)

// topicsBySubject is the single source of truth for which topics belong
// to which subject. Imports are validated against this table.
var topicsBySubject = map[Subject][]Topic{
	SubjectMath:      {TopicAlgebra, TopicGeometry, TopicCalculus, TopicStatistics},
	SubjectPhysics:   {TopicMechanics, TopicElectricity, TopicOptics},
	SubjectChemistry: {TopicOrganic, TopicInorganic, TopicStoichio},
	SubjectBiology:   {TopicCellBiology, TopicGenetics, TopicEcology},
}

// Subjects returns all known subjects in a stable order.
func Subjects() []Subject {
	subjects := make([]Subject, 0, len(topicsBySubject))
	for subject := range topicsBySubject {
		subjects = append(subjects, subject)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i] < subjects[j] })
	return subjects
}

// Topics returns the topics of a subject in a stable order.
func Topics(subject Subject) []Topic {
	topics := make([]Topic, len(topicsBySubject[subject]))
	copy(topics, topicsBySubject[subject])
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// ParseSubject validates a raw subject string against the closed enumeration.
func ParseSubject(raw string) (Subject, error) {
	subject := Subject(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := topicsBySubject[subject]; !ok {
		return "", fmt.Errorf("%w: unknown subject %q", ErrValidation, raw)
	}
	return subject, nil
}

// ParseTopic validates a raw topic string against the topics of a subject.
func ParseTopic(subject Subject, raw string) (Topic, error) {
	topic := Topic(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range topicsBySubject[subject] {
		if known == topic {
			return topic, nil
		}
	}
	return "", fmt.Errorf("%w: unknown topic %q for subject %q", ErrValidation, raw, subject)
}

const (
	// MinDifficulty and MaxDifficulty bound the ordered difficulty scale.
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Scheduling holds the spaced-repetition state of a card.
// A nil DueDate means the card has never been reviewed and is due immediately.
type Scheduling struct {
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	DueDate        *time.Time
	LastReviewedAt *time.Time
}

// Card represents a single learning item. Cards are created on import,
// mutated only by review scheduling, and archived instead of deleted.
type Card struct {
	ID             int64      `db:"id" yaml:"id"`
	Subject        Subject    `db:"subject" yaml:"subject"`
	Topic          Topic      `db:"topic" yaml:"topic"`
	ConceptName    string     `db:"concept_name" yaml:"concept_name"`
	Question       string     `db:"question" yaml:"question"`
	Answer         string     `db:"answer" yaml:"answer"`
	Difficulty     int        `db:"difficulty" yaml:"difficulty"`
	Tags           TagList    `db:"tags" yaml:"tags,omitempty"`
	Archived       bool       `db:"archived" yaml:"archived,omitempty"`
	EaseFactor     float64    `db:"ease_factor" yaml:"ease_factor"`
	IntervalDays   int        `db:"interval_days" yaml:"interval_days"`
	Repetitions    int        `db:"repetitions" yaml:"repetitions"`
	DueDate        *time.Time `db:"due_date" yaml:"due_date,omitempty"`
	LastReviewedAt *time.Time `db:"last_reviewed_at" yaml:"last_reviewed_at,omitempty"`
	Version        int64      `db:"version" yaml:"version"`
	CreatedAt      time.Time  `db:"created_at" yaml:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" yaml:"updated_at"`
}

// Scheduling returns the card's current spaced-repetition state.
func (c Card) Scheduling() Scheduling {
	return Scheduling{
		EaseFactor:     c.EaseFactor,
		IntervalDays:   c.IntervalDays,
		Repetitions:    c.Repetitions,
		DueDate:        c.DueDate,
		LastReviewedAt: c.LastReviewedAt,
	}
}

// ApplyScheduling replaces the card's spaced-repetition state.
func (c *Card) ApplyScheduling(state Scheduling) {
	c.EaseFactor = state.EaseFactor
	c.IntervalDays = state.IntervalDays
	c.Repetitions = state.Repetitions
	c.DueDate = state.DueDate
	c.LastReviewedAt = state.LastReviewedAt
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.DueDate == nil
}

// IsDue reports whether the card is scheduled on or before today.
func (c Card) IsDue(today time.Time) bool {
	return c.DueDate != nil && !c.DueDate.After(today)
}

// TagList stores card tags as a comma-separated string column.
type TagList []string

// Value implements driver.Valuer.
func (tags TagList) Value() (driver.Value, error) {
	return strings.Join(tags, ","), nil
}

// Scan implements sql.Scanner.
func (tags *TagList) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*tags = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into TagList", src)
	}
	if raw == "" {
		*tags = nil
		return nil
	}
	*tags = strings.Split(raw, ",")
	return nil
}
