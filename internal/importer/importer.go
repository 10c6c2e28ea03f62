// Package importer accepts card construction payloads from authoring
// collaborators (outline parsers, manual entry, generated content) and
// validates them against the closed subject/topic enumerations before
// anything reaches storage. Malformed payloads are rejected, never coerced.
package importer

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"

	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/review"
)

// Payload is one card construction request as supplied by a collaborator.
type Payload struct {
	Subject     string   `yaml:"subject" validate:"required"`
	Topic       string   `yaml:"topic" validate:"required"`
	ConceptName string   `yaml:"concept_name" validate:"required"`
	Question    string   `yaml:"question" validate:"required"`
	Answer      string   `yaml:"answer" validate:"required"`
	Difficulty  int      `yaml:"difficulty" validate:"required,min=1,max=5"`
	Tags        []string `yaml:"tags,omitempty"`
}

// CardCreator is the storage slice the importer needs.
type CardCreator interface {
	Create(ctx context.Context, c *card.Card) error
}

// Importer validates payloads and creates cards.
type Importer struct {
	cards      CardCreator
	validate   *validator.Validate
	translator ut.Translator
}

// NewImporter creates an Importer.
func NewImporter(cards CardCreator) (*Importer, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Importer{cards: cards, validate: validate, translator: trans}, nil
}

// ImportFile reads a YAML list of payloads and creates a card for each.
// The whole file is validated before the first card is created, so a bad
// entry rejects the import without partial effects.
func (imp *Importer) ImportFile(ctx context.Context, path string) ([]card.Card, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var payloads []Payload
	if err := yaml.Unmarshal(content, &payloads); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}

	cards := make([]card.Card, 0, len(payloads))
	for i, payload := range payloads {
		c, err := imp.ToCard(payload)
		if err != nil {
			return nil, fmt.Errorf("payload %d: %w", i+1, err)
		}
		cards = append(cards, *c)
	}

	for i := range cards {
		if err := imp.cards.Create(ctx, &cards[i]); err != nil {
			return nil, fmt.Errorf("cards.Create() > %w", err)
		}
	}
	return cards, nil
}

// ToCard validates a single payload and builds the card with default
// scheduling state: ease 2.5, no due date, zero repetitions.
func (imp *Importer) ToCard(payload Payload) (*card.Card, error) {
	if err := imp.validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(imp.translator))
		}
		return nil, fmt.Errorf("%w: %s", card.ErrValidation, strings.Join(errorMsgs, ", "))
	}

	subject, err := card.ParseSubject(payload.Subject)
	if err != nil {
		return nil, err
	}
	topic, err := card.ParseTopic(subject, payload.Topic)
	if err != nil {
		return nil, err
	}

	return &card.Card{
		Subject:     subject,
		Topic:       topic,
		ConceptName: payload.ConceptName,
		Question:    payload.Question,
		Answer:      payload.Answer,
		Difficulty:  payload.Difficulty,
		Tags:        payload.Tags,
		EaseFactor:  review.DefaultEaseFactor,
	}, nil
}
