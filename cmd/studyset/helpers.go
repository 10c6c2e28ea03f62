package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mfukuda/studyset/internal/block"
	"github.com/mfukuda/studyset/internal/card"
	"github.com/mfukuda/studyset/internal/config"
	"github.com/mfukuda/studyset/internal/database"
	"github.com/mfukuda/studyset/internal/performance"
	"github.com/mfukuda/studyset/internal/review"
	"github.com/mfukuda/studyset/internal/study"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// appContext bundles the wired-up application for command handlers.
type appContext struct {
	cfg     *config.Config
	db      *sqlx.DB
	cards   *card.DBRepository
	tracker *performance.Tracker
	service *study.Service
}

func (app *appContext) Close() error {
	return app.db.Close()
}

// newAppContext opens the database, wires the repositories and the
// service, and warms the performance tracker from review history.
func newAppContext(ctx context.Context) (*appContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}

	cards := card.NewDBRepository(db)
	reviews := review.NewDBRepository(db)
	sessions := review.NewDBSessionRepository(db)
	tracker := performance.NewTracker()

	scorer := block.NewScorer(block.Weights{
		Dueness:             cfg.Scoring.DuenessWeight,
		DifficultyAlignment: cfg.Scoring.DifficultyAlignmentWeight,
		Mastery:             cfg.Scoring.MasteryWeight,
		RecencyGap:          cfg.Scoring.RecencyGapWeight,
	}, tracker, cfg.Blocks.MaxOverdueDays)
	generator := block.NewGenerator(scorer, block.Config{
		MaxTopicShare:    cfg.Blocks.MaxTopicShare,
		AccuracyBandLow:  cfg.Blocks.AccuracyBandLow,
		AccuracyBandHigh: cfg.Blocks.AccuracyBandHigh,
	})

	writer := study.NewDBReviewWriter(db, cards, reviews)
	service := study.NewService(cards, reviews, sessions, writer, tracker, generator)

	if err := service.WarmUp(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("service.WarmUp() > %w", err)
	}

	return &appContext{
		cfg:     cfg,
		db:      db,
		cards:   cards,
		tracker: tracker,
		service: service,
	}, nil
}

// parseSubjectFlag converts an optional --subject value into a validated
// subject pointer; an empty value means no filter.
func parseSubjectFlag(raw string) (*card.Subject, error) {
	if raw == "" {
		return nil, nil
	}
	subject, err := card.ParseSubject(raw)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}
