package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfukuda/studyset/internal/testutil"
)

func loadFromContent(t *testing.T, content string) (*Config, error) {
	t.Helper()

	path := testutil.WriteConfigFile(t, t.TempDir(), content)
	loader, err := NewConfigLoader(path)
	require.NoError(t, err)
	return loader.Load()
}

func TestConfigLoader_Defaults(t *testing.T) {
	cfg, err := loadFromContent(t, "database:\n  host: localhost\n")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "studyset", cfg.Database.Database)

	assert.InDelta(t, 0.4, cfg.Scoring.DuenessWeight, 0.0001)
	assert.InDelta(t, 0.2, cfg.Scoring.DifficultyAlignmentWeight, 0.0001)
	assert.InDelta(t, 0.25, cfg.Scoring.MasteryWeight, 0.0001)
	assert.InDelta(t, 0.15, cfg.Scoring.RecencyGapWeight, 0.0001)

	assert.InDelta(t, 0.4, cfg.Blocks.MaxTopicShare, 0.0001)
	assert.InDelta(t, 0.70, cfg.Blocks.AccuracyBandLow, 0.0001)
	assert.InDelta(t, 0.85, cfg.Blocks.AccuracyBandHigh, 0.0001)
	assert.Equal(t, 30, cfg.Blocks.MaxOverdueDays)

	assert.Equal(t, filepath.Join("outputs", "reports"), cfg.Reports.OutputDirectory)
}

func TestConfigLoader_Overrides(t *testing.T) {
	cfg, err := loadFromContent(t, `
database:
  host: db.internal
  port: 3307
scoring:
  dueness_weight: 0.5
  difficulty_alignment_weight: 0.1
  mastery_weight: 0.25
  recency_gap_weight: 0.15
blocks:
  max_topic_share: 0.5
  max_overdue_days: 14
reports:
  output_directory: /tmp/reports
`)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3307, cfg.Database.Port)
	assert.InDelta(t, 0.5, cfg.Scoring.DuenessWeight, 0.0001)
	assert.InDelta(t, 0.5, cfg.Blocks.MaxTopicShare, 0.0001)
	assert.Equal(t, 14, cfg.Blocks.MaxOverdueDays)
	assert.Equal(t, "/tmp/reports", cfg.Reports.OutputDirectory)
}

func TestConfigLoader_PasswordFromEnvironment(t *testing.T) {
	t.Setenv("DB_PASSWORD", "sekret")

	cfg, err := loadFromContent(t, "database:\n  host: localhost\n")
	require.NoError(t, err)
	assert.Equal(t, "sekret", cfg.Database.Password)
}

func TestConfigLoader_RejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := loadFromContent(t, `
scoring:
  dueness_weight: 0.9
  difficulty_alignment_weight: 0.9
  mastery_weight: 0.25
  recency_gap_weight: 0.15
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring weights must sum to 1")
}

func TestConfigLoader_RejectsInvertedAccuracyBand(t *testing.T) {
	_, err := loadFromContent(t, `
blocks:
  accuracy_band_low: 0.9
  accuracy_band_high: 0.8
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accuracy_band_low must be below accuracy_band_high")
}

func TestConfigLoader_RejectsOutOfRangeWeight(t *testing.T) {
	_, err := loadFromContent(t, `
scoring:
  dueness_weight: 1.5
  difficulty_alignment_weight: -0.5
  mastery_weight: -0.5
  recency_gap_weight: 0.5
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dueness_weight")
}

func TestConfigLoader_RejectsUnreadableFile(t *testing.T) {
	loader, err := NewConfigLoader(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	_, err = loader.Load()
	assert.Error(t, err)
}
