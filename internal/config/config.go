// Package config loads and validates application configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Blocks   BlocksConfig   `mapstructure:"blocks"`
	Reports  ReportsConfig  `mapstructure:"reports"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// ScoringConfig holds the priority-score weights. The four weights must
// each be in [0, 1] and sum to 1 so that scores stay comparable across runs.
type ScoringConfig struct {
	DuenessWeight             float64 `mapstructure:"dueness_weight" validate:"gte=0,lte=1"`
	DifficultyAlignmentWeight float64 `mapstructure:"difficulty_alignment_weight" validate:"gte=0,lte=1"`
	MasteryWeight             float64 `mapstructure:"mastery_weight" validate:"gte=0,lte=1"`
	RecencyGapWeight          float64 `mapstructure:"recency_gap_weight" validate:"gte=0,lte=1"`
}

type BlocksConfig struct {
	MaxTopicShare    float64 `mapstructure:"max_topic_share" validate:"gt=0,lte=1"`
	AccuracyBandLow  float64 `mapstructure:"accuracy_band_low" validate:"gte=0,lte=1"`
	AccuracyBandHigh float64 `mapstructure:"accuracy_band_high" validate:"gte=0,lte=1"`
	MaxOverdueDays   int     `mapstructure:"max_overdue_days" validate:"gte=1"`
}

type ReportsConfig struct {
	OutputDirectory string `mapstructure:"output_directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studyset")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "studyset")
	v.SetDefault("database.username", "user")
	v.SetDefault("scoring.dueness_weight", 0.4)
	v.SetDefault("scoring.difficulty_alignment_weight", 0.2)
	v.SetDefault("scoring.mastery_weight", 0.25)
	v.SetDefault("scoring.recency_gap_weight", 0.15)
	v.SetDefault("blocks.max_topic_share", 0.4)
	v.SetDefault("blocks.accuracy_band_low", 0.70)
	v.SetDefault("blocks.accuracy_band_high", 0.85)
	v.SetDefault("blocks.max_overdue_days", 30)
	v.SetDefault("reports.output_directory", filepath.Join("outputs", "reports"))

	// Bind database password to environment variable only (not from config file)
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
