package config

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterStructValidation(validateScoringWeights, ScoringConfig{})
	validate.RegisterStructValidation(validateAccuracyBand, BlocksConfig{})

	if err := registerTranslation(validate, trans, "weights_sum",
		"scoring weights must sum to 1"); err != nil {
		return nil, nil, err
	}
	if err := registerTranslation(validate, trans, "accuracy_band",
		"accuracy_band_low must be below accuracy_band_high"); err != nil {
		return nil, nil, err
	}

	return validate, trans, nil
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) error {
	if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
		return ut.Add(tag, message, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag)
		return t
	}); err != nil {
		return fmt.Errorf("failed to register %s translation: %w", tag, err)
	}
	return nil
}

// validateScoringWeights rejects weight sets that do not sum to 1, within
// a small tolerance for yaml float rounding.
func validateScoringWeights(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(ScoringConfig)
	sum := cfg.DuenessWeight + cfg.DifficultyAlignmentWeight + cfg.MasteryWeight + cfg.RecencyGapWeight
	if math.Abs(sum-1.0) > 0.001 {
		sl.ReportError(cfg.DuenessWeight, "dueness_weight", "DuenessWeight", "weights_sum", "")
	}
}

func validateAccuracyBand(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(BlocksConfig)
	if cfg.AccuracyBandLow >= cfg.AccuracyBandHigh {
		sl.ReportError(cfg.AccuracyBandLow, "accuracy_band_low", "AccuracyBandLow", "accuracy_band", "")
	}
}
