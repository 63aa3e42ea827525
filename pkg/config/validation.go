package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	// Generate custom message based on tag
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s is below the allowed minimum", e.Field)
	case "max":
		return fmt.Sprintf("%s exceeds the allowed maximum", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of the allowed values", e.Field)
	case "band":
		return fmt.Sprintf("%s must satisfy 0 <= lo <= hi <= 1", e.Field)
	case "scenario_mix":
		return fmt.Sprintf("%s must be a probability distribution over known scenarios", e.Field)
	case "weights":
		return fmt.Sprintf("%s must be non-negative weights summing to 1", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validator provides configuration validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	validate := validator.New()

	// Register custom validation functions
	if err := registerAllValidators(validate); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &Validator{validate: validate}, nil
}

// ValidateConfig validates a configuration struct.
func (v *Validator) ValidateConfig(config *Config) error {
	if config == nil {
		return ValidationErrors{{Field: "config", Message: "config is nil"}}
	}

	err := v.validate.Struct(config)
	if err == nil {
		return v.validateCrossFields(config)
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var out ValidationErrors
	for _, fe := range invalid {
		out = append(out, ValidationError{
			Field: fe.Namespace(),
			Tag:   fe.Tag(),
			Value: fe.Value(),
		})
	}
	return out
}

// validateCrossFields covers constraints spanning multiple fields that
// struct tags cannot express.
func (v *Validator) validateCrossFields(config *Config) error {
	var out ValidationErrors

	cur := &config.Curriculum
	if cur.MaxDifficulty < cur.InitialBand.Hi {
		out = append(out, ValidationError{
			Field:   "Curriculum.MaxDifficulty",
			Message: "max_difficulty must not be below the initial band's upper bound",
		})
	}
	if cur.RegressionThreshold > cur.SuccessThreshold {
		out = append(out, ValidationError{
			Field:   "Curriculum.RegressionThreshold",
			Message: "regression_threshold must not exceed success_threshold",
		})
	}

	if len(out) > 0 {
		return out
	}
	return nil
}

// registerAllValidators registers the custom validation tags.
func registerAllValidators(validate *validator.Validate) error {
	if err := validate.RegisterValidation("band", validateBand); err != nil {
		return err
	}
	if err := validate.RegisterValidation("scenario_mix", validateScenarioMix); err != nil {
		return err
	}
	if err := validate.RegisterValidation("weights", validateWeights); err != nil {
		return err
	}
	return nil
}

func validateBand(fl validator.FieldLevel) bool {
	band, ok := fl.Field().Interface().(core.Band)
	if !ok {
		return false
	}
	return band.Validate() == nil
}

func validateScenarioMix(fl validator.FieldLevel) bool {
	mix, ok := fl.Field().Interface().(core.ScenarioMix)
	if !ok {
		return false
	}
	return mix.Validate() == nil
}

func validateWeights(fl validator.FieldLevel) bool {
	weights, ok := fl.Field().Interface().(map[string]float64)
	if !ok {
		return false
	}
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return false
		}
		sum += w
	}
	return math.Abs(sum-1) < 1e-6
}
