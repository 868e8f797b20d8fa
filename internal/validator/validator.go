package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/SAP-F-2025/screening-service/internal/errors"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/quiz"
)

// Validator wraps go-playground/validator with the screening tags registered.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// Validate checks struct tags and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("orientation_answers", validateOrientationAnswers)
	validate.RegisterValidation("quiz_step", validateQuizStep)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateOrientationAnswers accepts a map keyed by question id only.
// Missing questions are allowed; they are scored as wrong.
func validateOrientationAnswers(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map || field.Type().Key().Kind() != reflect.String {
		return false
	}
	for _, k := range field.MapKeys() {
		if !models.IsOrientationQuestion(k.String()) {
			return false
		}
	}
	return true
}

func validateQuizStep(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return quiz.Step(fl.Field().Int()).Valid()
	}
	return false
}
