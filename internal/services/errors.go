package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/screening-service/internal/errors"
	"github.com/SAP-F-2025/screening-service/internal/quiz"
)

var (
	ErrSessionNotFound = errors.New("screening session not found")
	ErrStepBlocked     = errors.New("step transition not allowed")
	ErrReportNotReady  = errors.New("screening is not finished yet")

	ErrGameNotFinished         = quiz.ErrGameNotFinished
	ErrAnswersAlreadySubmitted = quiz.ErrAnswersAlreadySubmitted
	ErrSessionFinished         = quiz.ErrSessionFinished
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// BusinessRuleError reports a request that is well-formed but not allowed in
// the session's current state. It matches ErrStepBlocked with errors.Is.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`

	cause error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Is(target error) bool {
	return target == ErrStepBlocked
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.cause
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// stepBlocked translates quiz gating errors into a BusinessRuleError.
func stepBlocked(err error, from, to quiz.Step) error {
	rule := "step_order"
	switch {
	case errors.Is(err, quiz.ErrAnswersIncomplete):
		rule = "orientation_incomplete"
	case errors.Is(err, quiz.ErrClockMissing):
		rule = "clock_missing"
	}
	bre := NewBusinessRuleError(rule, err.Error(), map[string]interface{}{
		"current_step":   int(from),
		"requested_step": int(to),
	})
	bre.cause = err
	return bre
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict reports errors caused by repeating or reordering an action.
func IsConflict(err error) bool {
	return errors.Is(err, ErrGameNotFinished) ||
		errors.Is(err, ErrAnswersAlreadySubmitted) ||
		errors.Is(err, ErrReportNotReady) ||
		errors.Is(err, ErrSessionFinished)
}

func IsValidation(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}
