package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("answers", "is required", nil)
	assert.Equal(t, "validation error on field 'answers': is required", err.Error())
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("step", "must be a quiz step between 1 and 3", 7))
	assert.Equal(t, "validation failed: step must be a quiz step between 1 and 3", errs.Error())

	errs = append(errs, *NewValidationError("index", "must be a number", "x"))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestFieldError(t *testing.T) {
	errs := FieldError("index", "card_index", "must be a card position on the board", -1)
	require.Len(t, errs, 1)
	assert.Equal(t, "card_index", errs[0].Rule)
	assert.Equal(t, -1, errs[0].Value)
}

func TestToValidationErrors(t *testing.T) {
	type req struct {
		Step int `validate:"min=1,max=3"`
	}
	err := validator.New().Struct(req{Step: 9})
	errs := ToValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Step", errs[0].Field)
	assert.Equal(t, "max", errs[0].Rule)
	assert.Equal(t, "must be at most 3", errs[0].Message)

	assert.Nil(t, ToValidationErrors(assert.AnError))
}
