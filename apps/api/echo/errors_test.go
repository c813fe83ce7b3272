package echoapi

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mafunzo/core"
)

func TestFormErrors(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	type form struct {
		Name string `form:"name" validate:"required"`
	}

	t.Run("validator errors", func(t *testing.T) {
		fields, ok := formErrors(validate.Struct(form{}), translator)
		assert.True(t, ok)
		assert.Contains(t, fields, "name")
	})

	t.Run("field errors", func(t *testing.T) {
		err := errors.Wrap(core.NewValidationError(nil, core.FieldError{Field: "title", Error: "taken"}), "adding")
		fields, ok := formErrors(err, translator)
		assert.True(t, ok)
		assert.Equal(t, map[string]string{"title": "taken"}, fields)
	})

	t.Run("non-field error", func(t *testing.T) {
		fields, ok := formErrors(core.NewValidationError(errors.New("nope")), translator)
		assert.True(t, ok)
		assert.Equal(t, map[string]string{"": "nope"}, fields)
	})

	t.Run("other errors", func(t *testing.T) {
		_, ok := formErrors(errors.New("boom"), translator)
		assert.False(t, ok)
	})
}

func TestSummary(t *testing.T) {
	fields := map[string]string{"b": "second", "a": "first", "z": "extra"}
	assert.Equal(t, "first; second; extra", summary(fields, "a", "b"))
	assert.Equal(t, "", summary(nil, "a"))
}
