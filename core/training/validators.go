package training

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mafunzo/core"
)

var (
	durationTag   = "duration"
	durationText  = "invalid {0} format, use 'number unit' (e.g. '10 minutes')"
	durationRegex = regexp.MustCompile(`^[1-9][0-9]*\s(second|seconds|minute|minutes|hour|hours)$`)
)

// InitValidators registers the training validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(durationTag, durationValidation)
	core.RegisterCustomTranslation(validate, translator, durationTag, durationText)
}

// ValidDuration reports whether s reads like "<positive integer> <second(s)|minute(s)|hour(s)>".
func ValidDuration(s string) bool {
	return durationRegex.MatchString(s)
}

func durationValidation(fl validator.FieldLevel) bool {
	return ValidDuration(fl.Field().String())
}
