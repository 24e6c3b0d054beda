package queryfilter

import (
	"strings"

	"hostdesk/internal/platform/validate"

	"github.com/go-playground/validator/v10"
)

// field rules share the process validator so tags and messages match the handlers
func rules() *validator.Validate { return validate.Get().Validator }

func ruleMessage(err error) string {
	_, msg := validate.FieldAndMessage(err)
	return strings.TrimSpace(msg)
}
