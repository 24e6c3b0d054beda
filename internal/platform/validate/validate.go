// Package validate owns the process validator and its english messages
// request binding and filter rules both go through it so tags read the same everywhere
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Svc holds the validator and its english translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Get returns the singleton, building it on first use
func Get() *Svc {
	once.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		short(v, trans, "min", "{0} must be at least {1}")
		short(v, trans, "max", "{0} must be at most {1}")
		short(v, trans, "oneof", "{0} must be one of [{1}]")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// jsonName reports fields by their json key so messages match the wire
func jsonName(fld reflect.StructField) string {
	tag, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if tag == "" || tag == "-" {
		return fld.Name
	}
	return tag
}

func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// FieldAndMessage returns the first failing field and its translated message
// errors that did not come from the validator pass through as their own text
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	return "", err.Error()
}
