// Package validation wraps go-playground/validator with English translations
// and the custom tags used by request payloads.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// TagDisplayName validates player display names.
const TagDisplayName = "displayname"

var displayNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*(_[A-Za-z0-9]+)*$`)

// Validator validates structs and renders translated messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Error is returned by Struct when validation fails.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// HasTag reports whether any failed rule used tag.
func (e *Error) HasTag(tag string) bool {
	for _, f := range e.Fields {
		if f.Tag == tag {
			return true
		}
	}
	return false
}

// HasField reports whether field failed any rule.
func (e *Error) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// New creates a Validator with the custom tags registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so field errors line up with request payloads.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation(TagDisplayName, func(fl validator.FieldLevel) bool {
		return IsDisplayName(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	uni := ut.New(en.New())
	trans, _ := uni.GetTranslator("en")

	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	if err := v.RegisterTranslation(TagDisplayName, trans,
		func(ut ut.Translator) error {
			return ut.Add(TagDisplayName, "{0} must start with a letter and contain only letters, digits and single underscores", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(TagDisplayName, fe.Field())
			return msg
		},
	); err != nil {
		return nil, err
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Struct validates s. A non-nil result is always *Error unless s is not a struct.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Translate(v.trans),
		})
	}

	return out
}

// IsDisplayName reports whether name is a well formed display name.
func IsDisplayName(name string) bool {
	return displayNamePattern.MatchString(name)
}
