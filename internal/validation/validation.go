// Package validation holds the client side form rules. A form that fails
// them never reaches the network.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Error maps form fields to their user facing messages
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if msg := e.Fields[k]; !seen[msg] {
			seen[msg] = true
			messages = append(messages, msg)
		}
	}
	return strings.Join(messages, "; ")
}

// Field returns the message of one field, empty when it passed
func (e *Error) Field(name string) string {
	return e.Fields[name]
}

// Form is a struct whose validate tags are checked by Validate. Messages
// maps "Field.tag" or "Field" to the text shown to the user.
type Form interface {
	Messages() map[string]string
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("digits", validateDigits); err != nil {
		panic(fmt.Sprintf("failed to register digits validation: %v", err))
	}
	if err := v.RegisterValidation("trimmin", validateTrimMin); err != nil {
		panic(fmt.Sprintf("failed to register trimmin validation: %v", err))
	}
	return v
}

// validateDigits checks a string made only of ASCII digits, of exactly the
// length given as parameter
func validateDigits(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	want, err := strconv.Atoi(fl.Param())
	if err != nil || len(value) != want {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validateTrimMin checks the length of the value without surrounding spaces
func validateTrimMin(fl validator.FieldLevel) bool {
	want, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len([]rune(strings.TrimFunc(fl.Field().String(), unicode.IsSpace))) >= want
}

// Validate checks form and returns *Error listing every failed field
func Validate(form Form) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}

	messages := form.Messages()
	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		name := fe.Field()
		if _, done := out.Fields[name]; done {
			continue
		}
		msg, ok := messages[name+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[name]
		}
		if !ok {
			msg = fmt.Sprintf("%s is invalid", name)
		}
		out.Fields[name] = msg
	}
	return out
}
