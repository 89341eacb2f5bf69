package form

import (
	"errors"
	"maps"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MsgRequired      = "This field is required."
	MsgWholeNumber   = "Enter a whole number."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// Choice is one selectable value of a form field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SortChoices orders choices by label, keeping the original order for equal
// labels.
func SortChoices(choices []Choice) {
	slices.SortStableFunc(choices, func(a, b Choice) int {
		return strings.Compare(a.Label, b.Label)
	})
}

// Errors maps field keys to a user facing message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := slices.Sorted(maps.Keys(e))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return strings.Join(parts, "; ")
}

// Merge copies o into e. Messages from o replace existing ones for the same
// field.
func (e Errors) Merge(o Errors) Errors {
	if len(o) == 0 {
		return e
	}
	if e == nil {
		e = Errors{}
	}
	maps.Copy(e, o)
	return e
}

// FromValidation converts the result of validation.Errors.Filter. Errors
// that are not keyed by field are reported under the empty key.
func FromValidation(err error) Errors {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return Errors{"": err.Error()}
	}
	out := make(Errors, len(errs))
	for key, e := range errs {
		out[key] = e.Error()
	}
	return out
}
