package form

import (
	"fmt"

	"github.com/tbxark/slotagent/types"
)

// Values is the working mapping of slot name to value during a turn.
type Values map[string]any

func (v Values) Has(name string) bool {
	val, ok := v[name]
	return ok && val != nil
}

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Int(name string) (int, bool) {
	i, ok := v[name].(int)
	return i, ok
}

func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Validator checks a single slot value. It returns the value to keep, which
// may be a transformed copy, or an error whose message is shown to the user.
// values is the candidate state of the current turn.
type Validator func(value any, values Values) (any, error)

// Field declares one slot of a process.
type Field struct {
	Name        string
	Type        types.FieldType
	Title       string
	Description string

	// Question is asked while the slot is missing. Fields without a question
	// are filled by rules or prefill only.
	Question string
	// Acknowledgement is rendered when the slot is added or changed.
	Acknowledgement string

	// Excluded slots take part in the dialogue but are left out of the result.
	Excluded bool
	// CountFailures makes every rejection of this slot count toward the
	// process error threshold.
	CountFailures bool

	Validators []Validator
}

func (f Field) Asks() bool {
	return f.Question != ""
}

// Announces reports whether changes to the slot are surfaced to the user.
func (f Field) Announces() bool {
	return f.Question != "" || f.Acknowledgement != ""
}

func (f Field) DisplayName() string {
	if f.Title != "" {
		return f.Title
	}
	return f.Name
}

// Validate runs the validator chain in order, feeding each validator the
// output of the previous one.
func (f Field) Validate(value any, values Values) (any, error) {
	for i, validator := range f.Validators {
		next, err := validator(value, values)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, fmt.Errorf("validator %d of %s returned no value", i, f.Name)
		}
		value = next
	}
	return value, nil
}
