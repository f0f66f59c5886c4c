package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/slotagent/types"
)

func accountFields() []Field {
	return []Field{
		{Name: "first_name", Type: types.FieldString, Question: "What is your first name?", Validators: []Validator{Capitalize()}},
		{Name: "age", Type: types.FieldInt, Question: "How old are you?"},
		{Name: "note", Type: types.FieldString, Excluded: true},
		{Name: "confirmation", Type: types.FieldBool, Question: "Is that all correct?", Excluded: true},
	}
}

func TestNewSpecDefaults(t *testing.T) {
	s, err := NewSpec("account", accountFields())
	require.NoError(t, err)

	assert.Equal(t, DefaultErrorThreshold, s.ErrorThreshold())
	assert.Equal(t, []string{"first_name", "age"}, s.Required())
	assert.Equal(t, []string{"first_name", "age", "note", "confirmation"}, s.Names())
	assert.Equal(t, 1, s.Order("age"))
	assert.Equal(t, -1, s.Order("missing"))

	f, ok := s.Field("confirmation")
	require.True(t, ok)
	assert.True(t, f.Asks())
	assert.True(t, f.Announces())
}

func TestNewSpecDeclarationErrors(t *testing.T) {
	cases := []struct {
		name   string
		fields []Field
		opts   []SpecOption
	}{
		{name: "no fields"},
		{name: "duplicate", fields: []Field{{Name: "a", Type: types.FieldString}, {Name: "a", Type: types.FieldInt}}},
		{name: "unknown type", fields: []Field{{Name: "a", Type: "decimal"}}},
		{name: "empty name", fields: []Field{{Type: types.FieldString}}},
		{name: "nil validator", fields: []Field{{Name: "a", Type: types.FieldString, Validators: []Validator{nil}}}},
		{name: "unknown required", fields: []Field{{Name: "a", Type: types.FieldString}}, opts: []SpecOption{WithRequired("b")}},
		{name: "unclosed question", fields: []Field{{Name: "a", Type: types.FieldString, Question: "Is {{ first_name correct?"}}},
		{name: "unterminated acknowledgement", fields: []Field{{Name: "a", Type: types.FieldString, Acknowledgement: "Hello {{x"}}},
		{name: "unclosed block", fields: []Field{{Name: "a", Type: types.FieldString, Question: "{% if a %}yes{% endif"}}},
		{name: "negative threshold", fields: []Field{{Name: "a", Type: types.FieldString}}, opts: []SpecOption{WithErrorThreshold(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSpec("broken", tc.fields, tc.opts...)
			var declErr *DeclarationError
			require.True(t, errors.As(err, &declErr), "got %v", err)
			assert.Equal(t, "broken", declErr.Process)
		})
	}
}

func TestSpecCompleted(t *testing.T) {
	s, err := NewSpec("account", accountFields(), WithCompletion(func(v Values) bool {
		return v.Bool("confirmation")
	}))
	require.NoError(t, err)

	assert.False(t, s.Completed(Values{"first_name": "Nathan"}))
	assert.False(t, s.Completed(Values{"first_name": "Nathan", "age": 30}), "confirmation question still open")
	assert.False(t, s.Completed(Values{"first_name": "Nathan", "age": 30, "confirmation": false}))
	assert.True(t, s.Completed(Values{"first_name": "Nathan", "age": 30, "confirmation": true}))
}

func TestSpecResultDropsExcluded(t *testing.T) {
	s, err := NewSpec("account", accountFields())
	require.NoError(t, err)

	got := s.Result(Values{"first_name": "Nathan", "age": nil, "note": "x", "confirmation": true, "stray": 1})
	assert.Equal(t, map[string]any{"first_name": "Nathan"}, got)
}

func TestSpecSort(t *testing.T) {
	s, err := NewSpec("account", accountFields())
	require.NoError(t, err)

	names := []string{"zeta", "confirmation", "alpha", "first_name"}
	s.Sort(names)
	assert.Equal(t, []string{"first_name", "confirmation", "alpha", "zeta"}, names)
}

func TestFieldValidateChain(t *testing.T) {
	f := Field{
		Name:       "occupation",
		Type:       types.FieldString,
		Validators: []Validator{Lower(), MinLength(3, "Occupation is too short")},
	}
	v, err := f.Validate("ENGINEER", nil)
	require.NoError(t, err)
	assert.Equal(t, "engineer", v)

	_, err = f.Validate("IT", nil)
	assert.EqualError(t, err, "Occupation is too short")
}
