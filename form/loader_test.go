package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/slotagent/types"
)

const accountYAML = `
name: account_opening
description: Open a bank account
error_threshold: 4
complete_when_true: [confirmation]
fields:
  - name: first_name
    title: First name
    question: What is your first name?
    validators:
      - rule: starts_with_letter
        message: First name must start with a letter.
      - rule: capitalize
  - name: age
    type: int
    question: "Nice to meet you {{first_name}}, how old are you?"
    validators:
      - rule: min
        value: "18"
        message: Age must be 18 or older
  - name: phone
    question: What is your phone number?
    count_failures: true
    validators:
      - rule: regex
        pattern: '^\d{3}-\d{3}-\d{4}$'
        message: Invalid phone number format
  - name: confirmation
    type: bool
    question: Shall I open the account?
    excluded: true
    validators:
      - rule: must_be_true
        message: What would you like to change?
`

func TestLoadYAML(t *testing.T) {
	s, err := LoadYAML([]byte(accountYAML))
	require.NoError(t, err)

	assert.Equal(t, "account_opening", s.Name())
	assert.Equal(t, "Open a bank account", s.Description())
	assert.Equal(t, 4, s.ErrorThreshold())
	assert.Equal(t, []string{"first_name", "age", "phone"}, s.Required())

	age, ok := s.Field("age")
	require.True(t, ok)
	assert.Equal(t, types.FieldInt, age.Type)
	_, err = age.Validate(16, nil)
	assert.EqualError(t, err, "Age must be 18 or older")

	first, _ := s.Field("first_name")
	v, err := first.Validate("nathan", nil)
	require.NoError(t, err)
	assert.Equal(t, "Nathan", v)

	phone, _ := s.Field("phone")
	assert.True(t, phone.CountFailures)

	done := Values{"first_name": "Nathan", "age": 30, "phone": "555-123-4567", "confirmation": true}
	assert.True(t, s.Completed(done))
	done["confirmation"] = false
	assert.False(t, s.Completed(done))
}

func TestLoadYAMLAppliesOptions(t *testing.T) {
	called := false
	s, err := LoadYAML([]byte(accountYAML), WithRules(func(rc *RuleContext) { called = true }))
	require.NoError(t, err)
	require.Len(t, s.Rules(), 1)
	s.Rules()[0](NewRuleContext(nil, nil, nil))
	assert.True(t, called)
}

func TestLoadYAMLRejectsBadDeclarations(t *testing.T) {
	_, err := LoadYAML([]byte(`
name: broken
fields:
  - name: phone
    validators:
      - rule: regex
        pattern: '(['
`))
	var declErr *DeclarationError
	require.True(t, errors.As(err, &declErr))
	assert.Equal(t, "phone", declErr.Field)

	_, err = LoadYAML([]byte(`
name: broken
fields:
  - name: phone
    validators:
      - rule: telepathy
`))
	require.True(t, errors.As(err, &declErr))

	_, err = LoadYAML([]byte(`
name: broken
fields:
  - name: phone
    colour: blue
`))
	assert.Error(t, err, "unknown keys are rejected")
}
