package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTemplate(t *testing.T) {
	valid := []string{
		"",
		"No placeholders here.",
		"Nice to meet you, {{first_name}}.",
		"{% if age %}You are {{ age }}.{% endif %}{# note #}",
		`{{ "a }} b" }}`,
		`Say {{ 'it\'s' }}`,
	}
	for _, tpl := range valid {
		assert.NoError(t, CheckTemplate(tpl), tpl)
	}

	invalid := []string{
		"Is {{ first_name correct?",
		"Hello {{x",
		"{{first_name}",
		"{% if a %}yes{% endif",
		"{{ a {{ b }}",
		`{{ "open }}`,
		"{# comment",
	}
	for _, tpl := range invalid {
		assert.Error(t, CheckTemplate(tpl), tpl)
	}
}
