package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinList(t *testing.T) {
	assert.Equal(t, "", JoinList(nil, "and"))
	assert.Equal(t, "a", JoinList([]string{"a"}, "and"))
	assert.Equal(t, "a and b", JoinList([]string{"a", "b"}, "and"))
	assert.Equal(t, "a, b and c", JoinList([]string{"a", "b", "c"}, "and"))
	assert.Equal(t, "x, y or z", JoinList([]string{"x", "y", "z"}, "or"))
}

func TestRender(t *testing.T) {
	ctx := context.Background()

	out, err := Render(ctx, "Nice to meet you {{first_name}} {{last_name}}!", map[string]any{
		"first_name": "Nathan",
		"last_name":  "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you Nathan Doe!", out)

	out, err = Render(ctx, "You are {{age}}, right? Confirmed: {{confirmation}}", map[string]any{"age": 30, "confirmation": true})
	require.NoError(t, err)
	assert.Equal(t, "You are 30, right? Confirmed: true", out)

	out, err = Render(ctx, "No placeholders here.", nil)
	require.NoError(t, err)
	assert.Equal(t, "No placeholders here.", out)
}

func TestRenderRejectsUnbalancedTemplates(t *testing.T) {
	ctx := context.Background()
	values := map[string]any{"first_name": "Ada"}

	for _, tpl := range []string{"Is {{ first_name correct?", "Hello {{x", `{{ "first_name }}`} {
		_, err := Render(ctx, tpl, values)
		assert.Error(t, err, tpl)
	}
}
