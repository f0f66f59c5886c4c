package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/types"
)

// Render fills the {{name}} placeholders of tpl with the display form of
// values. Templates use Jinja2 syntax.
func Render(ctx context.Context, tpl string, values map[string]any) (string, error) {
	if !strings.Contains(tpl, "{{") && !strings.Contains(tpl, "{%") {
		return tpl, nil
	}
	if err := form.CheckTemplate(tpl); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	msgs, err := schema.UserMessage(tpl).Format(ctx, types.DisplayValues(values), schema.Jinja2)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[0].Content, nil
}

// JoinList joins items as a natural-language list: "a", "a and b",
// "a, b and c".
func JoinList(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " " + conj + " " + items[len(items)-1]
	}
}
