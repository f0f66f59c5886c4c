package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbxark/slotagent/diff"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/types"
)

type Composer struct {
	spec   *form.Spec
	logger *slog.Logger
}

func NewComposer(spec *form.Spec, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{spec: spec, logger: logger}
}

func (c *Composer) Compose(ctx context.Context, in ComposeInput) *Directive {
	d := &Directive{
		Phase:     in.Phase,
		Collected: map[string]any{},
		Remaining: []string{},
	}
	for name, value := range in.Accepted {
		if value == nil {
			continue
		}
		if _, failed := in.Errors[name]; failed {
			continue
		}
		d.Collected[name] = value
	}

	for _, f := range c.spec.Fields() {
		if _, ok := d.Collected[f.Name]; f.Asks() && !ok {
			d.Remaining = append(d.Remaining, f.Name)
		}
	}

	if !in.Phase.Terminal() && len(d.Remaining) > 0 {
		next, _ := c.spec.Field(d.Remaining[0])
		d.NextField = next.Name
		d.NextQuestion = c.render(ctx, next.Question, in.Accepted)
	}

	if len(in.Errors) > 0 {
		names := make([]string, 0, len(in.Errors))
		for name := range in.Errors {
			names = append(names, name)
		}
		c.spec.Sort(names)
		d.ErrorField = names[0]
		d.ErrorDirective = c.render(ctx, in.Errors[names[0]], in.Accepted)
	}

	d.UpdateDirective = c.updateDirective(in.Diff)
	for _, entry := range c.ordered(in.Diff) {
		if entry.Operation == types.OperationDeleted {
			continue
		}
		f, _ := c.spec.Field(entry.Name)
		if f.Acknowledgement == "" {
			continue
		}
		d.Acknowledgements = append(d.Acknowledgements, c.render(ctx, f.Acknowledgement, in.Accepted))
	}
	return d
}

func (c *Composer) render(ctx context.Context, tpl string, values map[string]any) string {
	out, err := Render(ctx, tpl, values)
	if err != nil {
		c.logger.Warn("Falling back to raw template", "template", tpl, "error", err)
		return tpl
	}
	return out
}

// updateDirective summarizes the diff, e.g.
// User provided `b` and updated `a`. Acknowledge the values of `b`: "20", `a`: "10".
func (c *Composer) updateDirective(entries []types.DiffEntry) string {
	if len(entries) == 0 {
		return ""
	}
	groups := diff.Group(c.ordered(entries))
	verbs := []struct {
		op   types.Operation
		verb string
	}{
		{types.OperationAdded, "provided"},
		{types.OperationChanged, "updated"},
		{types.OperationDeleted, "removed"},
	}
	clauses := make([]string, 0, len(verbs))
	for _, v := range verbs {
		group := groups[v.op]
		if len(group) == 0 {
			continue
		}
		names := make([]string, len(group))
		for i, e := range group {
			names[i] = fmt.Sprintf("`%s`", e.Name)
		}
		clauses = append(clauses, v.verb+" "+JoinList(names, "and"))
	}

	var sb strings.Builder
	sb.WriteString("User ")
	sb.WriteString(JoinList(clauses, "and"))
	sb.WriteString(".")

	var acknowledged []string
	for _, e := range append(groups[types.OperationAdded], groups[types.OperationChanged]...) {
		acknowledged = append(acknowledged, fmt.Sprintf("`%s`: %q", e.Name, types.Display(e.Value)))
	}
	if len(acknowledged) > 0 {
		sb.WriteString(" Acknowledge the values of ")
		sb.WriteString(strings.Join(acknowledged, ", "))
		sb.WriteString(".")
	}
	return sb.String()
}

// ordered returns entries in field declaration order.
func (c *Composer) ordered(entries []types.DiffEntry) []types.DiffEntry {
	names := make([]string, len(entries))
	byName := make(map[string]types.DiffEntry, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		byName[e.Name] = e
	}
	c.spec.Sort(names)
	out := make([]types.DiffEntry, len(names))
	for i, name := range names {
		out[i] = byName[name]
	}
	return out
}
