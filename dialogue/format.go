package dialogue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/tbxark/slotagent/types"
)

func formatCollectedSection(collected map[string]any) string {
	if len(collected) == 0 {
		return ""
	}
	names := make([]string, 0, len(collected))
	for name := range collected {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf strings.Builder
	buf.WriteString("# Collected:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, name := range names {
		_ = table.Append(name, types.Display(collected[name]))
	}
	_ = table.Render()
	return buf.String()
}

func formatRemainingSection(remaining []string) string {
	if len(remaining) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("# Remaining fields:\n")
	for _, name := range remaining {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatMarkdown renders a directive as a prompt section for an external
// response generator.
func FormatMarkdown(d *Directive) string {
	sections := []string{fmt.Sprintf("# Phase:\n%s", d.Phase)}
	if s := formatCollectedSection(d.Collected); s != "" {
		sections = append(sections, s)
	}
	if s := formatRemainingSection(d.Remaining); s != "" {
		sections = append(sections, s)
	}
	if d.ErrorDirective != "" {
		sections = append(sections, fmt.Sprintf("# Error (%s):\n%s", d.ErrorField, d.ErrorDirective))
	}
	if d.UpdateDirective != "" {
		sections = append(sections, fmt.Sprintf("# Update:\n%s", d.UpdateDirective))
	}
	if len(d.Acknowledgements) > 0 {
		sections = append(sections, "# Acknowledge:\n"+strings.Join(d.Acknowledgements, "\n"))
	}
	if d.NextQuestion != "" {
		sections = append(sections, fmt.Sprintf("# Next question (%s):\n%s", d.NextField, d.NextQuestion))
	}
	return strings.Join(sections, "\n\n")
}
