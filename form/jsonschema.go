package form

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"github.com/tbxark/slotagent/types"
)

// ExtractToolName is the tool an extraction model calls to report entities.
const ExtractToolName = "extract_entities"

// Schema describes the process as a JSON object schema, one property per
// field, for the external extraction component.
func (s *Spec) Schema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	for _, f := range s.fields {
		props.Set(f.Name, fieldSchema(f))
	}
	return &jsonschema.Schema{
		Type:        "object",
		Title:       s.name,
		Description: s.description,
		Properties:  props,
		Required:    s.required,
	}
}

func (s *Spec) JsonSchema() (string, error) {
	raw, err := json.Marshal(s.Schema())
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON schema: %w", err)
	}
	return string(raw), nil
}

// ToolInfo describes the entity intake as a tool whose arguments are the
// list of {name, value} records accepted by the entity parser.
func (s *Spec) ToolInfo() *schema.ToolInfo {
	names := make([]any, len(s.fields))
	var hints []string
	for i, f := range s.fields {
		names[i] = f.Name
		hints = append(hints, fmt.Sprintf("%s (%s)", f.Name, f.Type))
	}

	entity := jsonschema.NewProperties()
	entity.Set("name", &jsonschema.Schema{Type: "string", Enum: names, Description: "Field name"})
	entity.Set("value", &jsonschema.Schema{Description: "Value as stated by the user: " + strings.Join(hints, ", ")})

	params := jsonschema.NewProperties()
	params.Set("entities", &jsonschema.Schema{
		Type: "array",
		Items: &jsonschema.Schema{
			Type:       "object",
			Properties: entity,
			Required:   []string{"name", "value"},
		},
	})

	desc := "Report the values the user stated in the latest message."
	if s.description != "" {
		desc += " Goal: " + s.description
	}
	return &schema.ToolInfo{
		Name: ExtractToolName,
		Desc: desc,
		ParamsOneOf: schema.NewParamsOneOfByJSONSchema(&jsonschema.Schema{
			Type:       "object",
			Properties: params,
			Required:   []string{"entities"},
		}),
	}
}

func fieldSchema(f Field) *jsonschema.Schema {
	desc := f.Description
	if desc == "" {
		desc = f.Question
	}
	out := &jsonschema.Schema{Title: f.Title, Description: desc}
	switch f.Type {
	case types.FieldInt:
		out.Type = "integer"
	case types.FieldBool:
		out.Type = "boolean"
	case types.FieldEmail:
		out.Type = "string"
		out.Format = "email"
	case types.FieldDateRange:
		props := jsonschema.NewProperties()
		props.Set("start", &jsonschema.Schema{Type: "string", Format: "date-time"})
		props.Set("end", &jsonschema.Schema{Type: "string", Format: "date-time"})
		props.Set("grain", &jsonschema.Schema{Type: "number", Description: "Resolution in seconds"})
		out.Type = "object"
		out.Properties = props
		out.Required = []string{"start"}
	default:
		out.Type = "string"
	}
	return out
}
