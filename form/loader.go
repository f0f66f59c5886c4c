package form

import (
	"fmt"
	"os"
	"regexp"

	"github.com/mitchellh/mapstructure"
	"github.com/tbxark/slotagent/types"
	"gopkg.in/yaml.v3"
)

// Document is the YAML shape of a process declaration.
type Document struct {
	Name             string          `yaml:"name"`
	Description      string          `yaml:"description"`
	ErrorThreshold   int             `yaml:"error_threshold"`
	Required         []string        `yaml:"required"`
	CompleteWhenTrue []string        `yaml:"complete_when_true"`
	Fields           []FieldDocument `yaml:"fields"`
}

type FieldDocument struct {
	Name            string              `yaml:"name"`
	Type            string              `yaml:"type"`
	Title           string              `yaml:"title"`
	Description     string              `yaml:"description"`
	Question        string              `yaml:"question"`
	Acknowledgement string              `yaml:"acknowledgement"`
	Excluded        bool                `yaml:"excluded"`
	CountFailures   bool                `yaml:"count_failures"`
	Validators      []ValidatorDocument `yaml:"validators"`
}

// ValidatorDocument selects a built-in validator by rule name.
type ValidatorDocument struct {
	Rule    string   `yaml:"rule"`
	Message string   `yaml:"message"`
	Pattern string   `yaml:"pattern"`
	Value   int      `yaml:"value"`
	Options []string `yaml:"options"`
}

func LoadYAMLFile(path string, opts ...SpecOption) (*Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read process file: %w", err)
	}
	return LoadYAML(raw, opts...)
}

// LoadYAML parses a process declaration. Options are applied after the
// document, so Go code can attach rules the YAML cannot express.
func LoadYAML(raw []byte, opts ...SpecOption) (*Spec, error) {
	var input map[string]any
	if err := yaml.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("parse process yaml: %w", err)
	}
	var doc Document
	if err := decodeDocument(input, &doc); err != nil {
		return nil, err
	}
	return doc.Build(opts...)
}

func decodeDocument(input map[string]any, output *Document) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode process: %w", err)
	}
	return nil
}

func (d Document) Build(opts ...SpecOption) (*Spec, error) {
	fields := make([]Field, 0, len(d.Fields))
	for _, fd := range d.Fields {
		f := Field{
			Name:            fd.Name,
			Type:            types.FieldType(fd.Type),
			Title:           fd.Title,
			Description:     fd.Description,
			Question:        fd.Question,
			Acknowledgement: fd.Acknowledgement,
			Excluded:        fd.Excluded,
			CountFailures:   fd.CountFailures,
		}
		if f.Type == "" {
			f.Type = types.FieldString
		}
		for _, vd := range fd.Validators {
			v, err := vd.build()
			if err != nil {
				return nil, &DeclarationError{Process: d.Name, Field: fd.Name, Reason: err.Error()}
			}
			f.Validators = append(f.Validators, v)
		}
		fields = append(fields, f)
	}

	base := []SpecOption{
		WithDescription(d.Description),
		WithErrorThreshold(d.ErrorThreshold),
	}
	if len(d.Required) > 0 {
		base = append(base, WithRequired(d.Required...))
	}
	if len(d.CompleteWhenTrue) > 0 {
		names := d.CompleteWhenTrue
		base = append(base, WithCompletion(func(v Values) bool {
			for _, name := range names {
				if !v.Bool(name) {
					return false
				}
			}
			return true
		}))
	}
	return NewSpec(d.Name, fields, append(base, opts...)...)
}

func (vd ValidatorDocument) build() (Validator, error) {
	msg := vd.Message
	switch vd.Rule {
	case "not_empty":
		return NotEmpty(msg), nil
	case "starts_with_letter":
		return StartsWithLetter(msg), nil
	case "capitalize":
		return Capitalize(), nil
	case "lower":
		return Lower(), nil
	case "regex":
		re, err := regexp.Compile(vd.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", vd.Pattern, err)
		}
		return MatchesRegexp(re, msg), nil
	case "min":
		return MinInt(vd.Value, msg), nil
	case "max":
		return MaxInt(vd.Value, msg), nil
	case "min_length":
		return MinLength(vd.Value, msg), nil
	case "must_be_true":
		return MustBeTrue(msg), nil
	case "one_of":
		if len(vd.Options) == 0 {
			return nil, fmt.Errorf("one_of needs options")
		}
		return OneOf(msg, vd.Options...), nil
	default:
		return nil, fmt.Errorf("unknown validator %q", vd.Rule)
	}
}
