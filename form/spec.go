package form

import (
	"fmt"
	"slices"

	"github.com/tbxark/slotagent/types"
)

const DefaultErrorThreshold = 3

// DeclarationError reports an invalid process declaration. It is returned at
// construction time and is never produced during a turn.
type DeclarationError struct {
	Process string
	Field   string
	Reason  string
}

func (e *DeclarationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("process %q: %s", e.Process, e.Reason)
	}
	return fmt.Sprintf("process %q: field %q: %s", e.Process, e.Field, e.Reason)
}

// Spec is an immutable process declaration: ordered fields, cross-field
// rules and the completion policy.
type Spec struct {
	name           string
	description    string
	fields         []Field
	index          map[string]int
	rules          []Rule
	required       []string
	isCompleted    func(Values) bool
	errorThreshold int
}

type SpecOption func(*Spec)

// WithDescription sets the goal of the process, exported to the extractor.
func WithDescription(description string) SpecOption {
	return func(s *Spec) {
		s.description = description
	}
}

func WithRules(rules ...Rule) SpecOption {
	return func(s *Spec) {
		s.rules = append(s.rules, rules...)
	}
}

// WithRequired overrides the required subset. By default every field that
// is not excluded is required.
func WithRequired(names ...string) SpecOption {
	return func(s *Spec) {
		s.required = names
	}
}

// WithCompletion adds a predicate that must hold for the process to complete.
func WithCompletion(fn func(Values) bool) SpecOption {
	return func(s *Spec) {
		s.isCompleted = fn
	}
}

func WithErrorThreshold(n int) SpecOption {
	return func(s *Spec) {
		s.errorThreshold = n
	}
}

func NewSpec(name string, fields []Field, opts ...SpecOption) (*Spec, error) {
	s := &Spec{
		name:   name,
		fields: slices.Clone(fields),
		index:  make(map[string]int, len(fields)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	if s.errorThreshold == 0 {
		s.errorThreshold = DefaultErrorThreshold
	}
	if s.required == nil {
		for _, f := range s.fields {
			if !f.Excluded {
				s.required = append(s.required, f.Name)
			}
		}
	}
	return s, nil
}

func (s *Spec) check() error {
	fail := func(field, reason string) error {
		return &DeclarationError{Process: s.name, Field: field, Reason: reason}
	}
	if s.name == "" {
		return fail("", "process name is empty")
	}
	if len(s.fields) == 0 {
		return fail("", "no fields declared")
	}
	for i, f := range s.fields {
		if f.Name == "" {
			return fail("", fmt.Sprintf("field %d has no name", i))
		}
		if _, dup := s.index[f.Name]; dup {
			return fail(f.Name, "declared twice")
		}
		if !f.Type.Valid() {
			return fail(f.Name, fmt.Sprintf("unknown type %q", f.Type))
		}
		if err := CheckTemplate(f.Question); err != nil {
			return fail(f.Name, "question: "+err.Error())
		}
		if err := CheckTemplate(f.Acknowledgement); err != nil {
			return fail(f.Name, "acknowledgement: "+err.Error())
		}
		for j, v := range f.Validators {
			if v == nil {
				return fail(f.Name, fmt.Sprintf("validator %d is nil", j))
			}
		}
		s.index[f.Name] = i
	}
	for _, name := range s.required {
		if _, ok := s.index[name]; !ok {
			return fail(name, "required but not declared")
		}
	}
	for i, r := range s.rules {
		if r == nil {
			return fail("", fmt.Sprintf("rule %d is nil", i))
		}
	}
	if s.errorThreshold < 0 {
		return fail("", "error threshold must not be negative")
	}
	return nil
}

func (s *Spec) Name() string {
	return s.name
}

func (s *Spec) Description() string {
	return s.description
}

// Fields returns the declared fields in order.
func (s *Spec) Fields() []Field {
	return s.fields
}

func (s *Spec) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

func (s *Spec) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Order returns the declaration index of name, or -1.
func (s *Spec) Order(name string) int {
	i, ok := s.index[name]
	if !ok {
		return -1
	}
	return i
}

func (s *Spec) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (s *Spec) Rules() []Rule {
	return s.rules
}

func (s *Spec) Required() []string {
	return s.required
}

func (s *Spec) ErrorThreshold() int {
	return s.errorThreshold
}

// Completed reports whether values satisfy the completion policy: every
// required slot and every slot with a question is filled, and the custom
// predicate, if any, holds.
func (s *Spec) Completed(values Values) bool {
	for _, name := range s.required {
		if !values.Has(name) {
			return false
		}
	}
	for _, f := range s.fields {
		if f.Asks() && !values.Has(f.Name) {
			return false
		}
	}
	if s.isCompleted != nil {
		return s.isCompleted(values)
	}
	return true
}

// Result returns the non-excluded, non-null values.
func (s *Spec) Result(values Values) map[string]any {
	out := make(map[string]any, len(values))
	for _, f := range s.fields {
		if f.Excluded || !values.Has(f.Name) {
			continue
		}
		out[f.Name] = values[f.Name]
	}
	return out
}

// Sort orders names by declaration; unknown names go last in lexical order.
func (s *Spec) Sort(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		ia, oka := s.index[a]
		ib, okb := s.index[b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		default:
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
			return 0
		}
	})
}

// FieldTypes maps every field name to its declared type.
func (s *Spec) FieldTypes() map[string]types.FieldType {
	out := make(map[string]types.FieldType, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = f.Type
	}
	return out
}
