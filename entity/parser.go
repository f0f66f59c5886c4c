package entity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/slotagent/form"
	"github.com/tbxark/slotagent/types"
)

var intake = sonic.Config{UseNumber: true}.Froze()

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

var errNull = errors.New("null value")

// Parser turns the extraction component's output into typed candidate
// values. Anything it cannot use is dropped; it never fails.
type Parser struct {
	fields   map[string]types.FieldType
	resolver DateRangeResolver
	logger   *slog.Logger
}

type ParserOption func(*Parser)

func WithDateRangeResolver(r DateRangeResolver) ParserOption {
	return func(p *Parser) {
		p.resolver = r
	}
}

func WithLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

func NewParser(spec *form.Spec, opts ...ParserOption) *Parser {
	p := &Parser{
		fields:   spec.FieldTypes(),
		resolver: ISOResolver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Parse reads the first line of raw as a JSON array of {"name", "value"}
// records and returns the coerced values keyed by field name. Later records
// for the same name win.
func (p *Parser) Parse(ctx context.Context, raw string) map[string]any {
	out := map[string]any{}
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return out
	}

	var records []any
	if err := intake.UnmarshalFromString(line, &records); err != nil {
		p.logger.Debug("Discarding entity intake", "error", err)
		return out
	}

	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			continue
		}
		name, _ := obj["name"].(string)
		if _, known := p.fields[name]; !known {
			p.logger.Debug("Skipping unknown entity", "name", name)
			continue
		}
		value, err := p.Coerce(ctx, name, obj["value"])
		if err != nil {
			p.logger.Debug("Dropping entity", "name", name, "error", err)
			continue
		}
		out[name] = value
	}
	return out
}

// Coerce converts value to the declared type of the field name.
func (p *Parser) Coerce(ctx context.Context, name string, value any) (any, error) {
	typ, ok := p.fields[name]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", name)
	}
	if value == nil {
		return nil, errNull
	}
	switch typ {
	case types.FieldInt:
		return toInt(value)
	case types.FieldBool:
		return toBool(value)
	case types.FieldEmail:
		s, err := toString(value)
		if err != nil {
			return nil, err
		}
		if !emailPattern.MatchString(s) {
			return nil, fmt.Errorf("invalid email %q", s)
		}
		return s, nil
	case types.FieldDateRange:
		if m, ok := value.(map[string]any); ok {
			value = normalizeNumbers(m)
		}
		return p.resolver.ResolveDateRange(ctx, value)
	default:
		return toString(value)
	}
}

type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func toString(value any) (string, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case bool:
		s = strconv.FormatBool(v)
	case number:
		s = v.String()
	case int:
		s = strconv.Itoa(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return "", fmt.Errorf("cannot use %T as string", value)
	}
	if s == "" {
		return "", errors.New("empty string")
	}
	return s, nil
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return fromInt64(v)
	case float64:
		return integral(v)
	case number:
		if i, err := v.Int64(); err == nil {
			return fromInt64(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return integral(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}
		return integral(f)
	default:
		return 0, fmt.Errorf("cannot use %T as int", value)
	}
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int(f), nil
}

func fromInt64(i int64) (int, error) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, fmt.Errorf("out of range: %d", i)
	}
	return int(i), nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "on", "1":
			return true, nil
		case "false", "no", "n", "off", "0":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", v)
	default:
		i, err := toInt(value)
		if err != nil || (i != 0 && i != 1) {
			return false, fmt.Errorf("cannot use %v as bool", value)
		}
		return i == 1, nil
	}
}

func normalizeNumbers(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if n, ok := v.(number); ok {
			if f, err := n.Float64(); err == nil {
				out[k] = f
				continue
			}
		}
		out[k] = v
	}
	return out
}
