package entity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/slotagent/types"
)

// DateRangeResolver turns an extracted date value into a resolved range. It
// is the seam for an external natural-language date service.
type DateRangeResolver interface {
	ResolveDateRange(ctx context.Context, value any) (types.DateRange, error)
}

type DateRangeResolverFunc func(ctx context.Context, value any) (types.DateRange, error)

func (f DateRangeResolverFunc) ResolveDateRange(ctx context.Context, value any) (types.DateRange, error) {
	return f(ctx, value)
}

var errInvalidRange = errors.New("end is before start")

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ISOResolver accepts already-resolved ranges: {start, end, grain} objects
// (or their JSON text) with ISO 8601 bounds and the grain in seconds, and
// bare ISO timestamps, which span one DefaultGrain.
type ISOResolver struct {
	Location     *time.Location
	DefaultGrain time.Duration
}

func (r ISOResolver) ResolveDateRange(ctx context.Context, value any) (types.DateRange, error) {
	switch v := value.(type) {
	case types.DateRange:
		return checkRange(v)
	case map[string]any:
		return r.fromObject(v)
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "{") {
			var obj map[string]any
			if err := sonic.UnmarshalString(s, &obj); err != nil {
				return types.DateRange{}, fmt.Errorf("decode date range: %w", err)
			}
			return r.fromObject(obj)
		}
		start, err := r.parseTime(s)
		if err != nil {
			return types.DateRange{}, err
		}
		grain := r.grain()
		return types.DateRange{Start: start, End: start.Add(grain - time.Second), Grain: grain}, nil
	default:
		return types.DateRange{}, fmt.Errorf("unsupported date range value %T", value)
	}
}

func (r ISOResolver) fromObject(obj map[string]any) (types.DateRange, error) {
	startRaw, _ := obj["start"].(string)
	if startRaw == "" {
		return types.DateRange{}, errors.New("date range has no start")
	}
	start, err := r.parseTime(startRaw)
	if err != nil {
		return types.DateRange{}, err
	}

	grain := r.grain()
	if g, ok := obj["grain"]; ok && g != nil {
		grain, err = parseGrain(g)
		if err != nil {
			return types.DateRange{}, err
		}
	}

	end := start.Add(grain - time.Second)
	if endRaw, _ := obj["end"].(string); endRaw != "" {
		end, err = r.parseTime(endRaw)
		if err != nil {
			return types.DateRange{}, err
		}
	}
	return checkRange(types.DateRange{Start: start, End: end, Grain: grain})
}

func (r ISOResolver) parseTime(s string) (time.Time, error) {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date time %q", s)
}

func (r ISOResolver) grain() time.Duration {
	if r.DefaultGrain > 0 {
		return r.DefaultGrain
	}
	return time.Hour
}

func parseGrain(v any) (time.Duration, error) {
	var seconds float64
	switch g := v.(type) {
	case float64:
		seconds = g
	case int:
		seconds = float64(g)
	case int64:
		seconds = float64(g)
	case interface{ Float64() (float64, error) }:
		f, err := g.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid grain: %w", err)
		}
		seconds = f
	case string:
		if d, err := time.ParseDuration(g); err == nil {
			return d, nil
		}
		f, err := strconv.ParseFloat(g, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid grain %q", g)
		}
		seconds = f
	default:
		return 0, fmt.Errorf("invalid grain type %T", v)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("grain must be positive")
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func checkRange(r types.DateRange) (types.DateRange, error) {
	if !r.Valid() {
		return types.DateRange{}, errInvalidRange
	}
	return r, nil
}
