package types

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/bytedance/sonic"
)

// Display formats a slot value the way it is shown inside rendered
// templates and directives.
func Display(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case DateRange:
		return val.String()
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		raw, err := sonic.ConfigStd.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return fmt.Sprint(val)
	}
}

// DisplayValues converts every value of m with Display.
func DisplayValues(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Display(v)
	}
	return out
}

// Equal compares two slot values. Date ranges compare by instant so that
// equivalent values parsed in different locations are equal.
func Equal(a, b any) bool {
	ra, okA := a.(DateRange)
	rb, okB := b.(DateRange)
	if okA && okB {
		return ra.Equal(rb)
	}
	if okA != okB {
		return false
	}
	return reflect.DeepEqual(a, b)
}
