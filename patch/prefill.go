package patch

import (
	"slices"
	"strings"

	"github.com/tbxark/slotagent/types"
)

// GeneratePatchesFromInitial returns the operations that bring current up to
// the initial values. Nil and empty-string initial values count as not
// provided; slots present only in current are left alone.
func GeneratePatchesFromInitial(current, initial map[string]any) []Operation {
	names := make([]string, 0, len(initial))
	for name := range initial {
		names = append(names, name)
	}
	slices.Sort(names)

	patches := make([]Operation, 0, len(names))
	for _, name := range names {
		initialValue := initial[name]
		if isZeroValue(initialValue) {
			continue
		}
		currentValue, exists := current[name]
		switch {
		case !exists || currentValue == nil:
			patches = append(patches, Operation{Op: OperationAdd, Path: Pointer(name), Value: initialValue})
		case !types.Equal(currentValue, initialValue):
			patches = append(patches, Operation{Op: OperationReplace, Path: Pointer(name), Value: initialValue})
		}
	}
	return patches
}

func escapeJSONPointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

func isZeroValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}
