package patch

import (
	"fmt"
	"strings"
)

// SlotName returns the slot addressed by a top-level JSON pointer. Nested
// pointers address nothing.
func SlotName(path string) (string, bool) {
	if !strings.HasPrefix(path, "/") {
		return "", false
	}
	token := path[1:]
	if token == "" || strings.Contains(token, "/") {
		return "", false
	}
	token = strings.ReplaceAll(token, "~1", "/")
	token = strings.ReplaceAll(token, "~0", "~")
	return token, true
}

// ValidatePatchOperations checks that every operation is an add, replace or
// remove of an allowed slot.
func ValidatePatchOperations(ops []Operation, allowed func(name string) bool) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace, OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		name, ok := SlotName(op.Path)
		if !ok {
			return fmt.Errorf("operation %d: path %q does not address a slot", i, op.Path)
		}
		if allowed != nil && !allowed(name) {
			return fmt.Errorf("operation %d: slot %q is not declared", i, name)
		}
	}
	return nil
}
