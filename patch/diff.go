package patch

import (
	"github.com/tbxark/slotagent/types"
)

// FromDiff converts slot diff entries into operations that move a client's
// copy of the slot document from the pre-turn to the post-turn state.
func FromDiff(entries []types.DiffEntry) []Operation {
	ops := make([]Operation, 0, len(entries))
	for _, e := range entries {
		path := Pointer(e.Name)
		switch e.Operation {
		case types.OperationAdded:
			ops = append(ops, Operation{Op: OperationAdd, Path: path, Value: e.Value})
		case types.OperationChanged:
			ops = append(ops, Operation{Op: OperationReplace, Path: path, Value: e.Value})
		case types.OperationDeleted:
			ops = append(ops, Operation{Op: OperationRemove, Path: path})
		}
	}
	return ops
}

// Pointer returns the JSON pointer of a top-level slot.
func Pointer(name string) string {
	return "/" + escapeJSONPointer(name)
}
