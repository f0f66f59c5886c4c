package patch

import (
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Apply runs ops against a JSON copy of the slot document and returns the
// patched copy. Values come back in their JSON form.
func Apply(doc map[string]any, ops []Operation) (map[string]any, error) {
	if doc == nil {
		doc = map[string]any{}
	}
	currentJSON, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slot document: %w", err)
	}
	modifiedJSON, err := ApplyJSON(currentJSON, ops)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return nil, fmt.Errorf("patched document is not an object: %w", err)
	}
	return result, nil
}

// ApplyJSON is Apply on an encoded document.
func ApplyJSON(doc []byte, ops []Operation) ([]byte, error) {
	if len(ops) == 0 {
		return doc, nil
	}
	ops = FixOperation(doc, ops)

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal patch operations: %w", err)
	}
	p, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode patch: %w", err)
	}
	out, err := p.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to apply patch: %w", err)
	}
	return out, nil
}

// FixOperation tolerates a client document that drifted from the server:
// a replace of a missing slot becomes an add, a remove of a missing slot is
// dropped.
func FixOperation(docJSON []byte, ops []Operation) []Operation {
	var doc map[string]any
	if err := sonic.Unmarshal(docJSON, &doc); err != nil {
		return ops
	}

	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		name, ok := SlotName(op.Path)
		_, exists := doc[name]
		switch op.Op {
		case OperationReplace:
			if ok && !exists {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if ok && exists {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}
