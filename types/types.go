package types

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether no further questions are offered in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

type FieldType string

const (
	FieldString    FieldType = "string"
	FieldInt       FieldType = "int"
	FieldBool      FieldType = "bool"
	FieldEmail     FieldType = "email"
	FieldDateRange FieldType = "daterange"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldString, FieldInt, FieldBool, FieldEmail, FieldDateRange:
		return true
	default:
		return false
	}
}

type Operation string

const (
	OperationAdded   Operation = "added"
	OperationChanged Operation = "changed"
	OperationDeleted Operation = "deleted"
)

// DiffEntry describes how one slot moved between two snapshots. For deleted
// entries Value holds the value that was removed.
type DiffEntry struct {
	Name      string    `json:"name"`
	Operation Operation `json:"operation"`
	Value     any       `json:"value"`
}

// DateRange is a resolved time interval. Grain is the resolution the user
// expressed the interval in, e.g. one hour for "tomorrow at 2pm".
type DateRange struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Grain time.Duration `json:"grain"`
}

func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.Before(r.Start)
}

func (r DateRange) Equal(other DateRange) bool {
	return r.Start.Equal(other.Start) && r.End.Equal(other.End) && r.Grain == other.Grain
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s - %s", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}

// MarshalJSON writes the range in the same shape the entity intake accepts,
// with the grain in seconds.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Start string  `json:"start"`
		End   string  `json:"end"`
		Grain float64 `json:"grain"`
	}{
		Start: r.Start.Format(time.RFC3339),
		End:   r.End.Format(time.RFC3339),
		Grain: r.Grain.Seconds(),
	})
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result is emitted once a process reaches a terminal phase.
type Result struct {
	Status Status            `json:"status"`
	Values map[string]any    `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}
