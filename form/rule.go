package form

// Rule is a cross-field check run after the per-field validators. It may
// add, replace or remove values through the context and report failures.
type Rule func(rc *RuleContext)

// Failure is a rejected slot within one turn.
type Failure struct {
	Field   string
	Message string
	Counted bool
}

// RuleContext is the candidate state of a turn as seen by validators and
// rules: the merged values, the values stored before the turn, and the
// names supplied by the user in this turn.
type RuleContext struct {
	Values   Values
	Prior    Values
	supplied map[string]bool
	failures []Failure
}

func NewRuleContext(values, prior Values, supplied map[string]bool) *RuleContext {
	if values == nil {
		values = Values{}
	}
	if prior == nil {
		prior = Values{}
	}
	if supplied == nil {
		supplied = map[string]bool{}
	}
	return &RuleContext{Values: values, Prior: prior, supplied: supplied}
}

func (rc *RuleContext) Get(name string) (any, bool) {
	v, ok := rc.Values[name]
	return v, ok && v != nil
}

func (rc *RuleContext) Set(name string, value any) {
	if value == nil {
		delete(rc.Values, name)
		return
	}
	rc.Values[name] = value
}

func (rc *RuleContext) Delete(name string) {
	delete(rc.Values, name)
}

// Supplied reports whether the user provided name in this turn.
func (rc *RuleContext) Supplied(name string) bool {
	return rc.supplied[name]
}

// Reject records a failure for name and reverts it: a value supplied this
// turn falls back to the stored one, anything else is removed.
func (rc *RuleContext) Reject(name, message string) {
	rc.revert(name)
	rc.record(name, message, false)
}

// RejectCounted is Reject counting toward the error threshold.
func (rc *RuleContext) RejectCounted(name, message string) {
	rc.revert(name)
	rc.record(name, message, true)
}

// Fail records a failure without touching the values; the rule is expected
// to have arranged them itself.
func (rc *RuleContext) Fail(name, message string) {
	rc.record(name, message, false)
}

func (rc *RuleContext) FailCounted(name, message string) {
	rc.record(name, message, true)
}

func (rc *RuleContext) Failures() []Failure {
	return rc.failures
}

// Failed reports whether name already has a failure this turn.
func (rc *RuleContext) Failed(name string) bool {
	for _, f := range rc.failures {
		if f.Field == name {
			return true
		}
	}
	return false
}

func (rc *RuleContext) revert(name string) {
	prior, ok := rc.Prior[name]
	if rc.supplied[name] && ok && prior != nil {
		rc.Values[name] = prior
		return
	}
	delete(rc.Values, name)
}

func (rc *RuleContext) record(name, message string, counted bool) {
	rc.failures = append(rc.failures, Failure{Field: name, Message: message, Counted: counted})
}
