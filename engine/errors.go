package engine

import "fmt"

// InvalidInputError reports malformed input data or an out-of-range
// configuration value. Callers decide whether it is fatal; the tick loop
// recovers from a bad snapshot by substituting silence.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// ResourceUnavailableError reports a resource that could not be acquired,
// such as an audio device that failed to open. The session keeps rendering
// without the resource.
type ResourceUnavailableError struct {
	Resource string
	Err      error
}

func (e *ResourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Resource, e.Err)
	}
	return e.Resource + " unavailable"
}

func (e *ResourceUnavailableError) Unwrap() error { return e.Err }

// LifecycleError reports an operation attempted in a session state that
// does not allow it, such as ticking after teardown.
type LifecycleError struct {
	Op    string
	State State
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}
