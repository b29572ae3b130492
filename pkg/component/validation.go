package component

import (
	"fmt"
	"strconv"
)

// ValidationError describes a route parameter that a component could not
// accept. Components keep it as state and render it; it is never panicked
// out of OnPropsUpdated.
type ValidationError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Param, e.Value, e.Reason)
}

// ParseIntParam reads a required integer parameter.
func ParseIntParam(props Props, name string) (int, error) {
	raw, ok := props[name]
	if !ok || raw == "" {
		return 0, &ValidationError{Param: name, Reason: "missing"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Param: name, Value: raw, Reason: "not a number"}
	}
	return n, nil
}
