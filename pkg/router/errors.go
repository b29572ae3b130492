package router

import (
	"errors"
	"fmt"

	"github.com/vango-dev/spa/pkg/routepath"
)

// Configuration errors returned by New.
var (
	ErrNoContainer = errors.New("router: container is required")
	ErrNoDefault   = errors.New("router: default target is required")
	ErrNoNavigator = errors.New("router: navigator is required")
	ErrNoTarget    = errors.New("router: route has no target")
)

// ErrParamCountMismatch is returned from Dispatch when a pattern captured a
// different number of values than it declares names.
var ErrParamCountMismatch = routepath.ErrParamCountMismatch

// Phase names a lifecycle step.
type Phase string

const (
	PhaseConstruct Phase = "construct"
	PhaseProps     Phase = "props"
	PhaseRender    Phase = "render"
	PhaseMount     Phase = "mount"
	PhaseUnmount   Phase = "unmount"
	PhaseRefresh   Phase = "refresh"
)

// LifecycleError is a panic or error raised by a component lifecycle method.
type LifecycleError struct {
	Phase    Phase
	Pathname string
	Err      error
	Stack    []byte
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("router: %s %s: %v", e.Phase, e.Pathname, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// panicError converts a recovered value to an error.
func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
