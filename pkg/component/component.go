package component

import (
	"context"

	"github.com/vango-dev/spa/pkg/routepath"
	"github.com/vango-dev/spa/pkg/vdom"
)

// Props is the parameter set a router resolved for a component.
type Props = routepath.Params

// Component is the lifecycle contract every routable view implements.
//
// Within one navigation cycle a router calls, in order:
//
//	OnPropsUpdated → Render → MountOn (if not already mounted) → Refresh
//
// and BeforeUnmount on the previously active component when a different
// one becomes active. Every method except Refresh must return promptly.
type Component interface {
	// OnPropsUpdated recomputes state from props. It must be deterministic
	// and idempotent, must not touch the DOM and must not start background
	// work. Invalid props become an error state that Render displays.
	OnPropsUpdated(props Props)

	// Render reconciles the owned DOM fragment with the current state. It
	// may be called whether or not the component is mounted.
	Render()

	// Refresh performs slow work such as data fetching and re-renders with
	// the result. It may be called many times over the component's life
	// and must not update state or DOM once the component is unmounted.
	Refresh(ctx context.Context) error

	// MountOn attaches the owned DOM fragment to c, replacing prior
	// content. Render has always been called at least once before.
	MountOn(c *vdom.Container)

	// BeforeUnmount cancels in-flight refresh work and releases anything
	// acquired in MountOn.
	BeforeUnmount()
}

// Factory constructs a component from its first parameter set.
type Factory func(props Props) Component

// MountState records whether a component is attached to a container.
type MountState uint8

const (
	Unmounted MountState = iota
	Mounted
)

// String returns the state name.
func (s MountState) String() string {
	switch s {
	case Unmounted:
		return "unmounted"
	case Mounted:
		return "mounted"
	default:
		return "unknown"
	}
}
