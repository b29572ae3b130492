package views

import "github.com/vango-dev/spa/pkg/component"

// Dashboard is the start page and the fallback for unknown paths.
type Dashboard struct {
	page
	static
}

// NewDashboard ignores its props.
func NewDashboard(component.Props) component.Component {
	return &Dashboard{page: newPage("dashboard", "SPA: Dashboard")}
}
