package views

import "github.com/vango-dev/spa/pkg/component"

type Settings struct {
	page
	static
}

func NewSettings(component.Props) component.Component {
	return &Settings{page: newPage("settings", "SPA: Settings")}
}
