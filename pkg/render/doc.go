// Package render serializes vdom trees to HTML.
//
// All text content and attribute values are escaped. Raw HTML can be
// inserted using KindRaw nodes, but should only be used with trusted
// content.
//
// To render a VNode tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// To render whatever a router has mounted into a container:
//
//	html, title, version, err := renderer.RenderContainer(container)
package render
