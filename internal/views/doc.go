// Package views holds the application's pages and its route table.
//
// Each view parses its own copy of an embedded HTML fragment and updates
// elements by id, the way a browser view would use querySelector. Route
// parameters are validated in OnPropsUpdated; bad values are rendered as
// an error message rather than failing the navigation.
package views
