package spa

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorPageData is what the error page shows.
type ErrorPageData struct {
	Title   string
	Heading string
	Apology string
	Retry   string
	Home    string
}

// DefaultErrorPageData is the text of the error page clients are sent to
// after a fatal error.
var DefaultErrorPageData = ErrorPageData{
	Title:   "Something went wrong",
	Heading: "Something went wrong.",
	Apology: "Sorry about that. It is not your fault, it is ours. The error has been reported, and we aim to fix it as soon as possible.",
	Retry:   "You can try again by hitting the back button. Or go to the",
	Home:    "/",
}

// ErrorPage renders the standalone error page. It does not depend on the
// SPA bundle, so it works when the bundle is what failed.
func ErrorPage(d ErrorPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		parts := []string{
			"<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>",
			templ.EscapeString(d.Title),
			"</title></head><body><h1>",
			templ.EscapeString(d.Heading),
			"</h1><p>",
			templ.EscapeString(d.Apology),
			"</p><p>",
			templ.EscapeString(d.Retry),
			" <a href=\"",
			templ.EscapeString(string(templ.URL(d.Home))),
			"\">start page</a>.</p></body></html>",
		}
		for _, p := range parts {
			if _, err := io.WriteString(w, p); err != nil {
				return err
			}
		}
		return nil
	})
}
