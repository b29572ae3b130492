package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

type ansi string

const (
	ansiReset ansi = "\033[0m"
	ansiBold  ansi = "\033[1m"
	ansiRed   ansi = "\033[31m"
	ansiCyan  ansi = "\033[36m"
	ansiGray  ansi = "\033[90m"
)

var noColor atomic.Bool

// DisableColors turns off ANSI escapes in Format and PrintError.
func DisableColors() { noColor.Store(true) }

// EnableColors turns ANSI escapes back on.
func EnableColors() { noColor.Store(false) }

func paint(s string, codes ...ansi) string {
	if noColor.Load() || len(codes) == 0 {
		return s
	}
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(string(c))
	}
	b.WriteString(s)
	b.WriteString(string(ansiReset))
	return b.String()
}

const wrapWidth = 70

// Format returns the error laid out for a terminal: a header, the source
// excerpt around Location, the wrapped detail and the hint.
func (e *SPAError) Format() string {
	var b strings.Builder

	head := "ERROR"
	if e.Code != "" {
		head += " " + e.Code
	}
	fmt.Fprintf(&b, "\n%s %s\n\n", paint(head+":", ansiRed, ansiBold), e.Message)

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s\n\n", paint(e.Location.String(), ansiCyan))
		if len(e.Source) > 0 {
			e.writeSource(&b)
			b.WriteByte('\n')
		}
	}

	if lines := wrapText(e.Detail, wrapWidth); len(lines) > 0 {
		for _, l := range lines {
			fmt.Fprintf(&b, "  %s\n", l)
		}
		b.WriteByte('\n')
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", paint("Hint: ", ansiCyan), e.Suggestion)
	}
	return b.String()
}

// writeSource prints the excerpt with a line-number gutter. The line at
// Location gets an arrow and, when a column is known, a caret below it.
func (e *SPAError) writeSource(w io.Writer) {
	width := len(strconv.Itoa(e.Source[len(e.Source)-1].Num))
	bar := paint(" │ ", ansiGray)

	for _, sl := range e.Source {
		marker := "  "
		if sl.Num == e.Location.Line {
			marker = paint("→ ", ansiRed)
		}
		fmt.Fprintf(w, "  %s%*d%s%s\n", marker, width, sl.Num, bar, sl.Text)

		if sl.Num == e.Location.Line && e.Location.Column > 0 {
			pad := strings.Repeat(" ", width+2)
			fmt.Fprintf(w, "  %s%s%s%s\n", pad, bar, strings.Repeat(" ", e.Location.Column-1), paint("^", ansiRed))
		}
	}
}

// FormatCompact returns the error on one line, prefixed by its location
// like a compiler diagnostic.
func (e *SPAError) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object for machine consumers.
func (e *SPAError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText breaks text into lines of at most width bytes on word
// boundaries. A single word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// PrintError writes err to stderr, using Format when err carries an
// SPAError.
func PrintError(err error) {
	var se *SPAError
	if errors.As(err, &se) {
		fmt.Fprint(os.Stderr, se.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\n%s %s\n\n", paint("ERROR:", ansiRed, ansiBold), err)
}
