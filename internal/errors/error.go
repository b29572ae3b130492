package errors

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Category groups codes by the subsystem that raises them.
type Category string

const (
	CategoryConfig  Category = "config"
	CategoryServer  Category = "server"
	CategoryRouting Category = "routing"
	CategoryReports Category = "reports"
	CategoryDeps    Category = "deps"
	CategoryCLI     Category = "cli"
)

// Location is a position in a file. Column is 1-based; zero means unknown.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

func (l *Location) String() string {
	switch {
	case l == nil:
		return ""
	case l.Column > 0:
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	default:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
}

// SourceLine is one numbered line of a source excerpt.
type SourceLine struct {
	Num  int
	Text string
}

// SPAError is a coded error with an optional source location and a hint
// on how to fix it. Commands print it with Format.
type SPAError struct {
	Code     string // "E100"; empty for ad-hoc errors from Newf
	Category Category
	Message  string
	Detail   string

	Location *Location
	Source   []SourceLine // lines around Location, if the file was readable

	Suggestion string
	Wrapped    error
}

func (e *SPAError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		return msg + ": " + e.Wrapped.Error()
	}
	return msg
}

func (e *SPAError) Unwrap() error { return e.Wrapped }

// Is matches another *SPAError with the same non-empty code.
func (e *SPAError) Is(target error) bool {
	t, ok := target.(*SPAError)
	return ok && t.Code != "" && t.Code == e.Code
}

// sourceRadius is how many lines are shown on each side of Location.
const sourceRadius = 2

// WithLocation records where the problem is and reads the surrounding
// lines from file. An unreadable file leaves Source nil.
func (e *SPAError) WithLocation(file string, line, column int) *SPAError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Source = readSource(file, line-sourceRadius, line+sourceRadius)
	return e
}

func (e *SPAError) WithSuggestion(s string) *SPAError {
	e.Suggestion = s
	return e
}

func (e *SPAError) WithDetail(d string) *SPAError {
	e.Detail = d
	return e
}

func (e *SPAError) WithDetailf(format string, args ...any) *SPAError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// Wrap sets the underlying cause.
func (e *SPAError) Wrap(err error) *SPAError {
	e.Wrapped = err
	return e
}

// readSource returns lines first through last (1-based, inclusive) of
// file.
func readSource(file string, first, last int) []SourceLine {
	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []SourceLine
	sc := bufio.NewScanner(f)
	for n := 1; n <= last && sc.Scan(); n++ {
		if n >= first {
			out = append(out, SourceLine{Num: n, Text: sc.Text()})
		}
	}
	return out
}

// New returns the registered error for code. Unregistered codes yield an
// "Unknown error" with no category.
func New(code string) *SPAError {
	t, ok := registry[code]
	if !ok {
		return &SPAError{Code: code, Message: "Unknown error"}
	}
	return &SPAError{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Detail:     t.Detail,
		Suggestion: t.Suggestion,
	}
}

// Newf returns an uncoded error.
func Newf(category Category, format string, args ...any) *SPAError {
	return &SPAError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError wraps err under code, unless err's chain already holds an
// SPAError, which is returned as is.
func FromError(err error, code string) *SPAError {
	if err == nil {
		return nil
	}
	var se *SPAError
	if errors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err's chain holds an SPAError with code.
func HasCode(err error, code string) bool {
	var se *SPAError
	return errors.As(err, &se) && se.Code == code
}
