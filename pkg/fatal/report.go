package fatal

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"
	"time"
)

// Kind classifies how an error escaped the application.
type Kind string

const (
	// KindError is an uncaught error raised synchronously.
	KindError Kind = "onerror"
	// KindRejection is an error returned from background work nobody
	// waited on.
	KindRejection Kind = "onunhandledrejection"
	// KindPanic is a recovered panic.
	KindPanic Kind = "panic"
)

// Report is the payload sent to the backend log endpoint. Field names
// match what browser clients post.
type Report struct {
	Type      Kind      `json:"type" msgpack:"type"`
	Message   string    `json:"message" msgpack:"message"`
	Source    string    `json:"source,omitempty" msgpack:"source,omitempty"`
	Line      int       `json:"lineno,omitempty" msgpack:"lineno,omitempty"`
	Column    int       `json:"colno,omitempty" msgpack:"colno,omitempty"`
	Stack     string    `json:"stack,omitempty" msgpack:"stack,omitempty"`
	URL       string    `json:"url" msgpack:"url"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// panicSite finds the function that called panic in a runtime/debug.Stack
// dump and returns its source file and line.
func panicSite(stack []byte) (file string, line int) {
	sc := bufio.NewScanner(bytes.NewReader(stack))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	for i, l := range lines {
		if !strings.HasPrefix(l, "panic(") {
			continue
		}
		// panic(...)
		// \t.../runtime/panic.go:NNN
		// caller.Func(...)
		// \t/path/file.go:NNN +0x..
		if i+3 < len(lines) {
			return parseFrameLine(lines[i+3])
		}
		return "", 0
	}
	return "", 0
}

// parseFrameLine parses "\t/path/file.go:123 +0x1f".
func parseFrameLine(l string) (string, int) {
	l = strings.TrimSpace(l)
	if sp := strings.IndexByte(l, ' '); sp >= 0 {
		l = l[:sp]
	}
	colon := strings.LastIndexByte(l, ':')
	if colon < 0 {
		return "", 0
	}
	n, err := strconv.Atoi(l[colon+1:])
	if err != nil {
		return "", 0
	}
	return l[:colon], n
}
