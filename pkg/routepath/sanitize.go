package routepath

import (
	"errors"
	"strings"
)

// Navigation path errors.
var (
	ErrInvalidPath          = errors.New("routepath: invalid path")
	ErrBackslashInPath      = errors.New("routepath: path contains backslash")
	ErrNullByteInPath       = errors.New("routepath: path contains null byte")
	ErrInvalidPercentEscape = errors.New("routepath: invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("routepath: path escapes root via ..")
)

// Sanitized is a navigation target that is safe to hand to a router.
type Sanitized struct {
	// Path is the cleaned pathname. A trailing slash on the input is kept so
	// that the router can apply its own redirect rule.
	Path string

	// Query is the query string without the leading "?".
	Query string
}

// String returns the path with its query string, if any.
func (s Sanitized) String() string {
	if s.Query == "" {
		return s.Path
	}
	return s.Path + "?" + s.Query
}

// SanitizeNavPath validates a navigation target received from an untrusted
// peer (a link click or history event reported by a live client).
//
// Absolute and protocol-relative URLs are rejected, as are backslashes, NUL
// bytes, malformed percent escapes and ".." segments that climb above the
// root. Repeated slashes and "." segments are collapsed and ".." segments
// are resolved. The fragment, if any, is dropped.
func SanitizeNavPath(raw string) (Sanitized, error) {
	raw, _, _ = strings.Cut(raw, "#")
	if strings.HasPrefix(raw, "//") || !strings.HasPrefix(raw, "/") {
		return Sanitized{}, ErrInvalidPath
	}

	path, query, _ := strings.Cut(raw, "?")

	if strings.Contains(path, "\\") {
		return Sanitized{}, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return Sanitized{}, ErrNullByteInPath
	}
	if err := validatePercentEscapes(path); err != nil {
		return Sanitized{}, err
	}

	trailing := len(path) > 1 && strings.HasSuffix(path, "/")

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) == 0 {
				return Sanitized{}, ErrPathEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, seg)
		}
	}

	clean := "/" + strings.Join(segments, "/")
	if trailing && clean != "/" {
		clean += "/"
	}
	return Sanitized{Path: clean, Query: query}, nil
}

// validatePercentEscapes checks that every '%' starts a %XX hex escape.
func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
