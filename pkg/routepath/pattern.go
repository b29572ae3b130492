package routepath

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Pattern compilation and matching errors.
var (
	ErrRelativePattern    = errors.New("routepath: pattern must start with /")
	ErrDuplicateParam     = errors.New("routepath: duplicate parameter name")
	ErrParamCountMismatch = errors.New("routepath: captured value count does not match parameter names")
)

// placeholder matches a ":name" token. \w is ASCII word characters.
var placeholder = regexp.MustCompile(`:(\w+)`)

// paramGroup is what every placeholder compiles to: one non-empty segment.
const paramGroup = `([^/]+)`

// Params maps parameter names to the path segments they captured.
type Params map[string]string

// Pattern is a compiled route pattern such as "/posts/:postId". It is
// immutable and safe for concurrent use.
type Pattern struct {
	source string
	names  []string
	re     *regexp.Regexp
}

// Compile compiles a route pattern. Literal text must match exactly and
// each ":name" placeholder matches one non-empty path segment. Matching
// is anchored at both ends, so a pattern never matches a prefix.
func Compile(pattern string) (*Pattern, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q", ErrRelativePattern, pattern)
	}

	locs := placeholder.FindAllStringSubmatchIndex(pattern, -1)
	names := make([]string, 0, len(locs))
	seen := make(map[string]bool, len(locs))

	var expr strings.Builder
	expr.WriteString("^")
	last := 0
	for _, loc := range locs {
		name := pattern[loc[2]:loc[3]]
		if seen[name] {
			return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, name, pattern)
		}
		seen[name] = true
		names = append(names, name)

		expr.WriteString(regexp.QuoteMeta(pattern[last:loc[0]]))
		expr.WriteString(paramGroup)
		last = loc[1]
	}
	expr.WriteString(regexp.QuoteMeta(pattern[last:]))
	expr.WriteString("$")

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("routepath: compile %q: %w", pattern, err)
	}
	return &Pattern{source: pattern, names: names, re: re}, nil
}

// MustCompile is like Compile but panics if the pattern is invalid.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.source
}

// Names returns the placeholder names in left-to-right order.
func (p *Pattern) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Match tests pathname against the pattern. A non-matching pathname yields
// (nil, false, nil). A match yields a fresh Params with one entry per
// placeholder name.
func (p *Pattern) Match(pathname string) (Params, bool, error) {
	m := p.re.FindStringSubmatch(pathname)
	if m == nil {
		return nil, false, nil
	}
	params, err := bind(p.names, m[1:])
	if err != nil {
		return nil, false, fmt.Errorf("%w (pattern %q, path %q)", err, p.source, pathname)
	}
	return params, true, nil
}

// bind zips names with captured values positionally.
func bind(names, values []string) (Params, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%w: %d names, %d values", ErrParamCountMismatch, len(names), len(values))
	}
	params := make(Params, len(names))
	for i, name := range names {
		params[name] = values[i]
	}
	return params, nil
}

// TrimTrailingSlash strips exactly one trailing "/" from a non-root
// pathname and reports whether it did.
func TrimTrailingSlash(pathname string) (string, bool) {
	if pathname != "/" && strings.HasSuffix(pathname, "/") {
		return pathname[:len(pathname)-1], true
	}
	return pathname, false
}
