package navigation

import "net/url"

// Intercept decides whether a click on an anchor is handled in-app. Only
// anchors flagged with data-link whose href resolves to the same origin
// as base are intercepted; everything else is left to a normal page load.
// On success it returns the location (path and query) to push.
func Intercept(base *url.URL, href string, dataLink bool) (string, bool) {
	if !dataLink || base == nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	target := base.ResolveReference(ref)
	if target.Scheme != base.Scheme || target.Host != base.Host {
		return "", false
	}

	location := target.EscapedPath()
	if location == "" {
		location = "/"
	}
	if target.RawQuery != "" {
		location += "?" + target.RawQuery
	}
	return location, true
}
