// Package target parses the compact [user@]host[:path] addressing syntax
// shared by the overssh front-ends.
package target

import "strings"

// Target is a parsed remote address. User and Path may be empty: an empty
// User means "delegate to the transport's own default identity", and an
// empty Path is filled in by the front-end with its own policy (the diff
// front-end defaults to the local file's absolute path; ping has no path).
type Target struct {
	User string
	Host string
	Path string
}

// Parse resolves a raw address token into a Target.
//
// The split is on the last '@' (everything left of it is the user) and
// then the last ':' of the remainder (everything right of it is the path).
// Parse never fails: an empty input yields an empty Host, which front-ends
// treat as a usage error.
func Parse(raw string) Target {
	var t Target

	rest := raw
	if at := strings.LastIndex(rest, "@"); at != -1 {
		// An empty left side ("@host") means no user was given.
		t.User = rest[:at]
		rest = rest[at+1:]
	}

	if colon := strings.LastIndex(rest, ":"); colon != -1 {
		t.Host = rest[:colon]
		t.Path = rest[colon+1:]
	} else {
		t.Host = rest
	}

	return t
}

// Addr renders the dialable part of the target (user@host or bare host),
// without the path.
func (t Target) Addr() string {
	if t.User != "" {
		return t.User + "@" + t.Host
	}
	return t.Host
}

// String renders the full address in the same syntax Parse accepts.
func (t Target) String() string {
	s := t.Addr()
	if t.Path != "" {
		s += ":" + t.Path
	}
	return s
}
