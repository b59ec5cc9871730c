package router

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// Location is a navigation target: a path plus query parameters.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation parses a same-origin reference such as "/employees?page=2".
// Absolute URLs, protocol-relative references and relative paths are rejected.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{Path: "/"}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, errors.Join(ErrInvalidLocation, err)
	}
	if u.Scheme != "" || u.Host != "" || u.User != nil || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(raw, "//") || strings.ContainsRune(raw, '\\') {
		return Location{}, ErrInvalidLocation
	}
	return Location{Path: u.Path, Query: u.Query()}, nil
}

// FromURL builds a location from a request URL.
func FromURL(u *url.URL) Location {
	if u == nil {
		return Location{Path: "/"}
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return Location{Path: p, Query: u.Query()}
}

// FullPath returns the path with its encoded query, e.g. "/payroll?month=3".
func (l Location) FullPath() string {
	p := l.Path
	if p == "" {
		p = "/"
	}
	if len(l.Query) == 0 {
		return p
	}
	return p + "?" + l.Query.Encode()
}

func (l Location) String() string { return l.FullPath() }

// cleanPath drops duplicate and trailing slashes.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") || child == CatchAll {
		return child
	}
	return cleanPath(parent + "/" + child)
}
