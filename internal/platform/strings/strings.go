// Package strings has the small string and slice guards module wiring needs
package strings

import std "strings"

// IfEmpty is def when in has no elements
func IfEmpty[T any](in, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustString panics naming what when s is blank
func MustString(s, what string) string {
	if std.TrimSpace(s) == "" {
		panic(what + " is required")
	}
	return s
}

// MustPrefix normalizes a mount path to one leading slash and no trailing one
// the root itself is not a prefix and panics
func MustPrefix(s string) string {
	p := "/" + std.Trim(std.TrimSpace(s), "/")
	if p == "/" {
		panic("route prefix is required")
	}
	return p
}
