// Package raw reads env vars without logging
// logger depends on it, so it must never import logger
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Conf reads env vars under a prefix
type Conf struct{ prefix string }

// New is the unprefixed reader
func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key is the full env var name of k
func (c Conf) Key(k string) string { return c.prefix + k }

// Lookup returns the trimmed value, blank counts as unset
func (c Conf) Lookup(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(c.Key(k)))
	return v, v != ""
}

func (c Conf) Get(k, def string) string {
	if v, ok := c.Lookup(k); ok {
		return v
	}
	return def
}

// GetBool accepts 1, true and yes in any case, any other value is false
func (c Conf) GetBool(k string, def bool) bool {
	v, ok := c.Lookup(k)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt falls back to def for anything but a non negative integer
func (c Conf) GetInt(k string, def int) int {
	v, ok := c.Lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
