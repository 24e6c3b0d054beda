// Package config reads typed settings from the environment under nested prefixes
// bad optional values log a warning and fall back, missing required ones panic
package config

import (
	"strconv"
	"strings"
	"time"

	"hostdesk/internal/platform/config/raw"
	"hostdesk/internal/platform/logger"
)

// Conf is one prefix of the environment, e.g. New().Prefix("CORE_API_")
type Conf struct{ r raw.Conf }

func New() Conf { return Conf{} }

// Prefix nests p under the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{r: c.r.Prefix(p)} }

// Key is the full env var name of k
func (c Conf) Key(k string) string { return c.r.Key(k) }

// MustString panics when key is unset or blank
func (c Conf) MustString(key string) string {
	v, ok := c.r.Lookup(key)
	if !ok {
		logger.Get().Panic().Str("key", c.Key(key)).Msg("missing required env")
	}
	return v
}

func (c Conf) MayString(key, def string) string { return c.r.Get(key, def) }

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

// MayDuration takes time.ParseDuration syntax, e.g. 750ms or 2s
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayCSV splits on commas and drops blank items, def when nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	v, ok := c.r.Lookup(key)
	if !ok {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	v, ok := c.r.Lookup(key)
	if !ok {
		return def
	}
	out, err := parse(v)
	if err != nil {
		logger.Get().Warn().Str("key", c.Key(key)).Str("value", v).Interface("default", def).Msg("invalid env, using default")
		return def
	}
	return out
}
