// Package normalize folds free text search input into a canonical form
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD decomposition
// 3 Case folding
// 4 Remove combining marks, format and control chars
// 5 Width fold fullwidth to ASCII
// 6 NFC recomposition
// 7 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct {
	maxRunes int
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithMaxRunes truncates output to n runes, 0 means no limit
func WithMaxRunes(n int) Option {
	return func(nz *Normalizer) { nz.maxRunes = max(n, 0) }
}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)), // combining marks
			runes.Remove(runes.In(unicode.Cf)), // ZWJ ZWNJ FEFF etc
			runes.Map(func(r rune) rune {
				// controls become spaces so words stay apart
				if unicode.IsControl(r) {
					return ' '
				}
				return r
			}),
			width.Fold,
			norm.NFC,
		)
	},
}

// New constructs a Normalizer
func New(opts ...Option) *Normalizer {
	n := &Normalizer{}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize returns the folded single line form of s
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	ns = strings.Join(strings.Fields(ns), " ")

	if n.maxRunes > 0 {
		ns = truncate(ns, n.maxRunes)
	}
	return ns
}

// Terms splits the normalized form into unique words in first seen order
func (n *Normalizer) Terms(s string) []string {
	fields := strings.Fields(n.Normalize(s))
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return strings.TrimRight(s[:pos], " ")
		}
		i++
	}
	return s
}
