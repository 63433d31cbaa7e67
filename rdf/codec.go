package rdf

import (
	"sort"
	"strings"
)

// Prefixes maps short prefixes to namespace IRIs. Bindings are loaded
// once when a graph is loaded or connected and are immutable afterwards
// within a session.
type Prefixes struct {
	byPrefix map[string]string
	ordered  []string // prefixes sorted for stable Shorten iteration
}

// NewPrefixes builds a binding set from a prefix→namespace map.
func NewPrefixes(bindings map[string]string) *Prefixes {
	p := &Prefixes{byPrefix: make(map[string]string, len(bindings))}
	for prefix, ns := range bindings {
		p.byPrefix[prefix] = ns
	}
	p.reindex()
	return p
}

func (p *Prefixes) reindex() {
	p.ordered = p.ordered[:0]
	for prefix := range p.byPrefix {
		p.ordered = append(p.ordered, prefix)
	}
	sort.Strings(p.ordered)
}

// Namespace returns the namespace bound to prefix, if any.
func (p *Prefixes) Namespace(prefix string) (string, bool) {
	ns, ok := p.byPrefix[prefix]
	return ns, ok
}

// All returns a copy of the bindings.
func (p *Prefixes) All() map[string]string {
	out := make(map[string]string, len(p.byPrefix))
	for k, v := range p.byPrefix {
		out[k] = v
	}
	return out
}

// Len returns the number of bindings.
func (p *Prefixes) Len() int { return len(p.byPrefix) }

// Shorten rewrites a fully qualified identifier to prefix:localname form
// using the first binding whose namespace is a prefix of the identifier.
// Bindings are tried in sorted-prefix order so the result is stable.
// Identifiers with no matching binding pass through unchanged.
func (p *Prefixes) Shorten(iri string) string {
	for _, prefix := range p.ordered {
		ns := p.byPrefix[prefix]
		if ns != "" && strings.HasPrefix(iri, ns) {
			return prefix + ":" + iri[len(ns):]
		}
	}
	return iri
}

// Expand rewrites a prefix:localname token to its fully qualified form.
// Tokens that are already scheme-qualified, contain no colon, or use an
// unknown prefix pass through unchanged: a typo degrades to not-found
// downstream instead of failing here.
func (p *Prefixes) Expand(token string) string {
	if !strings.Contains(token, ":") || IsQualified(token) {
		return token
	}
	prefix, local, _ := strings.Cut(token, ":")
	if ns, ok := p.byPrefix[prefix]; ok {
		return ns + local
	}
	return token
}

// IsQualified reports whether a token already looks like a fully
// qualified identifier rather than a prefixed name.
func IsQualified(token string) bool {
	return strings.HasPrefix(token, "http://") ||
		strings.HasPrefix(token, "https://") ||
		strings.HasPrefix(token, "urn:")
}
