// Package rfc9110 implements Accept header (RFC 9110 section 12) parsing
// and proactive content negotiation for cache normalization purposes.
//
// The package is deliberately lenient: malformed input never produces an
// error, it degrades to a defined fallback instead. This is what you want
// in front of a cache, where the goal is collapsing the near-infinite
// variety of real-world Accept headers into a small set of cache keys.
package rfc9110

import "strings"

// MaxMediaTypes is the maximum number of media types considered in one
// Accept header or preference list. Further entries are silently dropped.
// This is a compatibility bound, not a memory constraint.
const MaxMediaTypes = 64

// MediaType is a single entry of an Accept header: a normalized
// (lower-cased, trimmed) media type or media range, and its weight.
type MediaType struct {
	// Type is e.g. "text/html", "text/*" or "*/*". Never empty.
	Type string
	// Quality is the entry weight in the range 0 to 1, default 1.
	Quality float64
}

// Negotiator holds reusable scratch state for negotiation calls, so that a
// host handling many requests can amortize allocations. The zero value is
// ready to use.
//
// A Negotiator must not be shared between concurrent calls; give each
// in-flight request its own instance (or use the package-level functions,
// which allocate fresh state on every call).
type Negotiator struct {
	accept   []MediaType
	filtered []MediaType
	prefs    []string
}

// Reset empties the scratch state while keeping allocated capacity.
func (n *Negotiator) Reset() {
	n.accept = n.accept[:0]
	n.filtered = n.filtered[:0]
	n.prefs = n.prefs[:0]
}

// Canonicalize parses the given Accept header and re-serializes it in
// canonical form: media types sorted by weight descending (ties broken
// alphabetically), q parameters only where the weight is below 1.
// An empty header canonicalizes to the empty string.
func (n *Negotiator) Canonicalize(accept string) string {
	if accept == "" {
		return ""
	}
	n.accept = parseAccept(n.accept[:0], accept)
	sortMediaTypes(n.accept)
	return buildAccept(n.accept)
}

// Filter returns the canonical serialization of only those preferred types
// the client accepts, each weighted by the client's acceptance quality.
//
// The preference list is a comma-separated list of concrete media types in
// server priority order. If it is empty, Filter is the same as Canonicalize.
// If the Accept header is empty, the first preferred type is returned.
// If the client accepts none of the preferred types, the first preferred
// type is returned at weight 1 - the server needs to send *something*.
func (n *Negotiator) Filter(accept, preferred string) string {
	if preferred == "" {
		return n.Canonicalize(accept)
	}
	n.prefs = parsePreferred(n.prefs[:0], preferred)
	if accept == "" {
		if len(n.prefs) == 0 {
			return ""
		}
		return n.prefs[0]
	}
	n.accept = parseAccept(n.accept[:0], accept)
	n.filtered = n.filtered[:0]
	for _, pref := range n.prefs {
		if q := acceptedQuality(n.accept, pref); q > 0 {
			n.filtered = append(n.filtered, MediaType{Type: pref, Quality: q})
		}
	}
	if len(n.filtered) == 0 {
		if len(n.prefs) == 0 {
			return ""
		}
		n.filtered = append(n.filtered, MediaType{Type: n.prefs[0], Quality: 1})
	}
	sortMediaTypes(n.filtered)
	return buildAccept(n.filtered)
}

// BestMatch returns the single preferred type the client accepts best.
// Ties keep the earliest preferred type. If the Accept header is empty, or
// nothing scores higher than anything else, the first preferred type wins.
// An empty preference list returns the empty string.
//
// Note that the first preferred type becomes the tentative best even at
// weight 0, and is returned unless a later type scores strictly higher. So
// BestMatch can return a type the client explicitly rejected with q=0.
// Callers needing a hard acceptance guarantee should check Accepts too.
func (n *Negotiator) BestMatch(accept, preferred string) string {
	n.prefs = parsePreferred(n.prefs[:0], preferred)
	if len(n.prefs) == 0 {
		return ""
	}
	if accept == "" {
		return n.prefs[0]
	}
	n.accept = parseAccept(n.accept[:0], accept)
	var best string
	bestQuality := -1.0
	for _, pref := range n.prefs {
		if q := acceptedQuality(n.accept, pref); q > bestQuality {
			best = pref
			bestQuality = q
		}
	}
	if best == "" {
		return n.prefs[0]
	}
	return best
}

// Prefer returns the first preferred type the client accepts with a weight
// above 0, scanning the preference list in order. If none matches (or the
// preference list is empty) the original Accept header is returned
// unchanged, not canonicalized. An empty Accept header returns the empty
// string.
func (n *Negotiator) Prefer(accept, preferred string) string {
	if accept == "" {
		return ""
	}
	n.prefs = parsePreferred(n.prefs[:0], preferred)
	if len(n.prefs) == 0 {
		return accept
	}
	n.accept = parseAccept(n.accept[:0], accept)
	for _, pref := range n.prefs {
		for _, mt := range n.accept {
			if mt.Quality > 0 && Match(mt.Type, pref) {
				return pref
			}
		}
	}
	return accept
}

// Quality returns the weight at which the client accepts the given media
// type, or 0 if it does not. An exact entry always wins over a wildcard
// entry, regardless of the weights involved.
func (n *Negotiator) Quality(accept, mediaType string) float64 {
	if accept == "" || mediaType == "" {
		return 0
	}
	n.accept = parseAccept(n.accept[:0], accept)
	return qualityFor(n.accept, strings.ToLower(mediaType))
}

// Accepts reports whether the client accepts the given media type at all.
func (n *Negotiator) Accepts(accept, mediaType string) bool {
	return n.Quality(accept, mediaType) > 0
}

// ParseAccept parses an Accept header into its media type entries,
// normalized but in header order (not sorted).
func ParseAccept(accept string) []MediaType {
	return parseAccept(nil, accept)
}

// Canonicalize is the allocating form of Negotiator.Canonicalize.
func Canonicalize(accept string) string {
	var n Negotiator
	return n.Canonicalize(accept)
}

// Filter is the allocating form of Negotiator.Filter.
func Filter(accept, preferred string) string {
	var n Negotiator
	return n.Filter(accept, preferred)
}

// BestMatch is the allocating form of Negotiator.BestMatch.
func BestMatch(accept, preferred string) string {
	var n Negotiator
	return n.BestMatch(accept, preferred)
}

// Prefer is the allocating form of Negotiator.Prefer.
func Prefer(accept, preferred string) string {
	var n Negotiator
	return n.Prefer(accept, preferred)
}

// Quality is the allocating form of Negotiator.Quality.
func Quality(accept, mediaType string) float64 {
	var n Negotiator
	return n.Quality(accept, mediaType)
}

// Accepts is the allocating form of Negotiator.Accepts.
func Accepts(accept, mediaType string) bool {
	var n Negotiator
	return n.Accepts(accept, mediaType)
}
