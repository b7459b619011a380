package rfc9110

import (
	"sort"
	"strconv"
	"strings"
)

// This file implements quality value ("qvalue") handling: parsing weights,
// ranking parsed entries by weight, and resolving the weight a client
// assigns to a concrete media type.
//
// §  12.4.2. Quality Values
// §
// §  The content negotiation fields defined by this specification use a
// §  common parameter, named "q" (case-insensitive), to assign a relative
// §  "weight" to the preference for that associated kind of content. This
// §  weight is referred to as a "quality value" (or "qvalue") because the
// §  same parameter name is often used within server configurations to
// §  assign a weight to the relative quality of the various
// §  representations that can be selected for a resource.
// §
// §    weight = OWS ";" OWS "q=" qvalue
// §    qvalue = ( "0" [ "." 0*3DIGIT ] )
// §           / ( "1" [ "." 0*3("0") ] )
// §
// §  The weight is normalized to a real number in the range 0 through 1,
// §  where 0.001 is the least preferred and 1 is the most preferred; a
// §  value of 0 means "not acceptable". If no "q" parameter is present,
// §  the default weight is 1.
//
// WARNING Parsing is deliberately more lenient than the qvalue grammar:
// any parseable floating point number is accepted and clamped into the 0
// to 1 range, and unparseable text falls back to the default weight of 1.

// parseWeight parses a q parameter value. Out-of-range values are clamped,
// malformed values keep the default weight of 1.
func parseWeight(value string) float64 {
	q, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 1
	}
	if q < 0 {
		return 0
	}
	if q > 1 {
		return 1
	}
	return q
}

// sortMediaTypes sorts entries by weight descending, then alphabetically
// ascending. The sort is stable, so the output is deterministic.
func sortMediaTypes(types []MediaType) {
	if len(types) < 2 {
		return
	}
	sort.SliceStable(types, func(i, j int) bool {
		if types[i].Quality != types[j].Quality {
			return types[i].Quality > types[j].Quality
		}
		return types[i].Type < types[j].Type
	})
}

// qualityFor resolves the weight the parsed Accept entries assign to one
// concrete media type.
//
// An exact entry returns immediately, so it wins over any wildcard entry
// no matter the weights. Otherwise a "type/*" entry matching the type wins
// over "*/*". Within each wildcard category the first occurrence in header
// order is used, duplicates later in the header do not replace it. With no
// match at all the type is not accepted and the weight is 0.
func qualityFor(types []MediaType, mediaType string) float64 {
	var typeRange string
	if t, _, found := strings.Cut(mediaType, "/"); found {
		typeRange = t + "/*"
	}

	typeRangeQuality := -1.0
	anyRangeQuality := -1.0
	for _, mt := range types {
		switch {
		case mt.Type == mediaType:
			return mt.Quality
		case mt.Type == "*/*":
			if anyRangeQuality < 0 {
				anyRangeQuality = mt.Quality
			}
		case typeRange != "" && mt.Type == typeRange:
			if typeRangeQuality < 0 {
				typeRangeQuality = mt.Quality
			}
		}
	}

	// most specific wildcard match wins
	if typeRangeQuality >= 0 {
		return typeRangeQuality
	}
	if anyRangeQuality >= 0 {
		return anyRangeQuality
	}
	return 0
}

// acceptedQuality returns the highest weight among all entries whose media
// range admits the given concrete media type, or 0 if none does. This is
// the acceptance score used when scanning a server preference list.
func acceptedQuality(types []MediaType, mediaType string) float64 {
	quality := 0.0
	for _, mt := range types {
		if mt.Quality > quality && Match(mt.Type, mediaType) {
			quality = mt.Quality
		}
	}
	return quality
}
