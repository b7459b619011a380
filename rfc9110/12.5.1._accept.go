package rfc9110

import (
	"strconv"
	"strings"
)

// This file implements parsing and serialization of the "Accept" header
// field, and matching of media ranges against concrete media types.
//
// §  12.5.1. Accept
// §
// §  The "Accept" header field can be used by user agents to specify
// §  their preferences regarding response media types. For example,
// §  Accept header fields can be used to indicate that the request is
// §  specifically limited to a small set of desired types, as in the
// §  case of a request for an in-line image.
// §
// §    Accept = #( media-range [ weight ] )
// §
// §    media-range    = ( "*/*"
// §                       / ( type "/" "*" )
// §                       / ( type "/" subtype )
// §                     ) parameters
// §
// §  The asterisk "*" character is used to group media types into ranges,
// §  with "*/*" indicating all media types and "type/*" indicating all
// §  subtypes of that type.
//
// WARNING Quoted-string parameter values are not supported: a comma always
// separates entries. Parameters other than "q" are skipped over but their
// values are discarded.

// parseAccept appends the entries of an Accept header to dst, normalized
// but in header order. Entries beyond MaxMediaTypes are dropped. Segments
// with an empty media type token are skipped.
func parseAccept(dst []MediaType, accept string) []MediaType {
	for accept != "" && len(dst) < MaxMediaTypes {
		var segment string
		if i := strings.IndexByte(accept, ','); i >= 0 {
			segment, accept = accept[:i], accept[i+1:]
		} else {
			segment, accept = accept, ""
		}
		if mt, ok := parseMediaType(segment); ok {
			dst = append(dst, mt)
		}
	}
	return dst
}

// parseMediaType parses a single comma-separated segment of an Accept
// header. It returns false for segments without a media type token.
func parseMediaType(segment string) (MediaType, bool) {
	token := segment
	var params string
	if i := strings.IndexByte(segment, ';'); i >= 0 {
		token, params = segment[:i], segment[i+1:]
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return MediaType{}, false
	}
	mt := MediaType{Type: strings.ToLower(token), Quality: 1}
	for params != "" {
		var param string
		if i := strings.IndexByte(params, ';'); i >= 0 {
			param, params = params[:i], params[i+1:]
		} else {
			param, params = params, ""
		}
		name, value, found := strings.Cut(param, "=")
		if !found {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(name), "q") {
			continue
		}
		mt.Quality = parseWeight(strings.TrimSpace(value))
	}
	return mt, true
}

// parsePreferred appends the entries of a comma-separated media type list
// to dst, lower-cased and trimmed. Same entry cap as parseAccept.
func parsePreferred(dst []string, preferred string) []string {
	for preferred != "" && len(dst) < MaxMediaTypes {
		var token string
		if i := strings.IndexByte(preferred, ','); i >= 0 {
			token, preferred = preferred[:i], preferred[i+1:]
		} else {
			token, preferred = preferred, ""
		}
		if token = strings.TrimSpace(token); token != "" {
			dst = append(dst, strings.ToLower(token))
		}
	}
	return dst
}

// Match reports whether the media range pattern (from an Accept header)
// admits the concrete media type. "*/*" matches anything, "type/*" matches
// any subtype of the same type. Anything else, including tokens without a
// slash, must match exactly. Arguments are expected to be normalized
// already and are always passed pattern first.
func Match(pattern, mediaType string) bool {
	if pattern == "*/*" {
		return true
	}
	pType, pSubtype, pOk := strings.Cut(pattern, "/")
	tType, _, tOk := strings.Cut(mediaType, "/")
	if !pOk || !tOk {
		return pattern == mediaType
	}
	if pSubtype == "*" {
		return pType == tType
	}
	return pattern == mediaType
}

// buildAccept serializes media types into Accept header form: entries
// separated by ", ", with a q parameter only where the weight is below 1,
// formatted with a single decimal digit.
func buildAccept(types []MediaType) string {
	if len(types) == 0 {
		return ""
	}
	var b strings.Builder
	for i, mt := range types {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mt.Type)
		if mt.Quality < 1 {
			b.WriteString(";q=")
			b.WriteString(strconv.FormatFloat(mt.Quality, 'f', 1, 64))
		}
	}
	return b.String()
}
