package acceptnorm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/always-cache/accept-norm/rfc9110"

	"github.com/rs/zerolog/log"
)

// Normalization modes selectable per rule.
const (
	// ModeCanonicalize re-serializes the Accept header in canonical
	// sorted form. This is the default mode.
	ModeCanonicalize = "canonicalize"
	// ModeFilter keeps only the preferred types the client accepts.
	ModeFilter = "filter"
	// ModeBest replaces the header with the single best preferred type.
	ModeBest = "best"
	// ModePrefer replaces the header with the first accepted preferred
	// type, leaving it untouched when none matches.
	ModePrefer = "prefer"
)

type Rules []Rule

// Rule maps matching requests to a normalization mode. The zero rule
// matches every request and canonicalizes.
type Rule struct {
	Prefix    string            `yaml:"prefix"`
	Path      string            `yaml:"path"`
	Query     map[string]string `yaml:"query"`
	Mode      string            `yaml:"mode"`
	Preferred string            `yaml:"preferred"`
}

// Validate checks that every rule uses a known mode and that modes needing
// a preference list have one.
func (r Rules) Validate() error {
	for i, rule := range r {
		switch rule.Mode {
		case "", ModeCanonicalize:
		case ModeFilter, ModeBest, ModePrefer:
			if rule.Preferred == "" {
				return fmt.Errorf("rule %d: mode %s needs a preferred list", i, rule.Mode)
			}
		default:
			return fmt.Errorf("rule %d: unknown mode %s", i, rule.Mode)
		}
	}
	return nil
}

// find returns the first rule matching the request, or nil.
func (r Rules) find(req *http.Request) *Rule {
	log.Trace().Msgf("Finding rule for request %s:%s", req.Method, req.URL.Path)
rulesLoop:
	for _, rule := range r {
		log.Trace().Msgf("Checking rule %+v", rule)
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := req.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		return &rule
	}
	return nil
}

// apply runs the rule's normalization mode on the given Accept header
// using the provided scratch state.
func (rule Rule) apply(neg *rfc9110.Negotiator, accept string) string {
	switch rule.mode() {
	case ModeFilter:
		return neg.Filter(accept, rule.Preferred)
	case ModeBest:
		return neg.BestMatch(accept, rule.Preferred)
	case ModePrefer:
		return neg.Prefer(accept, rule.Preferred)
	default:
		return neg.Canonicalize(accept)
	}
}

func (rule Rule) mode() string {
	if rule.Mode == "" {
		return ModeCanonicalize
	}
	return rule.Mode
}
