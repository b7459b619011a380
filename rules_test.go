package acceptnorm

import (
	"net/http"
	"testing"

	"github.com/always-cache/accept-norm/rfc9110"
)

func TestRuleFinder(t *testing.T) {
	makeReq := func(path string) *http.Request {
		req, _ := http.NewRequest("GET", path, nil)
		return req
	}

	rules := Rules{
		Rule{Prefix: "/api/", Mode: ModeFilter, Preferred: "application/json"},
		Rule{Mode: ModeCanonicalize},
	}

	if rule := rules.find(makeReq("/")); rule == nil || rule.Mode != ModeCanonicalize {
		t.Fatal("Incorrect rule")
	}
	if rule := rules.find(makeReq("/api/users")); rule == nil || rule.Mode != ModeFilter {
		t.Fatal("Incorrect rule")
	}
}

func TestRuleFinderQuery(t *testing.T) {
	rules := Rules{
		Rule{Query: map[string]string{"format": "json"}, Mode: ModeBest, Preferred: "application/json"},
	}

	req, _ := http.NewRequest("GET", "/data?format=json", nil)
	if rule := rules.find(req); rule == nil || rule.Mode != ModeBest {
		t.Fatal("Incorrect rule")
	}
	req, _ = http.NewRequest("GET", "/data?format=xml", nil)
	if rule := rules.find(req); rule != nil {
		t.Fatal("Incorrect rule")
	}
}

func TestRuleFinderNoMatch(t *testing.T) {
	rules := Rules{
		Rule{Path: "/exact"},
	}
	req, _ := http.NewRequest("GET", "/other", nil)
	if rule := rules.find(req); rule != nil {
		t.Fatal("Incorrect rule")
	}
}

func TestRuleApplyModes(t *testing.T) {
	var neg rfc9110.Negotiator
	accept := "text/html;q=0.9, */*;q=0.1"

	if got := (Rule{}).apply(&neg, accept); got != "text/html;q=0.9, */*;q=0.1" {
		t.Fatalf("Canonicalize mode got %q", got)
	}
	rule := Rule{Mode: ModeFilter, Preferred: "application/json, text/html"}
	if got := rule.apply(&neg, accept); got != "text/html;q=0.9, application/json;q=0.1" {
		t.Fatalf("Filter mode got %q", got)
	}
	rule = Rule{Mode: ModeBest, Preferred: "application/json, text/html"}
	if got := rule.apply(&neg, accept); got != "text/html" {
		t.Fatalf("Best mode got %q", got)
	}
	rule = Rule{Mode: ModePrefer, Preferred: "application/json, text/html"}
	if got := rule.apply(&neg, accept); got != "application/json" {
		t.Fatalf("Prefer mode got %q", got)
	}
}

func TestRulesValidate(t *testing.T) {
	valid := Rules{
		Rule{},
		Rule{Mode: ModeCanonicalize},
		Rule{Mode: ModeFilter, Preferred: "text/html"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Error: %v", err)
	}

	if err := (Rules{Rule{Mode: "negotiate"}}).Validate(); err == nil {
		t.Fatal("Unknown mode should not validate")
	}
	if err := (Rules{Rule{Mode: ModeBest}}).Validate(); err == nil {
		t.Fatal("Best mode without preferred list should not validate")
	}
}
