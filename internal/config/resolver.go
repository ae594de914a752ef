package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
	"github.com/codewithboateng/doclint/internal/rules"
)

// LookupFunc finds a rule descriptor by id.
type LookupFunc func(id string) (rules.Rule, bool)

const defaultFailOnSeverity = rules.SeverityWarning

// Resolver answers option queries for registered rules. It never mutates the
// document, so every query is idempotent.
type Resolver struct {
	doc    Document
	lookup LookupFunc
}

// NewResolver validates doc against the rule table: every rule section must
// name a registered rule and every severity value must be recognized.
func NewResolver(doc Document, lookup LookupFunc) (*Resolver, error) {
	if lookup == nil {
		lookup = rules.Get
	}
	if doc.Global == nil {
		doc.Global = Layer{}
	}
	if doc.Rules == nil {
		doc.Rules = map[string]Layer{}
	}

	ids := make([]string, 0, len(doc.Rules))
	for id := range doc.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := lookup(id); !ok {
			return nil, &Error{RuleID: id, Msg: "unknown rule"}
		}
		if err := checkSeverities(id, doc.Rules[id]); err != nil {
			return nil, err
		}
	}
	if err := checkSeverities("", doc.Global); err != nil {
		return nil, err
	}
	if v, ok := doc.Global.Lookup(OptFailOnSeverity); ok {
		if _, isStr := v.(string); !isStr {
			return nil, &Error{Msg: fmt.Sprintf("%s must be a string, got %T", OptFailOnSeverity, v)}
		}
	}
	if v, ok := doc.Global.Lookup(OptMinCoverage); ok {
		if _, isNum := toFloat(v); !isNum {
			return nil, &Error{Msg: fmt.Sprintf("%s must be a number, got %v", OptMinCoverage, v)}
		}
	}
	return &Resolver{doc: doc, lookup: lookup}, nil
}

// checkSeverities validates Severity and every *Severity subtype option.
func checkSeverities(ruleID string, l Layer) error {
	for k, v := range l {
		if k == OptFailOnSeverity || !strings.HasSuffix(k, OptSeverity) || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok || !rules.ValidSeverity(s) {
			return &Error{RuleID: ruleID, Msg: fmt.Sprintf("%s: invalid severity %v (want error, warning or convention)", k, v)}
		}
	}
	return nil
}

// Resolve returns the effective value of option for ruleID: the rule layer
// when the key is present there, else the global layer, else the rule's
// compiled default. Presence, not truthiness, decides.
func (r *Resolver) Resolve(ruleID, option string) any {
	if v, ok := r.doc.Rules[ruleID].Lookup(option); ok {
		return v
	}
	if v, ok := r.doc.Global.Lookup(option); ok {
		return v
	}
	return r.descriptorDefault(ruleID, option)
}

func (r *Resolver) descriptorDefault(ruleID, option string) any {
	rule, ok := r.lookup(ruleID)
	if !ok {
		return nil
	}
	switch option {
	case OptEnabled:
		return rule.DefaultEnabled
	case OptSeverity:
		return rule.DefaultSeverity
	}
	if v, ok := rule.Defaults[option]; ok {
		return v
	}
	return nil
}

func (r *Resolver) IsEnabled(ruleID string) bool {
	switch v := r.Resolve(ruleID, OptEnabled).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	return false
}

// Severity is the rule's general severity.
func (r *Resolver) Severity(ruleID string) string {
	if s, ok := r.Resolve(ruleID, OptSeverity).(string); ok && s != "" {
		return rules.NormalizeSeverity(s)
	}
	if rule, ok := r.lookup(ruleID); ok {
		return rules.NormalizeSeverity(rule.DefaultSeverity)
	}
	return ""
}

// SeverityFor resolves the severity of one violation. When the record carries
// the rule's subtype field and that subtype's severity option resolves to a
// non-empty value, it wins over the general severity.
func (r *Resolver) SeverityFor(ruleID string, rec protocol.Record) string {
	rule, ok := r.lookup(ruleID)
	if ok && rule.SubtypeField != "" && rec.Has(rule.SubtypeField) {
		if opt := rule.SubtypeSeverity[rec.String(rule.SubtypeField)]; opt != "" {
			if s, isStr := r.Resolve(ruleID, opt).(string); isStr && strings.TrimSpace(s) != "" {
				return rules.NormalizeSeverity(s)
			}
		}
	}
	return r.Severity(ruleID)
}

// FileExcludes returns the rule's Exclude globs. An explicitly empty list in
// the rule section means "exclude nothing" and hides the global list.
func (r *Resolver) FileExcludes(ruleID string) []string {
	return toStrings(r.Resolve(ruleID, OptExclude))
}

// EngineOptions returns the extra engine flags for ruleID.
func (r *Resolver) EngineOptions(ruleID string) []string {
	return toStrings(r.Resolve(ruleID, OptEngineOptions))
}

// Visibility merges the rule and global visibility axes. A rule-level
// EngineOptions key, even an empty one, decides on its own. Otherwise global
// --private or --protected elevates to all, else the rule's default applies.
func (r *Resolver) Visibility(ruleID string) docmodel.Visibility {
	if v, ok := r.doc.Rules[ruleID].Lookup(OptEngineOptions); ok {
		flags := toStrings(v)
		switch {
		case hasFlag(flags, "--private"):
			return docmodel.VisibilityAll
		case hasFlag(flags, "--protected"):
			return docmodel.VisibilityProtected
		}
		return docmodel.VisibilityPublic
	}
	if v, ok := r.doc.Global.Lookup(OptEngineOptions); ok {
		flags := toStrings(v)
		if hasFlag(flags, "--private") || hasFlag(flags, "--protected") {
			return docmodel.VisibilityAll
		}
	}
	if rule, ok := r.lookup(ruleID); ok && rule.DefaultVisibility != "" {
		return rule.DefaultVisibility
	}
	return docmodel.VisibilityPublic
}

// For returns the option view handed to a rule's check.
func (r *Resolver) For(ruleID string) rules.Options {
	return ruleOptions{r: r, id: ruleID}
}

// FailOnSeverity is the global fail threshold, "warning" when unset.
func (r *Resolver) FailOnSeverity() string {
	if s, ok := r.doc.Global[OptFailOnSeverity].(string); ok && strings.TrimSpace(s) != "" {
		return rules.NormalizeSeverity(s)
	}
	return defaultFailOnSeverity
}

// MinCoverage is the global coverage gate, if configured.
func (r *Resolver) MinCoverage() (float64, bool) {
	v, ok := r.doc.Global.Lookup(OptMinCoverage)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// GlobalExcludes are the global-layer Exclude globs, applied at file discovery.
func (r *Resolver) GlobalExcludes() []string {
	v, _ := r.doc.Global.Lookup(OptExclude)
	return toStrings(v)
}

// Configured reports whether the document names ruleID explicitly.
func (r *Resolver) Configured(ruleID string) bool {
	_, ok := r.doc.Rules[ruleID]
	return ok
}

type ruleOptions struct {
	r  *Resolver
	id string
}

func (o ruleOptions) Get(option string) any          { return o.r.Resolve(o.id, option) }
func (o ruleOptions) Strings(option string) []string { return toStrings(o.r.Resolve(o.id, option)) }

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if strings.TrimSpace(f) == flag {
			return true
		}
	}
	return false
}

// toStrings accepts a list of scalars or a single whitespace-separated string.
// The result is non-nil for any present value, so empty stays distinguishable.
func toStrings(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e == nil {
				continue
			}
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		return append([]string{}, strings.Fields(t)...)
	}
	return []string{fmt.Sprint(v)}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
