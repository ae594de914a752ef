// Package config resolves per-rule settings from a two-layer document: a
// global AllValidators section and one section per rule id.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalSection is the document key holding the global layer.
const GlobalSection = "AllValidators"

// Option names understood by the resolver itself.
const (
	OptEnabled        = "Enabled"
	OptSeverity       = "Severity"
	OptExclude        = "Exclude"
	OptEngineOptions  = "EngineOptions"
	OptFailOnSeverity = "FailOnSeverity"
	OptMinCoverage    = "MinCoverage"
)

// Layer is one level of plain key-value options.
type Layer map[string]any

// Lookup reports whether key is present with a non-nil value. Present but
// empty or false values count as present.
func (l Layer) Lookup(key string) (any, bool) {
	if l == nil {
		return nil, false
	}
	v, ok := l[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Document is the parsed configuration: the global layer and the rule layers
// keyed by rule id. Application settings sharing the file are not kept.
type Document struct {
	Global Layer
	Rules  map[string]Layer
}

// Error is a configuration error tied to a rule.
type Error struct {
	RuleID string
	Msg    string
}

func (e *Error) Error() string {
	if e.RuleID == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.RuleID, e.Msg)
}

// IsRuleSection reports whether a top-level key names a rule ("Category/Name").
func IsRuleSection(key string) bool {
	i := strings.IndexByte(key, '/')
	return i > 0 && i < len(key)-1
}

// Parse splits a YAML document into layers.
func Parse(b []byte) (Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Document{}, fmt.Errorf("parse config: %w", err)
	}
	doc := Document{Global: Layer{}, Rules: map[string]Layer{}}
	for k, v := range raw {
		switch {
		case k == GlobalSection:
			l, err := asLayer(v)
			if err != nil {
				return Document{}, &Error{Msg: GlobalSection + ": " + err.Error()}
			}
			doc.Global = l
		case IsRuleSection(k):
			l, err := asLayer(v)
			if err != nil {
				return Document{}, &Error{RuleID: k, Msg: err.Error()}
			}
			doc.Rules[k] = l
		}
	}
	return doc, nil
}

func asLayer(v any) (Layer, error) {
	switch m := v.(type) {
	case nil:
		return Layer{}, nil
	case map[string]any:
		return Layer(m), nil
	}
	return nil, errors.New("section must be a mapping")
}

// Load reads the document at path. A missing path yields an empty document.
// A .env file in the working directory is loaded first, then
// DOCLINT_FAIL_ON_SEVERITY and DOCLINT_MIN_COVERAGE override the global layer.
// A missing .env is fine; an unreadable or malformed one is an error.
func Load(path string) (Document, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Document{}, fmt.Errorf("load .env: %w", err)
	}

	doc := Document{Global: Layer{}, Rules: map[string]Layer{}}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if doc, err = Parse(b); err != nil {
				return Document{}, err
			}
		case !os.IsNotExist(err):
			return Document{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := applyEnv(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func applyEnv(doc *Document) error {
	if v := strings.TrimSpace(os.Getenv("DOCLINT_FAIL_ON_SEVERITY")); v != "" {
		doc.Global[OptFailOnSeverity] = v
	}
	if v := strings.TrimSpace(os.Getenv("DOCLINT_MIN_COVERAGE")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &Error{Msg: fmt.Sprintf("DOCLINT_MIN_COVERAGE %q is not a number", v)}
		}
		doc.Global[OptMinCoverage] = f
	}
	return nil
}
