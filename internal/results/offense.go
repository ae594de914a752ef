// Package results normalizes parsed violation records into offenses.
package results

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/codewithboateng/doclint/internal/protocol"
	"github.com/codewithboateng/doclint/internal/rules"
)

// Offense is one located, severity-tagged violation. Extra holds every
// field of the source record; JSON flattens it next to the normalized keys.
type Offense struct {
	RuleID       string
	Severity     string
	Type         string
	Name         string
	Message      string
	Location     string
	LocationLine int
	Extra        map[string]any
}

// Field returns a record field carried by the offense.
func (o Offense) Field(key string) (any, bool) {
	v, ok := o.Extra[key]
	return v, ok
}

var normalizedKeys = map[string]bool{
	"rule": true, "severity": true, "type": true, "name": true,
	"message": true, "location": true, "location_line": true,
}

func (o Offense) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(o.Extra)+7)
	for k, v := range o.Extra {
		if !normalizedKeys[k] {
			m[k] = v
		}
	}
	m["rule"] = o.RuleID
	m["severity"] = o.Severity
	m["type"] = o.Type
	m["name"] = o.Name
	m["message"] = o.Message
	m["location"] = o.Location
	m["location_line"] = o.LocationLine
	return json.Marshal(m)
}

func (o *Offense) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	str := func(k string) string { s, _ := m[k].(string); return s }
	o.RuleID = str("rule")
	o.Severity = str("severity")
	o.Type = str("type")
	o.Name = str("name")
	o.Message = str("message")
	o.Location = str("location")
	if n, ok := m["location_line"].(float64); ok {
		o.LocationLine = int(n)
	}
	o.Extra = map[string]any{}
	for k, v := range m {
		if !normalizedKeys[k] {
			o.Extra[k] = v
		}
	}
	return nil
}

// ExtraKeys lists rule-specific fields in stable order.
func (o Offense) ExtraKeys() []string {
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Error is a rule-construction error found while building offenses.
type Error struct {
	RuleID string
	Msg    string
}

func (e *Error) Error() string { return fmt.Sprintf("results: %s: %s", e.RuleID, e.Msg) }

// SeverityResolver is the one resolver query the builder needs.
type SeverityResolver interface {
	SeverityFor(ruleID string, rec protocol.Record) string
}

// Builder turns records into offenses.
type Builder struct {
	Severity SeverityResolver
}

// Build normalizes records for rule. A rule without a message formatter is
// an error even when there is nothing to build.
func (b Builder) Build(records []protocol.Record, rule rules.Rule) ([]Offense, error) {
	if rule.Message == nil {
		return nil, &Error{RuleID: rule.ID, Msg: "rule has no message formatter"}
	}
	name := rules.DisplayName(rule)
	out := make([]Offense, 0, len(records))
	for _, rec := range records {
		sev := rule.DefaultSeverity
		if b.Severity != nil {
			sev = b.Severity.SeverityFor(rule.ID, rec)
		}
		out = append(out, Offense{
			RuleID:       rule.ID,
			Severity:     rules.NormalizeSeverity(sev),
			Type:         rule.Category,
			Name:         name,
			Message:      rule.Message(rec),
			Location:     location(rec),
			LocationLine: locationLine(rec),
			Extra:        rec.Clone(),
		})
	}
	return out, nil
}

func location(rec protocol.Record) string {
	if s := rec.String(protocol.FieldLocation); s != "" {
		return s
	}
	return rec.String("file")
}

func locationLine(rec protocol.Record) int {
	if n, ok := rec.Int(protocol.FieldLine); ok {
		return n
	}
	if n, ok := rec.Int("location_line"); ok {
		return n
	}
	return 0
}
