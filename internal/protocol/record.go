// Package protocol implements the line-oriented text format used to carry
// violations out of a rule run, and the parsers that decode it.
//
// Both execution strategies emit the same format, so one family of parsers
// consumes either. Parsers are total: foreign text is dropped, never fatal.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known record fields. Rules add their own next to these.
const (
	FieldLocation   = "location"
	FieldLine       = "line"
	FieldObjectName = "object_name"
	FieldMessage    = "message"
)

// Record is one decoded violation, not yet normalized.
type Record map[string]any

// ParseFunc decodes the raw output of one rule run.
type ParseFunc func(raw string) []Record

func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Int returns the field as an int; ok is false when absent or not numeric.
func (r Record) Int(key string) (int, bool) {
	v, present := r[key]
	if !present || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	// A final newline terminates the last line; it does not start an empty one.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
