package protocol

import "strings"

// Collector is the append-only line sink handed to in-process rules.
type Collector struct {
	lines []string
}

func (c *Collector) Add(lines ...string) {
	c.lines = append(c.lines, lines...)
}

// Violation appends one two-line violation.
func (c *Collector) Violation(file string, line int, title, payload string) {
	c.lines = append(c.lines, LocationLine(file, line, title), payload)
}

func (c *Collector) Lines() []string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Collector) Len() int { return len(c.lines) }

func (c *Collector) Append(other *Collector) {
	if other == nil {
		return
	}
	c.lines = append(c.lines, other.lines...)
}

// String joins the collected lines; the result round-trips through TwoLine.
func (c *Collector) String() string {
	if len(c.lines) == 0 {
		return ""
	}
	return strings.Join(c.lines, "\n") + "\n"
}
