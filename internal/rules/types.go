package rules

import (
	"errors"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

// ErrContract marks a rule that cannot function at all (as opposed to bad data
// for one entity). Executors abort the run when a check returns it.
var ErrContract = errors.New("rule contract violation")

type Strategy int

const (
	StrategyInProcess Strategy = iota
	StrategyExternal
)

func (s Strategy) String() string {
	switch s {
	case StrategyInProcess:
		return "in-process"
	case StrategyExternal:
		return "external"
	}
	return "unknown"
}

// Options is the resolved option view a check reads from.
type Options interface {
	Get(option string) any
	Strings(option string) []string
}

// CheckFunc inspects one entity and appends protocol lines for its violations.
type CheckFunc func(e docmodel.Entity, opts Options, out *protocol.Collector) error

// Rule describes one registered check.
type Rule struct {
	ID      string // Category/Name
	Name    string // display name; derived from ID when empty
	Summary string
	// Category is the offense type: line, method or tag.
	Category        string
	DefaultSeverity string
	DefaultEnabled  bool
	Defaults        map[string]any

	Strategy          Strategy
	DefaultVisibility docmodel.Visibility // in-process only

	// External strategy: an engine query expression and extra engine flags.
	Query string
	Flags string

	// In-process strategy.
	Check CheckFunc

	Parse   protocol.ParseFunc
	Message func(rec protocol.Record) string

	// SubtypeField names the record field carrying a violation subtype;
	// SubtypeSeverity maps subtype values to the option holding their severity.
	SubtypeField    string
	SubtypeSeverity map[string]string

	Docs string
}
