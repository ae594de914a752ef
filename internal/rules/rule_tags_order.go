package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

var defaultTagOrder = []string{
	"param", "option", "yield", "yieldparam", "yieldreturn",
	"return", "raise", "see", "example", "note", "todo",
}

func init() {
	Register(Rule{
		ID:                "Tags/Order",
		Summary:           "Tags must appear in the configured order.",
		Category:          "tag",
		DefaultSeverity:   SeverityConvention,
		DefaultEnabled:    true,
		Defaults:          map[string]any{"EnforcedOrder": defaultTagOrder},
		Strategy:          StrategyInProcess,
		DefaultVisibility: docmodel.VisibilityPublic,
		Check:             checkTagsOrder,
		Parse:             protocol.TwoLine(protocol.PipeFields("expected", "actual")),
		Message: func(rec protocol.Record) string {
			return fmt.Sprintf("Tags in `%s` are in an invalid order. Expected: %s. Got: %s",
				rec.String(protocol.FieldObjectName),
				strings.ReplaceAll(rec.String("expected"), ",", ", "),
				strings.ReplaceAll(rec.String("actual"), ",", ", "))
		},
	})
}

func checkTagsOrder(e docmodel.Entity, opts Options, out *protocol.Collector) error {
	order := opts.Strings("EnforcedOrder")
	if len(order) == 0 || len(e.Tags) < 2 {
		return nil
	}
	idx := tagIndex(order)

	// Tags outside the enforced list are ignored.
	var actual []string
	seen := map[string]bool{}
	prev, ordered := -1, true
	for _, t := range e.Tags {
		pos, known := idx[t.TagName]
		if !known {
			continue
		}
		if pos < prev {
			ordered = false
		}
		prev = pos
		if !seen[t.TagName] {
			seen[t.TagName] = true
			actual = append(actual, t.TagName)
		}
	}
	if ordered {
		return nil
	}

	expected := append([]string(nil), actual...)
	sort.SliceStable(expected, func(i, j int) bool { return idx[expected[i]] < idx[expected[j]] })
	out.Violation(e.File, e.Line, e.Title(), strings.Join(expected, ",")+"|"+strings.Join(actual, ","))
	return nil
}
