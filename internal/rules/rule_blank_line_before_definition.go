package rules

import (
	"fmt"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

const (
	blankLineSingle   = "single"
	blankLineOrphaned = "orphaned"
)

// The engine evaluates this per object and prints "<file>:<line>: <path>"
// followed by "<single|orphaned>:<blank line count>".
const blankLineQuery = `if docstring.all.empty? || file.nil? then false else
  src = (File.readlines(file) rescue []);
  i = line - 2; n = 0;
  while i >= 0 && src[i].to_s.strip.empty? do n += 1; i -= 1 end;
  if n > 0 && src[i].to_s.strip.start_with?("#") then
    puts "#{file}:#{line}: #{path}"; puts "#{n == 1 ? "single" : "orphaned"}:#{n}"
  end; false
end`

func init() {
	Register(Rule{
		ID:                "Documentation/BlankLineBeforeDefinition",
		Summary:           "No blank lines between a documentation block and its definition.",
		Category:          "line",
		DefaultSeverity:   SeverityConvention,
		DefaultEnabled:    true,
		Strategy:          StrategyExternal,
		DefaultVisibility: docmodel.VisibilityPublic,
		Query:             blankLineQuery,
		Parse:             protocol.TwoLine(protocol.SeparatedFields(":", "violation", "count")),
		SubtypeField:      "violation",
		SubtypeSeverity: map[string]string{
			blankLineSingle:   "SingleBlankLineSeverity",
			blankLineOrphaned: "OrphanedSeverity",
		},
		Message: func(rec protocol.Record) string {
			obj := rec.String(protocol.FieldObjectName)
			if rec.String("violation") == blankLineOrphaned {
				return fmt.Sprintf("Documentation for `%s` is orphaned: %s blank lines separate it from the definition",
					obj, rec.String("count"))
			}
			return fmt.Sprintf("Blank line between documentation and definition of `%s`", obj)
		},
	})
}
