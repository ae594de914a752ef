package rules

import (
	"fmt"
	"strings"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

func init() {
	Register(Rule{
		ID:                "Documentation/UndocumentedMethodArguments",
		Summary:           "Every method parameter needs a matching @param tag.",
		Category:          "method",
		DefaultSeverity:   SeverityWarning,
		DefaultEnabled:    true,
		Strategy:          StrategyInProcess,
		DefaultVisibility: docmodel.VisibilityPublic,
		Check:             checkUndocumentedMethodArguments,
		Parse:             protocol.TwoLine(protocol.PipeFields("params")),
		Message: func(rec protocol.Record) string {
			return fmt.Sprintf("The `%s` method is missing documentation for some of the arguments: %s",
				rec.String(protocol.FieldObjectName), rec.String("params"))
		},
	})
}

func checkUndocumentedMethodArguments(e docmodel.Entity, _ Options, out *protocol.Collector) error {
	if !e.IsMethod() || !e.Documented() || len(e.Parameters) == 0 {
		return nil
	}
	documented := map[string]bool{}
	for _, t := range e.TagsNamed("param") {
		documented[paramName(t.Name)] = true
	}
	var missing []string
	for _, p := range e.Parameters {
		name := paramName(p.Name)
		if name == "" || documented[name] {
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return nil
	}
	out.Violation(e.File, e.Line, e.Title(), strings.Join(missing, ","))
	return nil
}

// paramName drops splat, block and keyword markers: "*args", "&blk", "key:".
func paramName(n string) string {
	n = strings.TrimSpace(n)
	n = strings.TrimLeft(n, "*&")
	return strings.TrimSuffix(n, ":")
}
