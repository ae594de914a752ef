package rules

import (
	"github.com/codewithboateng/doclint/internal/protocol"
)

// Engine warnings are printed while the engine parses sources; the query
// itself selects nothing.
const passthroughQuery = "false"

func init() {
	registerEngineWarning("Warnings/UnknownTag",
		"The engine reported an unknown tag.",
		`^\[warn\]: Unknown tag`)
	registerEngineWarning("Warnings/UnknownParameterName",
		"A @param tag names a parameter the method does not have.",
		`^\[warn\]: @param tag has unknown parameter name`)
}

func registerEngineWarning(id, summary, general string) {
	p := protocol.EngineWarning(general)
	Register(Rule{
		ID:              id,
		Summary:         summary,
		Category:        "line",
		DefaultSeverity: SeverityError,
		DefaultEnabled:  true,
		Strategy:        StrategyExternal,
		Query:           passthroughQuery,
		Parse:           p.Parse,
		Message: func(rec protocol.Record) string {
			return rec.String(protocol.FieldMessage)
		},
	})
}
