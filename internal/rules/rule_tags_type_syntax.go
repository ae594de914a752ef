package rules

import (
	"fmt"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

func init() {
	Register(Rule{
		ID:                "Tags/TypeSyntax",
		Summary:           "Tag type lists must have balanced brackets.",
		Category:          "tag",
		DefaultSeverity:   SeverityWarning,
		DefaultEnabled:    true,
		Defaults:          map[string]any{"ValidatedTags": []string{"param", "option", "return", "yieldreturn"}},
		Strategy:          StrategyInProcess,
		DefaultVisibility: docmodel.VisibilityPublic,
		Check:             checkTagsTypeSyntax,
		Parse:             protocol.TwoLine(protocol.PipeFields("tag", "type")),
		Message: func(rec protocol.Record) string {
			return fmt.Sprintf("Invalid type syntax in @%s tag: `%s`", rec.String("tag"), rec.String("type"))
		},
	})
}

func checkTagsTypeSyntax(e docmodel.Entity, opts Options, out *protocol.Collector) error {
	validated := map[string]bool{}
	for _, t := range opts.Strings("ValidatedTags") {
		validated[t] = true
	}
	for _, t := range e.Tags {
		if !validated[t.TagName] {
			continue
		}
		for _, typ := range t.Types {
			if !balanced(typ) {
				out.Violation(e.File, e.Line, e.Title(), t.TagName+"|"+typ)
			}
		}
	}
	return nil
}

var closers = map[rune]rune{'>': '<', '}': '{', ')': '(', ']': '['}

func balanced(s string) bool {
	var stack []rune
	var prev rune
	for _, c := range s {
		switch c {
		case '<', '{', '(', '[':
			stack = append(stack, c)
		case '>', '}', ')', ']':
			// "=>" in hash types is an arrow, not a closer
			if c == '>' && prev == '=' {
				break
			}
			if len(stack) == 0 || stack[len(stack)-1] != closers[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
		prev = c
	}
	return len(stack) == 0
}
