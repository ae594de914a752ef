package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

func init() {
	Register(Rule{
		ID:                "Documentation/UndocumentedObjects",
		Summary:           "Classes, modules and methods must carry documentation.",
		Category:          "line",
		DefaultSeverity:   SeverityWarning,
		DefaultEnabled:    true,
		Defaults:          map[string]any{"ExcludedMethods": []string{"initialize"}},
		Strategy:          StrategyInProcess,
		DefaultVisibility: docmodel.VisibilityPublic,
		Check:             checkUndocumentedObjects,
		Parse:             protocol.TwoLine(protocol.PipeFields("kind")),
		Message: func(rec protocol.Record) string {
			return fmt.Sprintf("Documentation required for `%s`", rec.String(protocol.FieldObjectName))
		},
	})
}

func checkUndocumentedObjects(e docmodel.Entity, opts Options, out *protocol.Collector) error {
	if e.Documented() {
		return nil
	}
	if e.IsMethod() {
		excluded, err := methodExcluded(methodName(e.Path), opts.Strings("ExcludedMethods"))
		if err != nil {
			return err
		}
		if excluded {
			return nil
		}
	}
	out.Violation(e.File, e.Line, e.Title(), string(e.Kind))
	return nil
}

// methodExcluded matches plain names exactly and /regex/ patterns as regexps.
// A malformed pattern is a data error for the entity being checked.
func methodExcluded(name string, patterns []string) (bool, error) {
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if len(p) > 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
			re, err := regexp.Compile(p[1 : len(p)-1])
			if err != nil {
				return false, fmt.Errorf("excluded method pattern %q: %w", p, err)
			}
			if re.MatchString(name) {
				return true, nil
			}
			continue
		}
		if p == name {
			return true, nil
		}
	}
	return false, nil
}

// methodName strips the namespace from "Foo::Bar#baz" or "Foo.baz".
func methodName(path string) string {
	if i := strings.LastIndexAny(path, "#."); i >= 0 {
		return path[i+1:]
	}
	return path
}
