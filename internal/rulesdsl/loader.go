// Package rulesdsl loads YAML rule packs that declare extra external rules.
//
// A pack looks like:
//
//	rules:
//	  - id: Custom/TodoInDocs
//	    summary: Docstrings must not carry TODO notes.
//	    category: tag
//	    severity: warning
//	    query: 'docstring.include?("TODO")'
//	    fields: [note]
//	    message: "TODO left in documentation of `{{object_name}}`: {{note}}"
//
// The query is handed to the engine verbatim; its output must follow the
// two-line violation format, with the payload split on separator into fields.
package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
	"github.com/codewithboateng/doclint/internal/rules"
)

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID         string   `yaml:"id"`
	Summary    string   `yaml:"summary"`
	Category   string   `yaml:"category"` // line|method|tag
	Severity   string   `yaml:"severity"`
	Enabled    *bool    `yaml:"enabled"`
	Visibility string   `yaml:"visibility"`
	Query      string   `yaml:"query"`
	Flags      string   `yaml:"flags"`
	Fields     []string `yaml:"fields"`
	Separator  string   `yaml:"separator"`
	Message    string   `yaml:"message"`
	Docs       string   `yaml:"docs"`
}

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

var builtinFields = map[string]bool{
	protocol.FieldLocation:   true,
	protocol.FieldLine:       true,
	protocol.FieldObjectName: true,
}

// LoadAndRegister reads the pack at path and registers every rule in it.
// Nothing is registered when any rule fails to compile.
func LoadAndRegister(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read rules pack: %w", err)
	}
	return Register(b)
}

// Register compiles a pack document and registers its rules.
func Register(doc []byte) (int, error) {
	var pack dslPack
	if err := yaml.Unmarshal(doc, &pack); err != nil {
		return 0, fmt.Errorf("parse yaml: %w", err)
	}
	seen := map[string]bool{}
	out := make([]rules.Rule, 0, len(pack.Rules))
	for _, r := range pack.Rules {
		if seen[r.ID] {
			return 0, fmt.Errorf("rule %q declared twice", r.ID)
		}
		seen[r.ID] = true
		cr, err := compile(r)
		if err != nil {
			return 0, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		out = append(out, cr)
	}
	for _, r := range out {
		rules.Register(r)
	}
	return len(out), nil
}

func compile(r dslRule) (rules.Rule, error) {
	if r.ID == "" || r.Query == "" || r.Message == "" {
		return rules.Rule{}, fmt.Errorf("missing required fields (id/query/message)")
	}
	if i := strings.IndexByte(r.ID, '/'); i <= 0 || i == len(r.ID)-1 {
		return rules.Rule{}, fmt.Errorf("id must be Category/Name")
	}
	if _, exists := rules.Get(r.ID); exists {
		return rules.Rule{}, fmt.Errorf("id already registered")
	}

	sev := rules.NormalizeSeverity(r.Severity)
	if sev == "" {
		sev = rules.SeverityWarning
	}
	if !rules.ValidSeverity(sev) {
		return rules.Rule{}, fmt.Errorf("invalid severity %q", r.Severity)
	}

	cat := strings.ToLower(strings.TrimSpace(r.Category))
	switch cat {
	case "":
		cat = "line"
	case "line", "method", "tag":
	default:
		return rules.Rule{}, fmt.Errorf("invalid category %q", r.Category)
	}

	vis := docmodel.Visibility(strings.ToLower(strings.TrimSpace(r.Visibility)))
	switch vis {
	case "":
		vis = docmodel.VisibilityPublic
	case docmodel.VisibilityPublic, docmodel.VisibilityProtected, docmodel.VisibilityAll:
	default:
		return rules.Rule{}, fmt.Errorf("invalid visibility %q", r.Visibility)
	}

	known := map[string]bool{}
	for _, f := range r.Fields {
		if builtinFields[f] {
			return rules.Rule{}, fmt.Errorf("field %q is reserved", f)
		}
		known[f] = true
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(r.Message, -1) {
		if !known[m[1]] && !builtinFields[m[1]] {
			return rules.Rule{}, fmt.Errorf("message references unknown field %q", m[1])
		}
	}

	sep := r.Separator
	if sep == "" {
		sep = "|"
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	tmpl := r.Message
	return rules.Rule{
		ID:                r.ID,
		Summary:           r.Summary,
		Category:          cat,
		DefaultSeverity:   sev,
		DefaultEnabled:    enabled,
		Strategy:          rules.StrategyExternal,
		DefaultVisibility: vis,
		Query:             r.Query,
		Flags:             r.Flags,
		Parse:             protocol.TwoLine(protocol.SeparatedFields(sep, r.Fields...)),
		Message:           func(rec protocol.Record) string { return render(tmpl, rec) },
		Docs:              r.Docs,
	}, nil
}

func render(tmpl string, rec protocol.Record) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		return rec.String(placeholderRe.FindStringSubmatch(m)[1])
	})
}
