package rulesdsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/rules"
)

const pack = `
rules:
  - id: Custom/TodoInDocs
    summary: Docstrings must not carry TODO notes.
    category: tag
    severity: Error
    query: 'docstring.include?("TODO")'
    fields: [note, author]
    message: "TODO in {{ object_name }} by {{author}}: {{note}}"
  - id: Custom/Quiet
    enabled: false
    visibility: all
    separator: ";"
    fields: [why]
    query: 'true'
    flags: --no-private
    message: "{{why}}"
`

func TestLoadAndRegister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack.yml")
	require.NoError(t, os.WriteFile(path, []byte(pack), 0o644))
	t.Cleanup(func() {
		rules.Unregister("Custom/TodoInDocs")
		rules.Unregister("Custom/Quiet")
	})

	n, err := LoadAndRegister(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, ok := rules.Get("Custom/TodoInDocs")
	require.True(t, ok)
	assert.Equal(t, rules.StrategyExternal, r.Strategy)
	assert.Equal(t, "error", r.DefaultSeverity)
	assert.Equal(t, "tag", r.Category)
	assert.True(t, r.DefaultEnabled)
	assert.Equal(t, docmodel.VisibilityPublic, r.DefaultVisibility)

	recs := r.Parse("lib/a.rb:4: A#run\nfix later|ann\nnoise\n")
	require.Len(t, recs, 1)
	assert.Equal(t, "TODO in A#run by ann: fix later", r.Message(recs[0]))

	q, ok := rules.Get("Custom/Quiet")
	require.True(t, ok)
	assert.False(t, q.DefaultEnabled)
	assert.Equal(t, "warning", q.DefaultSeverity)
	assert.Equal(t, docmodel.VisibilityAll, q.DefaultVisibility)
	assert.Equal(t, "--no-private", q.Flags)
	recs = q.Parse("lib/b.rb:1: B\nbecause;really\n")
	require.Len(t, recs, 1)
	assert.Equal(t, "because;really", q.Message(recs[0]))

	// A second load collides with the registered ids.
	_, err = LoadAndRegister(path)
	assert.Error(t, err)
}

func TestRegister_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing query":     "rules:\n  - id: A/B\n    message: m\n",
		"bad id":            "rules:\n  - id: NoSlash\n    query: q\n    message: m\n",
		"bad severity":      "rules:\n  - id: A/B\n    query: q\n    message: m\n    severity: fatal\n",
		"bad category":      "rules:\n  - id: A/B\n    query: q\n    message: m\n    category: file\n",
		"bad visibility":    "rules:\n  - id: A/B\n    query: q\n    message: m\n    visibility: secret\n",
		"unknown field":     "rules:\n  - id: A/B\n    query: q\n    message: '{{nope}}'\n",
		"reserved field":    "rules:\n  - id: A/B\n    query: q\n    message: m\n    fields: [line]\n",
		"duplicate":         "rules:\n  - {id: A/B, query: q, message: m}\n  - {id: A/B, query: q, message: m}\n",
		"builtin collision": "rules:\n  - id: Tags/Order\n    query: q\n    message: m\n",
		"not yaml":          "rules: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			n, err := Register([]byte(doc))
			assert.Error(t, err)
			assert.Zero(t, n)
		})
	}
	_, ok := rules.Get("A/B")
	assert.False(t, ok, "failed packs register nothing")
}
