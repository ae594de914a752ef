package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewithboateng/doclint/internal/docmodel"
	"github.com/codewithboateng/doclint/internal/protocol"
)

// defaultsOnly serves a rule's compiled defaults, like a resolver with an empty document.
type defaultsOnly map[string]any

func (d defaultsOnly) Get(option string) any { return d[option] }

func (d defaultsOnly) Strings(option string) []string {
	switch v := d[option].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func mustRule(t *testing.T, id string) Rule {
	t.Helper()
	r, ok := Get(id)
	require.True(t, ok, "rule %s not registered", id)
	return r
}

func runCheck(t *testing.T, id string, e docmodel.Entity, opts Options) []protocol.Record {
	t.Helper()
	r := mustRule(t, id)
	if opts == nil {
		opts = defaultsOnly(r.Defaults)
	}
	var c protocol.Collector
	require.NoError(t, r.Check(e, opts, &c))
	return r.Parse(c.String())
}

func TestBuiltinsRegistered(t *testing.T) {
	ids := []string{
		"Documentation/BlankLineBeforeDefinition",
		"Documentation/UndocumentedMethodArguments",
		"Documentation/UndocumentedObjects",
		"Tags/Order",
		"Tags/TypeSyntax",
		"Warnings/UnknownParameterName",
		"Warnings/UnknownTag",
	}
	for _, id := range ids {
		r := mustRule(t, id)
		assert.NotNil(t, r.Parse, id)
		assert.NotNil(t, r.Message, id)
		assert.True(t, ValidSeverity(r.DefaultSeverity), id)
		if r.Strategy == StrategyInProcess {
			assert.NotNil(t, r.Check, id)
		} else {
			assert.NotEmpty(t, r.Query, id)
		}
	}

	list := List()
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}

func TestUndocumentedObjects(t *testing.T) {
	e := docmodel.Entity{Path: "Foo#bar", Kind: docmodel.KindMethod, File: "lib/foo.rb", Line: 10}
	got := runCheck(t, "Documentation/UndocumentedObjects", e, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "method", got[0]["kind"])
	assert.Equal(t, "Documentation required for `Foo#bar`",
		mustRule(t, "Documentation/UndocumentedObjects").Message(got[0]))

	e.Docstring = "Bars."
	assert.Empty(t, runCheck(t, "Documentation/UndocumentedObjects", e, nil))

	ctor := docmodel.Entity{Path: "Foo#initialize", Kind: docmodel.KindMethod, File: "lib/foo.rb", Line: 2}
	assert.Empty(t, runCheck(t, "Documentation/UndocumentedObjects", ctor, nil))

	private := docmodel.Entity{Path: "Foo#_hidden", Kind: docmodel.KindMethod, File: "lib/foo.rb", Line: 5}
	assert.Empty(t, runCheck(t, "Documentation/UndocumentedObjects", private,
		defaultsOnly{"ExcludedMethods": []any{"/^_/"}}))
}

func TestUndocumentedObjects_BadPatternIsDataError(t *testing.T) {
	r := mustRule(t, "Documentation/UndocumentedObjects")
	e := docmodel.Entity{Path: "Foo#bar", Kind: docmodel.KindMethod, File: "a.rb", Line: 1}
	var c protocol.Collector
	err := r.Check(e, defaultsOnly{"ExcludedMethods": []string{"/([/"}}, &c)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrContract)
}

func TestUndocumentedMethodArguments(t *testing.T) {
	e := docmodel.Entity{
		Path: "Foo#bar", Kind: docmodel.KindMethod, File: "lib/foo.rb", Line: 10,
		Docstring:  "Bars.",
		Parameters: []docmodel.Parameter{{Name: "a"}, {Name: "*rest"}, {Name: "key:"}, {Name: "&blk"}},
		Tags:       []docmodel.Tag{{TagName: "param", Name: "a"}, {TagName: "param", Name: "blk"}},
	}
	got := runCheck(t, "Documentation/UndocumentedMethodArguments", e, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "rest,key", got[0]["params"])
}

func TestTagsOrder(t *testing.T) {
	ResetCaches()
	e := docmodel.Entity{
		Path: "Foo#bar", Kind: docmodel.KindMethod, File: "lib/foo.rb", Line: 10,
		Tags: []docmodel.Tag{{TagName: "return"}, {TagName: "custom"}, {TagName: "param"}},
	}
	got := runCheck(t, "Tags/Order", e, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "param,return", got[0]["expected"])
	assert.Equal(t, "return,param", got[0]["actual"])
	assert.Equal(t, 1, CachedDictionaries())

	e.Tags = []docmodel.Tag{{TagName: "param"}, {TagName: "param"}, {TagName: "return"}}
	assert.Empty(t, runCheck(t, "Tags/Order", e, nil))
	assert.Equal(t, 1, CachedDictionaries(), "same order list reuses the dictionary")

	ResetCaches()
	assert.Equal(t, 0, CachedDictionaries())
}

func TestTagsTypeSyntax(t *testing.T) {
	e := docmodel.Entity{
		Path: "Foo#bar", Kind: docmodel.KindMethod, File: "lib/foo.rb", Line: 10,
		Tags: []docmodel.Tag{
			{TagName: "param", Name: "a", Types: []string{"Array<String>", "Hash{Symbol => String}"}},
			{TagName: "return", Types: []string{"Array<String"}},
			{TagName: "see", Types: []string{"Array<"}},
		},
	}
	got := runCheck(t, "Tags/TypeSyntax", e, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "return", got[0]["tag"])
	assert.Equal(t, "Array<String", got[0]["type"])
}

func TestBalanced(t *testing.T) {
	assert.True(t, balanced("Array<Hash{Symbol => Array<Integer>}>"))
	assert.True(t, balanced("(String, nil)"))
	assert.False(t, balanced("Array<String}"))
	assert.False(t, balanced("String>"))
}

func TestBlankLineMessages(t *testing.T) {
	r := mustRule(t, "Documentation/BlankLineBeforeDefinition")
	recs := r.Parse("lib/a.rb:10: Foo#bar\nsingle:1\nlib/a.rb:20: Foo#baz\norphaned:3\n")
	require.Len(t, recs, 2)
	assert.Equal(t, "Blank line between documentation and definition of `Foo#bar`", r.Message(recs[0]))
	assert.Contains(t, r.Message(recs[1]), "3 blank lines")
	assert.Equal(t, "OrphanedSeverity", r.SubtypeSeverity[recs[1].String(r.SubtypeField)])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "TagsOrder", DisplayName(Rule{ID: "Tags/Order"}))
	assert.Equal(t, "Custom", DisplayName(Rule{ID: "Tags/Order", Name: "Custom"}))
	assert.Equal(t, "DocumentationUndocumentedObjects", DisplayName(Rule{ID: "Documentation/UndocumentedObjects"}))
	assert.Equal(t, "Tags", Group("Tags/Order"))
}

func TestRegisterReplacesAndUnregister(t *testing.T) {
	Register(Rule{ID: "Test/Temp", Summary: "one"})
	Register(Rule{ID: "Test/Temp", Summary: "two"})
	r, ok := Get("Test/Temp")
	require.True(t, ok)
	assert.Equal(t, "two", r.Summary)

	n := len(List())
	Unregister("Test/Temp")
	_, ok = Get("Test/Temp")
	assert.False(t, ok)
	assert.Len(t, List(), n-1)

	// index stays consistent after removal
	for _, rr := range List() {
		got, ok := Get(rr.ID)
		require.True(t, ok)
		assert.Equal(t, rr.ID, got.ID)
	}
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityRank("error"), SeverityRank("Warning"))
	assert.Greater(t, SeverityRank(" warning "), SeverityRank("convention"))
	assert.Equal(t, 0, SeverityRank("fatal"))
}
