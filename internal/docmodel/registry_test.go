package docmodel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntities() []Entity {
	return []Entity{
		{Path: "Foo", Kind: KindClass, File: "lib/foo.rb", Line: 1},
		{Path: "Foo#bar", Kind: KindMethod, File: "lib/foo.rb", Line: 10, Visibility: VisibilityPublic},
		{Path: "Foo#baz", Kind: KindMethod, File: "lib/foo.rb", Line: 20, Visibility: VisibilityProtected},
		{Path: "Foo#qux", Kind: KindMethod, File: "lib/foo.rb", Line: 30, Visibility: VisibilityPrivate},
		{Path: "Vendored", Kind: KindModule, File: "vendor/gem/v.rb", Line: 3},
	}
}

func paths(es []Entity) []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Path)
	}
	return out
}

func TestObjectsForRule_Visibility(t *testing.T) {
	r := NewRegistry(sampleEntities())

	tests := []struct {
		name  string
		scope Visibility
		want  []string
	}{
		{"public", VisibilityPublic, []string{"Foo", "Foo#bar", "Vendored"}},
		{"protected", VisibilityProtected, []string{"Foo", "Foo#bar", "Foo#baz", "Vendored"}},
		{"all", VisibilityAll, []string{"Foo", "Foo#bar", "Foo#baz", "Foo#qux", "Vendored"}},
		{"unset_scope_is_public", "", []string{"Foo", "Foo#bar", "Vendored"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ObjectsForRule(Query{Visibility: tt.scope})
			assert.Equal(t, tt.want, paths(got))
		})
	}
}

func TestObjectsForRule_ExcludesAndSelection(t *testing.T) {
	r := NewRegistry(sampleEntities())

	got := r.ObjectsForRule(Query{Visibility: VisibilityAll, FileExcludes: []string{"vendor/**"}})
	assert.NotContains(t, paths(got), "Vendored")

	got = r.ObjectsForRule(Query{Visibility: VisibilityAll, FileSelection: []string{"./vendor/gem/v.rb"}})
	assert.Equal(t, []string{"Vendored"}, paths(got))

	got = r.ObjectsForRule(Query{Visibility: VisibilityAll, FileSelection: []string{}})
	assert.Empty(t, got)
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("./spec/a_spec.rb", []string{"spec/**/*"}))
	assert.True(t, Excluded("lib/a.rb", []string{"", "lib/*.rb"}))
	assert.False(t, Excluded("lib/a.rb", nil))
	assert.False(t, Excluded("", []string{"**"}))
}

func TestLoad_DirectoryMergesDumps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"),
		[]byte(`{"objects":[{"path":"A","type":"class","file":"a.rb","line":1}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"),
		[]byte(`{"objects":[{"path":"B#c","type":"method","file":"b.rb","line":4,"tags":[{"tag_name":"param","name":"x","types":["String"]}]}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644))

	g, diags, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, g.Entities, 2)
	assert.Len(t, diags.Warnings, 1)
	assert.Equal(t, "x", g.Entities[1].TagsNamed("param")[0].Name)
}

func TestEntityHelpers(t *testing.T) {
	e := Entity{Path: "A#b", File: "a.rb"}
	assert.False(t, e.Locatable())
	assert.False(t, e.Documented())
	assert.Equal(t, VisibilityPublic, e.EffectiveVisibility())

	e.Line = 3
	e.Docstring = "Does b."
	assert.True(t, e.Locatable())
	assert.True(t, e.Documented())
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "a.rb"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "c.rb"), nil, 0o644))

	files, err := DiscoverFiles(dir, []string{".rb"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "lib", "a.rb")}, files)
}
