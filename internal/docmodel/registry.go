package docmodel

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Query selects the filtered view a rule runs against.
// A nil FileSelection means every file; an empty non-nil one selects nothing.
type Query struct {
	Visibility    Visibility
	FileExcludes  []string
	FileSelection []string
}

type ObjectRegistry interface {
	ObjectsForRule(q Query) []Entity
}

// Registry is an immutable in-memory ObjectRegistry.
type Registry struct {
	entities []Entity
}

func NewRegistry(entities []Entity) *Registry {
	cp := make([]Entity, len(entities))
	copy(cp, entities)
	return &Registry{entities: cp}
}

func (r *Registry) Len() int { return len(r.entities) }

// All returns every entity regardless of visibility or file.
func (r *Registry) All() []Entity {
	out := make([]Entity, len(r.entities))
	copy(out, r.entities)
	return out
}

func (r *Registry) ObjectsForRule(q Query) []Entity {
	var selected map[string]struct{}
	if q.FileSelection != nil {
		selected = make(map[string]struct{}, len(q.FileSelection))
		for _, f := range q.FileSelection {
			selected[normPath(f)] = struct{}{}
		}
	}

	var out []Entity
	for _, e := range r.entities {
		if !VisibleIn(e.EffectiveVisibility(), q.Visibility) {
			continue
		}
		if selected != nil {
			if _, ok := selected[normPath(e.File)]; !ok {
				continue
			}
		}
		if Excluded(e.File, q.FileExcludes) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// VisibleIn reports whether an entity visibility falls inside a query scope.
// Scopes widen public < protected < private, and private equals all.
func VisibleIn(v, scope Visibility) bool {
	switch scope {
	case VisibilityAll, VisibilityPrivate:
		return true
	case VisibilityProtected:
		return v == VisibilityPublic || v == VisibilityProtected
	default:
		return v == VisibilityPublic
	}
}

// Excluded matches file against shell-glob patterns. Both the path as stored and
// its cleaned slash form are tried, so "vendor/**" matches "./vendor/a.rb".
func Excluded(file string, patterns []string) bool {
	if file == "" || len(patterns) == 0 {
		return false
	}
	candidates := []string{file, normPath(file)}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		for _, c := range candidates {
			if ok, err := doublestar.Match(p, c); err == nil && ok {
				return true
			}
			if ok, err := doublestar.Match(normPath(p), c); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func normPath(p string) string {
	p = filepath.ToSlash(filepath.Clean(strings.TrimSpace(p)))
	return strings.TrimPrefix(p, "./")
}
