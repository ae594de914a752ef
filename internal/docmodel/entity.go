package docmodel

import "strings"

const Version = "1.0"

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
	// VisibilityAll is a query scope, never an entity visibility.
	VisibilityAll Visibility = "all"
)

type Kind string

const (
	KindModule   Kind = "module"
	KindClass    Kind = "class"
	KindMethod   Kind = "method"
	KindConstant Kind = "constant"
)

// Graph is the object graph dumped by the external documentation engine.
type Graph struct {
	Version  string   `json:"version,omitempty"`
	Source   string   `json:"source,omitempty"`
	Entities []Entity `json:"objects"`
}

type Entity struct {
	Path       string      `json:"path"`
	Kind       Kind        `json:"type"`
	File       string      `json:"file,omitempty"`
	Line       int         `json:"line,omitempty"`
	Visibility Visibility  `json:"visibility,omitempty"`
	Docstring  string      `json:"docstring,omitempty"`
	Tags       []Tag       `json:"tags,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

type Tag struct {
	TagName string   `json:"tag_name"`
	Name    string   `json:"name,omitempty"` // @param/@option target
	Types   []string `json:"types,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type Parameter struct {
	Name    string `json:"name"`
	Default string `json:"default,omitempty"`
}

// Title is the identity printed on protocol location lines.
func (e Entity) Title() string { return e.Path }

// Locatable reports whether offenses can be reported against e.
func (e Entity) Locatable() bool { return e.File != "" && e.Line > 0 }

func (e Entity) Documented() bool {
	return strings.TrimSpace(e.Docstring) != "" || len(e.Tags) > 0
}

func (e Entity) IsMethod() bool { return e.Kind == KindMethod }

// TagsNamed returns the tags with the given tag name, in declaration order.
func (e Entity) TagsNamed(name string) []Tag {
	var out []Tag
	for _, t := range e.Tags {
		if t.TagName == name {
			out = append(out, t)
		}
	}
	return out
}

// EffectiveVisibility treats an unset visibility as public.
func (e Entity) EffectiveVisibility() Visibility {
	if e.Visibility == "" {
		return VisibilityPublic
	}
	return e.Visibility
}
