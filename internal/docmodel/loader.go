package docmodel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Diagnostics struct {
	Warnings []string
}

// Load reads a graph dump. A directory is walked and every *.json file in it is
// merged into one graph; unreadable dumps become warnings, not errors.
func Load(path string) (Graph, Diagnostics, error) {
	var g Graph
	g.Version = Version
	g.Source = filepath.Clean(path)
	diags := Diagnostics{}

	info, err := os.Stat(path)
	if err != nil {
		return g, diags, fmt.Errorf("stat graph: %w", err)
	}
	if !info.IsDir() {
		part, err := loadFile(path)
		if err != nil {
			return g, diags, err
		}
		g.Entities = part.Entities
		return g, diags, nil
	}

	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}
		part, perr := loadFile(p)
		if perr != nil {
			diags.Warnings = append(diags.Warnings, perr.Error())
			return nil
		}
		g.Entities = append(g.Entities, part.Entities...)
		return nil
	})

	if len(g.Entities) == 0 {
		diags.Warnings = append(diags.Warnings, "no documentation objects found")
	}
	return g, diags, nil
}

func loadFile(p string) (Graph, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return Graph{}, fmt.Errorf("read graph %s: %w", p, err)
	}
	var g Graph
	if err := json.Unmarshal(b, &g); err != nil {
		return Graph{}, fmt.Errorf("decode graph %s: %w", p, err)
	}
	return g, nil
}

// DiscoverFiles walks root and returns files with one of the given extensions,
// sorted. A root that is a file is returned as-is.
func DiscoverFiles(root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}
	var out []string
	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if len(want) == 0 || want[strings.ToLower(filepath.Ext(p))] {
			out = append(out, p)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
