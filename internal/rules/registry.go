package rules

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

var (
	mu        sync.RWMutex
	registry  []Rule
	ruleIndex = map[string]int{} // ruleID -> index
)

// Register adds r to the table, replacing an earlier rule with the same ID.
func Register(r Rule) {
	mu.Lock()
	defer mu.Unlock()
	id := strings.TrimSpace(r.ID)
	r.ID = id
	if idx, ok := ruleIndex[id]; ok {
		registry[idx] = r
		return
	}
	registry = append(registry, r)
	ruleIndex[id] = len(registry) - 1
}

// List returns every registered rule sorted by ID. This is the execution order.
func List() []Rule {
	mu.RLock()
	out := make([]Rule, len(registry))
	copy(out, registry)
	mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a rule by ID if registered.
func Get(id string) (Rule, bool) {
	mu.RLock()
	defer mu.RUnlock()
	idx, ok := ruleIndex[strings.TrimSpace(id)]
	if !ok || idx < 0 || idx >= len(registry) {
		return Rule{}, false
	}
	return registry[idx], true
}

// Unregister removes a rule; used when a rule pack is reloaded.
func Unregister(id string) {
	mu.Lock()
	defer mu.Unlock()
	idx, ok := ruleIndex[strings.TrimSpace(id)]
	if !ok {
		return
	}
	registry = append(registry[:idx], registry[idx+1:]...)
	delete(ruleIndex, strings.TrimSpace(id))
	for i := idx; i < len(registry); i++ {
		ruleIndex[registry[i].ID] = i
	}
}

// DisplayName is the rule's Name, or its ID with separators removed
// ("Tags/Order" -> "TagsOrder").
func DisplayName(r Rule) string {
	if r.Name != "" {
		return r.Name
	}
	var b strings.Builder
	upper := true
	for _, c := range r.ID {
		if c == '/' || c == '_' || c == '-' || c == ' ' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(c))
			upper = false
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Group returns the first segment of a rule ID.
func Group(id string) string {
	if i := strings.IndexByte(id, '/'); i > 0 {
		return id[:i]
	}
	return id
}
