package rules

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// tagIndexes memoizes tag-name -> position dictionaries built from configured
// tag lists. Keys are the joined list, so a config change never sees stale data.
var tagIndexes = mustTagCache()

func mustTagCache() *lru.Cache[string, map[string]int] {
	c, err := lru.New[string, map[string]int](64)
	if err != nil {
		panic("rules: tag cache: " + err.Error())
	}
	return c
}

func tagIndex(tags []string) map[string]int {
	key := strings.Join(tags, "\x00")
	if idx, ok := tagIndexes.Get(key); ok {
		return idx
	}
	idx := make(map[string]int, len(tags))
	for i, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "@")
		if _, dup := idx[t]; !dup {
			idx[t] = i
		}
	}
	tagIndexes.Add(key, idx)
	return idx
}

// ResetCaches drops every memoized dictionary held by the built-in rules.
func ResetCaches() {
	tagIndexes.Purge()
}

// CachedDictionaries reports how many dictionaries are memoized.
func CachedDictionaries() int { return tagIndexes.Len() }
