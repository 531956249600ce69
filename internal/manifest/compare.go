// Package manifest records which pages a generation run wrote so the next
// run can find and prune pages that are no longer produced.
package manifest

import (
	"path"
	"strings"
	"time"
)

// Entry kinds besides the combination kinds.
const (
	TypeHub          = "hub"
	TypeCompanyIndex = "company-index"
	TypeTopicIndex   = "topic-index"
)

// Entry is one generated page directory, relative to the output root.
type Entry struct {
	Slug string `json:"slug"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// Manifest is the record of one generation run.
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	BaseURL     string    `json:"base_url"`
	Pages       []Entry   `json:"pages"`
}

// DiffStats captures stats for a current-vs-previous comparison.
type DiffStats struct {
	TotalCurrent    int
	TotalPrevious   int
	InvalidCurrent  int
	InvalidPrevious int
	Added           int
	Stale           int
}

// InvalidSkipped returns the total invalid entries skipped during comparison.
func (s DiffStats) InvalidSkipped() int {
	return s.InvalidCurrent + s.InvalidPrevious
}

// Key normalizes an entry path. Entries without a usable path, or with one
// escaping the output root, have no key.
func Key(e Entry) (string, bool) {
	p := strings.TrimSpace(e.Path)
	if p == "" {
		return "", false
	}
	p = path.Clean("/" + strings.ToLower(strings.ReplaceAll(p, "\\", "/")))
	if p == "/" {
		return "", false
	}
	return strings.TrimPrefix(p, "/"), true
}

// Diff returns the previous entries that the current run no longer writes.
func Diff(current []Entry, previous []Entry) ([]Entry, DiffStats) {
	stats := DiffStats{
		TotalCurrent:  len(current),
		TotalPrevious: len(previous),
	}

	currentKeys := make(map[string]struct{}, len(current))
	for _, e := range current {
		key, ok := Key(e)
		if !ok {
			stats.InvalidCurrent++
			continue
		}
		currentKeys[key] = struct{}{}
	}

	previousKeys := make(map[string]struct{}, len(previous))
	stale := make([]Entry, 0)
	for _, e := range previous {
		key, ok := Key(e)
		if !ok {
			stats.InvalidPrevious++
			continue
		}
		if _, exists := previousKeys[key]; exists {
			continue
		}
		previousKeys[key] = struct{}{}
		if _, exists := currentKeys[key]; exists {
			continue
		}
		stale = append(stale, e)
	}

	for key := range currentKeys {
		if _, exists := previousKeys[key]; !exists {
			stats.Added++
		}
	}

	stats.Stale = len(stale)
	return stale, stats
}
