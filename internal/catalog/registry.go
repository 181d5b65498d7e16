package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/codeforge-dev/codeforge/internal/domain"
)

// Registry provides read access to the loaded problem catalog. Problems
// keep their pack manifest order, which is the display order everywhere.
type Registry struct {
	loader *Loader

	mu       sync.RWMutex
	pack     *Pack
	problems []*domain.Problem
	byID     map[string]*domain.Problem
	tags     []string
	loaded   bool
}

// NewRegistry creates a new catalog registry
func NewRegistry(loader *Loader) *Registry {
	return &Registry{
		loader: loader,
		byID:   make(map[string]*domain.Problem),
	}
}

// Load loads the pack and all problems into memory
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pack, problems, err := r.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	byID := make(map[string]*domain.Problem, len(problems))
	tagSet := make(map[string]struct{})
	for _, p := range problems {
		if _, dup := byID[p.ID]; dup {
			return fmt.Errorf("load catalog: duplicate problem id %s", p.ID)
		}
		byID[p.ID] = p
		for _, tag := range p.Tags {
			tagSet[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	r.pack = pack
	r.problems = problems
	r.byID = byID
	r.tags = tags
	r.loaded = true
	return nil
}

// Pack returns the loaded pack manifest
func (r *Registry) Pack() *Pack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pack
}

// Problems returns the catalog in display order. Callers must not
// mutate the returned entries; use the query functions for annotated
// copies.
func (r *Registry) Problems() []*domain.Problem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.problems
}

// Problem returns the raw catalog entry for an ID
func (r *Registry) Problem(id string) (*domain.Problem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// AllTags returns the sorted set of distinct tags across the catalog
func (r *Registry) AllTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tags
}

// Count returns the number of loaded problems
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.problems)
}

// Filtered projects the catalog through progress and filters, in
// catalog order. Convenience over the pure query functions.
func (r *Registry) Filtered(view ProgressView, filters Filters) []*domain.Problem {
	return FilteredProblems(r.Problems(), view, filters)
}

// ByID resolves one problem annotated with progress flags
func (r *Registry) ByID(view ProgressView, id string) (*domain.Problem, bool) {
	return ProblemByID(r.Problems(), view, id)
}

// Stats returns difficulty distribution for the loaded catalog
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		ProblemCount: len(r.problems),
		ByDifficulty: make(map[string]int),
	}
	for _, p := range r.problems {
		stats.ByDifficulty[string(p.Difficulty)]++
	}
	return stats
}

// RegistryStats holds statistics about the loaded catalog
type RegistryStats struct {
	ProblemCount int
	ByDifficulty map[string]int
}
