package catalog

import (
	"sort"
	"testing"
	"testing/fstest"

	"github.com/codeforge-dev/codeforge/internal/domain"
)

func loadedRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry(NewLoader(Builtin()))
	if err := registry.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return registry
}

func TestRegistry_LoadBuiltin(t *testing.T) {
	registry := loadedRegistry(t)

	if registry.Count() != 10 {
		t.Errorf("Count() = %d; want 10", registry.Count())
	}
	if registry.Pack().ID != "core" {
		t.Errorf("Pack().ID = %s; want core", registry.Pack().ID)
	}

	// Manifest order is display order.
	problems := registry.Problems()
	if problems[0].ID != "two-sum" {
		t.Errorf("first problem = %s; want two-sum", problems[0].ID)
	}

	p, ok := registry.Problem("median-two-sorted-arrays")
	if !ok {
		t.Fatal("Problem(median-two-sorted-arrays) not found")
	}
	if p.Difficulty != domain.DifficultyHard {
		t.Errorf("difficulty = %s; want Hard", p.Difficulty)
	}
	if len(p.TestCases) != 2 {
		t.Errorf("test cases = %d; want 2", len(p.TestCases))
	}
}

func TestRegistry_AllTagsSortedDistinct(t *testing.T) {
	tags := loadedRegistry(t).AllTags()

	if len(tags) == 0 {
		t.Fatal("AllTags() returned no tags")
	}
	if !sort.StringsAreSorted(tags) {
		t.Errorf("AllTags() = %v; want sorted", tags)
	}
	seen := make(map[string]bool)
	for _, tag := range tags {
		if seen[tag] {
			t.Errorf("duplicate tag %s", tag)
		}
		seen[tag] = true
	}
}

func TestRegistry_Load_DuplicateID(t *testing.T) {
	fsys := fstest.MapFS{
		"pack.yaml": &fstest.MapFile{Data: []byte("id: p\nname: P\nproblems:\n  - a\n  - b\n")},
		"a.yaml":    &fstest.MapFile{Data: []byte("id: same\ntitle: A\ndifficulty: Easy\n")},
		"b.yaml":    &fstest.MapFile{Data: []byte("id: same\ntitle: B\ndifficulty: Easy\n")},
	}

	registry := NewRegistry(NewLoader(fsys))
	if err := registry.Load(); err == nil {
		t.Fatal("Load() error = nil; want duplicate id error")
	}
}

func TestRegistry_Stats(t *testing.T) {
	stats := loadedRegistry(t).Stats()

	if stats.ProblemCount != 10 {
		t.Errorf("ProblemCount = %d; want 10", stats.ProblemCount)
	}
	total := 0
	for _, n := range stats.ByDifficulty {
		total += n
	}
	if total != stats.ProblemCount {
		t.Errorf("difficulty counts sum to %d; want %d", total, stats.ProblemCount)
	}
	if stats.ByDifficulty[string(domain.DifficultyHard)] != 1 {
		t.Errorf("Hard count = %d; want 1", stats.ByDifficulty[string(domain.DifficultyHard)])
	}
}

func TestRegistry_FilteredIntegration(t *testing.T) {
	registry := loadedRegistry(t)
	view := &fakeView{solved: map[string]bool{"two-sum": true}}

	got := registry.Filtered(view, Filters{Status: []Status{StatusSolved}})
	if len(got) != 1 || got[0].ID != "two-sum" {
		t.Errorf("Filtered() = %v; want [two-sum]", ids(got))
	}

	p, ok := registry.ByID(view, "two-sum")
	if !ok || !p.Solved {
		t.Errorf("ByID(two-sum) = %+v, %v; want solved copy", p, ok)
	}
}
