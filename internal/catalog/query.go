package catalog

import (
	"strings"

	"github.com/codeforge-dev/codeforge/internal/domain"
)

// Status is the derived progress state of a problem for one user
type Status string

const (
	StatusSolved     Status = "Solved"
	StatusAttempted  Status = "Attempted"
	StatusNotStarted Status = "Not Started"
)

// Filters is the set of active selection criteria applied to the
// catalog for display. An empty dimension is inactive; the zero value
// matches everything.
type Filters struct {
	Difficulty []domain.Difficulty `json:"difficulty"`
	Tags       []string            `json:"tags"`
	Status     []Status            `json:"status"`
	Search     string              `json:"search"`
}

// ProgressView is the read surface the query functions need from the
// progress store.
type ProgressView interface {
	IsSolved(problemID string) bool
	IsAttempted(problemID string) bool
	IsBookmarked(problemID string) bool
}

// FilteredProblems projects the catalog through the user's progress and
// the filter criteria. Every retained entry is a copy annotated with its
// derived solved/attempted/bookmarked flags; the inputs are never
// mutated, and catalog order is preserved. All active dimensions must
// match; within the tag dimension any overlap suffices.
func FilteredProblems(problems []*domain.Problem, view ProgressView, filters Filters) []*domain.Problem {
	result := make([]*domain.Problem, 0, len(problems))
	for _, p := range problems {
		annotated := annotate(p, view)
		if matches(annotated, filters) {
			result = append(result, annotated)
		}
	}
	return result
}

// ProblemByID resolves a single catalog entry, annotated the same way
// FilteredProblems annotates list entries. The second return is false
// when no entry has that identifier.
func ProblemByID(problems []*domain.Problem, view ProgressView, id string) (*domain.Problem, bool) {
	for _, p := range problems {
		if p.ID == id {
			return annotate(p, view), true
		}
	}
	return nil, false
}

func annotate(p *domain.Problem, view ProgressView) *domain.Problem {
	annotated := *p
	if view != nil {
		annotated.Solved = view.IsSolved(p.ID)
		annotated.Attempted = view.IsAttempted(p.ID)
		annotated.Bookmarked = view.IsBookmarked(p.ID)
	}
	return &annotated
}

func matches(p *domain.Problem, filters Filters) bool {
	if len(filters.Difficulty) > 0 && !containsDifficulty(filters.Difficulty, p.Difficulty) {
		return false
	}

	if len(filters.Tags) > 0 && !sharesTag(filters.Tags, p.Tags) {
		return false
	}

	if len(filters.Status) > 0 && !containsStatus(filters.Status, statusOf(p)) {
		return false
	}

	if filters.Search != "" &&
		!strings.Contains(strings.ToLower(p.Title), strings.ToLower(filters.Search)) {
		return false
	}

	return true
}

// statusOf derives the display status. Solved wins over attempted.
func statusOf(p *domain.Problem) Status {
	switch {
	case p.Solved:
		return StatusSolved
	case p.Attempted:
		return StatusAttempted
	default:
		return StatusNotStarted
	}
}

func containsDifficulty(haystack []domain.Difficulty, needle domain.Difficulty) bool {
	for _, d := range haystack {
		if d == needle {
			return true
		}
	}
	return false
}

func containsStatus(haystack []Status, needle Status) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func sharesTag(wanted, have []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
