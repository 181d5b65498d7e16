package domain

// UserProgress is the mutable record of one user's interaction history
// with the catalog. Solved and attempted are disjoint sets: solving a
// problem removes it from attempted, and attempting a solved problem is
// a no-op.
type UserProgress struct {
	Solved        []string                     `json:"solved"`
	Attempted     []string                     `json:"attempted"`
	Bookmarked    []string                     `json:"bookmarked"`
	CodeByProblem map[string]map[string]string `json:"code_by_problem"` // problem ID -> language -> source
	Submissions   map[string][]CodeSubmission  `json:"submissions"`     // problem ID -> chronological submissions
	Sessions      map[string]*ProblemSession   `json:"sessions"`        // problem ID -> last session
	Streak        Streak                       `json:"streak"`
}

// NewUserProgress returns an empty progress record
func NewUserProgress() *UserProgress {
	return &UserProgress{
		Solved:        []string{},
		Attempted:     []string{},
		Bookmarked:    []string{},
		CodeByProblem: make(map[string]map[string]string),
		Submissions:   make(map[string][]CodeSubmission),
		Sessions:      make(map[string]*ProblemSession),
	}
}

// CodeSubmission is an immutable snapshot of code plus its evaluated
// outcome. Timestamp is milliseconds since epoch, set by the store.
type CodeSubmission struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Language    string       `json:"language"`
	Timestamp   int64        `json:"timestamp"`
	Passed      bool         `json:"passed"`
	TestResults []TestResult `json:"test_results,omitempty"`
}

// ProblemSession tracks a timed interval of active work on one problem.
// StartedAt is milliseconds since epoch; zero means the session is not
// currently running, so ending it again accumulates nothing.
type ProblemSession struct {
	StartedAt   int64 `json:"start_time"`
	TotalTimeMs int64 `json:"total_time"`
	HintsUsed   int   `json:"hints_used"`
}

// Streak tracks consecutive-day solve counts. LastSolvedDate is a local
// calendar date in 2006-01-02 form.
type Streak struct {
	Current        int    `json:"current"`
	Longest        int    `json:"longest"`
	LastSolvedDate string `json:"last_solved_date,omitempty"`
}
