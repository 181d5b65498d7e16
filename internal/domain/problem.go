package domain

// Difficulty represents problem difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Problem is a single catalog entry. The catalog is fixed at build time;
// the Solved/Attempted/Bookmarked flags are derived per query and only
// ever set on copies, never on the catalog's own records.
type Problem struct {
	ID              string     `json:"id" yaml:"id"`
	Title           string     `json:"title" yaml:"title"`
	Difficulty      Difficulty `json:"difficulty" yaml:"difficulty"`
	Description     string     `json:"description" yaml:"description"`
	Constraints     []string   `json:"constraints" yaml:"constraints"`
	Examples        []Example  `json:"examples" yaml:"examples"`
	TestCases       []TestCase `json:"test_cases" yaml:"test_cases"`
	Tags            []string   `json:"tags" yaml:"tags"`
	Acceptance      float64    `json:"acceptance" yaml:"acceptance"`
	Submissions     int        `json:"submissions" yaml:"submissions"`
	Hints           []string   `json:"hints,omitempty" yaml:"hints"`
	Solution        string     `json:"solution,omitempty" yaml:"solution"`
	TimeComplexity  string     `json:"time_complexity,omitempty" yaml:"time_complexity"`
	SpaceComplexity string     `json:"space_complexity,omitempty" yaml:"space_complexity"`
	Companies       []string   `json:"companies,omitempty" yaml:"companies"`

	// Derived per query from the active progress.
	Solved     bool `json:"solved" yaml:"-"`
	Attempted  bool `json:"attempted" yaml:"-"`
	Bookmarked bool `json:"bookmarked" yaml:"-"`
}

// Example is a worked input/output pair shown in the problem statement
type Example struct {
	Input       string `json:"input" yaml:"input"`
	Output      string `json:"output" yaml:"output"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation"`
}

// TestCase is a single evaluation case for a problem
type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expected_output" yaml:"expected_output"`
}

// TestResult is the outcome of running one test case
type TestResult struct {
	Input           string `json:"input"`
	ExpectedOutput  string `json:"expected_output"`
	ActualOutput    string `json:"actual_output"`
	Passed          bool   `json:"passed"`
	ExecutionTimeMs int    `json:"execution_time_ms,omitempty"`
}
