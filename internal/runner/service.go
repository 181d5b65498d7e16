package runner

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/codeforge-dev/codeforge/internal/domain"
	"github.com/codeforge-dev/codeforge/internal/progress"
	"github.com/codeforge-dev/codeforge/internal/storage/sqlite"
)

// DefaultPassRate is the probability a test case with no known output
// passes anyway. The mock executor cannot actually tell whether the
// user's code is correct, so unknown inputs resolve to a weighted coin,
// which keeps the demo loop interesting.
const DefaultPassRate = 0.7

// anonymousUserID marks archive rows recorded while logged out
const anonymousUserID = "anonymous"

// Service evaluates a solution against a problem's test cases and records
// the outcome: solved/attempted marking and submission history in the
// progress store, plus a row in the submission archive when one is
// configured.
type Service struct {
	executor Executor
	store    *progress.Store
	archive  *sqlite.SubmissionArchive
	logger   *slog.Logger
	passRate float64

	randFloat func() float64
}

// NewService creates an evaluation service. archive may be nil; passRate
// outside (0, 1] falls back to DefaultPassRate.
func NewService(executor Executor, store *progress.Store, archive *sqlite.SubmissionArchive, passRate float64, logger *slog.Logger) *Service {
	if passRate <= 0 || passRate > 1 {
		passRate = DefaultPassRate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		executor:  executor,
		store:     store,
		archive:   archive,
		logger:    logger,
		passRate:  passRate,
		randFloat: rand.Float64,
	}
}

// Evaluation is the classified outcome of one run: per-case results and
// the counts the notification surface needs. The submission is the record
// appended to the problem's history.
type Evaluation struct {
	Results     []domain.TestResult   `json:"results"`
	Passed      bool                  `json:"passed"`
	TestsPassed int                   `json:"tests_passed"`
	TestsTotal  int                   `json:"tests_total"`
	Submission  domain.CodeSubmission `json:"submission"`
}

// Evaluate runs code against every test case of the problem. All cases
// passing marks the problem solved, anything else marks it attempted;
// either way the submission is appended to the history.
func (s *Service) Evaluate(ctx context.Context, problem *domain.Problem, language, code string) (*Evaluation, error) {
	results := make([]domain.TestResult, 0, len(problem.TestCases))
	passedCount := 0

	for _, testCase := range problem.TestCases {
		output, err := s.executor.Execute(ctx, language, code, testCase.Input)
		if err != nil {
			return nil, fmt.Errorf("execute test input %q: %w", testCase.Input, err)
		}

		result := domain.TestResult{
			Input:           testCase.Input,
			ExpectedOutput:  testCase.ExpectedOutput,
			ActualOutput:    output,
			ExecutionTimeMs: 10 + int(s.randFloat()*100),
		}
		if output == OutputUnavailable {
			// No reference output for this input; weighted coin.
			result.Passed = s.randFloat() < s.passRate
			if result.Passed {
				result.ActualOutput = testCase.ExpectedOutput
			}
		} else {
			result.Passed = output == testCase.ExpectedOutput
		}
		if result.Passed {
			passedCount++
		}
		results = append(results, result)
	}

	allPassed := len(results) > 0 && passedCount == len(results)
	if allPassed {
		s.store.MarkProblemSolved(problem.ID)
	} else {
		s.store.MarkProblemAttempted(problem.ID)
	}

	submission := s.store.AddSubmission(problem.ID, domain.CodeSubmission{
		Code:        code,
		Language:    language,
		Passed:      allPassed,
		TestResults: results,
	})

	s.archiveSubmission(ctx, problem.ID, language, submission, passedCount, len(results))

	return &Evaluation{
		Results:     results,
		Passed:      allPassed,
		TestsPassed: passedCount,
		TestsTotal:  len(results),
		Submission:  submission,
	}, nil
}

// archiveSubmission records the run in the cross-user archive. The
// archive is analytics, not source of truth: failures are logged and the
// evaluation stands.
func (s *Service) archiveSubmission(ctx context.Context, problemID, language string, submission domain.CodeSubmission, testsPassed, testsTotal int) {
	if s.archive == nil {
		return
	}

	userID := anonymousUserID
	if user, ok := s.store.CurrentUser(); ok {
		userID = user.ID
	}

	err := s.archive.Append(ctx, &sqlite.ArchivedSubmission{
		ID:          submission.ID,
		UserID:      userID,
		ProblemID:   problemID,
		Language:    language,
		Passed:      submission.Passed,
		TestsTotal:  testsTotal,
		TestsPassed: testsPassed,
		SubmittedAt: time.UnixMilli(submission.Timestamp),
	})
	if err != nil {
		s.logger.Warn("archive submission failed",
			"submission_id", submission.ID,
			"problem_id", problemID,
			"error", err)
	}
}
