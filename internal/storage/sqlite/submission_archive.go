package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSubmissionNotFound indicates the requested archive entry does not exist
var ErrSubmissionNotFound = errors.New("submission not found")

// ArchivedSubmission is the durable, cross-user record of one evaluation.
// The per-user submission history (including source code) lives in the
// progress store; the archive keeps only the outcome for analytics.
type ArchivedSubmission struct {
	ID          string
	UserID      string
	ProblemID   string
	Language    string
	Passed      bool
	TestsTotal  int
	TestsPassed int
	SubmittedAt time.Time
}

// ProblemActivity aggregates archive rows for one problem
type ProblemActivity struct {
	ProblemID   string
	Submissions int
	Accepted    int
}

// SubmissionArchive implements submission outcome persistence backed by SQLite.
type SubmissionArchive struct {
	db *DB
}

// NewSubmissionArchive creates a new SQLite-backed submission archive.
func NewSubmissionArchive(db *DB) *SubmissionArchive {
	return &SubmissionArchive{db: db}
}

// Append records one evaluation outcome. Entries are never updated or removed.
func (a *SubmissionArchive) Append(ctx context.Context, sub *ArchivedSubmission) error {
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO submissions (id, user_id, problem_id, language, passed,
			tests_total, tests_passed, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.ProblemID, sub.Language, boolToInt(sub.Passed),
		sub.TestsTotal, sub.TestsPassed, sub.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Get retrieves one archive entry by ID.
func (a *SubmissionArchive) Get(ctx context.Context, id string) (*ArchivedSubmission, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, user_id, problem_id, language, passed, tests_total, tests_passed, submitted_at
		FROM submissions WHERE id = ?`, id)
	return scanSubmission(row)
}

// Recent returns the newest entries across all problems, newest first.
func (a *SubmissionArchive) Recent(ctx context.Context, limit int) ([]*ArchivedSubmission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, user_id, problem_id, language, passed, tests_total, tests_passed, submitted_at
		FROM submissions ORDER BY submitted_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent submissions: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

// RecentByUser returns the newest entries for one user, newest first.
func (a *SubmissionArchive) RecentByUser(ctx context.Context, userID string, limit int) ([]*ArchivedSubmission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, user_id, problem_id, language, passed, tests_total, tests_passed, submitted_at
		FROM submissions WHERE user_id = ?
		ORDER BY submitted_at DESC, id LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user submissions: %w", err)
	}
	defer rows.Close()
	return collectSubmissions(rows)
}

// CountByUser returns total and accepted entry counts for one user.
func (a *SubmissionArchive) CountByUser(ctx context.Context, userID string) (total, accepted int, err error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(passed), 0)
		FROM submissions WHERE user_id = ?`, userID)
	if err := row.Scan(&total, &accepted); err != nil {
		return 0, 0, fmt.Errorf("count user submissions: %w", err)
	}
	return total, accepted, nil
}

// ActivityByProblem aggregates submission and acceptance counts per problem.
func (a *SubmissionArchive) ActivityByProblem(ctx context.Context) ([]ProblemActivity, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT problem_id, COUNT(*), COALESCE(SUM(passed), 0)
		FROM submissions GROUP BY problem_id ORDER BY problem_id`)
	if err != nil {
		return nil, fmt.Errorf("aggregate submissions: %w", err)
	}
	defer rows.Close()

	var activity []ProblemActivity
	for rows.Next() {
		var pa ProblemActivity
		if err := rows.Scan(&pa.ProblemID, &pa.Submissions, &pa.Accepted); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		activity = append(activity, pa)
	}
	return activity, rows.Err()
}

func scanSubmission(row *sql.Row) (*ArchivedSubmission, error) {
	var sub ArchivedSubmission
	var passed int
	err := row.Scan(&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language,
		&passed, &sub.TestsTotal, &sub.TestsPassed, &sub.SubmittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.Passed = passed != 0
	return &sub, nil
}

func collectSubmissions(rows *sql.Rows) ([]*ArchivedSubmission, error) {
	var subs []*ArchivedSubmission
	for rows.Next() {
		var sub ArchivedSubmission
		var passed int
		err := rows.Scan(&sub.ID, &sub.UserID, &sub.ProblemID, &sub.Language,
			&passed, &sub.TestsTotal, &sub.TestsPassed, &sub.SubmittedAt)
		if err != nil {
			return nil, fmt.Errorf("scan submission row: %w", err)
		}
		sub.Passed = passed != 0
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
