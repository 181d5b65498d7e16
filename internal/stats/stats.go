package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/codeforge-dev/codeforge/internal/catalog"
	"github.com/codeforge-dev/codeforge/internal/domain"
	"github.com/codeforge-dev/codeforge/internal/progress"
	"github.com/codeforge-dev/codeforge/internal/storage/sqlite"
)

// recentActivityLimit caps the dashboard's activity feed
const recentActivityLimit = 10

// Service computes analytics over the catalog, the active progress, and
// the submission archive.
type Service struct {
	registry *catalog.Registry
	store    *progress.Store
	archive  *sqlite.SubmissionArchive
}

// NewService creates a stats service. archive may be nil, in which case
// the overview carries no activity feed.
func NewService(registry *catalog.Registry, store *progress.Store, archive *sqlite.SubmissionArchive) *Service {
	return &Service{
		registry: registry,
		store:    store,
		archive:  archive,
	}
}

// DifficultyCount pairs solved against available for one difficulty
type DifficultyCount struct {
	Solved int `json:"solved"`
	Total  int `json:"total"`
}

// Activity is one row of the dashboard's recent-activity feed
type Activity struct {
	SubmissionID string    `json:"submission_id"`
	ProblemID    string    `json:"problem_id"`
	ProblemTitle string    `json:"problem_title"`
	Language     string    `json:"language"`
	Passed       bool      `json:"passed"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// Overview is the dashboard summary for the active progress
type Overview struct {
	TotalProblems   int                        `json:"total_problems"`
	TotalSolved     int                        `json:"total_solved"`
	TotalAttempted  int                        `json:"total_attempted"`
	TotalBookmarked int                        `json:"total_bookmarked"`
	CompletionRate  float64                    `json:"completion_rate"`
	ByDifficulty    map[string]DifficultyCount `json:"by_difficulty"`
	Streak          domain.Streak              `json:"streak"`
	RecentActivity  []Activity                 `json:"recent_activity"`
}

// Overview builds the dashboard summary: solved counts split by
// difficulty, completion percentage, streak counters, and the most recent
// archived runs for the active identity.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	solved := s.store.SolvedProblems()
	solvedSet := make(map[string]bool, len(solved))
	for _, id := range solved {
		solvedSet[id] = true
	}

	byDifficulty := map[string]DifficultyCount{
		string(domain.DifficultyEasy):   {},
		string(domain.DifficultyMedium): {},
		string(domain.DifficultyHard):   {},
	}
	for _, p := range s.registry.Problems() {
		count := byDifficulty[string(p.Difficulty)]
		count.Total++
		if solvedSet[p.ID] {
			count.Solved++
		}
		byDifficulty[string(p.Difficulty)] = count
	}

	overview := &Overview{
		TotalProblems:   s.registry.Count(),
		TotalSolved:     len(solved),
		TotalAttempted:  len(s.store.AttemptedProblems()),
		TotalBookmarked: len(s.store.BookmarkedProblems()),
		ByDifficulty:    byDifficulty,
		Streak:          s.store.Streak(),
		RecentActivity:  []Activity{},
	}
	if overview.TotalProblems > 0 {
		overview.CompletionRate = float64(overview.TotalSolved) / float64(overview.TotalProblems) * 100
	}

	activity, err := s.recentActivity(ctx)
	if err != nil {
		return nil, err
	}
	overview.RecentActivity = activity
	return overview, nil
}

func (s *Service) recentActivity(ctx context.Context) ([]Activity, error) {
	if s.archive == nil {
		return []Activity{}, nil
	}

	var (
		rows []*sqlite.ArchivedSubmission
		err  error
	)
	if user, ok := s.store.CurrentUser(); ok {
		rows, err = s.archive.RecentByUser(ctx, user.ID, recentActivityLimit)
	} else {
		rows, err = s.archive.Recent(ctx, recentActivityLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("load recent activity: %w", err)
	}

	activity := make([]Activity, 0, len(rows))
	for _, row := range rows {
		title := row.ProblemID
		if p, ok := s.registry.Problem(row.ProblemID); ok {
			title = p.Title
		}
		activity = append(activity, Activity{
			SubmissionID: row.ID,
			ProblemID:    row.ProblemID,
			ProblemTitle: title,
			Language:     row.Language,
			Passed:       row.Passed,
			SubmittedAt:  row.SubmittedAt,
		})
	}
	return activity, nil
}

// LeaderboardEntry is one ranked row: an account with its solve count and
// streak.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Solved   int    `json:"solved"`
	Streak   int    `json:"streak"`
}

// Leaderboard ranks every registered account by solved count, ties broken
// by username for a stable order.
func (s *Service) Leaderboard() []LeaderboardEntry {
	users := s.store.Users()

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		entry := LeaderboardEntry{
			UserID:   user.ID,
			Username: user.Username,
			Name:     user.Name,
			Avatar:   user.Avatar,
		}
		if user.Progress != nil {
			entry.Solved = len(user.Progress.Solved)
			entry.Streak = user.Progress.Streak.Current
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Solved != entries[j].Solved {
			return entries[i].Solved > entries[j].Solved
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
