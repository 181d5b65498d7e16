package main

import (
	"fmt"
	"strings"
)

func cmdStats(args []string) error {
	if len(args) > 0 && (args[0] == "board" || args[0] == "leaderboard") {
		return cmdLeaderboard()
	}
	return cmdStatsOverview()
}

func cmdStatsOverview() error {
	var overview struct {
		TotalProblems  int     `json:"total_problems"`
		TotalSolved    int     `json:"total_solved"`
		TotalAttempted int     `json:"total_attempted"`
		CompletionRate float64 `json:"completion_rate"`
		ByDifficulty   map[string]struct {
			Solved int `json:"solved"`
			Total  int `json:"total"`
		} `json:"by_difficulty"`
		Streak struct {
			Current int `json:"current"`
			Longest int `json:"longest"`
		} `json:"streak"`
	}
	if err := getJSON("/v1/stats/overview", &overview); err != nil {
		return fmt.Errorf("get stats (is the daemon running?): %w", err)
	}

	fmt.Println("Progress Overview")
	fmt.Println("-----------------")
	fmt.Printf("Solved:     %d / %d (%.1f%%)\n",
		overview.TotalSolved, overview.TotalProblems, overview.CompletionRate)
	fmt.Printf("Attempted:  %d\n", overview.TotalAttempted)
	fmt.Printf("Streak:     %d current / %d longest\n",
		overview.Streak.Current, overview.Streak.Longest)
	fmt.Println()

	for _, difficulty := range []string{"Easy", "Medium", "Hard"} {
		count := overview.ByDifficulty[difficulty]
		bar := renderProgressBar(ratio(count.Solved, count.Total), 20)
		fmt.Printf("%-7s %s %d/%d\n", difficulty, bar, count.Solved, count.Total)
	}
	return nil
}

func cmdLeaderboard() error {
	var resp struct {
		Leaderboard []struct {
			Rank     int    `json:"rank"`
			Username string `json:"username"`
			Solved   int    `json:"solved"`
			Streak   int    `json:"streak"`
		} `json:"leaderboard"`
	}
	if err := getJSON("/v1/stats/leaderboard", &resp); err != nil {
		return fmt.Errorf("get leaderboard: %w", err)
	}

	if len(resp.Leaderboard) == 0 {
		fmt.Println("No registered users yet.")
		return nil
	}

	fmt.Printf("%-5s %-20s %-8s %s\n", "Rank", "User", "Solved", "Streak")
	for _, entry := range resp.Leaderboard {
		fmt.Printf("%-5d %-20s %-8d %d\n",
			entry.Rank, entry.Username, entry.Solved, entry.Streak)
	}
	return nil
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// renderProgressBar creates a fixed-width bar like [████······]
func renderProgressBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}
