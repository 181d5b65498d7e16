package progress

import (
	"time"

	"github.com/codeforge-dev/codeforge/internal/domain"
)

const dateLayout = "2006-01-02"

// advanceStreak updates the streak counters for the first solve of a new
// problem at the given local time. Solving again on the same calendar day
// leaves the current count alone; solving on the day after the last solve
// extends it; any gap resets it to 1.
func advanceStreak(streak *domain.Streak, now time.Time) {
	today := now.Format(dateLayout)
	if streak.LastSolvedDate == today {
		if streak.Current == 0 {
			streak.Current = 1
		}
	} else if isNextDay(streak.LastSolvedDate, now) {
		streak.Current++
	} else {
		streak.Current = 1
	}

	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastSolvedDate = today
}

func isNextDay(lastDate string, now time.Time) bool {
	if lastDate == "" {
		return false
	}
	last, err := time.ParseInLocation(dateLayout, lastDate, now.Location())
	if err != nil {
		return false
	}
	return last.AddDate(0, 0, 1).Format(dateLayout) == now.Format(dateLayout)
}
