package game

import (
	"time"

	"github.com/birdquest-app/birdquest-backend/internal/models"
)

// DateOnly normalizes a timestamp to its UTC calendar day. All daily
// bookkeeping (streaks, completion ledgers) keys on this value.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UpdateStreak advances the user's daily streak for activity on the
// given day. Repeat calls on the same day are no-ops, a one-day gap
// extends the streak, anything longer resets it to 1.
func UpdateStreak(u *models.User, today time.Time) {
	today = DateOnly(today)

	switch {
	case u.LastActivityDate == nil:
		u.CurrentStreak = 1
	case DateOnly(*u.LastActivityDate).Equal(today):
		// Already counted today.
	case daysBetween(DateOnly(*u.LastActivityDate), today) == 1:
		u.CurrentStreak++
	default:
		u.CurrentStreak = 1
	}

	u.LastActivityDate = &today
	if u.CurrentStreak > u.LongestStreak {
		u.LongestStreak = u.CurrentStreak
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
