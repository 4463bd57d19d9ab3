package game

import (
	"testing"
	"time"

	"github.com/birdquest-app/birdquest-backend/internal/models"
)

func TestUpdateStreak(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	t.Run("first activity starts at one", func(t *testing.T) {
		u := &models.User{}
		UpdateStreak(u, day(0))
		if u.CurrentStreak != 1 || u.LongestStreak != 1 {
			t.Fatalf("expected streak 1/1, got %d/%d", u.CurrentStreak, u.LongestStreak)
		}
		if u.LastActivityDate == nil || !u.LastActivityDate.Equal(DateOnly(day(0))) {
			t.Fatalf("last activity date not set to today: %v", u.LastActivityDate)
		}
	})

	t.Run("same day twice is idempotent", func(t *testing.T) {
		u := &models.User{}
		UpdateStreak(u, day(0))
		UpdateStreak(u, day(1))
		UpdateStreak(u, day(1))
		if u.CurrentStreak != 2 {
			t.Fatalf("expected streak 2 after consecutive day logged twice, got %d", u.CurrentStreak)
		}
	})

	t.Run("consecutive days increment", func(t *testing.T) {
		u := &models.User{}
		for i := 0; i < 5; i++ {
			UpdateStreak(u, day(i))
		}
		if u.CurrentStreak != 5 || u.LongestStreak != 5 {
			t.Fatalf("expected streak 5/5, got %d/%d", u.CurrentStreak, u.LongestStreak)
		}
	})

	t.Run("gap resets to one but keeps longest", func(t *testing.T) {
		u := &models.User{}
		UpdateStreak(u, day(0))
		UpdateStreak(u, day(1))
		UpdateStreak(u, day(6))
		if u.CurrentStreak != 1 {
			t.Fatalf("expected broken streak to reset to 1, got %d", u.CurrentStreak)
		}
		if u.LongestStreak != 2 {
			t.Fatalf("expected longest streak preserved at 2, got %d", u.LongestStreak)
		}
	})

	t.Run("midnight boundary counts as next day", func(t *testing.T) {
		u := &models.User{}
		UpdateStreak(u, time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC))
		UpdateStreak(u, time.Date(2026, 3, 11, 0, 1, 0, 0, time.UTC))
		if u.CurrentStreak != 2 {
			t.Fatalf("expected streak 2 across midnight, got %d", u.CurrentStreak)
		}
	})
}
