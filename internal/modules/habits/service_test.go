package habits

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/birdquest-app/birdquest-backend/internal/game"
	"github.com/birdquest-app/birdquest-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "habits.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &CustomHabit{}, &HiddenHabit{}, &Completion{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: "testuser",
		Email:    "test@example.com",
		Password: "hash",
		Level:    1,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestCompleteAwardsXPAndStreak(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	// Catalog habit 1 is worth 15 XP.
	resp, err := svc.Complete(user.ID, Ref{ID: 1}, day)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.XPEarned != 15 {
		t.Errorf("XPEarned = %d, want 15", resp.XPEarned)
	}
	if resp.Level != 1 || resp.LeveledUp {
		t.Errorf("unexpected level-up: level=%d leveledUp=%v", resp.Level, resp.LeveledUp)
	}
	if resp.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", resp.CurrentStreak)
	}

	var saved models.User
	if err := db.First(&saved, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if saved.XP != 15 {
		t.Errorf("persisted XP = %d, want 15", saved.XP)
	}
}

func TestCompleteSameDayRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day); err != nil {
		t.Fatalf("first Complete failed: %v", err)
	}
	// Later the same day, even with a different wall clock.
	_, err := svc.Complete(user.ID, Ref{ID: 1}, day.Add(10*time.Hour))
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second Complete error = %v, want ErrAlreadyCompleted", err)
	}

	// XP must not have moved.
	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.XP != 15 {
		t.Errorf("XP after rejected complete = %d, want 15", saved.XP)
	}
}

func TestCompleteDistinctHabitsSameDay(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day); err != nil {
		t.Fatalf("Complete habit 1 failed: %v", err)
	}
	if _, err := svc.Complete(user.ID, Ref{ID: 2}, day); err != nil {
		t.Fatalf("Complete habit 2 failed: %v", err)
	}

	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.XP != 35 {
		t.Errorf("XP = %d, want 35", saved.XP)
	}
	if saved.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", saved.CurrentStreak)
	}
}

func TestCompleteCustomAndCatalogShareNumericID(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	custom, err := svc.AddCustom(user.ID, AddHabitRequest{Name: "Water the plants", XP: 25})
	if err != nil {
		t.Fatalf("AddCustom failed: %v", err)
	}

	// Custom id 1 and catalog id 1 are different habits.
	if _, err := svc.Complete(user.ID, Ref{ID: int(custom.ID), Custom: true}, day); err != nil {
		t.Fatalf("Complete custom failed: %v", err)
	}
	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day); err != nil {
		t.Fatalf("Complete catalog failed: %v", err)
	}

	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.XP != 40 {
		t.Errorf("XP = %d, want 40 (25 custom + 15 catalog)", saved.XP)
	}
}

func TestCompleteLevelUpCreditsSeeds(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	user.XP = 90
	db.Save(user)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// 90 + 15 crosses the 100 XP threshold for level 1.
	resp, err := svc.Complete(user.ID, Ref{ID: 1}, day)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !resp.LeveledUp || resp.Level != 2 {
		t.Fatalf("level = %d leveledUp = %v, want level 2", resp.Level, resp.LeveledUp)
	}
	if resp.CurrentXP != 5 {
		t.Errorf("CurrentXP = %d, want 5", resp.CurrentXP)
	}
	if resp.SeedsEarned != game.SeedsForLevel(2) {
		t.Errorf("SeedsEarned = %d, want %d", resp.SeedsEarned, game.SeedsForLevel(2))
	}
}

func TestCompleteEquippedBirdScalesSeeds(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	// Bird 13 is legendary: 2.0x seeds.
	birdID := 13
	user.CurrentBirdID = &birdID
	user.XP = 90
	db.Save(user)

	resp, err := svc.Complete(user.ID, Ref{ID: 1}, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	want := int(float64(game.SeedsForLevel(2)) * 2.0)
	if resp.SeedsEarned != want {
		t.Errorf("SeedsEarned = %d, want %d", resp.SeedsEarned, want)
	}
}

func TestCompleteUnknownHabitFallsBack(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)

	resp, err := svc.Complete(user.ID, Ref{ID: 999}, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.XPEarned != game.FallbackHabitXP {
		t.Errorf("XPEarned = %d, want fallback %d", resp.XPEarned, game.FallbackHabitXP)
	}
}

func TestStreakAcrossDays(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day1); err != nil {
		t.Fatalf("day1 Complete failed: %v", err)
	}
	resp, err := svc.Complete(user.ID, Ref{ID: 1}, day1.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("day2 Complete failed: %v", err)
	}
	if resp.CurrentStreak != 2 {
		t.Errorf("streak after consecutive days = %d, want 2", resp.CurrentStreak)
	}

	// Skip a day: streak resets.
	resp, err = svc.Complete(user.ID, Ref{ID: 1}, day1.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("day4 Complete failed: %v", err)
	}
	if resp.CurrentStreak != 1 {
		t.Errorf("streak after gap = %d, want 1", resp.CurrentStreak)
	}

	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", saved.LongestStreak)
	}
}

func TestCheckinTouchesStreakWithoutXP(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	updated, err := svc.Checkin(user.ID, day)
	if err != nil {
		t.Fatalf("Checkin failed: %v", err)
	}
	if updated.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", updated.CurrentStreak)
	}
	if updated.XP != 0 {
		t.Errorf("Checkin changed XP to %d", updated.XP)
	}

	// Repeat the same day: no movement.
	updated, err = svc.Checkin(user.ID, day.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("second Checkin failed: %v", err)
	}
	if updated.CurrentStreak != 1 {
		t.Errorf("CurrentStreak after repeat = %d, want 1", updated.CurrentStreak)
	}
}

func TestHideHabit(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.Complete(user.ID, Ref{ID: 3}, day); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := svc.Hide(user.ID, 3); err != nil {
		t.Fatalf("Hide failed: %v", err)
	}
	// Idempotent.
	if err := svc.Hide(user.ID, 3); err != nil {
		t.Fatalf("second Hide failed: %v", err)
	}
	if err := svc.Hide(user.ID, 999); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("Hide unknown = %v, want ErrHabitNotFound", err)
	}

	visible, err := svc.ListVisible(user.ID)
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	for _, h := range visible {
		if h.ID == "3" {
			t.Errorf("hidden habit still listed")
		}
	}

	// History wiped, today's list no longer mentions it.
	done, err := svc.CompletedToday(user.ID, day)
	if err != nil {
		t.Fatalf("CompletedToday failed: %v", err)
	}
	if len(done) != 0 {
		t.Errorf("CompletedToday = %v, want empty", done)
	}
}

func TestDeleteCustomRemovesHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	custom, err := svc.AddCustom(user.ID, AddHabitRequest{Name: "Stretch"})
	if err != nil {
		t.Fatalf("AddCustom failed: %v", err)
	}
	if custom.XP != game.FallbackHabitXP {
		t.Errorf("default custom XP = %d, want %d", custom.XP, game.FallbackHabitXP)
	}

	if _, err := svc.Complete(user.ID, Ref{ID: int(custom.ID), Custom: true}, day); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := svc.DeleteCustom(user.ID, int(custom.ID)); err != nil {
		t.Fatalf("DeleteCustom failed: %v", err)
	}
	if err := svc.DeleteCustom(user.ID, int(custom.ID)); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("second DeleteCustom = %v, want ErrHabitNotFound", err)
	}

	var count int64
	db.Model(&Completion{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("completions after delete = %d, want 0", count)
	}
}

func TestWeeklyStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := svc.Complete(user.ID, Ref{ID: 2}, day); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	stats, err := svc.WeeklyStats(user.ID, day)
	if err != nil {
		t.Fatalf("WeeklyStats failed: %v", err)
	}
	if got := stats.DailyCompletions[day.Format("2006-01-02")]; got != 2 {
		t.Errorf("completions today = %d, want 2", got)
	}
	if got := stats.DailyCompletions[day.AddDate(0, 0, -1).Format("2006-01-02")]; got != 1 {
		t.Errorf("completions yesterday = %d, want 1", got)
	}
	if stats.Streak != 2 {
		t.Errorf("streak = %d, want 2", stats.Streak)
	}
}

func TestPurgeUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, game.DefaultCatalog())
	user := newTestUser(t, db)
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.AddCustom(user.ID, AddHabitRequest{Name: "Journal"}); err != nil {
		t.Fatalf("AddCustom failed: %v", err)
	}
	if _, err := svc.Complete(user.ID, Ref{ID: 1}, day); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := svc.Hide(user.ID, 2); err != nil {
		t.Fatalf("Hide failed: %v", err)
	}

	if err := svc.PurgeUser(db, user); err != nil {
		t.Fatalf("PurgeUser failed: %v", err)
	}

	for _, model := range []interface{}{&Completion{}, &HiddenHabit{}, &CustomHabit{}} {
		var count int64
		db.Model(model).Where("user_id = ?", user.ID).Count(&count)
		if count != 0 {
			t.Errorf("%T rows after purge = %d, want 0", model, count)
		}
	}
}
