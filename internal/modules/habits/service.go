package habits

import (
	"errors"
	"fmt"
	"time"

	"github.com/birdquest-app/birdquest-backend/internal/database"
	"github.com/birdquest-app/birdquest-backend/internal/game"
	"github.com/birdquest-app/birdquest-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyCompleted = errors.New("habit already completed today")
	ErrHabitNotFound    = errors.New("habit not found")
	ErrNameRequired     = errors.New("habit name is required")
)

type Service struct {
	db      *gorm.DB
	catalog *game.Catalog
}

func NewService(db *gorm.DB, catalog *game.Catalog) *Service {
	return &Service{db: db, catalog: catalog}
}

// Complete records a habit completion for the given day and feeds the
// earned XP through the progression engine. The whole operation is one
// transaction; the completion unique index turns a concurrent double
// complete into ErrAlreadyCompleted.
func (s *Service) Complete(userID uuid.UUID, ref Ref, today time.Time) (*CompleteResponse, error) {
	day := game.DateOnly(today)
	var resp *CompleteResponse

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := database.ForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		var existing Completion
		err := tx.Scopes(database.ForUser(userID)).
			Where("habit_id = ? AND is_custom = ? AND date = ?", ref.ID, ref.Custom, day).
			First(&existing).Error
		if err == nil {
			return ErrAlreadyCompleted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		xp := s.resolveXP(tx, userID, ref)

		completion := Completion{
			ID:       uuid.New(),
			UserID:   userID,
			HabitID:  ref.ID,
			IsCustom: ref.Custom,
			Date:     day,
			XPEarned: xp,
		}
		if err := tx.Create(&completion).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyCompleted
			}
			return fmt.Errorf("record completion: %w", err)
		}

		multiplier := s.catalog.EquippedMultiplier(&user)
		seeds, levels := game.ApplyXP(&user, xp, multiplier)
		game.UpdateStreak(&user, today)

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		resp = &CompleteResponse{
			XPEarned:      xp,
			CurrentXP:     user.XP,
			XPNeeded:      game.XPForLevel(user.Level),
			Level:         user.Level,
			LeveledUp:     levels > 0,
			SeedsEarned:   seeds,
			Seeds:         user.Seeds,
			CurrentStreak: user.CurrentStreak,
			HabitID:       ref.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveXP looks up the reward for a habit ref. Unknown ids fall back
// to a flat reward instead of erroring.
func (s *Service) resolveXP(tx *gorm.DB, userID uuid.UUID, ref Ref) int {
	if ref.Custom {
		var custom CustomHabit
		if err := tx.Where("id = ? AND user_id = ?", ref.ID, userID).First(&custom).Error; err == nil {
			return custom.XP
		}
		return game.FallbackHabitXP
	}
	if habit, ok := s.catalog.Habit(ref.ID); ok {
		return habit.XP
	}
	return game.FallbackHabitXP
}

// AddCustom creates a user-authored habit.
func (s *Service) AddCustom(userID uuid.UUID, req AddHabitRequest) (*CustomHabit, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.XP < 1 {
		req.XP = game.FallbackHabitXP
	}
	if req.Category == "" {
		req.Category = "custom"
	}

	habit := CustomHabit{
		UserID:   userID,
		Name:     req.Name,
		XP:       req.XP,
		Category: req.Category,
	}
	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create custom habit: %w", err)
	}
	return &habit, nil
}

// DeleteCustom removes a custom habit and all of its completions.
func (s *Service) DeleteCustom(userID uuid.UUID, habitID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var habit CustomHabit
		if err := tx.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHabitNotFound
			}
			return err
		}
		if err := tx.Scopes(database.ForUser(userID)).
			Where("habit_id = ? AND is_custom = true", habitID).
			Delete(&Completion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&habit).Error
	})
}

// Hide suppresses a catalog habit for the user and wipes their
// completion history for it. Hiding twice is a no-op success.
func (s *Service) Hide(userID uuid.UUID, habitID int) error {
	if _, ok := s.catalog.Habit(habitID); !ok {
		return ErrHabitNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing HiddenHabit
		err := tx.Scopes(database.ForUser(userID)).Where("habit_id = ?", habitID).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hidden := HiddenHabit{ID: uuid.New(), UserID: userID, HabitID: habitID}
		if err := tx.Create(&hidden).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		return tx.Scopes(database.ForUser(userID)).
			Where("habit_id = ? AND is_custom = false", habitID).
			Delete(&Completion{}).Error
	})
}

// ListVisible returns the catalog minus the user's hidden habits, plus
// their custom habits.
func (s *Service) ListVisible(userID uuid.UUID) ([]HabitView, error) {
	var hidden []HiddenHabit
	if err := s.db.Scopes(database.ForUser(userID)).Find(&hidden).Error; err != nil {
		return nil, err
	}
	hiddenIDs := make(map[int]bool, len(hidden))
	for _, h := range hidden {
		hiddenIDs[h.HabitID] = true
	}

	views := make([]HabitView, 0, len(s.catalog.Habits))
	for _, h := range s.catalog.Habits {
		if hiddenIDs[h.ID] {
			continue
		}
		views = append(views, HabitView{
			ID:       Ref{ID: h.ID}.String(),
			Name:     h.Name,
			XP:       h.XP,
			Category: h.Category,
		})
	}

	var customs []CustomHabit
	if err := s.db.Scopes(database.ForUser(userID)).Order("created_at ASC").Find(&customs).Error; err != nil {
		return nil, err
	}
	for _, c := range customs {
		views = append(views, HabitView{
			ID:       Ref{ID: int(c.ID), Custom: true}.String(),
			Name:     c.Name,
			XP:       c.XP,
			Category: c.Category,
			IsCustom: true,
		})
	}
	return views, nil
}

// CompletedToday returns the refs of habits the user completed on the
// given day.
func (s *Service) CompletedToday(userID uuid.UUID, today time.Time) ([]string, error) {
	var completions []Completion
	err := s.db.Scopes(database.ForUser(userID)).
		Where("date = ?", game.DateOnly(today)).
		Find(&completions).Error
	if err != nil {
		return nil, err
	}
	refs := make([]string, len(completions))
	for i, c := range completions {
		refs[i] = Ref{ID: c.HabitID, Custom: c.IsCustom}.String()
	}
	return refs, nil
}

// Checkin touches the user's daily streak without completing anything.
// Callers invoke it on login; repeat calls the same day are no-ops.
func (s *Service) Checkin(userID uuid.UUID, today time.Time) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		game.UpdateStreak(&user, today)
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// WeeklyStats aggregates the user's completions per day over the last
// seven days plus a progression summary.
func (s *Service) WeeklyStats(userID uuid.UUID, today time.Time) (*StatsResponse, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	weekAgo := game.DateOnly(today).AddDate(0, 0, -7)
	var completions []Completion
	err := s.db.Scopes(database.ForUser(userID)).
		Where("date >= ?", weekAgo).
		Find(&completions).Error
	if err != nil {
		return nil, err
	}

	daily := make(map[string]int)
	for _, c := range completions {
		daily[c.Date.Format("2006-01-02")]++
	}

	return &StatsResponse{
		Streak:           user.CurrentStreak,
		LongestStreak:    user.LongestStreak,
		Level:            user.Level,
		TotalXP:          game.TotalXP(&user),
		Seeds:            user.Seeds,
		DailyCompletions: daily,
	}, nil
}

// PurgeUser removes all habit data owned by a user. Runs inside the
// account-deletion transaction.
func (s *Service) PurgeUser(tx *gorm.DB, user *models.User) error {
	if err := tx.Scopes(database.ForUser(user.ID)).Delete(&Completion{}).Error; err != nil {
		return err
	}
	if err := tx.Scopes(database.ForUser(user.ID)).Delete(&HiddenHabit{}).Error; err != nil {
		return err
	}
	return tx.Scopes(database.ForUser(user.ID)).Delete(&CustomHabit{}).Error
}
