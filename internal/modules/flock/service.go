package flock

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/birdquest-app/birdquest-backend/internal/database"
	"github.com/birdquest-app/birdquest-backend/internal/game"
	"github.com/birdquest-app/birdquest-backend/internal/models"
)

var (
	ErrGroupNotFound        = errors.New("group not found")
	ErrInvalidInviteCode    = errors.New("invalid invite code")
	ErrAlreadyMember        = errors.New("already a member of this group")
	ErrNotMember            = errors.New("not a member of this group")
	ErrNotAdmin             = errors.New("admin rights required")
	ErrLastAdmin            = errors.New("cannot leave as the last admin")
	ErrCannotKickSelf       = errors.New("cannot kick yourself")
	ErrNameRequired         = errors.New("name is required")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrInvalidDateRange     = errors.New("invalid challenge date range")
	ErrInvalidTarget        = errors.New("target count must be positive")
	ErrAlreadyParticipating = errors.New("already participating in this challenge")
	ErrNotParticipating     = errors.New("not participating in this challenge")
	ErrChallengeNotStarted  = errors.New("challenge has not started yet")
	ErrChallengeExpired     = errors.New("challenge has expired")
	ErrAlreadyLoggedToday   = errors.New("progress already logged today")
	ErrChallengeCompleted   = errors.New("challenge already completed")
)

const inviteCodeLength = 8
const inviteCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type Service struct {
	db      *gorm.DB
	catalog *game.Catalog
}

func NewService(db *gorm.DB, catalog *game.Catalog) *Service {
	return &Service{db: db, catalog: catalog}
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteCodeCharset[int(b)%len(inviteCodeCharset)]
	}
	return string(buf), nil
}

// CreateGroup creates a group and enrolls the creator as its first admin.
func (s *Service) CreateGroup(userID uuid.UUID, name string) (*Group, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	var group Group
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Retry on the unlikely invite code collision.
		for attempt := 0; attempt < 5; attempt++ {
			code, err := generateInviteCode()
			if err != nil {
				return err
			}
			group = Group{
				ID:         uuid.New(),
				Name:       name,
				InviteCode: code,
				CreatorID:  userID,
			}
			if err := tx.Create(&group).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return fmt.Errorf("failed to create group: %w", err)
			}
			member := Membership{
				ID:      uuid.New(),
				GroupID: group.ID,
				UserID:  userID,
				IsAdmin: true,
			}
			if err := tx.Create(&member).Error; err != nil {
				return fmt.Errorf("failed to add creator membership: %w", err)
			}
			return nil
		}
		return errors.New("failed to allocate a unique invite code")
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// Join adds the user to the group behind the invite code. Codes are
// matched case-sensitively against the stored uppercase form.
func (s *Service) Join(userID uuid.UUID, inviteCode string) (*Group, error) {
	var group Group
	if err := s.db.Where("invite_code = ?", inviteCode).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}

	member := Membership{
		ID:      uuid.New(),
		GroupID: group.ID,
		UserID:  userID,
	}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to join group: %w", err)
	}
	return &group, nil
}

// Leave removes the user's membership. The last admin of a group with
// other members cannot leave; they must promote someone first. When the
// last member leaves, the group and everything under it is deleted.
func (s *Service) Leave(userID, groupID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockGroup(tx, groupID); err != nil {
			return err
		}
		member, err := s.membership(tx, groupID, userID)
		if err != nil {
			return err
		}

		var memberCount int64
		if err := tx.Model(&Membership{}).Where("group_id = ?", groupID).Count(&memberCount).Error; err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}

		if memberCount == 1 {
			// Last one out turns off the lights.
			return s.deleteGroup(tx, groupID)
		}

		if member.IsAdmin {
			var adminCount int64
			if err := tx.Model(&Membership{}).
				Where("group_id = ? AND is_admin = ?", groupID, true).
				Count(&adminCount).Error; err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if adminCount == 1 {
				return ErrLastAdmin
			}
		}

		return s.removeMember(tx, groupID, userID)
	})
}

// Promote grants admin rights to another member. Only admins may promote.
func (s *Service) Promote(actorID, groupID, targetID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockGroup(tx, groupID); err != nil {
			return err
		}
		actor, err := s.membership(tx, groupID, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin {
			return ErrNotAdmin
		}
		target, err := s.membership(tx, groupID, targetID)
		if err != nil {
			return err
		}
		if target.IsAdmin {
			return nil
		}
		if err := tx.Model(target).Update("is_admin", true).Error; err != nil {
			return fmt.Errorf("failed to promote member: %w", err)
		}
		return nil
	})
}

// Kick removes another member from the group. Only admins may kick, and
// an admin cannot kick themselves (Leave covers that path).
func (s *Service) Kick(actorID, groupID, targetID uuid.UUID) error {
	if actorID == targetID {
		return ErrCannotKickSelf
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.lockGroup(tx, groupID); err != nil {
			return err
		}
		actor, err := s.membership(tx, groupID, actorID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin {
			return ErrNotAdmin
		}
		if _, err := s.membership(tx, groupID, targetID); err != nil {
			return err
		}
		return s.removeMember(tx, groupID, targetID)
	})
}

// Groups lists the groups the user belongs to.
func (s *Service) Groups(userID uuid.UUID) ([]GroupView, error) {
	var memberships []Membership
	if err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	views := make([]GroupView, 0, len(memberships))
	for _, m := range memberships {
		var group Group
		if err := s.db.First(&group, "id = ?", m.GroupID).Error; err != nil {
			return nil, fmt.Errorf("failed to load group: %w", err)
		}
		var count int64
		if err := s.db.Model(&Membership{}).Where("group_id = ?", m.GroupID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count members: %w", err)
		}
		views = append(views, GroupView{
			ID:          group.ID,
			Name:        group.Name,
			InviteCode:  group.InviteCode,
			MemberCount: int(count),
			IsAdmin:     m.IsAdmin,
		})
	}
	return views, nil
}

// Detail returns one group with its member leaderboard.
func (s *Service) Detail(userID, groupID uuid.UUID) (*Group, []MemberView, error) {
	members, err := s.Members(userID, groupID)
	if err != nil {
		return nil, nil, err
	}
	var group Group
	if err := s.db.First(&group, "id = ?", groupID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load group: %w", err)
	}
	return &group, members, nil
}

// Members returns the group leaderboard: level, then xp, then seniority.
func (s *Service) Members(userID, groupID uuid.UUID) ([]MemberView, error) {
	if _, err := s.membership(s.db, groupID, userID); err != nil {
		return nil, err
	}

	var memberships []Membership
	if err := s.db.Where("group_id = ?", groupID).Order("created_at ASC").Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	views := make([]MemberView, 0, len(memberships))
	for _, m := range memberships {
		var user models.User
		if err := s.db.First(&user, "id = ?", m.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load member: %w", err)
		}
		views = append(views, MemberView{
			UserID:   user.ID,
			Username: user.Username,
			Level:    user.Level,
			XP:       user.XP,
			IsAdmin:  m.IsAdmin,
		})
	}

	// Join order already sorts the ties; a stable pass on level/xp keeps it.
	for i := 1; i < len(views); i++ {
		for j := i; j > 0 && rankAbove(views[j], views[j-1]); j-- {
			views[j], views[j-1] = views[j-1], views[j]
		}
	}
	return views, nil
}

func rankAbove(a, b MemberView) bool {
	if a.Level != b.Level {
		return a.Level > b.Level
	}
	return a.XP > b.XP
}

// CreateChallenge opens a new challenge in the group. Any member may
// create one; the creator is auto-enrolled.
func (s *Service) CreateChallenge(userID, groupID uuid.UUID, name string, target, xpReward int, start, end time.Time) (*Challenge, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if target <= 0 {
		return nil, ErrInvalidTarget
	}
	start = game.DateOnly(start)
	end = game.DateOnly(end)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	var challenge Challenge
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.membership(tx, groupID, userID); err != nil {
			return err
		}
		challenge = Challenge{
			ID:          uuid.New(),
			GroupID:     groupID,
			Name:        name,
			TargetCount: target,
			XPReward:    xpReward,
			StartDate:   start,
			EndDate:     end,
			CreatedBy:   userID,
		}
		if err := tx.Create(&challenge).Error; err != nil {
			return fmt.Errorf("failed to create challenge: %w", err)
		}
		participant := Participant{
			ID:          uuid.New(),
			ChallengeID: challenge.ID,
			UserID:      userID,
		}
		if err := tx.Create(&participant).Error; err != nil {
			return fmt.Errorf("failed to enroll creator: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// JoinChallenge enrolls a group member into a challenge that has not
// yet ended.
func (s *Service) JoinChallenge(userID, challengeID uuid.UUID, today time.Time) error {
	var challenge Challenge
	if err := s.db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("failed to load challenge: %w", err)
	}
	if _, err := s.membership(s.db, challenge.GroupID, userID); err != nil {
		return err
	}
	if game.DateOnly(today).After(challenge.EndDate) {
		return ErrChallengeExpired
	}

	participant := Participant{
		ID:          uuid.New(),
		ChallengeID: challengeID,
		UserID:      userID,
	}
	if err := s.db.Create(&participant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyParticipating
		}
		return fmt.Errorf("failed to join challenge: %w", err)
	}
	return nil
}

// LogProgress records one day of progress. At most one log per calendar
// day per participant; hitting the target completes the challenge and
// pays out its xp reward exactly once.
func (s *Service) LogProgress(userID, challengeID uuid.UUID, today time.Time) (*LogProgressResponse, error) {
	day := game.DateOnly(today)

	var resp LogProgressResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var challenge Challenge
		if err := tx.First(&challenge, "id = ?", challengeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to load challenge: %w", err)
		}
		if day.Before(challenge.StartDate) {
			return ErrChallengeNotStarted
		}
		if day.After(challenge.EndDate) {
			return ErrChallengeExpired
		}

		var participant Participant
		err := database.ForUpdate(tx).
			Where("challenge_id = ? AND user_id = ?", challengeID, userID).
			First(&participant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotParticipating
			}
			return fmt.Errorf("failed to load participant: %w", err)
		}
		if participant.Completed {
			return ErrChallengeCompleted
		}

		log := ChallengeLog{
			ID:            uuid.New(),
			ParticipantID: participant.ID,
			Date:          day,
		}
		if err := tx.Create(&log).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyLoggedToday
			}
			return fmt.Errorf("failed to log progress: %w", err)
		}

		participant.Progress++
		resp = LogProgressResponse{
			Progress:    participant.Progress,
			TargetCount: challenge.TargetCount,
		}

		var user models.User
		if err := database.ForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		if participant.Progress >= challenge.TargetCount {
			now := time.Now().UTC()
			participant.Completed = true
			participant.CompletedAt = &now
			resp.ChallengeCompleted = true

			if challenge.XPReward > 0 {
				seeds, levels := game.ApplyXP(&user, challenge.XPReward, s.catalog.EquippedMultiplier(&user))
				resp.XPAwarded = challenge.XPReward
				resp.SeedsEarned = seeds
				resp.LeveledUp = levels > 0
			}
		}

		// Logging counts as daily activity whether or not it completed
		// the challenge.
		game.UpdateStreak(&user, day)
		resp.Level = user.Level
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}

		if err := tx.Save(&participant).Error; err != nil {
			return fmt.Errorf("failed to save participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Challenges lists the group's challenges, newest first.
func (s *Service) Challenges(userID, groupID uuid.UUID, today time.Time) ([]ChallengeView, error) {
	if _, err := s.membership(s.db, groupID, userID); err != nil {
		return nil, err
	}

	var challenges []Challenge
	if err := s.db.Where("group_id = ?", groupID).Order("created_at DESC").Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	day := game.DateOnly(today)
	views := make([]ChallengeView, 0, len(challenges))
	for _, ch := range challenges {
		var count int64
		if err := s.db.Model(&Participant{}).Where("challenge_id = ?", ch.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count participants: %w", err)
		}
		views = append(views, ChallengeView{
			ID:           ch.ID,
			GroupID:      ch.GroupID,
			Name:         ch.Name,
			TargetCount:  ch.TargetCount,
			XPReward:     ch.XPReward,
			StartDate:    ch.StartDate.Format("2006-01-02"),
			EndDate:      ch.EndDate.Format("2006-01-02"),
			Active:       !day.Before(ch.StartDate) && !day.After(ch.EndDate),
			Expired:      day.After(ch.EndDate),
			Participants: int(count),
		})
	}
	return views, nil
}

// Standings returns challenge participants ordered by progress.
func (s *Service) Standings(userID, challengeID uuid.UUID) ([]StandingView, error) {
	var challenge Challenge
	if err := s.db.First(&challenge, "id = ?", challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	if _, err := s.membership(s.db, challenge.GroupID, userID); err != nil {
		return nil, err
	}

	var participants []Participant
	if err := s.db.Where("challenge_id = ?", challengeID).
		Order("progress DESC, created_at ASC").
		Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	views := make([]StandingView, 0, len(participants))
	for _, p := range participants {
		var user models.User
		if err := s.db.First(&user, "id = ?", p.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to load participant user: %w", err)
		}
		views = append(views, StandingView{
			UserID:      user.ID,
			Username:    user.Username,
			Progress:    p.Progress,
			Completed:   p.Completed,
			CompletedAt: p.CompletedAt,
		})
	}
	return views, nil
}

// PurgeUser removes the user's memberships and challenge records. Groups
// emptied by the purge are deleted; groups left without an admin promote
// their most senior remaining member.
func (s *Service) PurgeUser(tx *gorm.DB, user *models.User) error {
	var memberships []Membership
	if err := tx.Where("user_id = ?", user.ID).Find(&memberships).Error; err != nil {
		return fmt.Errorf("failed to list memberships: %w", err)
	}

	// Drop challenge participation first, across all groups.
	var participants []Participant
	if err := tx.Where("user_id = ?", user.ID).Find(&participants).Error; err != nil {
		return fmt.Errorf("failed to list participants: %w", err)
	}
	for _, p := range participants {
		if err := tx.Where("participant_id = ?", p.ID).Delete(&ChallengeLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete challenge logs: %w", err)
		}
	}
	if err := tx.Where("user_id = ?", user.ID).Delete(&Participant{}).Error; err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	for _, m := range memberships {
		if err := tx.Delete(&m).Error; err != nil {
			return fmt.Errorf("failed to delete membership: %w", err)
		}

		var remaining int64
		if err := tx.Model(&Membership{}).Where("group_id = ?", m.GroupID).Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count members: %w", err)
		}
		if remaining == 0 {
			if err := s.deleteGroup(tx, m.GroupID); err != nil {
				return err
			}
			continue
		}

		if m.IsAdmin {
			var admins int64
			if err := tx.Model(&Membership{}).
				Where("group_id = ? AND is_admin = ?", m.GroupID, true).
				Count(&admins).Error; err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if admins == 0 {
				var senior Membership
				if err := tx.Where("group_id = ?", m.GroupID).
					Order("created_at ASC").First(&senior).Error; err != nil {
					return fmt.Errorf("failed to find successor admin: %w", err)
				}
				if err := tx.Model(&senior).Update("is_admin", true).Error; err != nil {
					return fmt.Errorf("failed to promote successor admin: %w", err)
				}
			}
		}
	}
	return nil
}

// lockGroup takes the group row lock that serializes membership
// mutations within one group.
func (s *Service) lockGroup(tx *gorm.DB, groupID uuid.UUID) error {
	var group Group
	if err := database.ForUpdate(tx).First(&group, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to lock group: %w", err)
	}
	return nil
}

func (s *Service) membership(tx *gorm.DB, groupID, userID uuid.UUID) (*Membership, error) {
	var member Membership
	err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var exists int64
			if countErr := tx.Model(&Group{}).Where("id = ?", groupID).Count(&exists).Error; countErr == nil && exists == 0 {
				return nil, ErrGroupNotFound
			}
			return nil, ErrNotMember
		}
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}
	return &member, nil
}

func (s *Service) removeMember(tx *gorm.DB, groupID, userID uuid.UUID) error {
	var challengeIDs []uuid.UUID
	if err := tx.Model(&Challenge{}).Where("group_id = ?", groupID).Pluck("id", &challengeIDs).Error; err != nil {
		return fmt.Errorf("failed to list group challenges: %w", err)
	}
	if len(challengeIDs) > 0 {
		var participants []Participant
		if err := tx.Where("challenge_id IN ? AND user_id = ?", challengeIDs, userID).Find(&participants).Error; err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		for _, p := range participants {
			if err := tx.Where("participant_id = ?", p.ID).Delete(&ChallengeLog{}).Error; err != nil {
				return fmt.Errorf("failed to delete challenge logs: %w", err)
			}
			if err := tx.Delete(&p).Error; err != nil {
				return fmt.Errorf("failed to delete participant: %w", err)
			}
		}
	}
	if err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&Membership{}).Error; err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return nil
}

func (s *Service) deleteGroup(tx *gorm.DB, groupID uuid.UUID) error {
	var challengeIDs []uuid.UUID
	if err := tx.Model(&Challenge{}).Where("group_id = ?", groupID).Pluck("id", &challengeIDs).Error; err != nil {
		return fmt.Errorf("failed to list group challenges: %w", err)
	}
	if len(challengeIDs) > 0 {
		var participantIDs []uuid.UUID
		if err := tx.Model(&Participant{}).Where("challenge_id IN ?", challengeIDs).Pluck("id", &participantIDs).Error; err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		if len(participantIDs) > 0 {
			if err := tx.Where("participant_id IN ?", participantIDs).Delete(&ChallengeLog{}).Error; err != nil {
				return fmt.Errorf("failed to delete challenge logs: %w", err)
			}
			if err := tx.Where("id IN ?", participantIDs).Delete(&Participant{}).Error; err != nil {
				return fmt.Errorf("failed to delete participants: %w", err)
			}
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&Challenge{}).Error; err != nil {
			return fmt.Errorf("failed to delete challenges: %w", err)
		}
	}
	if err := tx.Where("group_id = ?", groupID).Delete(&Membership{}).Error; err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	if err := tx.Where("id = ?", groupID).Delete(&Group{}).Error; err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}
