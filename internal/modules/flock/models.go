package flock

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	InviteCode string    `gorm:"size:8;not null;uniqueIndex" json:"invite_code"`
	CreatorID  uuid.UUID `gorm:"type:uuid;not null" json:"creator_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type Membership struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_group_user" json:"group_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_membership_group_user" json:"user_id"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Challenge is a time-boxed group goal: log progress on target_count
// distinct days before end_date. Active/expired state is derived from
// the date range, never stored.
type Challenge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	TargetCount int       `gorm:"not null" json:"target_count"`
	XPReward    int       `gorm:"not null" json:"xp_reward"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Participant struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_participant_challenge_user" json:"challenge_id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_participant_challenge_user" json:"user_id"`
	Progress    int        `gorm:"default:0" json:"progress"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ChallengeLog is the at-most-once-per-day fact for a participant.
type ChallengeLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_log_once" json:"participant_id"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_challenge_log_once" json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- DTOs ---

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type JoinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

type MemberTargetRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type CreateChallengeRequest struct {
	Name        string `json:"name"`
	TargetCount int    `json:"target_count"`
	XPReward    int    `json:"xp_reward"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type GroupView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code"`
	MemberCount int       `json:"member_count"`
	IsAdmin     bool      `json:"is_admin"`
}

type MemberView struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Level    int       `json:"level"`
	XP       int       `json:"xp"`
	IsAdmin  bool      `json:"is_admin"`
}

type ChallengeView struct {
	ID           uuid.UUID `json:"id"`
	GroupID      uuid.UUID `json:"group_id"`
	Name         string    `json:"name"`
	TargetCount  int       `json:"target_count"`
	XPReward     int       `json:"xp_reward"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Active       bool      `json:"active"`
	Expired      bool      `json:"expired"`
	Participants int       `json:"participants"`
}

type StandingView struct {
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

type LogProgressResponse struct {
	Progress           int  `json:"progress"`
	TargetCount        int  `json:"target_count"`
	ChallengeCompleted bool `json:"challenge_completed"`
	XPAwarded          int  `json:"xp_awarded"`
	LeveledUp          bool `json:"leveled_up"`
	SeedsEarned        int  `json:"seeds_earned"`
	Level              int  `json:"level"`
}
