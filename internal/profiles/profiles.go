// Package profiles manages the durable per-member record behind a Discord
// identity, including the allow-list admin escalation applied at login.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jmswan/fivemhub/discord"
)

type Tier string

const (
	TierGuest     Tier = "guest"
	TierFree      Tier = "free"
	TierVIP       Tier = "vip"
	TierAdmin     Tier = "admin"
	TierModerator Tier = "moderator"
)

// Profile is keyed by the member's email. Counters are mutated by the
// catalog and forum handlers, never by the auth flow.
type Profile struct {
	ID             uint      `gorm:"primarykey" json:"-"`
	UserEmail      string    `gorm:"uniqueIndex" json:"user_email"`
	DiscordID      string    `gorm:"index" json:"discord_id"`
	MembershipTier Tier      `json:"membership_tier"`
	Downloads      int       `json:"downloads"`
	Posts          int       `json:"posts"`
	Likes          int       `json:"likes"`
	Points         int       `json:"points"`
	Reputation     int       `json:"reputation"`
	IsBanned       bool      `json:"is_banned"`
	LastSeen       time.Time `json:"last_seen"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

// AdminPolicy decides which external identities are auto-promoted.
type AdminPolicy interface {
	IsAdmin(externalID string) bool
}

// StaticAdminPolicy is an AdminPolicy over a fixed allow-list of Discord ids.
type StaticAdminPolicy struct {
	ids map[string]struct{}
}

func NewStaticAdminPolicy(ids []string) StaticAdminPolicy {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}

	return StaticAdminPolicy{ids: set}
}

func (p StaticAdminPolicy) IsAdmin(externalID string) bool {
	_, ok := p.ids[externalID]
	return ok
}

var ErrNotFound = errors.New("profiles: profile not found")

type Service struct {
	db     *gorm.DB
	admins AdminPolicy
}

func NewService(db *gorm.DB, admins AdminPolicy) *Service {
	return &Service{db: db, admins: admins}
}

// EnsureProfile makes sure a Profile exists for the identity's email,
// creating it at the default tier, or at admin for allow-listed identities.
// Escalation is one-way: an existing admin profile is never downgraded here.
func (s *Service) EnsureProfile(ctx context.Context, identity discord.Identity) error {
	var profile Profile

	err := s.db.WithContext(ctx).Where("user_email = ?", identity.Email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tier := TierFree
		if s.admins.IsAdmin(identity.ExternalID) {
			tier = TierAdmin
		}

		profile = Profile{
			UserEmail:      identity.Email,
			DiscordID:      identity.ExternalID,
			MembershipTier: tier,
			LastSeen:       time.Now(),
		}

		if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
			return fmt.Errorf("could not create profile: %w", err)
		}

		return nil
	}
	if err != nil {
		return fmt.Errorf("could not look up profile: %w", err)
	}

	if s.admins.IsAdmin(identity.ExternalID) && profile.MembershipTier != TierAdmin {
		err := s.db.WithContext(ctx).
			Model(&Profile{}).
			Where("user_email = ?", identity.Email).
			Update("membership_tier", TierAdmin).Error
		if err != nil {
			return fmt.Errorf("could not escalate profile tier: %w", err)
		}
	}

	return nil
}

func (s *Service) ByEmail(ctx context.Context, email string) (*Profile, error) {
	var profile Profile

	err := s.db.WithContext(ctx).Where("user_email = ?", email).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not look up profile: %w", err)
	}

	return &profile, nil
}

// BumpCounter increments one of the profile counter columns. Used by the
// catalog and forum handlers; missing profiles are a no-op.
func (s *Service) BumpCounter(ctx context.Context, email, column string, delta int) error {
	err := s.db.WithContext(ctx).
		Model(&Profile{}).
		Where("user_email = ?", email).
		Update(column, gorm.Expr(column+" + ?", delta)).Error
	if err != nil {
		return fmt.Errorf("could not bump %s: %w", column, err)
	}

	return nil
}

// TouchLastSeen records member activity.
func (s *Service) TouchLastSeen(ctx context.Context, email string) error {
	err := s.db.WithContext(ctx).
		Model(&Profile{}).
		Where("user_email = ?", email).
		Update("last_seen", time.Now()).Error
	if err != nil {
		return fmt.Errorf("could not update last seen: %w", err)
	}

	return nil
}
