package aviary

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/birdquest-app/birdquest-backend/internal/database"
	"github.com/birdquest-app/birdquest-backend/internal/game"
	"github.com/birdquest-app/birdquest-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBirdNotFound      = errors.New("bird not found")
	ErrInsufficientSeeds = errors.New("not enough seeds")
	ErrLevelLocked       = errors.New("level too low for this bird")
	ErrAlreadyMaxed      = errors.New("shiny version already owned")
	ErrNotOwned          = errors.New("bird not owned")
	ErrShinyNotOwned     = errors.New("shiny version not owned")
)

// StarterBirdID is granted to every new account.
const StarterBirdID = 1

type Service struct {
	db          *gorm.DB
	catalog     *game.Catalog
	shinyChance float64
	roll        func() float64
}

func NewService(db *gorm.DB, catalog *game.Catalog, shinyChance float64) *Service {
	return &Service{
		db:          db,
		catalog:     catalog,
		shinyChance: shinyChance,
		roll:        rand.Float64,
	}
}

// Purchase buys a bird, rolling the shiny chance. The cost is deducted
// up front; when the user already owns the normal variant the purchase
// is a re-roll and a failed roll keeps the seeds spent. Owning the
// shiny variant rejects with no seeds spent.
func (s *Service) Purchase(userID uuid.UUID, birdID int) (*PurchaseResponse, error) {
	bird, ok := s.catalog.Bird(birdID)
	if !ok {
		return nil, ErrBirdNotFound
	}
	cost := game.Cost(bird.Rarity, 0)

	var resp *PurchaseResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := database.ForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		if user.Level < bird.LevelRequired {
			return ErrLevelLocked
		}

		var owned OwnedBird
		err := tx.Scopes(database.ForUser(userID)).Where("bird_id = ?", birdID).First(&owned).Error
		hasRecord := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if hasRecord && owned.IsShiny {
			return ErrAlreadyMaxed
		}

		if user.Seeds < cost {
			return ErrInsufficientSeeds
		}
		user.Seeds -= cost

		shiny := s.roll() < s.shinyChance
		var outcome Outcome

		if hasRecord {
			// Re-roll on an owned normal bird: upgrade in place or
			// walk away with nothing.
			if shiny {
				owned.IsShiny = true
				if err := tx.Save(&owned).Error; err != nil {
					return fmt.Errorf("upgrade bird: %w", err)
				}
				outcome = OutcomeShinyUpgrade
			} else {
				outcome = OutcomeNoUpgrade
			}
		} else {
			var count int64
			if err := tx.Model(&OwnedBird{}).Scopes(database.ForUser(userID)).Count(&count).Error; err != nil {
				return err
			}

			owned = OwnedBird{
				ID:         uuid.New(),
				UserID:     userID,
				BirdID:     birdID,
				IsShiny:    shiny,
				AcquiredAt: time.Now().UTC(),
			}
			switch err := tx.Create(&owned).Error; {
			case err == nil:
				if shiny {
					outcome = OutcomeShiny
				} else {
					outcome = OutcomeNormal
				}
				// First bird ever: equip it right away.
				if count == 0 {
					user.CurrentBirdID = &bird.ID
					user.CurrentBirdShiny = shiny
				}
			case errors.Is(err, gorm.ErrDuplicatedKey):
				settled, out, serr := settleDuplicate(tx, userID, birdID, shiny)
				if serr != nil {
					return serr
				}
				owned = settled
				outcome = out
			default:
				return fmt.Errorf("create owned bird: %w", err)
			}
		}

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		resp = &PurchaseResponse{
			BirdID:  birdID,
			IsShiny: owned.IsShiny,
			Outcome: outcome,
			Message: purchaseMessage(outcome, bird.Name),
			Seeds:   user.Seeds,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// settleDuplicate resolves a first-purchase insert that lost a race: a
// concurrent purchase committed an ownership row first. The winner may
// only own the normal variant, so reload the row and settle this
// purchase as a re-roll instead of rejecting it as maxed out.
func settleDuplicate(tx *gorm.DB, userID uuid.UUID, birdID int, shiny bool) (OwnedBird, Outcome, error) {
	var owned OwnedBird
	if err := tx.Scopes(database.ForUser(userID)).Where("bird_id = ?", birdID).First(&owned).Error; err != nil {
		return owned, "", fmt.Errorf("reload owned bird: %w", err)
	}
	if owned.IsShiny {
		return owned, "", ErrAlreadyMaxed
	}
	if !shiny {
		return owned, OutcomeNoUpgrade, nil
	}
	owned.IsShiny = true
	if err := tx.Save(&owned).Error; err != nil {
		return owned, "", fmt.Errorf("upgrade bird: %w", err)
	}
	return owned, OutcomeShinyUpgrade, nil
}

func purchaseMessage(outcome Outcome, name string) string {
	switch outcome {
	case OutcomeShiny:
		return "WOW! You got a SHINY " + name + "!"
	case OutcomeShinyUpgrade:
		return "WOW! Your " + name + " turned SHINY!"
	case OutcomeNoUpgrade:
		return "No shiny this time. Better luck tomorrow!"
	default:
		return "You got a " + name + "!"
	}
}

// Equip sets the user's active bird.
func (s *Service) Equip(userID uuid.UUID, birdID int, wantShiny bool) (*EquipResponse, error) {
	bird, ok := s.catalog.Bird(birdID)
	if !ok {
		return nil, ErrBirdNotFound
	}

	var resp *EquipResponse
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var owned OwnedBird
		if err := tx.Scopes(database.ForUser(userID)).Where("bird_id = ?", birdID).First(&owned).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotOwned
			}
			return err
		}
		if wantShiny && !owned.IsShiny {
			return ErrShinyNotOwned
		}

		var user models.User
		if err := database.ForUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		user.CurrentBirdID = &bird.ID
		user.CurrentBirdShiny = wantShiny
		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		resp = &EquipResponse{
			BirdID:     birdID,
			IsShiny:    wantShiny,
			Multiplier: game.Multiplier(bird.Rarity, wantShiny),
			Message:    bird.Name + " is now your active bird!",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Shop returns the full catalog annotated with prices and the user's
// ownership state.
func (s *Service) Shop(userID uuid.UUID) ([]ShopBird, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	var owned []OwnedBird
	if err := s.db.Scopes(database.ForUser(userID)).Find(&owned).Error; err != nil {
		return nil, err
	}
	ownedByBird := make(map[int]OwnedBird, len(owned))
	for _, o := range owned {
		ownedByBird[o.BirdID] = o
	}

	shop := make([]ShopBird, 0, len(s.catalog.Birds))
	for _, b := range s.catalog.Birds {
		entry := ShopBird{
			ID:            b.ID,
			Name:          b.Name,
			Description:   b.Description,
			Rarity:        b.Rarity,
			LevelRequired: b.LevelRequired,
			Price:         game.Cost(b.Rarity, 0),
			Multiplier:    game.Multiplier(b.Rarity, false),
		}
		if o, ok := ownedByBird[b.ID]; ok {
			entry.OwnedShiny = o.IsShiny
			entry.OwnedNormal = true
		}
		if user.CurrentBirdID != nil && *user.CurrentBirdID == b.ID {
			entry.Equipped = true
		}
		shop = append(shop, entry)
	}
	return shop, nil
}

// Collection returns only the birds the user owns.
func (s *Service) Collection(userID uuid.UUID) ([]ShopBird, error) {
	all, err := s.Shop(userID)
	if err != nil {
		return nil, err
	}
	owned := make([]ShopBird, 0, len(all))
	for _, b := range all {
		if b.OwnedNormal {
			owned = append(owned, b)
		}
	}
	return owned, nil
}

// GrantStarter gives a new user the starter bird and equips it. Runs
// inside the registration transaction.
func (s *Service) GrantStarter(tx *gorm.DB, user *models.User) error {
	starter := OwnedBird{
		ID:         uuid.New(),
		UserID:     user.ID,
		BirdID:     StarterBirdID,
		AcquiredAt: time.Now().UTC(),
	}
	if err := tx.Create(&starter).Error; err != nil {
		return fmt.Errorf("grant starter bird: %w", err)
	}
	birdID := StarterBirdID
	user.CurrentBirdID = &birdID
	return tx.Model(user).Update("current_bird_id", birdID).Error
}

// PurgeUser removes the user's ownership records. Runs inside the
// account-deletion transaction.
func (s *Service) PurgeUser(tx *gorm.DB, user *models.User) error {
	return tx.Scopes(database.ForUser(user.ID)).Delete(&OwnedBird{}).Error
}
