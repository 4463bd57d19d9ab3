package aviary

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/birdquest-app/birdquest-backend/internal/game"
	"github.com/birdquest-app/birdquest-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "aviary.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &OwnedBird{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, level, seeds int) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Username: "birder",
		Email:    "birder@example.com",
		Password: "hash",
		Level:    level,
		Seeds:    seeds,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func newTestService(db *gorm.DB, roll float64) *Service {
	svc := NewService(db, game.DefaultCatalog(), 0.01)
	svc.roll = func() float64 { return roll }
	return svc
}

func TestPurchaseNormal(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99) // never shiny
	user := newTestUser(t, db, 1, 50)

	// Bird 2 is common: 10 seeds.
	resp, err := svc.Purchase(user.ID, 2)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if resp.Outcome != OutcomeNormal {
		t.Errorf("Outcome = %q, want %q", resp.Outcome, OutcomeNormal)
	}
	if resp.IsShiny {
		t.Error("IsShiny = true on a failed roll")
	}
	if resp.Seeds != 40 {
		t.Errorf("Seeds = %d, want 40", resp.Seeds)
	}

	var owned OwnedBird
	if err := db.Where("user_id = ? AND bird_id = ?", user.ID, 2).First(&owned).Error; err != nil {
		t.Fatalf("ownership row missing: %v", err)
	}
}

func TestPurchaseShinyRoll(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.0) // always shiny
	user := newTestUser(t, db, 1, 50)

	resp, err := svc.Purchase(user.ID, 2)
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if resp.Outcome != OutcomeShiny || !resp.IsShiny {
		t.Errorf("Outcome = %q IsShiny = %v, want shiny", resp.Outcome, resp.IsShiny)
	}
}

func TestPurchaseFirstBirdAutoEquips(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 50)

	if _, err := svc.Purchase(user.ID, 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.CurrentBirdID == nil || *saved.CurrentBirdID != 2 {
		t.Fatalf("first purchase did not equip: %v", saved.CurrentBirdID)
	}

	// Second purchase leaves the equipped bird alone.
	if _, err := svc.Purchase(user.ID, 3); err != nil {
		t.Fatalf("second Purchase failed: %v", err)
	}
	db.First(&saved, "id = ?", user.ID)
	if *saved.CurrentBirdID != 2 {
		t.Errorf("second purchase re-equipped to %d", *saved.CurrentBirdID)
	}
}

func TestPurchaseRerollSpendsSeeds(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 50)

	if _, err := svc.Purchase(user.ID, 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	// Re-roll on the owned normal bird fails the shiny roll: seeds are
	// still gone.
	resp, err := svc.Purchase(user.ID, 2)
	if err != nil {
		t.Fatalf("re-roll failed: %v", err)
	}
	if resp.Outcome != OutcomeNoUpgrade {
		t.Errorf("Outcome = %q, want %q", resp.Outcome, OutcomeNoUpgrade)
	}
	if resp.Seeds != 30 {
		t.Errorf("Seeds = %d, want 30", resp.Seeds)
	}

	// Only one ownership row either way.
	var count int64
	db.Model(&OwnedBird{}).Where("user_id = ? AND bird_id = ?", user.ID, 2).Count(&count)
	if count != 1 {
		t.Errorf("ownership rows = %d, want 1", count)
	}
}

func TestPurchaseRerollUpgradesInPlace(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 50)

	if _, err := svc.Purchase(user.ID, 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	svc.roll = func() float64 { return 0.0 }
	resp, err := svc.Purchase(user.ID, 2)
	if err != nil {
		t.Fatalf("re-roll failed: %v", err)
	}
	if resp.Outcome != OutcomeShinyUpgrade || !resp.IsShiny {
		t.Errorf("Outcome = %q IsShiny = %v, want shiny upgrade", resp.Outcome, resp.IsShiny)
	}

	// Shiny already owned: further purchases reject without spending.
	seedsBefore := resp.Seeds
	if _, err := svc.Purchase(user.ID, 2); !errors.Is(err, ErrAlreadyMaxed) {
		t.Fatalf("purchase of maxed bird = %v, want ErrAlreadyMaxed", err)
	}
	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.Seeds != seedsBefore {
		t.Errorf("Seeds = %d, want %d (no spend on rejection)", saved.Seeds, seedsBefore)
	}
}

func TestSettleDuplicateTreatsNormalOwnerAsReroll(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 1, 100)

	// Another purchase of the same bird committed first, landing only
	// the normal variant.
	winner := OwnedBird{ID: uuid.New(), UserID: user.ID, BirdID: 2}
	if err := db.Create(&winner).Error; err != nil {
		t.Fatalf("failed to seed ownership: %v", err)
	}

	owned, outcome, err := settleDuplicate(db, user.ID, 2, false)
	if err != nil {
		t.Fatalf("settleDuplicate failed: %v", err)
	}
	if outcome != OutcomeNoUpgrade {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeNoUpgrade)
	}
	if owned.IsShiny {
		t.Error("IsShiny = true on a failed roll")
	}

	owned, outcome, err = settleDuplicate(db, user.ID, 2, true)
	if err != nil {
		t.Fatalf("settleDuplicate with shiny roll failed: %v", err)
	}
	if outcome != OutcomeShinyUpgrade || !owned.IsShiny {
		t.Errorf("outcome = %q shiny = %v, want upgrade in place", outcome, owned.IsShiny)
	}
	var saved OwnedBird
	db.First(&saved, "id = ?", winner.ID)
	if !saved.IsShiny {
		t.Error("upgrade not persisted")
	}

	// Only a shiny-owning winner makes the losing purchase maxed out.
	if _, _, err := settleDuplicate(db, user.ID, 2, false); !errors.Is(err, ErrAlreadyMaxed) {
		t.Errorf("err = %v, want ErrAlreadyMaxed", err)
	}
}

func TestPurchaseGuards(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 5)

	if _, err := svc.Purchase(user.ID, 999); !errors.Is(err, ErrBirdNotFound) {
		t.Errorf("unknown bird = %v, want ErrBirdNotFound", err)
	}
	// Bird 4 needs level 3.
	if _, err := svc.Purchase(user.ID, 4); !errors.Is(err, ErrLevelLocked) {
		t.Errorf("locked bird = %v, want ErrLevelLocked", err)
	}
	// Bird 2 costs 10, user has 5.
	if _, err := svc.Purchase(user.ID, 2); !errors.Is(err, ErrInsufficientSeeds) {
		t.Errorf("broke purchase = %v, want ErrInsufficientSeeds", err)
	}

	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.Seeds != 5 {
		t.Errorf("Seeds after rejected purchases = %d, want 5", saved.Seeds)
	}
}

func TestEquip(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 50)

	if _, err := svc.Equip(user.ID, 2, false); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("equip unowned = %v, want ErrNotOwned", err)
	}

	if _, err := svc.Purchase(user.ID, 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if _, err := svc.Equip(user.ID, 2, true); !errors.Is(err, ErrShinyNotOwned) {
		t.Fatalf("equip shiny unowned = %v, want ErrShinyNotOwned", err)
	}

	resp, err := svc.Equip(user.ID, 2, false)
	if err != nil {
		t.Fatalf("Equip failed: %v", err)
	}
	if resp.Multiplier != 1.0 {
		t.Errorf("Multiplier = %v, want 1.0", resp.Multiplier)
	}

	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.CurrentBirdID == nil || *saved.CurrentBirdID != 2 || saved.CurrentBirdShiny {
		t.Errorf("equipped state = (%v, %v)", saved.CurrentBirdID, saved.CurrentBirdShiny)
	}
}

func TestShopAndCollection(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 50)

	if _, err := svc.Purchase(user.ID, 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}

	shop, err := svc.Shop(user.ID)
	if err != nil {
		t.Fatalf("Shop failed: %v", err)
	}
	if len(shop) != len(game.DefaultCatalog().Birds) {
		t.Errorf("shop size = %d, want full catalog", len(shop))
	}
	for _, b := range shop {
		if b.ID == 2 {
			if !b.OwnedNormal || !b.Equipped {
				t.Errorf("bird 2 flags = owned %v equipped %v", b.OwnedNormal, b.Equipped)
			}
		} else if b.OwnedNormal {
			t.Errorf("bird %d unexpectedly owned", b.ID)
		}
	}

	collection, err := svc.Collection(user.ID)
	if err != nil {
		t.Fatalf("Collection failed: %v", err)
	}
	if len(collection) != 1 || collection[0].ID != 2 {
		t.Errorf("collection = %+v, want just bird 2", collection)
	}
}

func TestGrantStarter(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 0)

	if err := svc.GrantStarter(db, user); err != nil {
		t.Fatalf("GrantStarter failed: %v", err)
	}

	var owned OwnedBird
	if err := db.Where("user_id = ? AND bird_id = ?", user.ID, StarterBirdID).First(&owned).Error; err != nil {
		t.Fatalf("starter row missing: %v", err)
	}
	if owned.IsShiny {
		t.Error("starter bird is shiny")
	}

	var saved models.User
	db.First(&saved, "id = ?", user.ID)
	if saved.CurrentBirdID == nil || *saved.CurrentBirdID != StarterBirdID {
		t.Errorf("starter not equipped: %v", saved.CurrentBirdID)
	}
}

func TestPurgeUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(db, 0.99)
	user := newTestUser(t, db, 1, 50)

	if _, err := svc.Purchase(user.ID, 2); err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if err := svc.PurgeUser(db, user); err != nil {
		t.Fatalf("PurgeUser failed: %v", err)
	}

	var count int64
	db.Model(&OwnedBird{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 0 {
		t.Errorf("owned birds after purge = %d, want 0", count)
	}
}
