package game

// Bird is an immutable catalog entry for a purchasable collectible.
type Bird struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Rarity        string `json:"rarity"`
	LevelRequired int    `json:"level_required"`
}

// Habit is an immutable catalog entry for a built-in daily habit.
type Habit struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	XP       int    `json:"xp"`
	Category string `json:"category"`
}

// Catalog bundles the static bird and habit tables. It is built once at
// startup and injected into the modules that need it; nothing mutates
// it at runtime.
type Catalog struct {
	Birds  []Bird
	Habits []Habit

	birdsByID  map[int]Bird
	habitsByID map[int]Habit
}

func NewCatalog(birds []Bird, habits []Habit) *Catalog {
	c := &Catalog{
		Birds:      birds,
		Habits:     habits,
		birdsByID:  make(map[int]Bird, len(birds)),
		habitsByID: make(map[int]Habit, len(habits)),
	}
	for _, b := range birds {
		c.birdsByID[b.ID] = b
	}
	for _, h := range habits {
		c.habitsByID[h.ID] = h
	}
	return c
}

// DefaultCatalog returns the stock shop and habit list.
func DefaultCatalog() *Catalog {
	return NewCatalog(defaultBirds, defaultHabits)
}

func (c *Catalog) Bird(id int) (Bird, bool) {
	b, ok := c.birdsByID[id]
	return b, ok
}

func (c *Catalog) Habit(id int) (Habit, bool) {
	h, ok := c.habitsByID[id]
	return h, ok
}

var defaultBirds = []Bird{
	{ID: 1, Name: "Sparrow", Description: "A humble beginning.", Rarity: "common", LevelRequired: 1},
	{ID: 2, Name: "Robin", Description: "A cheerful companion.", Rarity: "common", LevelRequired: 1},
	{ID: 3, Name: "Finch", Description: "Small but mighty.", Rarity: "common", LevelRequired: 2},
	{ID: 4, Name: "Blue Jay", Description: "Bold and beautiful.", Rarity: "uncommon", LevelRequired: 3},
	{ID: 5, Name: "Cardinal", Description: "A vibrant spirit.", Rarity: "uncommon", LevelRequired: 4},
	{ID: 6, Name: "Woodpecker", Description: "Persistent worker.", Rarity: "uncommon", LevelRequired: 5},
	{ID: 7, Name: "Owl", Description: "Wise and watchful.", Rarity: "rare", LevelRequired: 7},
	{ID: 8, Name: "Hawk", Description: "Sharp-eyed hunter.", Rarity: "rare", LevelRequired: 9},
	{ID: 9, Name: "Falcon", Description: "Swift and precise.", Rarity: "rare", LevelRequired: 11},
	{ID: 10, Name: "Peacock", Description: "Majestic display.", Rarity: "epic", LevelRequired: 14},
	{ID: 11, Name: "Flamingo", Description: "Elegant stance.", Rarity: "epic", LevelRequired: 17},
	{ID: 12, Name: "Toucan", Description: "Tropical treasure.", Rarity: "epic", LevelRequired: 20},
	{ID: 13, Name: "Phoenix", Description: "Rise from the ashes.", Rarity: "legendary", LevelRequired: 25},
	{ID: 14, Name: "Thunderbird", Description: "Storm bringer.", Rarity: "legendary", LevelRequired: 30},
	{ID: 15, Name: "Golden Eagle", Description: "King of the skies.", Rarity: "legendary", LevelRequired: 35},
}

var defaultHabits = []Habit{
	{ID: 1, Name: "Study for 30 minutes", XP: 15, Category: "study"},
	{ID: 2, Name: "Complete homework", XP: 20, Category: "study"},
	{ID: 3, Name: "Read for 20 minutes", XP: 10, Category: "study"},
	{ID: 4, Name: "Review notes", XP: 10, Category: "study"},
	{ID: 5, Name: "Practice flashcards", XP: 10, Category: "study"},
	{ID: 6, Name: "Exercise for 30 minutes", XP: 15, Category: "health"},
	{ID: 7, Name: "Drink 8 glasses of water", XP: 10, Category: "health"},
	{ID: 8, Name: "Get 8 hours of sleep", XP: 15, Category: "health"},
	{ID: 9, Name: "Eat a healthy meal", XP: 10, Category: "health"},
	{ID: 10, Name: "Meditate for 10 minutes", XP: 10, Category: "health"},
	{ID: 11, Name: "Clean room/desk", XP: 10, Category: "productivity"},
	{ID: 12, Name: "Plan tomorrow's tasks", XP: 10, Category: "productivity"},
	{ID: 13, Name: "No social media for 2 hours", XP: 15, Category: "productivity"},
	{ID: 14, Name: "Attend all classes", XP: 20, Category: "productivity"},
	{ID: 15, Name: "Help a classmate", XP: 15, Category: "social"},
}
