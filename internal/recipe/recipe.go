package recipe

import "strings"

// Difficulty is how hard a dish is to cook.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// SpiceLevel is the heat the user asked for.
type SpiceLevel string

const (
	SpiceLow    SpiceLevel = "Low"
	SpiceMedium SpiceLevel = "Medium"
	SpiceHigh   SpiceLevel = "High"
)

// ParseSpiceLevel accepts any casing of Low, Medium or High.
func ParseSpiceLevel(s string) (SpiceLevel, bool) {
	for _, l := range []SpiceLevel{SpiceLow, SpiceMedium, SpiceHigh} {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, true
		}
	}
	return "", false
}

// Cuisines and MealTypes are the choices the filter UI offers. Filters may
// still carry free text outside these lists.
var (
	Cuisines = []string{
		"North Indian",
		"South Indian",
		"Maharashtrian",
		"Bengali",
		"Gujarati",
		"Punjabi",
		"Assamese",
		"Indo-Chinese",
	}
	MealTypes  = []string{"Breakfast", "Lunch", "Dinner", "Snack", "Tiffin"}
	TimeLimits = []string{"10", "20", "30+"}
)

// Recipe is a single dish suggestion as generated by the model.
type Recipe struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	CookingTime  string     `json:"cookingTime"` // e.g. "20 mins"
	Difficulty   Difficulty `json:"difficulty"`
	Calories     float64    `json:"calories"` // kcal
	Ingredients  []string   `json:"ingredients"`
	Steps        []string   `json:"steps"`
	IsVeg        bool       `json:"isVeg"`
	Cuisine      string     `json:"cuisine"`
	ImageKeyword string     `json:"imageKeyword,omitempty"`
}

// Meal names a slot in a plan day.
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
)

// WeeklyPlanDay is one day of a 7-day plan.
type WeeklyPlanDay struct {
	Day           string `json:"day"`
	PlanetaryNote string `json:"planetaryNote"`
	Breakfast     Recipe `json:"breakfast"`
	Lunch         Recipe `json:"lunch"`
	Dinner        Recipe `json:"dinner"`
}

// Meals returns the day's slots in serving order.
func (d WeeklyPlanDay) Meals() []Meal {
	return []Meal{Breakfast, Lunch, Dinner}
}

// Slot returns the recipe for a meal slot.
func (d WeeklyPlanDay) Slot(m Meal) (Recipe, bool) {
	switch m {
	case Breakfast:
		return d.Breakfast, true
	case Lunch:
		return d.Lunch, true
	case Dinner:
		return d.Dinner, true
	}
	return Recipe{}, false
}

// SearchFilters are the user's request parameters. Blank fields mean
// "no constraint".
type SearchFilters struct {
	IsVeg       bool       `json:"isVeg"`
	Ingredients string     `json:"ingredients"`
	TimeLimit   string     `json:"timeLimit"` // minutes: "10", "20", "30+"
	SpiceLevel  SpiceLevel `json:"spiceLevel"`
	Cuisine     string     `json:"cuisine"`
	MealType    string     `json:"mealType"`
}

// DefaultFilters mirrors the initial state of the search form.
func DefaultFilters() SearchFilters {
	return SearchFilters{
		IsVeg:      true,
		TimeLimit:  "30",
		SpiceLevel: SpiceMedium,
	}
}
