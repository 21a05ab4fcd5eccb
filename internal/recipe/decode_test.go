package recipe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aloo = `{
	"name": "Aloo Paratha",
	"description": "Stuffed flatbread",
	"cookingTime": "30 mins",
	"difficulty": "Medium",
	"calories": 320,
	"ingredients": ["Potato", "Atta"],
	"steps": ["Boil potatoes", "Stuff and roll", "Cook on tawa"],
	"isVeg": true,
	"cuisine": "Punjabi",
	"imageKeyword": "aloo paratha"
}`

func TestDecodeRecipes(t *testing.T) {
	t.Run("EmptyArray", func(t *testing.T) {
		recipes, err := DecodeRecipes([]byte("[]"))
		require.NoError(t, err)
		assert.NotNil(t, recipes)
		assert.Empty(t, recipes)
	})

	t.Run("FieldsKeptAsIs", func(t *testing.T) {
		recipes, err := DecodeRecipes([]byte("[" + aloo + "]"))
		require.NoError(t, err)
		require.Len(t, recipes, 1)

		assert.Equal(t, Recipe{
			Name:         "Aloo Paratha",
			Description:  "Stuffed flatbread",
			CookingTime:  "30 mins",
			Difficulty:   DifficultyMedium,
			Calories:     320,
			Ingredients:  []string{"Potato", "Atta"},
			Steps:        []string{"Boil potatoes", "Stuff and roll", "Cook on tawa"},
			IsVeg:        true,
			Cuisine:      "Punjabi",
			ImageKeyword: "aloo paratha",
		}, recipes[0])
	})

	t.Run("FalseIsVegIsPresent", func(t *testing.T) {
		payload := `[{"name":"Egg Bhurji","description":"Spiced scramble","cookingTime":"10 mins","difficulty":"Easy","ingredients":["Eggs"],"steps":["Scramble"],"isVeg":false,"cuisine":"North Indian"}]`
		recipes, err := DecodeRecipes([]byte(payload))
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.False(t, recipes[0].IsVeg)
		assert.Zero(t, recipes[0].Calories)
	})

	t.Run("EmptyStringsArePresent", func(t *testing.T) {
		blank := `{"name":"Jeera Rice","description":"","cookingTime":"20 mins","difficulty":"Easy","ingredients":["Rice","Cumin"],"steps":["Temper","Cook"],"isVeg":true,"cuisine":""}`
		recipes, err := DecodeRecipes([]byte("[" + aloo + "," + blank + "]"))
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, "Aloo Paratha", recipes[0].Name)
		assert.Equal(t, "Jeera Rice", recipes[1].Name)
		assert.Empty(t, recipes[1].Description)
		assert.Empty(t, recipes[1].Cuisine)
	})

	t.Run("EmptyPlanetaryNoteIsPresent", func(t *testing.T) {
		payload := `[{"day":"Sunday","planetaryNote":"","breakfast":` + aloo + `,"lunch":` + aloo + `,"dinner":` + aloo + `}]`
		days, err := DecodeWeeklyPlan([]byte(payload))
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Empty(t, days[0].PlanetaryNote)
	})

	t.Run("EmptyDifficultyOutsideEnum", func(t *testing.T) {
		payload := `[{"name":"Dal","description":"d","cookingTime":"20 mins","difficulty":"","ingredients":["Dal"],"steps":["Boil"],"isVeg":true,"cuisine":"Bengali"}]`
		_, err := DecodeRecipes([]byte(payload))

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Contains(t, shapeErr.Problems, "items[0].difficulty: oneof=Easy Medium Hard")
	})

	malformed := map[string]string{
		"NotJSON":    "{not json",
		"Object":     `{"name":"x"}`,
		"Null":       "null",
		"Blank":      "   ",
		"WrongTypes": `[{"name": 5}]`,
	}
	for name, payload := range malformed {
		t.Run("Malformed"+name, func(t *testing.T) {
			recipes, err := DecodeRecipes([]byte(payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
			assert.NotNil(t, recipes)
			assert.Empty(t, recipes)
		})
	}

	t.Run("MissingRequiredField", func(t *testing.T) {
		payload := `[{"name":"Dal","description":"Lentils","cookingTime":"25 mins","difficulty":"Easy","ingredients":["Toor dal"],"isVeg":true,"cuisine":"Gujarati"}]`
		recipes, err := DecodeRecipes([]byte(payload))

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Contains(t, shapeErr.Problems, "items[0].steps: required")
		assert.Empty(t, recipes)
	})

	t.Run("MissingIsVeg", func(t *testing.T) {
		payload := `[{"name":"Dal","description":"Lentils","cookingTime":"25 mins","difficulty":"Easy","ingredients":["Toor dal"],"steps":["Boil"],"cuisine":"Gujarati"}]`
		_, err := DecodeRecipes([]byte(payload))

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Contains(t, shapeErr.Problems, "items[0].isVeg: required")
	})

	t.Run("DifficultyOutsideEnum", func(t *testing.T) {
		payload := `[{"name":"Dal","description":"Lentils","cookingTime":"25 mins","difficulty":"Trivial","ingredients":["Toor dal"],"steps":["Boil"],"isVeg":true,"cuisine":"Gujarati"}]`
		_, err := DecodeRecipes([]byte(payload))

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Contains(t, shapeErr.Problems, "items[0].difficulty: oneof=Easy Medium Hard")
	})
}

func TestDecodeWeeklyPlan(t *testing.T) {
	t.Run("KeepsOrderAndCount", func(t *testing.T) {
		payload := `[
			{"day":"Tuesday","planetaryNote":"Mars likes red lentils","breakfast":` + aloo + `,"lunch":` + aloo + `,"dinner":` + aloo + `},
			{"day":"Monday","planetaryNote":"White food for the Moon","breakfast":` + aloo + `,"lunch":` + aloo + `,"dinner":` + aloo + `}
		]`
		days, err := DecodeWeeklyPlan([]byte(payload))
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, "Tuesday", days[0].Day)
		assert.Equal(t, "Monday", days[1].Day)
		assert.Equal(t, "Aloo Paratha", days[1].Dinner.Name)
	})

	t.Run("MissingMealSlot", func(t *testing.T) {
		payload := `[{"day":"Monday","planetaryNote":"Moon","breakfast":` + aloo + `,"lunch":` + aloo + `}]`
		days, err := DecodeWeeklyPlan([]byte(payload))

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Contains(t, shapeErr.Problems, "items[0].dinner: required")
		assert.Empty(t, days)
	})

	t.Run("NestedRecipeChecked", func(t *testing.T) {
		broken := `{"name":"Upma","description":"Semolina","cookingTime":"15 mins","difficulty":"Easy","ingredients":[],"steps":["Roast"],"isVeg":true,"cuisine":"South Indian"}`
		payload := `[{"day":"Monday","planetaryNote":"Moon","breakfast":` + broken + `,"lunch":` + aloo + `,"dinner":` + aloo + `}]`
		_, err := DecodeWeeklyPlan([]byte(payload))

		var shapeErr *ShapeError
		require.True(t, errors.As(err, &shapeErr), "got %v", err)
		assert.Contains(t, shapeErr.Problems, "items[0].breakfast.ingredients: min=1")
	})
}

func TestParseSpiceLevel(t *testing.T) {
	tests := []struct {
		in   string
		want SpiceLevel
		ok   bool
	}{
		{"low", SpiceLow, true},
		{" MEDIUM ", SpiceMedium, true},
		{"High", SpiceHigh, true},
		{"extra hot", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSpiceLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSpiceLevel(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
