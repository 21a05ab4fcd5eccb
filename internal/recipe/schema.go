package recipe

import "github.com/google/generative-ai-go/genai"

func stringList() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
}

// RecipeSchema is the structural contract for one generated Recipe.
var RecipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":        {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"cookingTime": {Type: genai.TypeString},
		"difficulty": {
			Type: genai.TypeString,
			Enum: []string{string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard)},
		},
		"calories":    {Type: genai.TypeNumber},
		"ingredients": stringList(),
		"steps":       stringList(),
		"isVeg":       {Type: genai.TypeBoolean},
		"cuisine":     {Type: genai.TypeString},
		"imageKeyword": {
			Type:        genai.TypeString,
			Description: "A simple english keyword suitable for an image lookup of this dish, e.g. 'paneer butter masala'",
		},
	},
	Required: []string{"name", "description", "cookingTime", "difficulty", "ingredients", "steps", "isVeg", "cuisine"},
}

// WeeklyPlanDaySchema is the structural contract for one plan day.
var WeeklyPlanDaySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"day":           {Type: genai.TypeString},
		"planetaryNote": {Type: genai.TypeString},
		"breakfast":     RecipeSchema,
		"lunch":         RecipeSchema,
		"dinner":        RecipeSchema,
	},
	Required: []string{"day", "planetaryNote", "breakfast", "lunch", "dinner"},
}

// RecipeListSchema and WeeklyPlanSchema are the response constraints the
// generation calls actually send.
var (
	RecipeListSchema = &genai.Schema{Type: genai.TypeArray, Items: RecipeSchema}
	WeeklyPlanSchema = &genai.Schema{Type: genai.TypeArray, Items: WeeklyPlanDaySchema}
)
