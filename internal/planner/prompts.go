package planner

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"todays-meal/internal/recipe"
)

//go:embed suggest_prompt.md
var suggestPrompt string

//go:embed quick_prompt.md
var quickPrompt string

//go:embed weekly_plan_prompt.md
var weeklyPlanPrompt string

//go:embed trending_prompt.md
var trendingPrompt string

// wildcard stands in for any filter the user left blank.
const wildcard = "Any"

type suggestPromptData struct {
	Ingredients   string
	MealType      string
	TimeAvailable string
	SpiceLevel    string
	Cuisine       string
	VegPreference string
}

type quickPromptData struct {
	VegPreference string
}

type weeklyPlanPromptData struct {
	Diet string
}

func orWildcard(s string) string {
	if strings.TrimSpace(s) == "" {
		return wildcard
	}
	return s
}

func vegPreference(isVeg bool) string {
	if isVeg {
		return "Vegetarian ONLY"
	}
	return "Non-Veg allowed"
}

// buildSuggestPrompt renders the search prompt. In quick mode only IsVeg is used.
func buildSuggestPrompt(filters recipe.SearchFilters, quickMode bool) (string, error) {
	if quickMode {
		return render("quick", quickPrompt, quickPromptData{VegPreference: vegPreference(filters.IsVeg)})
	}

	timeAvailable := wildcard
	if t := strings.TrimSpace(filters.TimeLimit); t != "" {
		timeAvailable = t + " minutes"
	}

	return render("suggest", suggestPrompt, suggestPromptData{
		Ingredients:   orWildcard(filters.Ingredients),
		MealType:      orWildcard(filters.MealType),
		TimeAvailable: timeAvailable,
		SpiceLevel:    orWildcard(string(filters.SpiceLevel)),
		Cuisine:       orWildcard(filters.Cuisine),
		VegPreference: vegPreference(filters.IsVeg),
	})
}

func buildWeeklyPlanPrompt(isVeg bool) (string, error) {
	diet := "Non-Vegetarian/Mixed"
	if isVeg {
		diet = "Vegetarian"
	}
	return render("weekly_plan", weeklyPlanPrompt, weeklyPlanPromptData{Diet: diet})
}

func render(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}
