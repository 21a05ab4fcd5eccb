package shopping

import (
	"strings"

	"todays-meal/internal/recipe"
)

// Item is one line of a shopping list with the dishes that need it.
type Item struct {
	Name   string
	Dishes []string
}

// FromPlan consolidates the ingredients of every meal in a weekly plan.
// Ingredients are matched ignoring case and surrounding space and keep the
// order in which they first appear. Quantities are not summed.
func FromPlan(days []recipe.WeeklyPlanDay) []Item {
	var recipes []recipe.Recipe
	for _, d := range days {
		for _, m := range d.Meals() {
			r, _ := d.Slot(m)
			recipes = append(recipes, r)
		}
	}
	return FromRecipes(recipes)
}

// FromRecipes consolidates the ingredients of recipes the same way FromPlan does.
func FromRecipes(recipes []recipe.Recipe) []Item {
	items := []Item{}
	index := make(map[string]int)

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			name := strings.TrimSpace(ing)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			i, ok := index[key]
			if !ok {
				index[key] = len(items)
				items = append(items, Item{Name: name, Dishes: []string{r.Name}})
				continue
			}
			if !contains(items[i].Dishes, r.Name) {
				items[i].Dishes = append(items[i].Dishes, r.Name)
			}
		}
	}
	return items
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
