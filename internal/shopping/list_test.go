package shopping

import (
	"testing"

	"todays-meal/internal/recipe"

	"github.com/stretchr/testify/assert"
)

func TestFromPlan(t *testing.T) {
	poha := recipe.Recipe{Name: "Poha", Ingredients: []string{"Poha", "Onion", "Peanuts"}}
	dal := recipe.Recipe{Name: "Dal", Ingredients: []string{"Toor dal", " onion ", "Ghee"}}
	khichdi := recipe.Recipe{Name: "Khichdi", Ingredients: []string{"Rice", "Toor Dal", "", "Ghee"}}

	days := []recipe.WeeklyPlanDay{
		{Day: "Monday", Breakfast: poha, Lunch: dal, Dinner: khichdi},
		{Day: "Tuesday", Breakfast: poha, Lunch: dal, Dinner: khichdi},
	}

	items := FromPlan(days)

	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	assert.Equal(t, []string{"Poha", "Onion", "Peanuts", "Toor dal", "Ghee", "Rice"}, names)
	assert.Equal(t, []string{"Poha", "Dal"}, items[1].Dishes)
	assert.Equal(t, []string{"Dal", "Khichdi"}, items[3].Dishes)
}

func TestFromPlan_Empty(t *testing.T) {
	items := FromPlan(nil)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
