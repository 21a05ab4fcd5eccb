package app

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"todays-meal/internal/metrics"
	"todays-meal/internal/planner"
	"todays-meal/internal/recipe"
	"todays-meal/internal/shopping"
)

// EmptyStateText is shown whenever a generation yields nothing, failed or not.
const EmptyStateText = "Ready to cook? Enter ingredients..."

// RetryHint is appended to the empty state after a failure worth retrying.
const RetryHint = "The kitchen is busy right now. Please try again."

// EmptyState returns the empty-state text for a generation that produced no items.
func EmptyState(err error) string {
	if IsRetryable(err) {
		return EmptyStateText + "\n" + RetryHint
	}
	return EmptyStateText
}

// IsRetryable reports whether err is a generation failure worth asking again for.
func IsRetryable(err error) bool {
	var genErr *planner.GenerationError
	return errors.As(err, &genErr) && genErr.IsRetryable()
}

// VegMarker renders the veg / non-veg label used across front ends.
func VegMarker(isVeg bool) string {
	if isVeg {
		return "VEG"
	}
	return "NON-VEG"
}

// Summary is the one-line card text: time, difficulty, calories and cuisine.
func Summary(r recipe.Recipe) string {
	parts := []string{r.CookingTime, string(r.Difficulty)}
	if r.Calories > 0 {
		parts = append(parts, fmt.Sprintf("%.0f kcal", r.Calories))
	}
	if r.Cuisine != "" {
		parts = append(parts, r.Cuisine)
	}
	return strings.Join(parts, " | ")
}

// WriteRecipe prints a numbered recipe with its ingredients and steps.
func WriteRecipe(w io.Writer, n int, r recipe.Recipe) {
	fmt.Fprintf(w, "%d. %s [%s]\n", n, r.Name, VegMarker(r.IsVeg))
	fmt.Fprintf(w, "   %s\n", Summary(r))
	if r.Description != "" {
		fmt.Fprintf(w, "   %s\n", r.Description)
	}
	fmt.Fprintf(w, "   Ingredients: %s\n", strings.Join(r.Ingredients, ", "))
	fmt.Fprintln(w, "   Steps:")
	for i, step := range r.Steps {
		fmt.Fprintf(w, "     %d. %s\n", i+1, step)
	}
	fmt.Fprintln(w)
}

// WritePlan prints each plan day in the order received.
func WritePlan(w io.Writer, days []recipe.WeeklyPlanDay) {
	fmt.Fprintln(w, "=== WEEKLY MEAL PLAN ===")
	for _, d := range days {
		fmt.Fprintf(w, "\n%s\n", d.Day)
		if d.PlanetaryNote != "" {
			fmt.Fprintf(w, "  Note: %s\n", d.PlanetaryNote)
		}
		for _, m := range d.Meals() {
			r, _ := d.Slot(m)
			fmt.Fprintf(w, "  %-10s %s (%s)\n", MealLabel(m)+":", r.Name, r.CookingTime)
		}
	}

	items := shopping.FromPlan(days)
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, "\n=== SHOPPING LIST ===")
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", it.Name)
	}
}

// MealLabel capitalises a meal slot for display.
func MealLabel(m recipe.Meal) string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// WriteUsage prints per-day token totals.
func WriteUsage(w io.Writer, usage []metrics.DailyUsage) {
	fmt.Fprintln(w, "=== GENERATION USAGE ===")
	if len(usage) == 0 {
		fmt.Fprintln(w, "No data yet")
		return
	}
	for _, d := range usage {
		fmt.Fprintf(w, "%s: %d tokens (%d prompt, %d completion), %d calls, %d failed, avg %d ms\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalPrompt, d.TotalCompletion,
			d.TotalExecution, d.Failures, d.AvgLatencyMS)
	}
}
