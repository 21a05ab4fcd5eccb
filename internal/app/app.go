package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"todays-meal/internal/metrics"
	"todays-meal/internal/recipe"

	"go.uber.org/zap"
)

// Generator is the set of generation calls the front ends rely on.
type Generator interface {
	SuggestRecipes(ctx context.Context, filters recipe.SearchFilters, quickMode bool) ([]recipe.Recipe, error)
	GenerateWeeklyPlan(ctx context.Context, isVeg bool) ([]recipe.WeeklyPlanDay, error)
	GetTrendingRecipes(ctx context.Context) ([]recipe.Recipe, error)
}

// UsageStore reads and prunes recorded generation usage.
type UsageStore interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	Cleanup(ctx context.Context, olderThanDays int) (int64, error)
}

// App holds the application's dependencies for terminal use.
type App struct {
	gen     Generator
	usage   UsageStore
	logger  *zap.Logger
	out     io.Writer
	timeout time.Duration
}

// NewApp creates and initializes a new App instance. usage may be nil when
// no database is configured; timeout <= 0 leaves calls unbounded.
func NewApp(gen Generator, usage UsageStore, logger *zap.Logger, out io.Writer, timeout time.Duration) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		gen:     gen,
		usage:   usage,
		logger:  logger,
		out:     out,
		timeout: timeout,
	}
}

// Suggest prints recipes matching filters.
func (a *App) Suggest(ctx context.Context, filters recipe.SearchFilters) error {
	ctx, cancel := a.bound(ctx)
	defer cancel()

	a.logger.Info("suggesting recipes",
		zap.String("ingredients", filters.Ingredients),
		zap.Bool("veg", filters.IsVeg),
	)
	recipes, err := a.gen.SuggestRecipes(ctx, filters, false)
	return a.printRecipes("Recipes for you", recipes, err)
}

// Nothing prints pantry-staple meals for an empty kitchen.
func (a *App) Nothing(ctx context.Context, isVeg bool) error {
	ctx, cancel := a.bound(ctx)
	defer cancel()

	recipes, err := a.gen.SuggestRecipes(ctx, recipe.SearchFilters{IsVeg: isVeg}, true)
	return a.printRecipes("Nothing at home? Try these", recipes, err)
}

// Trending prints trending and seasonal recipes.
func (a *App) Trending(ctx context.Context) error {
	ctx, cancel := a.bound(ctx)
	defer cancel()

	recipes, err := a.gen.GetTrendingRecipes(ctx)
	return a.printRecipes("Trending now", recipes, err)
}

// Plan prints a weekly plan.
func (a *App) Plan(ctx context.Context, isVeg bool) error {
	ctx, cancel := a.bound(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Planning your week...")
	days, err := a.gen.GenerateWeeklyPlan(ctx, isVeg)
	if len(days) == 0 {
		fmt.Fprintln(a.out, EmptyState(err))
		return err
	}

	WritePlan(a.out, days)
	return nil
}

// Usage prints per-day token totals for the last days.
func (a *App) Usage(ctx context.Context, days int) error {
	if a.usage == nil {
		return fmt.Errorf("metrics store not configured")
	}

	usage, err := a.usage.GetDailyUsage(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to read usage: %w", err)
	}

	WriteUsage(a.out, usage)
	return nil
}

// CleanupMetrics removes usage records older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) error {
	if a.usage == nil {
		return fmt.Errorf("metrics store not configured")
	}

	affected, err := a.usage.Cleanup(ctx, days)
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Fprintf(a.out, "Successfully removed %d old metric records.\n", affected)
	return nil
}

func (a *App) printRecipes(title string, recipes []recipe.Recipe, err error) error {
	if len(recipes) == 0 {
		fmt.Fprintln(a.out, EmptyState(err))
		return err
	}

	fmt.Fprintf(a.out, "=== %s ===\n\n", title)
	for i, r := range recipes {
		WriteRecipe(a.out, i+1, r)
	}
	return nil
}

func (a *App) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
