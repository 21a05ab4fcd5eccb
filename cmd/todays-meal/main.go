package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"todays-meal/internal/app"
	"todays-meal/internal/config"
	"todays-meal/internal/database"
	"todays-meal/internal/llm"
	"todays-meal/internal/logger"
	"todays-meal/internal/metrics"
	"todays-meal/internal/planner"
	"todays-meal/internal/recipe"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	defer log.Sync()

	if err := run(context.Background(), cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, command string, args []string) error {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	store := metrics.NewStore(db.SQL)
	defer store.Close()

	client, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize %s client: %w", cfg.LLMProvider, err)
	}
	defer client.Close()

	recorder := metrics.NewRecorder(store, nil, log)
	mealPlanner := planner.NewPlanner(client, log, recorder)
	application := app.NewApp(mealPlanner, store, log, os.Stdout, cfg.RequestTimeout)

	switch command {
	case "suggest":
		defaults := recipe.DefaultFilters()
		fs := flag.NewFlagSet("suggest", flag.ExitOnError)
		ingredients := fs.String("ingredients", "", "Ingredients you have, comma separated")
		veg := fs.Bool("veg", defaults.IsVeg, "Vegetarian only")
		timeLimit := fs.String("time", defaults.TimeLimit, "Time available in minutes (empty for any)")
		spice := fs.String("spice", string(defaults.SpiceLevel), "Spice level: low, medium, high (empty for any)")
		cuisine := fs.String("cuisine", "", "Cuisine, e.g. \"South Indian\"")
		meal := fs.String("meal", "", "Meal type, e.g. Breakfast")
		fs.Parse(args)

		filters := recipe.SearchFilters{
			IsVeg:       *veg,
			Ingredients: *ingredients,
			TimeLimit:   *timeLimit,
			Cuisine:     *cuisine,
			MealType:    *meal,
		}
		if *spice != "" {
			level, ok := recipe.ParseSpiceLevel(*spice)
			if !ok {
				return fmt.Errorf("unknown spice level %q", *spice)
			}
			filters.SpiceLevel = level
		}
		return application.Suggest(ctx, filters)

	case "nothing":
		fs := flag.NewFlagSet("nothing", flag.ExitOnError)
		veg := fs.Bool("veg", true, "Vegetarian only")
		fs.Parse(args)
		return application.Nothing(ctx, *veg)

	case "plan":
		fs := flag.NewFlagSet("plan", flag.ExitOnError)
		veg := fs.Bool("veg", true, "Vegetarian only")
		fs.Parse(args)
		return application.Plan(ctx, *veg)

	case "trending":
		return application.Trending(ctx)

	case "metrics":
		fs := flag.NewFlagSet("metrics", flag.ExitOnError)
		days := fs.Int("days", 7, "Show the last N days")
		fs.Parse(args)
		return application.Usage(ctx, *days)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		return application.CleanupMetrics(ctx, *days)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage() {
	fmt.Println("Usage: todays-meal <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  suggest            Suggest recipes for the given filters")
	fmt.Println("  nothing            Quick meals from pantry staples")
	fmt.Println("  plan               Generate a weekly meal plan")
	fmt.Println("  trending           Show trending and seasonal recipes")
	fmt.Println("  metrics            Show generation usage")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
