package planner

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"todays-meal/internal/llm"
	"todays-meal/internal/recipe"
	"todays-meal/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// Operation names used in errors, logs and metrics.
const (
	OpSuggestRecipes = "suggest_recipes"
	OpQuickRecipes   = "quick_recipes"
	OpWeeklyPlan     = "weekly_plan"
	OpTrending       = "trending_recipes"
)

// maxLoggedResponse caps how much of a bad response ends up in the logs.
const maxLoggedResponse = 512

// Recorder receives one GenerationMeta per call.
type Recorder interface {
	RecordGeneration(ctx context.Context, meta shared.GenerationMeta)
}

// Planner turns user intent into schema-constrained generations.
// It keeps no state between calls and is safe for concurrent use.
type Planner struct {
	gen      llm.StructuredGenerator
	logger   *zap.Logger
	recorder Recorder
}

// NewPlanner creates a new Planner instance. logger and recorder may be nil.
func NewPlanner(gen llm.StructuredGenerator, logger *zap.Logger, recorder Recorder) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{
		gen:      gen,
		logger:   logger,
		recorder: recorder,
	}
}

// SuggestRecipes asks for recipes matching filters. In quick mode the filters
// other than IsVeg are ignored and pantry-staple meals are requested instead.
func (p *Planner) SuggestRecipes(ctx context.Context, filters recipe.SearchFilters, quickMode bool) ([]recipe.Recipe, error) {
	op := OpSuggestRecipes
	if quickMode {
		op = OpQuickRecipes
	}

	prompt, err := buildSuggestPrompt(filters, quickMode)
	if err != nil {
		return []recipe.Recipe{}, &GenerationError{Op: op, Kind: KindTransport, Err: err}
	}

	return generate(ctx, p, op, prompt, recipe.RecipeListSchema, recipe.DecodeRecipes)
}

// GenerateWeeklyPlan asks for a Monday to Sunday plan. The days come back in
// whatever number and order the service produced.
func (p *Planner) GenerateWeeklyPlan(ctx context.Context, isVeg bool) ([]recipe.WeeklyPlanDay, error) {
	prompt, err := buildWeeklyPlanPrompt(isVeg)
	if err != nil {
		return []recipe.WeeklyPlanDay{}, &GenerationError{Op: OpWeeklyPlan, Kind: KindTransport, Err: err}
	}

	return generate(ctx, p, OpWeeklyPlan, prompt, recipe.WeeklyPlanSchema, recipe.DecodeWeeklyPlan)
}

// GetTrendingRecipes asks for a handful of trending or seasonal recipes.
func (p *Planner) GetTrendingRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return generate(ctx, p, OpTrending, strings.TrimSpace(trendingPrompt), recipe.RecipeListSchema, recipe.DecodeRecipes)
}

func generate[T any](
	ctx context.Context,
	p *Planner,
	op, prompt string,
	schema *genai.Schema,
	decode func([]byte) ([]T, error),
) ([]T, error) {
	start := time.Now()
	resp, err := p.gen.GenerateJSON(ctx, prompt, schema)
	meta := shared.GenerationMeta{
		Operation: op,
		Usage:     resp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return []T{}, p.fail(ctx, meta, &GenerationError{Op: op, Kind: KindTransport, Err: err}, "")
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		content = "[]"
	}

	items, err := decode([]byte(content))
	if err != nil {
		kind := KindMalformed
		var shapeErr *recipe.ShapeError
		if errors.As(err, &shapeErr) {
			kind = KindShapeMismatch
		}
		return []T{}, p.fail(ctx, meta, &GenerationError{Op: op, Kind: kind, Err: err}, content)
	}

	meta.Outcome = shared.OutcomeOK
	if len(items) == 0 {
		meta.Outcome = shared.OutcomeEmpty
	}
	p.record(ctx, meta)

	p.logger.Debug("generation finished",
		zap.String("op", op),
		zap.Int("items", len(items)),
		zap.Duration("latency", meta.Latency),
		zap.Int("total_tokens", meta.Usage.TotalTokens),
	)

	return items, nil
}

func (p *Planner) fail(ctx context.Context, meta shared.GenerationMeta, genErr *GenerationError, content string) error {
	meta.Outcome = shared.OutcomeError
	meta.ErrorKind = string(genErr.Kind)
	p.record(ctx, meta)

	fields := []zap.Field{
		zap.String("op", genErr.Op),
		zap.String("kind", string(genErr.Kind)),
		zap.Duration("latency", meta.Latency),
		zap.Error(genErr.Err),
	}
	if content != "" {
		fields = append(fields, zap.String("response", snippet(content)))
	}
	p.logger.Error("generation failed", fields...)

	return genErr
}

// snippet cuts content to maxLoggedResponse bytes without splitting a rune.
func snippet(content string) string {
	if len(content) <= maxLoggedResponse {
		return content
	}
	n := maxLoggedResponse
	for n > 0 && !utf8.RuneStart(content[n]) {
		n--
	}
	return content[:n] + "..."
}

func (p *Planner) record(ctx context.Context, meta shared.GenerationMeta) {
	if p.recorder != nil {
		p.recorder.RecordGeneration(ctx, meta)
	}
}
