package acceptance_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"todays-meal/internal/app"
	"todays-meal/internal/config"
	"todays-meal/internal/database"
	"todays-meal/internal/llm"
	"todays-meal/internal/metrics"
	"todays-meal/internal/planner"
	"todays-meal/internal/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipeJSON = `{"name":"Masala Dosa","description":"Crisp rice crepe","cookingTime":"30 mins","difficulty":"Medium","calories":400,"ingredients":["Dosa batter","Potato"],"steps":["Spread batter","Fill and fold"],"isVeg":true,"cuisine":"South Indian"}`

// fakeCompletions mimics an OpenAI-compatible chat completions endpoint. The
// reply depends on which prompt arrives.
func fakeCompletions(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content

		var content string
		switch {
		case strings.Contains(prompt, "trending"):
			http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
			return
		case strings.Contains(prompt, "7-day"):
			day := `{"day":"Monday","planetaryNote":"White foods for the Moon.","breakfast":` + recipeJSON + `,"lunch":` + recipeJSON + `,"dinner":` + recipeJSON + `}`
			content = `{"items":[` + day + `]}`
		case strings.Contains(prompt, "ultra-simple"):
			content = `{"items":[{"name":"Maggi"}]}`
		default:
			content = `{"items":[` + recipeJSON + `]}`
		}

		resp := map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
			"usage":   map[string]int{"prompt_tokens": 100, "completion_tokens": 200, "total_tokens": 300},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerationWorkflow(t *testing.T) {
	ctx := context.Background()

	var calls atomic.Int32
	server := fakeCompletions(t, &calls)
	defer server.Close()

	cfg := &config.Config{
		LLMProvider:  config.ProviderGroq,
		GroqAPIKey:   "test-key",
		GroqModel:    "llama-test",
		GroqAPIURL:   server.URL,
		DatabasePath: filepath.Join(t.TempDir(), "data", "meals.db"),
	}

	client, err := llm.NewFromConfig(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	db, err := database.NewDB(cfg.DatabasePath)
	require.NoError(t, err)
	store := metrics.NewStore(db.SQL)
	defer store.Close()

	collector := metrics.NewCollector()
	mealPlanner := planner.NewPlanner(client, nil, metrics.NewRecorder(store, collector, nil))

	var out bytes.Buffer
	application := app.NewApp(mealPlanner, store, nil, &out, 0)

	// 1. Ingredient search
	filters := recipe.DefaultFilters()
	filters.Ingredients = "Potato"
	require.NoError(t, application.Suggest(ctx, filters))
	assert.Contains(t, out.String(), "1. Masala Dosa [VEG]")

	// 2. Weekly plan
	out.Reset()
	require.NoError(t, application.Plan(ctx, true))
	assert.Contains(t, out.String(), "White foods for the Moon.")
	assert.Contains(t, out.String(), "- Dosa batter")

	// 3. Quick mode answer that breaks the schema
	out.Reset()
	err = application.Nothing(ctx, true)
	assert.Equal(t, planner.KindShapeMismatch, planner.KindOf(err))
	assert.Contains(t, out.String(), app.EmptyStateText)

	// 4. Service failure
	out.Reset()
	err = application.Trending(ctx)
	assert.Equal(t, planner.KindTransport, planner.KindOf(err))
	assert.Contains(t, out.String(), app.RetryHint)

	assert.Equal(t, int32(4), calls.Load())

	// Usage was recorded for every call, failures included.
	usage, err := store.GetDailyUsage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 4, usage[0].TotalExecution)
	assert.Equal(t, 2, usage[0].Failures)
	assert.Equal(t, 300, usage[0].TotalPrompt)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `generations_total{operation="suggest_recipes",outcome="ok"} 1`)
	assert.Contains(t, body, `generations_total{operation="trending_recipes",outcome="error"} 1`)
}
