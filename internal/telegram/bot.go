package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"todays-meal/internal/app"
	"todays-meal/internal/config"
	"todays-meal/internal/metrics"
	"todays-meal/internal/recipe"
	"todays-meal/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	thinkingText = "🧑‍🍳 <b>Cooking up ideas...</b>"
	staleText    = "That recipe is no longer available. Send your ingredients again."
	// Telegram rejects longer messages.
	maxMessageRunes = 4096
	// Room kept for the ellipsis and the closing tags of a clipped message.
	clipReserve = 64
)

// UsageReader reads recorded generation usage for the admin report.
type UsageReader interface {
	GetDailyUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
}

type messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot serves the recipe search and weekly plan over a Telegram webhook.
type Bot struct {
	api      messenger
	gen      app.Generator
	usage    UsageReader
	sessions *SessionStore
	cfg      *config.Config
	logger   *zap.Logger

	// spawn runs update processing after the webhook has been acknowledged.
	spawn func(func())
	wg    sync.WaitGroup
}

// NewBot initializes the Telegram API and sets the webhook.
func NewBot(cfg *config.Config, gen app.Generator, usage UsageReader, sessions *SessionStore, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("response", resp.Description))

	return newBot(api, cfg, gen, usage, sessions, logger), nil
}

func newBot(api messenger, cfg *config.Config, gen app.Generator, usage UsageReader, sessions *SessionStore, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bot{
		api:      api,
		gen:      gen,
		usage:    usage,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
	b.spawn = b.track
	return b
}

func (b *Bot) track(f func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		f()
	}()
}

// Wait blocks until every update accepted by HandleWebhook has been processed
// or ctx is done. Call it after the HTTP server has stopped taking requests.
func (b *Bot) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleWebhook acknowledges an update immediately and processes it in the background.
func (b *Bot) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		http.Error(w, "bad update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	b.spawn(func() { b.HandleUpdate(context.Background(), update) })
}

// HandleUpdate routes one update to the message or callback handlers.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) authorized(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	if !b.cfg.IsAllowed(user.ID) {
		b.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", user.ID),
			zap.String("username", user.UserName),
		)
		return false
	}
	return true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || !b.authorized(msg.From) {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	sess := b.sessions.Update(chatID, func(s *Session) { s.Filters.Ingredients = text })
	b.suggest(ctx, chatID, sess.Filters, false)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, formatHelp(b.sessions.Get(chatID).Filters), nil)

	case "veg":
		sess := b.sessions.Update(chatID, func(s *Session) { s.Filters.IsVeg = !s.Filters.IsVeg })
		b.reply(chatID, formatFilters(sess.Filters), nil)

	case "spice":
		var level recipe.SpiceLevel
		if !strings.EqualFold(arg, "any") {
			parsed, ok := recipe.ParseSpiceLevel(arg)
			if !ok {
				b.reply(chatID, "Usage: /spice low|medium|high|any", nil)
				return
			}
			level = parsed
		}
		b.setFilter(chatID, func(f *recipe.SearchFilters) { f.SpiceLevel = level })

	case "time":
		limit, ok := parseTimeLimit(arg)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Usage: /time %s|any", strings.Join(recipe.TimeLimits, "|")), nil)
			return
		}
		b.setFilter(chatID, func(f *recipe.SearchFilters) { f.TimeLimit = limit })

	case "cuisine":
		if arg == "" {
			b.reply(chatID, "Usage: /cuisine &lt;name&gt;|any\nFor example: "+esc(strings.Join(recipe.Cuisines, ", ")), nil)
			return
		}
		b.setFilter(chatID, func(f *recipe.SearchFilters) { f.Cuisine = canonical(arg, recipe.Cuisines) })

	case "meal":
		if arg == "" {
			b.reply(chatID, "Usage: /meal &lt;type&gt;|any\nFor example: "+esc(strings.Join(recipe.MealTypes, ", ")), nil)
			return
		}
		b.setFilter(chatID, func(f *recipe.SearchFilters) { f.MealType = canonical(arg, recipe.MealTypes) })

	case "filters":
		b.reply(chatID, formatFilters(b.sessions.Get(chatID).Filters), nil)

	case "nothing":
		b.suggest(ctx, chatID, b.sessions.Get(chatID).Filters, true)

	case "plan":
		if len(b.sessions.Get(chatID).Plan) > 0 {
			kb := confirmPlanKeyboard()
			b.reply(chatID, "🗓 You already have a weekly plan. A new one replaces it completely.", &kb)
			return
		}
		b.plan(ctx, chatID, 0)

	case "trending":
		b.trending(ctx, chatID)

	case "metrics":
		b.handleMetrics(ctx, chatID, msg.From.ID)

	default:
		b.reply(chatID, "Unknown command. Try /help.", nil)
	}
}

func (b *Bot) setFilter(chatID int64, fn func(*recipe.SearchFilters)) {
	sess := b.sessions.Update(chatID, func(s *Session) { fn(&s.Filters) })
	b.reply(chatID, formatFilters(sess.Filters), nil)
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if !b.authorized(q.From) {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID
	parts := strings.Split(q.Data, "|")

	switch parts[0] {
	case cbRecipe:
		sess := b.sessions.Get(chatID)
		n, err := strconv.Atoi(at(parts, 2))
		if !tagged(parts, 1, sess.RecipesTag) || err != nil || n < 0 || n >= len(sess.Recipes) {
			b.reply(chatID, staleText, nil)
			return
		}
		b.reply(chatID, formatRecipeDetail(sess.Recipes[n]), nil)

	case cbMeal:
		sess := b.sessions.Get(chatID)
		day, err := strconv.Atoi(at(parts, 2))
		if !tagged(parts, 1, sess.PlanTag) || err != nil || day < 0 || day >= len(sess.Plan) {
			b.reply(chatID, staleText, nil)
			return
		}
		r, ok := sess.Plan[day].Slot(recipe.Meal(at(parts, 3)))
		if !ok {
			b.reply(chatID, staleText, nil)
			return
		}
		b.reply(chatID, formatRecipeDetail(r), nil)

	case cbPlan:
		switch at(parts, 1) {
		case planRedo:
			b.plan(ctx, chatID, q.Message.MessageID)
		case planKeep:
			msgID := q.Message.MessageID
			sess := b.sessions.Update(chatID, func(s *Session) { s.PlanTag = msgID })
			b.showPlan(chatID, msgID, sess.Plan, nil)
		case planShop:
			sess := b.sessions.Get(chatID)
			if !tagged(parts, 2, sess.PlanTag) || len(sess.Plan) == 0 {
				b.reply(chatID, staleText, nil)
				return
			}
			b.reply(chatID, formatShoppingList(shopping.FromPlan(sess.Plan)), nil)
		}

	default:
		b.logger.Debug("unknown callback", zap.String("data", q.Data))
	}
}

func (b *Bot) suggest(ctx context.Context, chatID int64, filters recipe.SearchFilters, quick bool) {
	msgID, ok := b.thinking(chatID, 0)
	if !ok {
		return
	}

	ctx, cancel := b.bound(ctx)
	defer cancel()

	recipes, err := b.gen.SuggestRecipes(ctx, filters, quick)
	b.sessions.Update(chatID, func(s *Session) { s.Recipes, s.RecipesTag = recipes, msgID })

	title := "Recipes for you"
	if quick {
		title = "Nothing at home? Try these"
	}
	b.showRecipes(chatID, msgID, title, recipes, err)
}

func (b *Bot) trending(ctx context.Context, chatID int64) {
	msgID, ok := b.thinking(chatID, 0)
	if !ok {
		return
	}

	ctx, cancel := b.bound(ctx)
	defer cancel()

	recipes, err := b.gen.GetTrendingRecipes(ctx)
	b.sessions.Update(chatID, func(s *Session) { s.Recipes, s.RecipesTag = recipes, msgID })
	b.showRecipes(chatID, msgID, "Trending now", recipes, err)
}

func (b *Bot) plan(ctx context.Context, chatID int64, editID int) {
	msgID, ok := b.thinking(chatID, editID)
	if !ok {
		return
	}

	ctx, cancel := b.bound(ctx)
	defer cancel()

	isVeg := b.sessions.Get(chatID).Filters.IsVeg
	days, err := b.gen.GenerateWeeklyPlan(ctx, isVeg)
	b.sessions.Update(chatID, func(s *Session) { s.Plan, s.PlanTag = days, msgID })
	b.showPlan(chatID, msgID, days, err)
}

func (b *Bot) showRecipes(chatID int64, msgID int, title string, recipes []recipe.Recipe, err error) {
	if len(recipes) == 0 {
		b.edit(chatID, msgID, formatEmptyState(err), nil)
		return
	}
	kb := recipeKeyboard(msgID, recipes)
	b.edit(chatID, msgID, formatRecipeCards(title, recipes), &kb)
}

func (b *Bot) showPlan(chatID int64, msgID int, days []recipe.WeeklyPlanDay, err error) {
	if len(days) == 0 {
		b.edit(chatID, msgID, formatEmptyState(err), nil)
		return
	}
	kb := planKeyboard(msgID, days)
	b.edit(chatID, msgID, formatPlan(days), &kb)
}

func (b *Bot) handleMetrics(ctx context.Context, chatID, userID int64) {
	if b.cfg.AdminTelegramID == 0 || userID != b.cfg.AdminTelegramID {
		b.reply(chatID, "⛔ <b>Access Denied</b>: Admin only.", nil)
		return
	}
	if b.usage == nil {
		b.reply(chatID, "Metrics are not enabled.", nil)
		return
	}

	usage, err := b.usage.GetDailyUsage(ctx, 7)
	if err != nil {
		b.logger.Error("failed to read usage", zap.Error(err))
		b.reply(chatID, "❌ Error fetching metrics.", nil)
		return
	}

	health := metrics.GetSysHealth(filepath.Dir(b.cfg.DatabasePath))
	b.reply(chatID, formatUsageReport(usage, health), nil)
}

// thinking shows the progress text, editing editID when set and sending a
// new message otherwise. It returns the message to put the result in.
func (b *Bot) thinking(chatID int64, editID int) (int, bool) {
	if editID != 0 {
		b.edit(chatID, editID, thinkingText, nil)
		return editID, true
	}

	msg := tgbotapi.NewMessage(chatID, thinkingText)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("failed to send initial reply", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0, false
	}
	return sent.MessageID, true
}

func (b *Bot) reply(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, clip(text))
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	b.send(msg)
}

func (b *Bot) edit(chatID int64, msgID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	e := tgbotapi.NewEditMessageText(chatID, msgID, clip(text))
	e.ParseMode = tgbotapi.ModeHTML
	e.ReplyMarkup = markup
	b.send(e)
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("failed to send telegram message", zap.Error(err))
	}
}

func (b *Bot) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.cfg.RequestTimeout)
}

func parseTimeLimit(arg string) (string, bool) {
	if strings.EqualFold(arg, "any") {
		return "", true
	}
	for _, t := range recipe.TimeLimits {
		if arg == t {
			return t, true
		}
	}
	if n, err := strconv.Atoi(arg); err == nil && n > 0 {
		return arg, true
	}
	return "", false
}

// canonical maps arg onto a known spelling, keeps unknown values as typed
// and clears the filter for "any".
func canonical(arg string, known []string) string {
	if strings.EqualFold(arg, "any") {
		return ""
	}
	for _, k := range known {
		if strings.EqualFold(arg, k) {
			return k
		}
	}
	return arg
}

// tagged reports whether parts[i] names the result set tagged want.
func tagged(parts []string, i, want int) bool {
	tag, err := strconv.Atoi(at(parts, i))
	return err == nil && want != 0 && tag == want
}

func at(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// clip shortens text to fit one message. It cuts between characters, never
// inside a tag or an entity, and closes the tags left open.
func clip(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageRunes {
		return text
	}

	var sb strings.Builder
	var open []string
	budget := maxMessageRunes - clipReserve
	z := html.NewTokenizer(strings.NewReader(text))

tokens:
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		tok := z.Token()

		if tt == html.TextToken {
			for _, r := range tok.Data {
				piece := esc(string(r))
				n := utf8.RuneCountInString(piece)
				if n > budget {
					break tokens
				}
				sb.WriteString(piece)
				budget -= n
			}
			continue
		}

		n := utf8.RuneCountInString(raw)
		if n > budget {
			break
		}
		sb.WriteString(raw)
		budget -= n
		switch tt {
		case html.StartTagToken:
			open = append(open, tok.Data)
		case html.EndTagToken:
			if len(open) > 0 && open[len(open)-1] == tok.Data {
				open = open[:len(open)-1]
			}
		}
	}

	sb.WriteString("…")
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteString("</" + open[i] + ">")
	}
	return sb.String()
}
