package telegram

import (
	"fmt"
	"html"
	"strings"

	"todays-meal/internal/app"
	"todays-meal/internal/metrics"
	"todays-meal/internal/recipe"
	"todays-meal/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes. Payloads are split on "|" and result buttons carry
// the tag of the message they belong to: recipe|<tag>|<n>, meal|<tag>|<day>|<slot>
// and plan|shop|<tag>.
const (
	cbRecipe = "recipe"
	cbMeal   = "meal"
	cbPlan   = "plan"

	planRedo = "redo"
	planKeep = "keep"
	planShop = "shop"
)

const maxButtonLabel = 32

var esc = html.EscapeString

func vegDot(isVeg bool) string {
	if isVeg {
		return "🟢"
	}
	return "🔴"
}

func formatRecipeCards(title string, recipes []recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🍛 <b>%s</b>\n\n", esc(title))
	for i, r := range recipes {
		fmt.Fprintf(&sb, "%d. %s <b>%s</b>\n", i+1, vegDot(r.IsVeg), esc(r.Name))
		fmt.Fprintf(&sb, "⏱ %s\n", esc(app.Summary(r)))
		if r.Description != "" {
			fmt.Fprintf(&sb, "<i>%s</i>\n", esc(r.Description))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Tap a recipe for ingredients and steps.")
	return sb.String()
}

func recipeKeyboard(tag int, recipes []recipe.Recipe) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(recipes))
	for i, r := range recipes {
		label := fmt.Sprintf("%d. %s", i+1, truncate(r.Name, maxButtonLabel))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s|%d|%d", cbRecipe, tag, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatRecipeDetail(r recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>\n", vegDot(r.IsVeg), esc(r.Name))
	fmt.Fprintf(&sb, "⏱ %s\n", esc(app.Summary(r)))
	if r.Description != "" {
		fmt.Fprintf(&sb, "\n<i>%s</i>\n", esc(r.Description))
	}

	sb.WriteString("\n🧺 <b>Ingredients</b>\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "• %s\n", esc(ing))
	}

	sb.WriteString("\n👩‍🍳 <b>Steps</b>\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, esc(step))
	}
	return sb.String()
}

var mealIcons = map[recipe.Meal]string{
	recipe.Breakfast: "🌅",
	recipe.Lunch:     "☀️",
	recipe.Dinner:    "🌙",
}

func formatPlan(days []recipe.WeeklyPlanDay) string {
	var sb strings.Builder
	sb.WriteString("📅 <b>Your Weekly Plan</b>\n")
	for _, d := range days {
		fmt.Fprintf(&sb, "\n<b>%s</b>\n", esc(d.Day))
		if d.PlanetaryNote != "" {
			fmt.Fprintf(&sb, "🪐 <i>%s</i>\n", esc(d.PlanetaryNote))
		}
		for _, m := range d.Meals() {
			r, _ := d.Slot(m)
			fmt.Fprintf(&sb, "%s %s: %s\n", mealIcons[m], app.MealLabel(m), esc(r.Name))
		}
	}
	return sb.String()
}

func planKeyboard(tag int, days []recipe.WeeklyPlanDay) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(days))
	for i, d := range days {
		var row []tgbotapi.InlineKeyboardButton
		for _, m := range d.Meals() {
			label := fmt.Sprintf("%s %s", shortDay(d.Day), mealIcons[m])
			data := fmt.Sprintf("%s|%d|%d|%s", cbMeal, tag, i, m)
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🛒 Shopping list", fmt.Sprintf("%s|%s|%d", cbPlan, planShop, tag)),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatShoppingList(items []shopping.Item) string {
	var sb strings.Builder
	sb.WriteString("🛒 <b>Shopping List</b>\n\n")
	for _, it := range items {
		fmt.Fprintf(&sb, "• %s <i>(%s)</i>\n", esc(it.Name), esc(strings.Join(it.Dishes, ", ")))
	}
	return sb.String()
}

func confirmPlanKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 New plan", cbPlan+"|"+planRedo),
			tgbotapi.NewInlineKeyboardButtonData("📌 Keep current", cbPlan+"|"+planKeep),
		),
	)
}

func formatEmptyState(err error) string {
	text := "🍽 " + app.EmptyStateText
	if app.IsRetryable(err) {
		text += "\n\n⚠️ " + app.RetryHint
	}
	return text
}

func orAny(s string) string {
	if s == "" {
		return "Any"
	}
	return s
}

func formatFilters(f recipe.SearchFilters) string {
	diet := "Non-veg allowed"
	if f.IsVeg {
		diet = "Vegetarian only"
	}
	timeLimit := orAny(f.TimeLimit)
	if f.TimeLimit != "" {
		timeLimit += " min"
	}

	var sb strings.Builder
	sb.WriteString("🔎 <b>Your filters</b>\n")
	fmt.Fprintf(&sb, "%s Diet: %s\n", vegDot(f.IsVeg), diet)
	fmt.Fprintf(&sb, "🌶 Spice: %s\n", esc(orAny(string(f.SpiceLevel))))
	fmt.Fprintf(&sb, "⏱ Time: %s\n", esc(timeLimit))
	fmt.Fprintf(&sb, "🗺 Cuisine: %s\n", esc(orAny(f.Cuisine)))
	fmt.Fprintf(&sb, "🍴 Meal: %s\n", esc(orAny(f.MealType)))
	return sb.String()
}

func formatHelp(f recipe.SearchFilters) string {
	var sb strings.Builder
	sb.WriteString("👋 <b>Today's Meal</b>\n")
	sb.WriteString("Send me the ingredients you have (e.g. <i>potato, paneer</i>) and I'll suggest Indian recipes.\n\n")
	sb.WriteString("/veg - toggle vegetarian only\n")
	sb.WriteString("/spice low|medium|high|any\n")
	fmt.Fprintf(&sb, "/time %s|any\n", strings.Join(recipe.TimeLimits, "|"))
	sb.WriteString("/cuisine &lt;name&gt;|any\n")
	sb.WriteString("/meal &lt;type&gt;|any\n")
	sb.WriteString("/filters - show current filters\n")
	sb.WriteString("/nothing - quick meals from pantry staples\n")
	sb.WriteString("/plan - weekly plan\n")
	sb.WriteString("/trending - what's cooking this season\n\n")
	sb.WriteString(formatFilters(f))
	return sb.String()
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Usage &amp; Health Report</b>\n\n")

	sb.WriteString("🗓 <b>Recent Generations</b>\n")
	if len(usage) == 0 {
		sb.WriteString("<i>No data yet</i>\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• <b>%s</b>: %d tokens (%d calls, %d failed)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
	}

	sb.WriteString("\n🧠 <b>System Health</b>\n")
	sb.WriteString(esc(health.Report()))
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func shortDay(day string) string {
	r := []rune(day)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
