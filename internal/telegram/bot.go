package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"family-meal-planner/internal/app"
	"family-meal-planner/internal/config"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/planner"
	"family-meal-planner/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot serves the family meal planner over Telegram.
type Bot struct {
	api          *tgbotapi.BotAPI
	app          *app.App
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram bot and sets the webhook.
func NewBot(cfg *config.Config, application *app.App, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		app:          application,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}
	if !isAllowed {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImportRequest(msg, text)
		return
	}

	command, args, _ := strings.Cut(text, " ")
	args = strings.TrimSpace(args)

	switch command {
	case "/plan":
		b.handlePlanRequest(msg)
	case "/shopping":
		b.handleShoppingRequest(msg)
	case "/like":
		b.handlePreference(msg, args, true)
	case "/dislike":
		b.handlePreference(msg, args, false)
	case "/history":
		b.handleHistoryRequest(msg)
	case "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	default:
		help := "🍽 *Family Meal Planner*\n\n" +
			"• /plan - generate next week's meal plan\n" +
			"• /shopping - shopping list for the latest plan\n" +
			"• /like <food> - add a family favourite\n" +
			"• /dislike <food> - ban a food\n" +
			"• /history - past meal plans\n" +
			"• /metrics - usage report\n" +
			"• paste a recipe URL to import it"
		b.sendMarkdown(msg.Chat.ID, help)
	}
}

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	sentMsg, err := b.sendMarkdown(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Generating your weekly plan)")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.GenerateTimeout)
	defer cancel()

	plan, list, err := b.app.GenerateMealPlan(ctx)
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, errorText("Error generating plan", err))
		return
	}

	b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, formatPlanMarkdown(plan))
	b.sendMarkdown(msg.Chat.ID, formatShoppingListMarkdown(list))
}

func (b *Bot) handleShoppingRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.GenerateTimeout)
	defer cancel()

	list, err := b.app.LatestShoppingList(ctx)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, errorText("Error fetching shopping list", err))
		return
	}
	b.sendMarkdown(msg.Chat.ID, formatShoppingListMarkdown(list))
}

func (b *Bot) handlePreference(msg *tgbotapi.Message, food string, liked bool) {
	if food == "" {
		b.sendMarkdown(msg.Chat.ID, "Tell me the food, e.g. `/like fish pie`")
		return
	}

	var err error
	if liked {
		err = b.app.Prefs.AddLikedFood(food)
	} else {
		err = b.app.Prefs.AddDislikedFood(food)
	}
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, errorText("Error saving preference", err))
		return
	}

	if liked {
		b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("👍 Added *%s* to the family favourites.", food))
	} else {
		b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("🚫 *%s* won't appear in future plans.", food))
	}
}

func (b *Bot) handleHistoryRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.GenerateTimeout)
	defer cancel()

	plans, err := b.app.History.All(ctx)
	if err != nil {
		b.sendMarkdown(msg.Chat.ID, errorText("Error fetching history", err))
		return
	}
	if len(plans) == 0 {
		b.sendMarkdown(msg.Chat.ID, "_No meal plans yet. Try /plan!_")
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 *Meal Plan History*\n\n")
	for _, p := range plans {
		sb.WriteString(fmt.Sprintf("*Week of %s*: %s\n", p.WeekStart, strings.Join(p.MealNames(), ", ")))
	}
	b.sendMarkdown(msg.Chat.ID, sb.String())
}

func (b *Bot) handleImportRequest(msg *tgbotapi.Message, url string) {
	sentMsg, err := b.sendMarkdown(msg.Chat.ID, "✂️ *Importing recipe...*")
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.GenerateTimeout)
	defer cancel()

	imported, err := b.app.ImportRecipe(ctx, url)
	if err != nil {
		log.Printf("Error importing recipe: %v", err)
		b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, errorText("Error importing recipe", err))
		return
	}

	text := fmt.Sprintf("✅ *Recipe imported!*\n\n*%s*\n_%s_\n%d ingredients, %d steps. It's now a family favourite.",
		imported.Name, imported.Description, len(imported.Ingredients), len(imported.Recipe.Instructions))
	b.editMarkdown(msg.Chat.ID, sentMsg.MessageID, text)
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(context.Background(), 7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.DataDir)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Model Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d calls)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	b.sendMarkdown(chatID, sb.String())
}

func (b *Bot) sendMarkdown(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	return b.api.Send(msg)
}

func (b *Bot) editMarkdown(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func errorText(prefix string, err error) string {
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	return fmt.Sprintf("❌ *%s:*\n```\n%v\n```", prefix, safeErr)
}

func formatPlanMarkdown(plan *planner.MealPlan) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Meal Plan: week of %s*\n\n", plan.WeekStart))

	for _, d := range plan.Days {
		sb.WriteString(fmt.Sprintf("*%s*: %s", d.Day, d.Meal))
		var tags []string
		if d.ContainsOilyFish {
			tags = append(tags, "🐟")
		}
		if d.IsRemixed {
			tags = append(tags, "🎛 remix")
		}
		if len(tags) > 0 {
			sb.WriteString(" " + strings.Join(tags, " "))
		}
		sb.WriteString("\n")
		if d.Description != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", d.Description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatShoppingListMarkdown(list *shopping.List) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n")

	current := ""
	for _, item := range list.Items {
		if item.Category != current {
			current = item.Category
			sb.WriteString(fmt.Sprintf("\n*%s*\n", strings.ReplaceAll(current, "_", " ")))
		}
		if item.Unit != "" {
			sb.WriteString(fmt.Sprintf("• %s - %g %s\n", item.Name, float64(item.Quantity), item.Unit))
		} else {
			sb.WriteString(fmt.Sprintf("• %s - %g\n", item.Name, float64(item.Quantity)))
		}
	}
	return sb.String()
}
