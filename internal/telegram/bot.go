package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"

	"dietmind/internal/config"
	"dietmind/internal/metrics"
	"dietmind/internal/planner"
	"dietmind/internal/shared"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// promptTokenAlert is the prompt size above which the admin is alerted.
const promptTokenAlert = 4000

// Sender delivers messages to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Generator produces a plan for a profile.
type Generator interface {
	Generate(ctx context.Context, profile planner.Profile) (*planner.Result, error)
}

// PlanSaver keeps generated plans.
type PlanSaver interface {
	Save(ctx context.Context, res *planner.Result) error
}

// MetricsStore records and reports token usage.
type MetricsStore interface {
	RecordMeta(meta shared.AgentMeta) error
	GetDailyUsage(days int) ([]metrics.DailyUsage, error)
}

// Bot answers diet plan requests sent over Telegram.
type Bot struct {
	api          *tgbotapi.BotAPI
	sender       Sender
	generator    Generator
	plans        PlanSaver
	metricsStore MetricsStore
	cfg          *config.Config
	dataDir      string
}

// NewBot initializes the Telegram API and, when a webhook URL is
// configured, registers the webhook.
func NewBot(cfg *config.Config, generator Generator, plans PlanSaver, metricsStore MetricsStore, dataDir string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	b := newBot(api, cfg, generator, plans, metricsStore, dataDir)
	b.api = api
	return b, nil
}

func newBot(sender Sender, cfg *config.Config, generator Generator, plans PlanSaver, metricsStore MetricsStore, dataDir string) *Bot {
	return &Bot{
		sender:       sender,
		generator:    generator,
		plans:        plans,
		metricsStore: metricsStore,
		cfg:          cfg,
		dataDir:      dataDir,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
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

	go b.processMessage(context.Background(), update.Message)
}

func (b *Bot) allowed(userID int64) bool {
	ids := b.cfg.TelegramAllowedUserIDs
	return len(ids) == 0 || slices.Contains(ids, userID)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.allowed(msg.From.ID) {
		if msg.From != nil {
			log.Printf("Unauthorized access attempt from UserID: %d (@%s)", msg.From.ID, msg.From.UserName)
		}
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			b.reply(msg.Chat.ID, usageText)
		case "metrics":
			b.handleMetricsRequest(msg)
		default:
			b.reply(msg.Chat.ID, "Unknown command.\n\n"+usageText)
		}
		return
	}

	b.handlePlanRequest(ctx, msg)
}

func (b *Bot) handlePlanRequest(ctx context.Context, msg *tgbotapi.Message) {
	profile, err := ParseProfile(msg.Text)
	if err != nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Could not read your profile: %v\n\n%s", err, usageText))
		return
	}

	status := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...*\n(Preparing your diet plan)")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.sender.Send(status)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	res, err := b.generator.Generate(ctx, profile)
	if errors.Is(err, planner.ErrInvalidProfile) {
		b.edit(msg.Chat.ID, sent.MessageID, fmt.Sprintf("❌ %v\n\n%s", err, usageText), "")
		return
	}
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		b.edit(msg.Chat.ID, sent.MessageID, "❌ Failed to generate meal plan. Please try again later.", "")
		return
	}

	b.recordMeta(res.Meta)
	if err := b.plans.Save(ctx, res); err != nil {
		log.Printf("Warning: failed to save meal plan %s: %v", res.ID, err)
	}

	if res.Fallback {
		log.Printf("Plan %s: no sections recognized, sending raw answer", res.ID)
		b.edit(msg.Chat.ID, sent.MessageID, truncate(res.Raw, maxMessageRunes), "")
		return
	}
	chunks := splitMessage(FormatPlanMarkdown(res.Plan), maxMessageRunes)
	b.edit(msg.Chat.ID, sent.MessageID, chunks[0], tgbotapi.ModeMarkdown)
	for _, chunk := range chunks[1:] {
		more := tgbotapi.NewMessage(msg.Chat.ID, chunk)
		more.ParseMode = tgbotapi.ModeMarkdown
		if _, err := b.sender.Send(more); err != nil {
			log.Printf("Failed to send plan continuation for %s: %v", res.ID, err)
		}
	}
}

func (b *Bot) recordMeta(meta shared.AgentMeta) {
	if err := b.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record metrics for %s: %v", meta.AgentName, err)
	}
	if meta.Usage.PromptTokens > promptTokenAlert {
		b.sendAdminAlert(fmt.Sprintf("⚠️ *Context Bloat Alert*\nAgent: %s\nModel: %s\nPrompt Tokens: %d",
			meta.AgentName, escapeMarkdown(meta.Usage.Model), meta.Usage.PromptTokens))
	}
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if b.cfg.TelegramAdminID == 0 || msg.From.ID != b.cfg.TelegramAdminID {
		b.reply(msg.Chat.ID, "⛔ Access denied: admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	report := tgbotapi.NewMessage(msg.Chat.ID, formatMetricsReport(usage, metrics.GetSysHealth(b.dataDir)))
	report.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(report); err != nil {
		log.Printf("Failed to send metrics report: %v", err)
	}
}

func formatMetricsReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution)
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataDiskSize)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	return sb.String()
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.TelegramAdminID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(b.cfg.TelegramAdminID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.Send(msg); err != nil {
		log.Printf("Failed to send admin alert: %v", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send reply to %d: %v", chatID, err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text, parseMode string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = parseMode
	if _, err := b.sender.Send(edit); err != nil {
		log.Printf("Failed to edit message %d: %v", messageID, err)
	}
}
