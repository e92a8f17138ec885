package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"influencer-maker/internal/gemini"
	"influencer-maker/internal/influencer"
	"influencer-maker/internal/telegram"
)

// Messenger is the subset of *telegram.Client the handlers talk to.
type Messenger interface {
	SendTyping(chatID int64)
	SendUploading(chatID int64)
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendAlbum(chatID int64, photos []telegram.Photo) error
}

// Generator is satisfied by *generation.Service.
type Generator interface {
	Generate(sel influencer.Selection) (influencer.GenerationResult, error)
	GenerateWithFallback(ctx context.Context, sel influencer.Selection) (influencer.GenerationResult, error)
}

type Options struct {
	Telegram  Messenger
	Generator Generator
	Store     *influencer.Store
	Logger    *slog.Logger
}

type Handler struct {
	tg     Messenger
	gen    Generator
	store  *influencer.Store
	logger *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store := opts.Store
	if store == nil {
		store = influencer.NewStore()
	}

	return &Handler{
		tg:     opts.Telegram,
		gen:    opts.Generator,
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, userID, msg)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.handleText(chatID, userID, msg.Text)
	}

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return h.tg.SendText(chatID, helpText)
	case "new":
		return h.startWizard(chatID, userID, msg.CommandArguments())
	case "generate":
		current := h.store.Get(chatID, userID).Selection
		sel := influencer.ParseArgs(msg.CommandArguments(), current)
		h.store.Update(chatID, userID, func(st *influencer.State) {
			st.Selection = sel
		})
		return h.generatePrimary(chatID, userID)
	case "cancel":
		st := h.store.Get(chatID, userID)
		if !st.AwaitingDetails {
			return h.tg.SendText(chatID, "Nothing to cancel.")
		}
		h.store.Update(chatID, userID, func(st *influencer.State) {
			st.AwaitingDetails = false
		})
		_ = h.tg.SendText(chatID, "✅ Cancelled.")
		return h.renderUI(chatID, userID, 0, false)
	default:
		return h.tg.SendText(chatID, "❌ Unknown command. Use /help.")
	}
}

// handleText only matters while the wizard waits for extra details; any
// other text gets a short hint.
func (h *Handler) handleText(chatID, userID int64, text string) error {
	st := h.store.Get(chatID, userID)
	if !st.AwaitingDetails {
		return h.tg.SendText(chatID, "Use /new to open the influencer menu or /generate to create images right away.")
	}

	h.store.Update(chatID, userID, func(st *influencer.State) {
		st.Selection.Details = strings.TrimSpace(text)
		st.AwaitingDetails = false
		st.Menu = menuMain
	})
	return h.renderUI(chatID, userID, 0, false)
}

func (h *Handler) generatePrimary(chatID, userID int64) error {
	sel := h.store.Get(chatID, userID).Selection
	if err := influencer.Validate(sel); err != nil {
		return h.tg.SendText(chatID, "❌ "+err.Error())
	}

	h.tg.SendUploading(chatID)
	res, err := h.gen.Generate(sel)
	if err != nil {
		h.logger.Error("generation failed", "err", err)
		return h.tg.SendText(chatID, "❌ Failed to build image links. Please try again.")
	}
	h.store.SetResult(chatID, userID, res)

	return h.sendResult(chatID, res)
}

func (h *Handler) generateFallback(ctx context.Context, chatID, userID int64) error {
	sel := h.store.Get(chatID, userID).Selection
	if err := influencer.Validate(sel); err != nil {
		return h.tg.SendText(chatID, "❌ "+err.Error())
	}

	h.tg.SendUploading(chatID)
	_ = h.tg.SendText(chatID, "🎨 Generating with Gemini, this can take a minute...")

	res, err := h.gen.GenerateWithFallback(ctx, sel)
	if err != nil {
		return h.tg.SendText(chatID, fallbackErrorText(err))
	}
	h.store.SetResult(chatID, userID, res)

	return h.sendResult(chatID, res)
}

func (h *Handler) sendResult(chatID int64, res influencer.GenerationResult) error {
	photos := make([]telegram.Photo, 0, len(res.Images))
	for i, img := range res.Images {
		photos = append(photos, telegram.Photo{
			Source:  img.URL,
			Caption: imageCaption(i, img),
		})
	}
	if err := h.tg.SendAlbum(chatID, photos); err != nil {
		h.logger.Error("send album failed", "err", err)
		return h.tg.SendText(chatID, "❌ Telegram could not deliver the images. Use 📄 Prompt and open the links manually.")
	}
	return nil
}

func imageCaption(i int, img influencer.GeneratedImage) string {
	label := fmt.Sprintf("Variation %c", 'A'+rune(i))
	if img.Seed > 0 {
		return fmt.Sprintf("%s · %s · seed %d", label, img.Model, img.Seed)
	}
	return fmt.Sprintf("%s · %s", label, img.Model)
}

func fallbackErrorText(err error) string {
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return "❌ Gemini fallback is not configured on this bot."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "❌ Gemini took too long. Please try again later."
	}
	return truncateLine("❌ Gemini generation failed: "+err.Error(), 900)
}

const helpText = "🤳 AI Influencer Maker\n\n" +
	"Build a photorealistic influencer prompt and get two image variations.\n\n" +
	"Commands:\n" +
	"/new [options] - open the menu\n" +
	"/generate [options] - generate right away\n" +
	"/cancel - stop waiting for details\n" +
	"/help - this message\n\n" +
	"Options: male, female, hijab, nohijab, half, full, portrait, landscape, " +
	"zimage, imagen-4, eth=Javanese, age=30s, color=Dark_Brown, style=Pixie_Cut, " +
	"outfit=Streetwear, bg=Plain_Cream. Anything else becomes extra details."
