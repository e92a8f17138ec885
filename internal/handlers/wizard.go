package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"influencer-maker/internal/influencer"
)

const callbackPrefix = "im"

const (
	menuMain       = "main"
	menuEthnicity  = "ethnicity"
	menuAge        = "age"
	menuColor      = "color"
	menuHairstyle  = "hairstyle"
	menuOutfit     = "outfit"
	menuBackground = "background"
)

func (h *Handler) startWizard(chatID, userID int64, args string) error {
	sel := influencer.ParseArgs(args, influencer.DefaultSelection())
	h.store.Reset(chatID, userID)
	st := h.store.Update(chatID, userID, func(st *influencer.State) {
		st.Selection = sel
		st.Result = nil
		st.AwaitingDetails = false
		st.Menu = menuMain
	})

	msgID, err := h.tg.SendTextWithKeyboard(chatID, uiText(st), uiKeyboard(userID, st))
	if err != nil {
		return err
	}
	h.store.Update(chatID, userID, func(st *influencer.State) { st.MessageID = msgID })
	return nil
}

type callbackData struct {
	OwnerID int64
	Action  string
	Args    []string
}

func parseCallback(data string) (callbackData, bool) {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(data, callbackPrefix+":") {
		return callbackData{}, false
	}

	parts := strings.Split(data, ":")
	if len(parts) < 3 {
		return callbackData{}, false
	}

	ownerID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return callbackData{}, false
	}
	return callbackData{OwnerID: ownerID, Action: parts[2], Args: parts[3:]}, true
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}

	cbd, ok := parseCallback(q.Data)
	if !ok {
		return nil
	}
	if cbd.OwnerID != q.From.ID {
		_ = h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
		return nil
	}

	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	ownerID := cbd.OwnerID

	h.store.Update(chatID, ownerID, func(st *influencer.State) {
		st.MessageID = msgID
		applyAction(st, cbd.Action, cbd.Args)
	})

	switch cbd.Action {
	case "details":
		_ = h.tg.AnswerCallback(q.ID, "Send the extra details as a message.", false)
		_ = h.tg.SendText(chatID, "📝 Send extra details (e.g. \"wearing gold earrings, smiling\"). /cancel to abort.")
	case "prompt":
		_ = h.tg.AnswerCallback(q.ID, "Sending prompts…", false)
		prompts := influencer.BuildPrompts(h.store.Get(chatID, ownerID).Selection)
		_ = h.tg.SendText(chatID, promptText(prompts))
	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "Generating…", false)
		if err := h.generatePrimary(chatID, ownerID); err != nil {
			return err
		}
	case "gemini":
		_ = h.tg.AnswerCallback(q.ID, "Generating with Gemini…", false)
		if err := h.generateFallback(ctx, chatID, ownerID); err != nil {
			return err
		}
	default:
		_ = h.tg.AnswerCallback(q.ID, "OK", false)
	}

	return h.renderUI(chatID, ownerID, msgID, true)
}

// applyAction mutates the wizard state for one button tap. Option buttons
// carry an index into the catalog list so callback data stays short.
func applyAction(st *influencer.State, action string, args []string) {
	c := influencer.Catalog()
	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	switch action {
	case "menu":
		if arg != "" {
			st.Menu = arg
		}
	case "gender":
		if arg == "m" {
			st.Selection = st.Selection.WithGender(influencer.Male)
		} else {
			st.Selection = st.Selection.WithGender(influencer.Female)
		}
	case "mode":
		if arg == "hijab" {
			st.Selection.Mode = influencer.Hijab
		} else {
			st.Selection.Mode = influencer.NoHijab
		}
	case "shot":
		if arg == "full" {
			st.Selection.ShotType = influencer.FullBody
		} else {
			st.Selection.ShotType = influencer.HalfBody
		}
	case "ratio":
		if arg == "landscape" {
			st.Selection.AspectRatio = influencer.Landscape
		} else {
			st.Selection.AspectRatio = influencer.Portrait
		}
	case "model":
		if v, ok := pick(c.Models, arg); ok {
			st.Selection.Model = v
		}
	case "eth":
		if v, ok := pick(c.Ethnicities, arg); ok {
			st.Selection.Ethnicity = v
			st.Menu = menuMain
		}
	case "age":
		if v, ok := pick(c.AgeRanges, arg); ok {
			st.Selection.AgeRange = v
			st.Menu = menuMain
		}
	case "color":
		if v, ok := pick(c.HairColors, arg); ok {
			st.Selection.HairColor = v
			st.Menu = menuMain
		}
	case "hair":
		valid := influencer.HairModelsFor(st.Selection.Gender)
		if idx, err := strconv.Atoi(arg); err == nil && idx >= 0 && idx < len(valid) {
			st.Selection.HairModel = valid[idx].Value
			st.Menu = menuMain
		}
	case "outfit":
		if v, ok := pick(c.Outfits, arg); ok {
			st.Selection.Outfit = v
			st.Menu = menuMain
		}
	case "bg":
		if v, ok := pick(c.Backgrounds, arg); ok {
			st.Selection.Background = v
			st.Menu = menuMain
		}
	case "details":
		st.AwaitingDetails = true
		st.Menu = menuMain
	case "clear_details":
		st.Selection.Details = ""
		st.AwaitingDetails = false
	case "reset":
		msgID := st.MessageID
		st.Selection = influencer.DefaultSelection()
		st.Result = nil
		st.AwaitingDetails = false
		st.MessageID = msgID
		st.Menu = menuMain
	case "close":
		st.AwaitingDetails = false
		st.Menu = menuMain
	}
}

func pick(opts []influencer.NamedOption, arg string) (string, bool) {
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 || idx >= len(opts) {
		return "", false
	}
	return opts[idx].Value, true
}

func (h *Handler) renderUI(chatID, userID int64, messageID int, edit bool) error {
	st := h.store.Get(chatID, userID)
	if messageID == 0 {
		messageID = st.MessageID
	}

	text := uiText(st)
	kb := uiKeyboard(userID, st)

	if edit && messageID != 0 {
		if err := h.tg.EditTextWithKeyboard(chatID, messageID, text, kb); err == nil {
			return nil
		}
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.store.Update(chatID, userID, func(st *influencer.State) { st.MessageID = msgID })
	return nil
}

func uiText(st influencer.State) string {
	sel := st.Selection
	c := influencer.Catalog()

	var b strings.Builder
	b.WriteString("🤳 AI Influencer Maker\n\n")
	b.WriteString(fmt.Sprintf("Gender: %s\n", sel.Gender))
	b.WriteString(fmt.Sprintf("Mode: %s\n", sel.Mode))
	b.WriteString(fmt.Sprintf("Ethnicity: %s\n", labelFor(c.Ethnicities, sel.Ethnicity)))
	b.WriteString(fmt.Sprintf("Age: %s\n", labelFor(c.AgeRanges, sel.AgeRange)))
	if sel.Mode == influencer.NoHijab {
		b.WriteString(fmt.Sprintf("Hair: %s, %s\n", labelFor(c.HairColors, sel.HairColor), hairLabel(sel.HairModel)))
	}
	b.WriteString(fmt.Sprintf("Outfit: %s\n", labelFor(c.Outfits, sel.Outfit)))
	b.WriteString(fmt.Sprintf("Background: %s\n", labelFor(c.Backgrounds, sel.Background)))
	b.WriteString(fmt.Sprintf("Shot: %s, AR: %s\n", sel.ShotType, sel.AspectRatio))
	b.WriteString(fmt.Sprintf("Model: %s\n", influencer.ModelLabel(sel.Model)))
	if strings.TrimSpace(sel.Details) != "" {
		b.WriteString("Details: " + truncateLine(sel.Details, 80) + "\n")
	}

	switch {
	case st.AwaitingDetails:
		b.WriteString("\n📝 Now send the extra details (/cancel to abort).\n")
	case st.Result != nil:
		b.WriteString("\n✅ Last result is above. Tap 🎨 Generate for new seeds.\n")
	default:
		b.WriteString("\n🎨 Pick options, then tap Generate.\n")
	}

	if title := menuTitle(st.Menu); title != "" {
		b.WriteString("\nChoose " + title + ":")
	}

	return strings.TrimSpace(b.String())
}

func menuTitle(menu string) string {
	switch menu {
	case menuEthnicity:
		return "ethnicity"
	case menuAge:
		return "age range"
	case menuColor:
		return "hair color"
	case menuHairstyle:
		return "hairstyle"
	case menuOutfit:
		return "outfit"
	case menuBackground:
		return "background"
	}
	return ""
}

func promptText(p influencer.PromptTriple) string {
	var b strings.Builder
	b.WriteString("🇬🇧 English\n")
	b.WriteString(p.English)
	b.WriteString("\n\n🇮🇩 Indonesia\n")
	b.WriteString(p.Indonesian)
	b.WriteString("\n\n📝 Long\n")
	b.WriteString(p.Long)
	return b.String()
}

func uiKeyboard(ownerID int64, st influencer.State) tgbotapi.InlineKeyboardMarkup {
	c := influencer.Catalog()
	sel := st.Selection

	switch st.Menu {
	case menuEthnicity:
		return optionKeyboard(ownerID, "eth", c.Ethnicities, sel.Ethnicity, 3)
	case menuAge:
		return optionKeyboard(ownerID, "age", c.AgeRanges, sel.AgeRange, 3)
	case menuColor:
		return optionKeyboard(ownerID, "color", c.HairColors, sel.HairColor, 2)
	case menuHairstyle:
		valid := influencer.HairModelsFor(sel.Gender)
		opts := make([]influencer.NamedOption, 0, len(valid))
		for _, hm := range valid {
			opts = append(opts, influencer.NamedOption{Label: hm.Label, Value: hm.Value})
		}
		return optionKeyboard(ownerID, "hair", opts, sel.HairModel, 2)
	case menuOutfit:
		return optionKeyboard(ownerID, "outfit", c.Outfits, sel.Outfit, 2)
	case menuBackground:
		return optionKeyboard(ownerID, "bg", c.Backgrounds, sel.Background, 2)
	default:
		return mainKeyboard(ownerID, st)
	}
}

func mainKeyboard(ownerID int64, st influencer.State) tgbotapi.InlineKeyboardMarkup {
	sel := st.Selection
	c := influencer.Catalog()

	rows := [][]tgbotapi.InlineKeyboardButton{
		{
			button(checked("Female", sel.Gender == influencer.Female), ownerID, "gender", "f"),
			button(checked("Male", sel.Gender == influencer.Male), ownerID, "gender", "m"),
		},
		{
			button(checked("No Hijab", sel.Mode == influencer.NoHijab), ownerID, "mode", "none"),
			button(checked("Hijab", sel.Mode == influencer.Hijab), ownerID, "mode", "hijab"),
		},
		{
			button(checked("Half-body", sel.ShotType == influencer.HalfBody), ownerID, "shot", "half"),
			button(checked("Full-body", sel.ShotType == influencer.FullBody), ownerID, "shot", "full"),
		},
		{
			button(checked("9:16", sel.AspectRatio == influencer.Portrait), ownerID, "ratio", "portrait"),
			button(checked("16:9", sel.AspectRatio == influencer.Landscape), ownerID, "ratio", "landscape"),
		},
	}

	var modelRow []tgbotapi.InlineKeyboardButton
	for i, m := range c.Models {
		modelRow = append(modelRow, button(checked(m.Label, sel.Model == m.Value), ownerID, "model", strconv.Itoa(i)))
	}
	rows = append(rows, modelRow,
		[]tgbotapi.InlineKeyboardButton{
			button("Ethnicity", ownerID, "menu", menuEthnicity),
			button("Age", ownerID, "menu", menuAge),
		},
	)

	// Hair options are hidden under a hijab, matching the prompt which
	// never mentions hair in that mode.
	if sel.Mode == influencer.NoHijab {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			button("Hair color", ownerID, "menu", menuColor),
			button("Hairstyle", ownerID, "menu", menuHairstyle),
		})
	}

	detailsRow := []tgbotapi.InlineKeyboardButton{button("📝 Details", ownerID, "details")}
	if strings.TrimSpace(sel.Details) != "" {
		detailsRow = append(detailsRow, button("Clear details", ownerID, "clear_details"))
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			button("Outfit", ownerID, "menu", menuOutfit),
			button("Background", ownerID, "menu", menuBackground),
		},
		detailsRow,
		[]tgbotapi.InlineKeyboardButton{
			button("📄 Prompt", ownerID, "prompt"),
			button("🎨 Generate", ownerID, "generate"),
		},
		[]tgbotapi.InlineKeyboardButton{
			button("✨ Gemini", ownerID, "gemini"),
		},
		[]tgbotapi.InlineKeyboardButton{
			button("Reset", ownerID, "reset"),
			button("Close", ownerID, "close"),
		},
	)

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func optionKeyboard(ownerID int64, action string, opts []influencer.NamedOption, current string, perRow int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for i, opt := range opts {
		row = append(row, button(checked(opt.Label, opt.Value == current), ownerID, action, strconv.Itoa(i)))
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		button("⬅ Back", ownerID, "menu", menuMain),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func button(label string, ownerID int64, parts ...string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, parts...))
}

func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", callbackPrefix, ownerID, strings.Join(parts, ":"))
}

func checked(label string, on bool) string {
	if on {
		return "✅ " + label
	}
	return label
}

func labelFor(opts []influencer.NamedOption, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	if value == "" {
		return "-"
	}
	return value
}

func hairLabel(value string) string {
	for _, hm := range influencer.Catalog().HairModels {
		if hm.Value == value {
			return hm.Label
		}
	}
	return value
}

func truncateLine(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
