package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"RSVPBot/model"
	"RSVPBot/pages"
	"RSVPBot/wizard"
)

const helpText = `Commands:
/start – Welcome page and menu.
/rsvp – Start (or restart) your RSVP.
/location – Where the wedding takes place.
/schedule – Timings for the day.
/faq – Frequently asked questions.
/gallery – Photos.
/thingstodo – Things to do nearby.
/registry – Our gift registry.
/cancel – Stop editing the current field.
/help – Show this list.`

var pageCommands = map[string]string{
	"/start":      pages.Home,
	"/location":   pages.Location,
	"/faq":        pages.FAQ,
	"/schedule":   pages.Schedule,
	"/gallery":    pages.Gallery,
	"/thingstodo": pages.ThingsToDo,
	"/registry":   pages.Registry,
}

// Session is the RSVP conversation of one chat.
type Session struct {
	mu sync.Mutex

	Wizard *wizard.Wizard
	// Focus is the attendee card whose field buttons are shown.
	Focus   model.AttendeeID
	Pending *PendingInput
	// MessageID is the message the wizard is rendered in.
	MessageID int
}

// PendingInput is the field the next text message fills in. Exactly one
// of Attendee or Misc is set.
type PendingInput struct {
	Attendee model.AttendeeID
	Field    model.Field
	Misc     model.MiscField
}

type RSVPBotHandler struct {
	Submitter     wizard.Submitter
	Pages         *pages.Catalog
	Organiser     *OrganiserBotHandler
	Logger        zerolog.Logger
	WizardOptions []wizard.Option

	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewRSVPBotHandler(
	submitter wizard.Submitter,
	catalog *pages.Catalog,
	logger zerolog.Logger,
	opts ...wizard.Option,
) *RSVPBotHandler {
	return &RSVPBotHandler{
		Submitter:     submitter,
		Pages:         catalog,
		Logger:        logger,
		WizardOptions: opts,
		sessions:      make(map[int64]*Session),
	}
}

// Handler is the bot's default handler.
func (h *RSVPBotHandler) Handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, b, update.CallbackQuery)
	case update.Message != nil:
		h.handleMessage(ctx, b, update.Message)
	}
}

func (h *RSVPBotHandler) session(chatID int64) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[chatID]
	return s, ok
}

// newSession discards any previous RSVP of the chat.
func (h *RSVPBotHandler) newSession(chatID int64) *Session {
	s := &Session{Wizard: wizard.New(h.WizardOptions...)}
	h.mu.Lock()
	h.sessions[chatID] = s
	h.mu.Unlock()
	return s
}

func (h *RSVPBotHandler) handleMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if h.Organiser != nil && h.Organiser.Handles(msg) {
		h.Organiser.Handler(ctx, b, msg)
		return
	}

	command := commandOf(text)

	if pageID, ok := pageCommands[command]; ok {
		if err := h.ShowPage(ctx, b, chatID, pageID); err != nil {
			h.Logger.Error().Err(err).Int64("chat_id", chatID).Str("page", pageID).Msg("error showing page")
		}
		return
	}

	switch command {
	case "/rsvp":
		h.startRSVP(ctx, b, chatID)
		return
	case "/help":
		h.send(ctx, b, chatID, helpText)
		return
	case "/cancel":
		if s, ok := h.session(chatID); ok {
			s.mu.Lock()
			s.Pending = nil
			h.render(ctx, b, chatID, s, 0, "Editing cancelled.")
			s.mu.Unlock()
			return
		}
		h.send(ctx, b, chatID, "Nothing to cancel. Use /rsvp to start your RSVP.")
		return
	}

	if s, ok := h.session(chatID); ok && !strings.HasPrefix(text, "/") {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.Pending != nil {
			note := h.applyInput(s, text)
			// the reply pushed the old wizard message up; render below it
			h.render(ctx, b, chatID, s, 0, note)
			return
		}
	}

	h.send(ctx, b, chatID, "I didn't understand that. Use /rsvp to RSVP or /help for the list of commands.")
}

// commandOf returns the first word of text without a "@botname" suffix.
func commandOf(text string) string {
	command := strings.SplitN(strings.TrimSpace(text), " ", 2)[0]
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}
	return command
}

func (h *RSVPBotHandler) applyInput(s *Session, text string) string {
	p := s.Pending
	s.Pending = nil
	value := text
	if value == "-" {
		value = ""
	}

	var err error
	if p.Misc != "" {
		err = s.Wizard.SetMiscField(p.Misc, value)
	} else {
		err = s.Wizard.SetAttendeeField(p.Attendee, p.Field, value)
	}
	if err != nil {
		h.Logger.Debug().Err(err).Msg("input rejected")
		return "That field can't be changed right now."
	}
	return ""
}

func (h *RSVPBotHandler) startRSVP(ctx context.Context, b *bot.Bot, chatID int64) {
	s := h.newSession(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	h.render(ctx, b, chatID, s, 0, "")
}

func (h *RSVPBotHandler) handleCallback(ctx context.Context, b *bot.Bot, cq *models.CallbackQuery) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})
	if err != nil {
		h.Logger.Warn().Err(err).Msg("error answering callback query")
	}

	chatID := cq.From.ID
	messageID := 0
	if m := cq.Message.Message; m != nil {
		chatID = m.Chat.ID
		messageID = m.ID
	}

	parts := strings.Split(cq.Data, ":")
	switch parts[0] {
	case prefixPage:
		if len(parts) != 2 {
			return
		}
		if err := h.ShowPage(ctx, b, chatID, parts[1]); err != nil {
			h.Logger.Error().Err(err).Int64("chat_id", chatID).Str("page", parts[1]).Msg("error showing page")
		}
		return
	case prefixRSVP:
	default:
		h.Logger.Warn().Str("data", cq.Data).Msg("unknown callback data")
		return
	}
	if len(parts) < 2 {
		return
	}

	s, ok := h.session(chatID)
	if !ok {
		s = h.newSession(chatID)
		s.mu.Lock()
		defer s.mu.Unlock()
		h.render(ctx, b, chatID, s, messageID, "Your RSVP session expired, let's start again.")
		return
	}

	if parts[1] == actionSubmit {
		h.submit(ctx, b, chatID, s, messageID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	note := h.apply(ctx, b, chatID, s, parts[1], parts[2:])
	h.render(ctx, b, chatID, s, messageID, note)
}

// apply runs one wizard action and returns a note for the user.
func (h *RSVPBotHandler) apply(ctx context.Context, b *bot.Bot, chatID int64, s *Session, action string, args []string) string {
	w := s.Wizard
	var err error

	switch action {
	case actionCeremonyYes:
		err = w.AnswerYes()
	case actionCeremonyNo:
		err = w.AnswerNo()
	case actionNext:
		s.Focus = ""
		err = w.Next()
	case actionPrev:
		s.Focus = ""
		err = w.Previous()
	case actionAdd:
		var id model.AttendeeID
		id, err = w.AddAttendee()
		if err == nil {
			s.Focus = id
		}
	case actionRemove:
		if len(args) != 1 {
			return ""
		}
		err = w.RemoveAttendee(model.AttendeeID(args[0]))
		if err == nil && s.Focus == model.AttendeeID(args[0]) {
			s.Focus = ""
		}
	case actionEdit:
		if len(args) != 1 {
			return ""
		}
		s.Focus = model.AttendeeID(args[0])
	case actionDone:
		s.Focus = ""
		s.Pending = nil
	case actionField:
		if len(args) != 2 {
			return ""
		}
		f, ferr := model.ParseField(args[1])
		if ferr != nil {
			return ""
		}
		s.Pending = &PendingInput{Attendee: model.AttendeeID(args[0]), Field: f}
		return fmt.Sprintf("Please send the %s for %s (send - to clear).", strings.ToLower(f.Label()), attendeeTitle(w, s.Pending.Attendee))
	case actionMisc:
		if len(args) != 1 {
			return ""
		}
		f, ferr := model.ParseMiscField(args[0])
		if ferr != nil {
			return ""
		}
		s.Pending = &PendingInput{Misc: f}
		return fmt.Sprintf("Please send your %s (send - to clear).", strings.ToLower(f.Label()))
	case actionRegistry:
		nav := wizard.NavigatorFunc(func(ctx context.Context, pageID string) error {
			return h.ShowPage(ctx, b, chatID, pageID)
		})
		err = w.ViewRegistry(ctx, nav)
	default:
		h.Logger.Warn().Str("action", action).Msg("unknown rsvp action")
		return ""
	}

	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrValidation):
		return strings.Join(wizard.Problems(err), "\n")
	case errors.Is(err, model.ErrLastAttendee):
		return "At least one attendee is required."
	case errors.Is(err, model.ErrInvalidTransition):
		return "That button is no longer available."
	default:
		h.Logger.Error().Err(err).Int64("chat_id", chatID).Str("action", action).Msg("error applying rsvp action")
		return "Something went wrong, please try again."
	}
}

func attendeeTitle(w *wizard.Wizard, id model.AttendeeID) string {
	for i, a := range w.Attendees() {
		if a.ID == id {
			return fmt.Sprintf("attendee %d", i+1)
		}
	}
	return "this attendee"
}

// submit sends the RSVP without holding the session lock during the
// request. The wizard refuses other events while it is submitting.
func (h *RSVPBotHandler) submit(ctx context.Context, b *bot.Bot, chatID int64, s *Session, messageID int) {
	s.mu.Lock()
	s.Focus, s.Pending = "", nil
	p, err := s.Wizard.BeginSubmit()
	if err != nil {
		h.render(ctx, b, chatID, s, messageID, "That button is no longer available.")
		s.mu.Unlock()
		return
	}
	h.render(ctx, b, chatID, s, messageID, "")
	s.mu.Unlock()

	serr := h.Submitter.Submit(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Wizard.CompleteSubmit(serr); err != nil {
		h.Logger.Error().Err(err).Msg("error completing submission")
	}

	log := h.Logger.With().
		Int64("chat_id", chatID).
		Str("submission_id", p.SubmissionID).
		Int("attendees", len(p.Attendees)).
		Logger()
	if serr != nil {
		log.Warn().Err(serr).Msg("rsvp submission failed")
	} else {
		log.Info().Msg("rsvp accepted")
		if h.Organiser != nil {
			h.Organiser.NotifyRSVP(ctx, b, p)
		}
	}
	h.render(ctx, b, chatID, s, s.MessageID, "")
}

// render shows the wizard, editing messageID in place when set.
func (h *RSVPBotHandler) render(ctx context.Context, b *bot.Bot, chatID int64, s *Session, messageID int, note string) {
	text, kb := RenderMessage(wizard.Render(s.Wizard.Snapshot()), s.Focus, note)

	if messageID != 0 {
		params := &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: messageID,
			Text:      text,
		}
		if kb != nil {
			params.ReplyMarkup = kb
		}
		_, err := b.EditMessageText(ctx, params)
		if err == nil || strings.Contains(err.Error(), "message is not modified") {
			s.MessageID = messageID
			return
		}
		h.Logger.Warn().Err(err).Int64("chat_id", chatID).Msg("error editing rsvp message, sending a new one")
	}

	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	msg, err := b.SendMessage(ctx, params)
	if err != nil {
		h.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("error sending message")
		return
	}
	s.MessageID = msg.ID
}

// ShowPage sends a content page. The rsvp page starts a new RSVP.
func (h *RSVPBotHandler) ShowPage(ctx context.Context, b *bot.Bot, chatID int64, pageID string) error {
	if pageID == pages.RSVP {
		h.startRSVP(ctx, b, chatID)
		return nil
	}
	page, err := h.Pages.Get(pageID)
	if err != nil {
		return err
	}
	text, kb := pageMessage(page, h.Pages.All())
	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		return fmt.Errorf("error sending page: %w", err)
	}
	return nil
}

func (h *RSVPBotHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("error sending message")
	}
}
