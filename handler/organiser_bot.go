package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"RSVPBot/repo"
	"RSVPBot/wizard"
)

// maxMessageLength is the Telegram limit on message text.
const maxMessageLength = 4096

type SubmissionLister interface {
	ListSubmissions(ctx context.Context) ([]repo.Submission, error)
}

// OrganiserBotHandler notifies the couple about new RSVPs and answers
// their /responses command.
type OrganiserBotHandler struct {
	ChatIDs []int64
	// Responses is nil when no RSVP store is configured.
	Responses SubmissionLister
	Logger    zerolog.Logger
}

func NewOrganiserBotHandler(chatIDs []int64, responses SubmissionLister, logger zerolog.Logger) *OrganiserBotHandler {
	return &OrganiserBotHandler{
		ChatIDs:   chatIDs,
		Responses: responses,
		Logger:    logger,
	}
}

func (o *OrganiserBotHandler) isOrganiser(chatID int64) bool {
	for _, id := range o.ChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

// Handles reports whether msg is an organiser command.
func (o *OrganiserBotHandler) Handles(msg *models.Message) bool {
	return o.isOrganiser(msg.Chat.ID) && commandOf(msg.Text) == "/responses"
}

func (o *OrganiserBotHandler) Handler(ctx context.Context, b *bot.Bot, msg *models.Message) {
	chatID := msg.Chat.ID

	var text string
	if o.Responses == nil {
		text = "No RSVP store is configured."
	} else {
		list, err := o.Responses.ListSubmissions(ctx)
		if err != nil {
			o.Logger.Error().Err(err).Msg("error listing rsvps")
			text = "Error listing RSVPs. Please try again."
		} else {
			text = o.summarizeResponses(list)
		}
	}

	for _, chunk := range splitMessage(text, maxMessageLength) {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
		})
		if err != nil {
			o.Logger.Error().Err(err).Int64("chat_id", chatID).Msg("error sending message")
			return
		}
	}
}

// NotifyRSVP tells every organiser chat about an accepted RSVP.
func (o *OrganiserBotHandler) NotifyRSVP(ctx context.Context, b *bot.Bot, p wizard.Payload) {
	text := fmt.Sprintf("New RSVP from %s: %d attending the ceremony.", p.PrimaryName(), len(p.Attendees))
	for _, id := range o.ChatIDs {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: id,
			Text:   text,
		})
		if err != nil {
			o.Logger.Warn().Err(err).Int64("chat_id", id).Msg("error notifying organiser")
		}
	}
}

func (o *OrganiserBotHandler) summarizeResponses(list []repo.Submission) string {
	if len(list) == 0 {
		return "No RSVPs yet."
	}

	guests := 0
	var sb strings.Builder
	for i, s := range list {
		name := s["attendee_name_0"]
		if name == "" {
			name = "(no name)"
		}
		n, err := strconv.Atoi(s["attendeeCount"])
		if err != nil {
			o.Logger.Warn().Err(err).Str("submission_id", s.ID()).Msg("rsvp has no valid attendee count")
			fmt.Fprintf(&sb, "%d. %s, unknown guest count, submitted %s\n", i+1, name, s["submittedAt"])
			continue
		}
		guests += n
		fmt.Fprintf(&sb, "%d. %s, %d guest(s), submitted %s\n", i+1, name, n, s["submittedAt"])
	}
	return fmt.Sprintf("%d RSVP(s), %d guest(s) in total:\n\n%s", len(list), guests, strings.TrimRight(sb.String(), "\n"))
}

// splitMessage splits text on line boundaries into chunks of at most
// limit characters. A single longer line is cut between runes.
func splitMessage(text string, limit int) []string {
	var chunks []string
	for {
		end := runeOffset(text, limit)
		if end < 0 {
			return append(chunks, text)
		}
		cut := strings.LastIndex(text[:end], "\n")
		if cut <= 0 {
			cut = end
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
}

// runeOffset returns the byte offset of the n-th rune of s, or -1 when s
// has at most n runes.
func runeOffset(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return -1
}
