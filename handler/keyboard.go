package handler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"

	"RSVPBot/model"
	"RSVPBot/pages"
	"RSVPBot/wizard"
)

// Callback data. Wizard callbacks are "rsvp:<action>[:<arg>...]", page
// navigation is "page:<id>".
const (
	prefixRSVP = "rsvp"
	prefixPage = "page"

	actionCeremonyYes = "ceremony_yes"
	actionCeremonyNo  = "ceremony_no"
	actionNext        = "next"
	actionPrev        = "prev"
	actionAdd         = "add"
	actionRemove      = "remove"
	actionEdit        = "edit"
	actionField       = "field"
	actionMisc        = "misc"
	actionDone        = "done"
	actionSubmit      = "submit"
	actionRegistry    = "registry"
)

// elementActions maps view actions onto callback actions.
var elementActions = map[string]string{
	wizard.ElementNext:         actionNext,
	wizard.ElementPrev:         actionPrev,
	wizard.ElementSubmit:       actionSubmit,
	wizard.ElementAddAttendee:  actionAdd,
	wizard.ElementRegistryLink: actionRegistry,
}

const emptyValue = "—"

// maxValueRunes caps how much of a single answer the wizard message shows.
const maxValueRunes = 200

func rsvpData(parts ...string) string {
	return prefixRSVP + ":" + strings.Join(parts, ":")
}

func pageData(id string) string {
	return prefixPage + ":" + id
}

func button(text, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

// RenderMessage turns a wizard view into a Telegram message. focus is the
// attendee card whose field buttons are shown; note is appended below
// the form (validation problems, prompts).
func RenderMessage(v wizard.View, focus model.AttendeeID, note string) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "RSVP · %s · %s\n", v.StepIndicator, v.Title)

	var rows [][]models.InlineKeyboardButton

	if c := v.Ceremony; c != nil {
		sb.WriteString("\n" + c.Question + "\n")
		switch {
		case c.Yes.Checked:
			sb.WriteString("Your answer: Yes\n")
		case c.No.Checked:
			sb.WriteString("Your answer: No\n")
		}
		if v.NotAttending == nil {
			rows = append(rows, []models.InlineKeyboardButton{
				button(checkmark(c.Yes), rsvpData(actionCeremonyYes)),
				button(checkmark(c.No), rsvpData(actionCeremonyNo)),
			})
		}
	}

	if p := v.NotAttending; p != nil {
		sb.WriteString("\n" + p.Text + "\n")
		if p.Link.URL != "" {
			rows = append(rows, []models.InlineKeyboardButton{{Text: p.Link.Label, URL: p.Link.URL}})
		}
		rows = append(rows, []models.InlineKeyboardButton{button("Back to home", pageData(pages.Home))})
	}

	if p := v.Attendees; p != nil {
		focused := cardByID(p.Cards, focus)
		for _, c := range p.Cards {
			writeCard(&sb, c)
		}
		if focused != nil {
			rows = append(rows, fieldRows(*focused)...)
			rows = append(rows, []models.InlineKeyboardButton{button("✔ Done editing", rsvpData(actionDone))})
		} else {
			for _, c := range p.Cards {
				row := []models.InlineKeyboardButton{button("✏️ Edit "+c.Title, rsvpData(actionEdit, string(c.AttendeeID)))}
				if c.Removable {
					row = append(row, button("🗑 Remove", rsvpData(actionRemove, string(c.AttendeeID))))
				}
				rows = append(rows, row)
			}
		}
	}

	if p := v.Additional; p != nil {
		sb.WriteString("\n")
		for _, in := range p.Inputs {
			writeInput(&sb, "", in)
		}
		if !actionsDisabled(v.Actions) {
			for _, in := range p.Inputs {
				rows = append(rows, []models.InlineKeyboardButton{button("✏️ "+in.Label, rsvpData(actionMisc, in.Field))})
			}
		}
	}

	var tail strings.Builder
	if m := v.Message; m != nil {
		icon := "✅"
		if m.Kind == wizard.MessageError {
			icon = "❌"
		}
		tail.WriteString("\n" + icon + " " + m.Text + "\n")
	}
	if note != "" {
		tail.WriteString("\n" + note + "\n")
	}
	text := fitMessage(sb.String(), strings.TrimRight(tail.String(), "\n"), maxMessageLength)

	if focus == "" || v.Attendees == nil || cardByID(v.Attendees.Cards, focus) == nil {
		rows = append(rows, actionRows(v.Actions)...)
	}

	if len(rows) == 0 {
		return text, nil
	}
	return text, &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// fitMessage joins body and tail within limit characters, shortening the
// body so the tail (result message, prompts) is always shown.
func fitMessage(body, tail string, limit int) string {
	body = strings.TrimRight(body, "\n")
	if tail == "" {
		return truncate(body, limit)
	}
	room := limit - utf8.RuneCountInString(tail) - 1
	if room < 0 {
		return truncate(tail, limit)
	}
	return truncate(body, room) + "\n" + tail
}

// truncate shortens s to at most n characters, marking the cut with "…".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	return s[:runeOffset(s, n-1)] + "…"
}

func checkmark(c wizard.Choice) string {
	if c.Checked {
		return "✓ " + c.Label
	}
	return c.Label
}

func cardByID(cards []wizard.Card, id model.AttendeeID) *wizard.Card {
	if id == "" {
		return nil
	}
	for i := range cards {
		if cards[i].AttendeeID == id {
			return &cards[i]
		}
	}
	return nil
}

func writeCard(sb *strings.Builder, c wizard.Card) {
	sb.WriteString("\n" + c.Title + "\n")
	for _, in := range c.Inputs {
		writeInput(sb, "  ", in)
	}
}

func writeInput(sb *strings.Builder, indent string, in wizard.Input) {
	label := in.Label
	if in.Required {
		label += "*"
	}
	value := truncate(in.Value, maxValueRunes)
	if value == "" {
		value = emptyValue
	}
	mark := ""
	if in.Invalid {
		mark = " ⚠️"
	}
	fmt.Fprintf(sb, "%s%s: %s%s\n", indent, label, value, mark)
}

func fieldRows(c wizard.Card) [][]models.InlineKeyboardButton {
	var rows [][]models.InlineKeyboardButton
	var row []models.InlineKeyboardButton
	for _, in := range c.Inputs {
		label := in.Label
		if in.Required {
			label += "*"
		}
		row = append(row, button(label, rsvpData(actionField, string(c.AttendeeID), in.Field)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func actionsDisabled(actions []wizard.Action) bool {
	for _, a := range actions {
		if a.Disabled {
			return true
		}
	}
	return false
}

// actionRows puts add-attendee on its own row and the navigation
// actions side by side. Disabled actions are not rendered.
func actionRows(actions []wizard.Action) [][]models.InlineKeyboardButton {
	var rows [][]models.InlineKeyboardButton
	var nav []models.InlineKeyboardButton
	for _, a := range actions {
		if a.Disabled {
			continue
		}
		data, ok := elementActions[a.ID]
		if !ok {
			continue
		}
		label := a.Label
		switch a.ID {
		case wizard.ElementAddAttendee:
			rows = append(rows, []models.InlineKeyboardButton{button("➕ "+label, rsvpData(data))})
			continue
		case wizard.ElementPrev:
			label = "◀ " + label
		case wizard.ElementNext:
			label += " ▶"
		}
		nav = append(nav, button(label, rsvpData(data)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return rows
}

// pageMessage renders a content page with its links and the site menu.
func pageMessage(p pages.Page, all []pages.Page) (string, *models.InlineKeyboardMarkup) {
	text := p.Title + "\n\n" + strings.TrimSpace(p.Body)

	var rows [][]models.InlineKeyboardButton
	for _, l := range p.Links {
		rows = append(rows, []models.InlineKeyboardButton{{Text: l.Label, URL: l.URL}})
	}
	var row []models.InlineKeyboardButton
	for _, other := range all {
		if other.ID == p.ID {
			continue
		}
		row = append(row, button(other.Title, pageData(other.ID)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return text, &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
