package handler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSVPBot/model"
	"RSVPBot/pages"
	"RSVPBot/wizard"
)

func callbacks(kb *models.InlineKeyboardMarkup) []string {
	if kb == nil {
		return nil
	}
	var out []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData != "" {
				out = append(out, btn.CallbackData)
			}
		}
	}
	return out
}

func TestRenderMessageCeremony(t *testing.T) {
	w := wizard.New()
	text, kb := RenderMessage(wizard.Render(w.Snapshot()), "", "")
	assert.Contains(t, text, "Step 1 of 3")
	assert.Contains(t, text, wizard.CeremonyQuestion)
	if diff := cmp.Diff([]string{"rsvp:ceremony_yes", "rsvp:ceremony_no"}, callbacks(kb)); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, w.AnswerYes())
	text, kb = RenderMessage(wizard.Render(w.Snapshot()), "", "")
	assert.Contains(t, text, "Your answer: Yes")
	assert.Equal(t, "✓ Yes", kb.InlineKeyboard[0][0].Text)
	assert.Contains(t, callbacks(kb), "rsvp:next")
}

func TestRenderMessageFocusedCard(t *testing.T) {
	w := wizard.New()
	require.NoError(t, w.AnswerYes())
	require.NoError(t, w.Next())
	id := w.Attendees()[0].ID

	_, kb := RenderMessage(wizard.Render(w.Snapshot()), "", "")
	if diff := cmp.Diff([]string{"rsvp:edit:a1", "rsvp:add", "rsvp:prev", "rsvp:next"}, callbacks(kb)); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}

	text, kb := RenderMessage(wizard.Render(w.Snapshot()), id, "Please send the full name")
	got := callbacks(kb)
	assert.Len(t, got, len(model.AttendeeFields)+1)
	assert.Equal(t, "rsvp:field:a1:name", got[0])
	assert.Equal(t, "rsvp:done", got[len(got)-1])
	assert.NotContains(t, got, "rsvp:next", "navigation is hidden while a card is focused")
	assert.Contains(t, text, "Full name*: —")
	assert.Contains(t, text, "Please send the full name")
}

func TestRenderMessageSubmittingHasNoButtons(t *testing.T) {
	w := wizard.New()
	require.NoError(t, w.AnswerYes())
	require.NoError(t, w.Next())
	id := w.Attendees()[0].ID
	require.NoError(t, w.SetAttendeeField(id, model.FieldName, "John Doe"))
	require.NoError(t, w.SetAttendeeField(id, model.FieldEmail, "john@example.com"))
	require.NoError(t, w.SetAttendeeField(id, model.FieldEmergencyName, "Jane Doe"))
	require.NoError(t, w.SetAttendeeField(id, model.FieldEmergencyPhone, "123-456-7890"))
	require.NoError(t, w.Next())

	_, kb := RenderMessage(wizard.Render(w.Snapshot()), "", "")
	if diff := cmp.Diff([]string{"rsvp:misc:song_requests", "rsvp:misc:comments", "rsvp:prev", "rsvp:submit"}, callbacks(kb)); diff != "" {
		t.Errorf("callbacks mismatch (-want +got):\n%s", diff)
	}

	_, err := w.BeginSubmit()
	require.NoError(t, err)
	text, kb := RenderMessage(wizard.Render(w.Snapshot()), "", "")
	assert.Nil(t, kb)
	assert.Contains(t, text, "Song requests: —")
}

func TestRenderMessageNotAttending(t *testing.T) {
	w := wizard.New(wizard.WithNotAttendingLink("https://padlet.com/example/guestbook"))
	require.NoError(t, w.AnswerNo())

	text, kb := RenderMessage(wizard.Render(w.Snapshot()), "", "")
	assert.Contains(t, text, wizard.NotAttendingText)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "https://padlet.com/example/guestbook", kb.InlineKeyboard[0][0].URL)
	assert.Equal(t, pageData(pages.Home), kb.InlineKeyboard[1][0].CallbackData)
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	for _, f := range model.AttendeeFields {
		assert.LessOrEqual(t, len(rsvpData(actionField, "a999", string(f))), 64, f)
	}
}

func TestPageMessage(t *testing.T) {
	c, err := pages.Default()
	require.NoError(t, err)
	reg, err := c.Get(pages.Registry)
	require.NoError(t, err)

	text, kb := pageMessage(reg, c.All())
	assert.Contains(t, text, reg.Title)
	assert.Equal(t, reg.Links[0].URL, kb.InlineKeyboard[0][0].URL)

	menu := callbacks(kb)
	assert.Len(t, menu, len(c.All())-1)
	assert.NotContains(t, menu, pageData(pages.Registry))
	assert.Contains(t, menu, pageData(pages.RSVP))
}

func TestRenderMessageStaysWithinTelegramLimit(t *testing.T) {
	long := strings.Repeat("la ", 900)

	w := wizard.New()
	require.NoError(t, w.AnswerYes())
	require.NoError(t, w.Next())
	for i := 0; i < 5; i++ {
		_, err := w.AddAttendee()
		require.NoError(t, err)
	}
	for _, a := range w.Attendees() {
		for _, f := range model.AttendeeFields {
			require.NoError(t, w.SetAttendeeField(a.ID, f, long))
		}
	}

	text, _ := RenderMessage(wizard.Render(w.Snapshot()), "", "Please send the full name for attendee 6.")
	assert.LessOrEqual(t, utf8.RuneCountInString(text), maxMessageLength)
	assert.True(t, utf8.ValidString(text))
	assert.True(t, strings.HasSuffix(text, "Please send the full name for attendee 6."), "the prompt is never cut")

	require.NoError(t, w.Next())
	require.NoError(t, w.SetMiscField(model.MiscSongRequests, strings.Repeat("é", 2500)))
	require.NoError(t, w.SetMiscField(model.MiscComments, strings.Repeat("ü", 2500)))

	text, kb := RenderMessage(wizard.Render(w.Snapshot()), "", "")
	assert.LessOrEqual(t, utf8.RuneCountInString(text), maxMessageLength)
	assert.Contains(t, text, strings.Repeat("é", maxValueRunes-1)+"…")
	assert.NotContains(t, text, strings.Repeat("é", maxValueRunes))
	assert.Contains(t, callbacks(kb), rsvpData(actionSubmit))
}

func TestFitMessage(t *testing.T) {
	assert.Equal(t, "body", fitMessage("body\n", "", 10))
	assert.Equal(t, "body\n\ntail", fitMessage("body", "\ntail", 20))
	assert.Equal(t, "bo…\n\ntail", fitMessage("body text", "\ntail", 9))
	assert.Equal(t, "\ntai…", fitMessage("body", "\ntail and more", 5))
	assert.Equal(t, "€€…", truncate("€€€€", 3))
}
