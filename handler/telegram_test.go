package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

type apiCall struct {
	Method string
	ChatID string
	Text   string
	Markup string
}

// fakeTelegram records Bot API calls and answers them with a minimal
// successful response.
type fakeTelegram struct {
	mu     sync.Mutex
	calls  []apiCall
	nextID int
}

func newTestBot(t *testing.T) (*bot.Bot, *fakeTelegram) {
	t.Helper()
	f := &fakeTelegram{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	b, err := bot.New("123:abc", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return b, f
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	var form map[string]string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		_ = json.NewDecoder(r.Body).Decode(&raw)
		form = make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(string); ok {
				form[k] = s
				continue
			}
			encoded, _ := json.Marshal(v)
			form[k] = string(encoded)
		}
	} else {
		_ = r.ParseMultipartForm(1 << 20)
		form = map[string]string{
			"chat_id":      r.FormValue("chat_id"),
			"text":         r.FormValue("text"),
			"reply_markup": r.FormValue("reply_markup"),
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{
		Method: method,
		ChatID: form["chat_id"],
		Text:   form["text"],
		Markup: form["reply_markup"],
	})
	f.nextID++
	id := f.nextID
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if method == "answerCallbackQuery" {
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
		return
	}
	_, _ = fmt.Fprintf(w, `{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":42,"type":"private"}}}`, id)
}

// messages returns the sendMessage and editMessageText calls.
func (f *fakeTelegram) messages() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == "sendMessage" || c.Method == "editMessageText" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTelegram) last(t *testing.T) apiCall {
	t.Helper()
	msgs := f.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func (f *fakeTelegram) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   1,
		From: &models.User{ID: chatID},
		Chat: models.Chat{ID: chatID},
		Text: text,
	}}
}

func callbackUpdate(chatID int64, messageID int, data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb",
		From: models.User{ID: chatID},
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{
				ID:   messageID,
				Chat: models.Chat{ID: chatID},
			},
		},
		Data: data,
	}}
}
