package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RSVPBot/config"
	"RSVPBot/pages"
	"RSVPBot/repo"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("chat", "42").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "42", line["chat"])
	assert.Contains(t, line, "time")

	buf.Reset()
	logger, err = newLogger("debug", "console", &buf)
	require.NoError(t, err)
	logger.Debug().Msg("pretty")
	assert.Contains(t, buf.String(), "pretty")

	_, err = newLogger("loud", "json", &buf)
	assert.Error(t, err)
	_, err = newLogger("info", "xml", &buf)
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	hooked := false
	r := newRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hooked = true }))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, webhookPath, strings.NewReader("{}")))
	assert.True(t, hooked)

	rec = httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, webhookPath, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: newRouter(nil)}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, zerolog.Nop()) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewRSVPHandlerWiring(t *testing.T) {
	catalog, err := pages.Default()
	require.NoError(t, err)

	h := newRSVPHandler(config.Config{EndpointURL: "http://example.invalid", SubmitTimeout: time.Second}, catalog, nil, zerolog.Nop())
	assert.IsType(t, &repo.EndpointSubmitter{}, h.Submitter)
	assert.Nil(t, h.Organiser)

	h = newRSVPHandler(config.Config{
		EndpointURL:      "http://example.invalid",
		SubmitTimeout:    time.Second,
		OrganiserChatIDs: []int64{1},
	}, catalog, nil, zerolog.Nop())
	require.NotNil(t, h.Organiser)
	assert.Nil(t, h.Organiser.Responses)
}

type listerFunc func(ctx context.Context) ([]repo.Submission, error)

func (f listerFunc) ListSubmissions(ctx context.Context) ([]repo.Submission, error) { return f(ctx) }

func TestExportSubmissions(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	err := exportSubmissions(cmd, listerFunc(func(context.Context) ([]repo.Submission, error) {
		return []repo.Submission{
			{"submissionId": "s1", "attendee_name_0": "John Doe"},
			{"submissionId": "s2", "attendee_name_0": "Ann Lee"},
		}, nil
	}))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var first map[string]string
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "John Doe", first["attendee_name_0"])

	err = exportSubmissions(cmd, listerFunc(func(context.Context) ([]repo.Submission, error) {
		return nil, errors.New("boom")
	}))
	assert.Error(t, err)
}

func TestApplyRunFlags(t *testing.T) {
	t.Cleanup(func() { runFlags.httpAddr, runFlags.logLevel = "", "" })
	runFlags.httpAddr = ":9090"
	runFlags.logLevel = "debug"

	cfg := config.Config{HTTPAddr: ":8080", LogLevel: "info", LogFormat: "json"}
	applyRunFlags(&cfg)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}
