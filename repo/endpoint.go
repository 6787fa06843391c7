package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"RSVPBot/model"
	"RSVPBot/wizard"
)

// DefaultSubmitTimeout bounds a single submission attempt.
const DefaultSubmitTimeout = 15 * time.Second

const maxResponseBytes = 1 << 20

// EndpointResponse is the body returned by the form-processing script.
type EndpointResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SubmissionError describes a failed delivery. StatusCode is 0 when no
// response was received.
type SubmissionError struct {
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", model.ErrSubmission, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", model.ErrSubmission, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

func (e *SubmissionError) Is(target error) bool { return target == model.ErrSubmission }

// EndpointSubmitter posts RSVPs to an external form endpoint such as a
// Google Apps Script web app.
type EndpointSubmitter struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
	Logger  zerolog.Logger
}

// NewEndpointSubmitter creates a submitter for url. A zero timeout means
// DefaultSubmitTimeout.
func NewEndpointSubmitter(url string, timeout time.Duration, logger zerolog.Logger) *EndpointSubmitter {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &EndpointSubmitter{
		URL:     url,
		Timeout: timeout,
		Client:  &http.Client{},
		Logger:  logger,
	}
}

// Submit makes exactly one request. It never retries.
func (s *EndpointSubmitter) Submit(ctx context.Context, p wizard.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return &SubmissionError{Err: fmt.Errorf("error marshaling payload: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return &SubmissionError{Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response after %s: %w", s.Timeout, err)
		}
		s.Logger.Warn().Err(err).Str("submission_id", p.SubmissionID).Msg("rsvp endpoint unreachable")
		return &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &SubmissionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("error reading response body: %w", err)}
	}

	log := s.Logger.With().
		Str("submission_id", p.SubmissionID).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Logger()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn().Msg("rsvp endpoint rejected submission")
		return &SubmissionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var out EndpointResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn().Err(err).Msg("rsvp endpoint returned malformed body")
		return &SubmissionError{StatusCode: resp.StatusCode, Err: fmt.Errorf("error unmarshaling response: %w", err)}
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "endpoint did not report success"
		}
		log.Warn().Str("endpoint_error", msg).Msg("rsvp endpoint reported failure")
		return &SubmissionError{StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	log.Info().Int("attendees", len(p.Attendees)).Msg("rsvp submitted")
	return nil
}
