package repo

import (
	"context"
	"fmt"
	"sort"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"RSVPBot/model"
	"RSVPBot/wizard"
)

const rsvpsPath = "rsvps"

// Submission is a stored RSVP in its flattened form-field shape.
type Submission map[string]string

func (s Submission) ID() string { return s["submissionId"] }

// FirebaseConnector mirrors RSVPs into a Firebase Realtime Database.
type FirebaseConnector struct {
	app    *firebase.App
	client *db.Client
}

// NewFirebaseConnector creates a new Firebase connector
func NewFirebaseConnector(ctx context.Context, databaseURL string, opts ...option.ClientOption) (*FirebaseConnector, error) {
	config := &firebase.Config{
		DatabaseURL: databaseURL,
	}
	app, err := firebase.NewApp(ctx, config, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}

	return &FirebaseConnector{
		app:    app,
		client: client,
	}, nil
}

// NewFirebaseConnectorFromKeyFile loads service account credentials from
// keyPath.
func NewFirebaseConnectorFromKeyFile(ctx context.Context, keyPath, databaseURL string) (*FirebaseConnector, error) {
	return NewFirebaseConnector(ctx, databaseURL, option.WithCredentialsFile(keyPath))
}

// Submit stores p under its submission id, so a retry overwrites the
// earlier attempt.
func (fc *FirebaseConnector) Submit(ctx context.Context, p wizard.Payload) error {
	if p.SubmissionID == "" {
		return fmt.Errorf("error storing rsvp: empty submission id")
	}
	ref := fc.client.NewRef(rsvpsPath).Child(p.SubmissionID)
	if err := ref.Set(ctx, p); err != nil {
		return fmt.Errorf("error storing rsvp: %w", err)
	}
	return nil
}

// ReadSubmission reads an RSVP by its submission id.
func (fc *FirebaseConnector) ReadSubmission(ctx context.Context, id string) (Submission, error) {
	var s Submission
	if err := fc.client.NewRef(rsvpsPath).Child(id).Get(ctx, &s); err != nil {
		return nil, fmt.Errorf("error reading rsvp: %w", err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrRSVPDoesNotExist, id)
	}
	return s, nil
}

// ListSubmissions lists all stored RSVPs, oldest first.
func (fc *FirebaseConnector) ListSubmissions(ctx context.Context) ([]Submission, error) {
	var all map[string]Submission
	if err := fc.client.NewRef(rsvpsPath).Get(ctx, &all); err != nil {
		return nil, fmt.Errorf("error listing rsvps: %w", err)
	}

	list := make([]Submission, 0, len(all))
	for key, s := range all {
		if s.ID() == "" {
			s["submissionId"] = key
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i]["submittedAt"] == list[j]["submittedAt"] {
			return list[i].ID() < list[j].ID()
		}
		return list[i]["submittedAt"] < list[j]["submittedAt"]
	})
	return list, nil
}
