package repo

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"RSVPBot/model"
)

// Runs against the Realtime Database emulator, e.g.
// FIREBASE_DATABASE_EMULATOR_HOST=localhost:9000.
func newEmulatorConnector(t *testing.T) *FirebaseConnector {
	t.Helper()
	host := os.Getenv("FIREBASE_DATABASE_EMULATOR_HOST")
	if host == "" {
		t.Skip("FIREBASE_DATABASE_EMULATOR_HOST not set")
	}
	fc, err := NewFirebaseConnector(context.Background(), "http://"+host+"?ns=rsvpbot-test", option.WithoutAuthentication())
	require.NoError(t, err)
	return fc
}

func TestFirebaseConnectorRoundTrip(t *testing.T) {
	fc := newEmulatorConnector(t)
	ctx := context.Background()

	p := testPayload()
	require.NoError(t, fc.Submit(ctx, p))
	// a retry of the same submission overwrites
	p.Misc[model.MiscComments] = "second attempt"
	require.NoError(t, fc.Submit(ctx, p))

	got, err := fc.ReadSubmission(ctx, p.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", got["attendee_name_0"])
	assert.Equal(t, "second attempt", got["comments"])

	list, err := fc.ListSubmissions(ctx)
	require.NoError(t, err)
	count := 0
	for _, s := range list {
		if s.ID() == p.SubmissionID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	_, err = fc.ReadSubmission(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrRSVPDoesNotExist)
}

func TestFirebaseConnectorRejectsEmptyID(t *testing.T) {
	fc := newEmulatorConnector(t)
	p := testPayload()
	p.SubmissionID = ""
	assert.Error(t, fc.Submit(context.Background(), p))
}
