package repo

import (
	"context"

	"github.com/rs/zerolog"

	"RSVPBot/wizard"
)

// MirroredSubmitter delivers to Primary and then copies accepted RSVPs to
// Mirrors. Mirror failures are logged and never fail the submission.
type MirroredSubmitter struct {
	Primary wizard.Submitter
	Mirrors []wizard.Submitter
	Logger  zerolog.Logger
}

func (m *MirroredSubmitter) Submit(ctx context.Context, p wizard.Payload) error {
	if err := m.Primary.Submit(ctx, p); err != nil {
		return err
	}
	for i, mirror := range m.Mirrors {
		if err := mirror.Submit(ctx, p); err != nil {
			m.Logger.Error().Err(err).
				Int("mirror", i).
				Str("submission_id", p.SubmissionID).
				Msg("error mirroring rsvp")
		}
	}
	return nil
}
