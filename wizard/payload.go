package wizard

import (
	"encoding/json"
	"strconv"
	"time"

	"RSVPBot/model"
)

// Payload is the data sent to the form-processing endpoint.
type Payload struct {
	SubmissionID      string
	SubmittedAt       time.Time
	AttendingCeremony model.Attendance
	Attendees         []model.Attendee
	Misc              map[model.MiscField]string
}

func (w *Wizard) payload() Payload {
	misc := make(map[model.MiscField]string, len(model.MiscFields))
	for _, f := range model.MiscFields {
		misc[f] = w.misc[f]
	}
	return Payload{
		SubmissionID:      w.submissionID,
		SubmittedAt:       w.now().UTC(),
		AttendingCeremony: w.attending,
		Attendees:         w.Attendees(),
		Misc:              misc,
	}
}

// Fields flattens the payload into form field names. Attendee fields
// carry the card's current position as suffix, so indices are always
// contiguous from 0.
func (p Payload) Fields() map[string]string {
	out := map[string]string{
		"submissionId":      p.SubmissionID,
		"submittedAt":       p.SubmittedAt.Format(time.RFC3339),
		"attendingCeremony": p.AttendingCeremony.String(),
		"attendeeCount":     strconv.Itoa(len(p.Attendees)),
	}
	for i, a := range p.Attendees {
		for _, f := range model.AttendeeFields {
			out[f.PayloadName(i)] = a.Get(f)
		}
	}
	for _, f := range model.MiscFields {
		out[string(f)] = p.Misc[f]
	}
	return out
}

// PrimaryName is the name on the first attendee card.
func (p Payload) PrimaryName() string {
	if len(p.Attendees) == 0 {
		return ""
	}
	return p.Attendees[0].Name
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}
