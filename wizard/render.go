package wizard

import (
	"errors"
	"fmt"

	"RSVPBot/model"
)

// Logical element names of the RSVP form.
const (
	ElementForm           = "rsvpForm"
	ElementStepIndicator  = "stepIndicator"
	ElementNext           = "nextBtn"
	ElementPrev           = "prevBtn"
	ElementSubmit         = "submitBtn"
	ElementCeremonyYes    = "ceremony_yes"
	ElementCeremonyNo     = "ceremony_no"
	ElementAttendees      = "attendees-container"
	ElementAddAttendee    = "addAttendeeBtn"
	ElementRemoveAttendee = "removeAttendeeBtn"
	ElementMessage        = "formMessage"
	ElementNotAttending   = "not-attending-message"
	ElementRegistryLink   = "registryLink"
)

// MessageKind distinguishes the form message styles.
type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

const (
	CeremonyQuestion = "Will you be attending the ceremony?"
	SuccessText      = "Thank you! Your RSVP has been received. We can't wait to celebrate with you."
	ErrorText        = "Sorry, something went wrong while sending your RSVP. Your answers are saved, please try submitting again."
	NotAttendingText = "We're sorry you can't make it! You can still leave us a message on our guestbook."
)

var stepTitles = [model.StepCount]string{
	"Ceremony",
	"Who's Attending?",
	"Additional Information",
}

// Snapshot is a copy of the wizard state taken for rendering.
type Snapshot struct {
	State           model.State
	Attending       model.Attendance
	Attendees       []model.Attendee
	Misc            map[model.MiscField]string
	Unanswered      bool
	Invalid         map[model.AttendeeID]map[model.Field]bool
	Policy          Policy
	NotAttendingURL string
}

// Snapshot copies the state needed by Render.
func (w *Wizard) Snapshot() Snapshot {
	misc := make(map[model.MiscField]string, len(w.misc))
	for k, v := range w.misc {
		misc[k] = v
	}
	invalid := make(map[model.AttendeeID]map[model.Field]bool, len(w.invalid))
	for id, fields := range w.invalid {
		invalid[id] = make(map[model.Field]bool, len(fields))
		for f, v := range fields {
			invalid[id][f] = v
		}
	}
	return Snapshot{
		State:           w.state,
		Attending:       w.attending,
		Attendees:       w.Attendees(),
		Misc:            misc,
		Unanswered:      w.unanswered,
		Invalid:         invalid,
		Policy:          w.policy,
		NotAttendingURL: w.notAttendingURL,
	}
}

type View struct {
	Form          string
	StepIndicator StepIndicator
	Title         string
	Ceremony      *CeremonyPanel
	Attendees     *AttendeesPanel
	Additional    *AdditionalPanel
	NotAttending  *NotAttendingPanel
	Message       *Message
	Actions       []Action
}

type StepIndicator struct {
	ID      string
	Current int
	Total   int
}

func (s StepIndicator) String() string {
	return fmt.Sprintf("Step %d of %d", s.Current+1, s.Total)
}

type CeremonyPanel struct {
	Question string
	Yes      Choice
	No       Choice
	Invalid  bool
}

type Choice struct {
	ID      string
	Label   string
	Checked bool
}

type AttendeesPanel struct {
	ID    string
	Cards []Card
}

// Card is one attendee. Index is the current display position and only
// feeds field names; AttendeeID is what actions address.
type Card struct {
	AttendeeID model.AttendeeID
	Index      int
	Title      string
	Inputs     []Input
	Removable  bool
}

type Input struct {
	Name     string
	Field    string
	Label    string
	Value    string
	Required bool
	Invalid  bool
}

type AdditionalPanel struct {
	Inputs []Input
}

type NotAttendingPanel struct {
	ID   string
	Text string
	Link Link
}

type Link struct {
	Label string
	URL   string
}

type Message struct {
	ID   string
	Kind MessageKind
	Text string
}

type Action struct {
	ID       string
	Label    string
	Disabled bool
}

// Render is a pure function of the snapshot.
func Render(s Snapshot) View {
	step := s.State.StepIndex()
	v := View{
		Form: ElementForm,
		StepIndicator: StepIndicator{
			ID:      ElementStepIndicator,
			Current: step,
			Total:   model.StepCount,
		},
		Title: stepTitles[step],
	}

	switch s.State {
	case model.StateCeremony:
		v.Ceremony = renderCeremony(s)
		if s.Attending == model.AttendanceYes {
			v.Actions = append(v.Actions, Action{ID: ElementNext, Label: "Next"})
		}
	case model.StateNotAttending:
		v.Ceremony = renderCeremony(s)
		v.NotAttending = &NotAttendingPanel{
			ID:   ElementNotAttending,
			Text: NotAttendingText,
			Link: Link{Label: "Leave a message", URL: s.NotAttendingURL},
		}
	case model.StateAttendees:
		v.Attendees = renderAttendees(s)
		v.Actions = append(v.Actions,
			Action{ID: ElementAddAttendee, Label: "Add attendee"},
			Action{ID: ElementPrev, Label: "Previous"},
			Action{ID: ElementNext, Label: "Next"},
		)
	case model.StateAdditional, model.StateError, model.StateSubmitting:
		v.Additional = renderAdditional(s)
		v.Actions = append(v.Actions,
			Action{ID: ElementPrev, Label: "Previous", Disabled: s.State == model.StateSubmitting},
			Action{ID: ElementSubmit, Label: submitLabel(s.State), Disabled: s.State == model.StateSubmitting},
		)
		if s.State == model.StateError {
			v.Message = &Message{ID: ElementMessage, Kind: MessageError, Text: ErrorText}
		}
	case model.StateSuccess:
		v.Message = &Message{ID: ElementMessage, Kind: MessageSuccess, Text: SuccessText}
		v.Actions = append(v.Actions, Action{ID: ElementRegistryLink, Label: "View our registry"})
	}
	return v
}

func submitLabel(st model.State) string {
	if st == model.StateSubmitting {
		return "Submitting..."
	}
	return "Submit RSVP"
}

func renderCeremony(s Snapshot) *CeremonyPanel {
	return &CeremonyPanel{
		Question: CeremonyQuestion,
		Yes:      Choice{ID: ElementCeremonyYes, Label: "Yes", Checked: s.Attending == model.AttendanceYes},
		No:       Choice{ID: ElementCeremonyNo, Label: "No", Checked: s.Attending == model.AttendanceNo},
		Invalid:  s.Unanswered,
	}
}

func renderAttendees(s Snapshot) *AttendeesPanel {
	p := &AttendeesPanel{ID: ElementAttendees}
	for i, a := range s.Attendees {
		c := Card{
			AttendeeID: a.ID,
			Index:      i,
			Title:      fmt.Sprintf("Attendee %d", i+1),
			Removable:  len(s.Attendees) > 1,
		}
		for _, f := range model.AttendeeFields {
			c.Inputs = append(c.Inputs, Input{
				Name:     f.PayloadName(i),
				Field:    string(f),
				Label:    f.Label(),
				Value:    a.Get(f),
				Required: s.Policy.Requires(f, i),
				Invalid:  s.Invalid[a.ID][f],
			})
		}
		p.Cards = append(p.Cards, c)
	}
	return p
}

func renderAdditional(s Snapshot) *AdditionalPanel {
	p := &AdditionalPanel{}
	for _, f := range model.MiscFields {
		p.Inputs = append(p.Inputs, Input{
			Name:  string(f),
			Field: string(f),
			Label: f.Label(),
			Value: s.Misc[f],
		})
	}
	return p
}

// Problems converts a validation error into user-facing lines.
func Problems(err error) []string {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	if verr.Unanswered {
		return []string{"Please let us know whether you will attend the ceremony."}
	}
	out := make([]string, 0, len(verr.Problems))
	for _, p := range verr.Problems {
		out = append(out, fmt.Sprintf("Attendee %d: %s is required", p.Index+1, p.Field.Label()))
	}
	return out
}
