// Package wizard implements the RSVP form as a finite-state machine.
//
// A Wizard is not safe for concurrent use. Hosts that receive events on
// several goroutines must serialize them, and may release their lock
// between BeginSubmit and CompleteSubmit while the request is in flight.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"RSVPBot/model"
)

// Event is a named wizard transition.
type Event string

const (
	EventAnswerYes       Event = "answer_yes"
	EventAnswerNo        Event = "answer_no"
	EventNext            Event = "next"
	EventPrevious        Event = "previous"
	EventAddAttendee     Event = "add_attendee"
	EventRemoveAttendee  Event = "remove_attendee"
	EventEditAttendee    Event = "edit_attendee"
	EventEditMisc        Event = "edit_misc"
	EventSubmit          Event = "submit"
	EventSubmitSucceeded Event = "submit_succeeded"
	EventSubmitFailed    Event = "submit_failed"
	EventViewRegistry    Event = "view_registry"
)

// transitions is the complete set of legal (state, event) pairs.
var transitions = map[model.State]map[Event]model.State{
	model.StateCeremony: {
		EventAnswerYes: model.StateCeremony,
		EventAnswerNo:  model.StateNotAttending,
		EventNext:      model.StateAttendees,
	},
	model.StateAttendees: {
		EventNext:           model.StateAdditional,
		EventPrevious:       model.StateCeremony,
		EventAddAttendee:    model.StateAttendees,
		EventRemoveAttendee: model.StateAttendees,
		EventEditAttendee:   model.StateAttendees,
	},
	model.StateAdditional: {
		EventPrevious: model.StateAttendees,
		EventEditMisc: model.StateAdditional,
		EventSubmit:   model.StateSubmitting,
	},
	model.StateError: {
		EventPrevious: model.StateAttendees,
		EventEditMisc: model.StateError,
		EventSubmit:   model.StateSubmitting,
	},
	model.StateSubmitting: {
		EventSubmitSucceeded: model.StateSuccess,
		EventSubmitFailed:    model.StateError,
	},
	model.StateSuccess: {
		EventViewRegistry: model.StateSuccess,
	},
	model.StateNotAttending: {},
}

// RegistryPage is the page offered after a successful submission.
const RegistryPage = "registry"

// Submitter delivers a payload to the form-processing endpoint.
type Submitter interface {
	Submit(ctx context.Context, p Payload) error
}

// Navigator switches the visible top-level page.
type Navigator interface {
	ShowPage(ctx context.Context, pageID string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, pageID string) error

func (f NavigatorFunc) ShowPage(ctx context.Context, pageID string) error {
	return f(ctx, pageID)
}

type Wizard struct {
	state     model.State
	attending model.Attendance
	attendees []model.Attendee
	misc      map[model.MiscField]string

	unanswered bool
	invalid    map[model.AttendeeID]map[model.Field]bool

	nextID       int
	submissionID string

	policy          Policy
	notAttendingURL string
	newID           func() string
	now             func() time.Time
}

type Option func(*Wizard)

// WithPolicy replaces the default required-field policy.
func WithPolicy(p Policy) Option {
	return func(w *Wizard) { w.policy = p }
}

// WithNotAttendingLink sets the external link shown to guests who
// decline the ceremony.
func WithNotAttendingLink(url string) Option {
	return func(w *Wizard) { w.notAttendingURL = url }
}

// WithSubmissionIDs replaces the uuid generator for submission ids.
func WithSubmissionIDs(f func() string) Option {
	return func(w *Wizard) { w.newID = f }
}

func WithClock(now func() time.Time) Option {
	return func(w *Wizard) { w.now = now }
}

// New returns a wizard at the ceremony step.
func New(opts ...Option) *Wizard {
	w := &Wizard{
		state:   model.StateCeremony,
		misc:    make(map[model.MiscField]string),
		invalid: make(map[model.AttendeeID]map[model.Field]bool),
		policy:  DefaultPolicy(),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wizard) State() model.State { return w.state }

// StepIndex is always within [0, model.StepCount).
func (w *Wizard) StepIndex() int { return w.state.StepIndex() }

func (w *Wizard) Attending() model.Attendance { return w.attending }

// Attendees returns a copy of the attendee list in display order.
func (w *Wizard) Attendees() []model.Attendee {
	out := make([]model.Attendee, len(w.attendees))
	copy(out, w.attendees)
	return out
}

func (w *Wizard) Misc(f model.MiscField) string { return w.misc[f] }

// Can reports whether e is legal in the current state. Guards are not
// evaluated.
func (w *Wizard) Can(e Event) bool {
	_, ok := transitions[w.state][e]
	return ok
}

func (w *Wizard) target(e Event) (model.State, error) {
	to, ok := transitions[w.state][e]
	if !ok {
		return w.state, fmt.Errorf("%w: %s in %s", model.ErrInvalidTransition, e, w.state)
	}
	return to, nil
}

func (w *Wizard) AnswerYes() error {
	to, err := w.target(EventAnswerYes)
	if err != nil {
		return err
	}
	w.attending = model.AttendanceYes
	w.unanswered = false
	if len(w.attendees) == 0 {
		w.appendAttendee()
	}
	w.state = to
	return nil
}

// AnswerNo leaves the wizard in the terminal not-attending state.
func (w *Wizard) AnswerNo() error {
	to, err := w.target(EventAnswerNo)
	if err != nil {
		return err
	}
	w.attending = model.AttendanceNo
	w.unanswered = false
	w.attendees = nil
	w.invalid = make(map[model.AttendeeID]map[model.Field]bool)
	w.state = to
	return nil
}

// Next advances one step when the active step validates. On failure the
// state is unchanged, the offending fields are flagged and a
// *ValidationError is returned.
func (w *Wizard) Next() error {
	to, err := w.target(EventNext)
	if err != nil {
		return err
	}
	switch w.state {
	case model.StateCeremony:
		if verr := validateCeremony(w.attending); verr != nil {
			w.unanswered = true
			return verr
		}
	case model.StateAttendees:
		if verr := validateAttendees(w.attendees, w.policy); verr != nil {
			w.flag(verr.Problems)
			return verr
		}
	}
	w.clearFlags()
	w.state = to
	return nil
}

// Previous goes back one step without validating.
func (w *Wizard) Previous() error {
	to, err := w.target(EventPrevious)
	if err != nil {
		return err
	}
	w.state = to
	return nil
}

// AddAttendee appends a blank card and returns its id.
func (w *Wizard) AddAttendee() (model.AttendeeID, error) {
	if _, err := w.target(EventAddAttendee); err != nil {
		return "", err
	}
	return w.appendAttendee(), nil
}

func (w *Wizard) appendAttendee() model.AttendeeID {
	w.nextID++
	id := model.AttendeeID("a" + strconv.Itoa(w.nextID))
	w.attendees = append(w.attendees, model.Attendee{ID: id})
	return id
}

// RemoveAttendee deletes the card with id. The last remaining card
// cannot be removed.
func (w *Wizard) RemoveAttendee(id model.AttendeeID) error {
	if _, err := w.target(EventRemoveAttendee); err != nil {
		return err
	}
	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrAttendeeNotFound, id)
	}
	if len(w.attendees) <= 1 {
		return model.ErrLastAttendee
	}
	w.attendees = append(w.attendees[:i], w.attendees[i+1:]...)
	delete(w.invalid, id)
	return nil
}

func (w *Wizard) SetAttendeeField(id model.AttendeeID, f model.Field, value string) error {
	if _, err := w.target(EventEditAttendee); err != nil {
		return err
	}
	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", model.ErrAttendeeNotFound, id)
	}
	if err := w.attendees[i].Set(f, value); err != nil {
		return err
	}
	delete(w.invalid[id], f)
	return nil
}

func (w *Wizard) SetMiscField(f model.MiscField, value string) error {
	if _, err := w.target(EventEditMisc); err != nil {
		return err
	}
	if _, err := model.ParseMiscField(string(f)); err != nil {
		return err
	}
	w.misc[f] = value
	return nil
}

// BeginSubmit moves to Submitting and returns the payload to deliver.
// Every event other than the completion is refused until CompleteSubmit.
func (w *Wizard) BeginSubmit() (Payload, error) {
	to, err := w.target(EventSubmit)
	if err != nil {
		return Payload{}, err
	}
	if w.submissionID == "" {
		w.submissionID = w.newID()
	}
	w.state = to
	return w.payload(), nil
}

// CompleteSubmit records the outcome of the request started by
// BeginSubmit. A nil err means success.
func (w *Wizard) CompleteSubmit(err error) error {
	e := EventSubmitSucceeded
	if err != nil {
		e = EventSubmitFailed
	}
	to, terr := w.target(e)
	if terr != nil {
		return terr
	}
	w.state = to
	return nil
}

// Submit performs a single submission attempt. Failures leave the wizard
// in the error state with all data intact; submitting again retries.
func (w *Wizard) Submit(ctx context.Context, s Submitter) error {
	p, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	serr := s.Submit(ctx, p)
	if serr != nil && !errors.Is(serr, model.ErrSubmission) {
		serr = fmt.Errorf("%w: %w", model.ErrSubmission, serr)
	}
	if err := w.CompleteSubmit(serr); err != nil {
		return err
	}
	return serr
}

// ViewRegistry hands over to the registry page after a successful RSVP.
func (w *Wizard) ViewRegistry(ctx context.Context, nav Navigator) error {
	if _, err := w.target(EventViewRegistry); err != nil {
		return err
	}
	return nav.ShowPage(ctx, RegistryPage)
}

func (w *Wizard) indexOf(id model.AttendeeID) int {
	for i := range w.attendees {
		if w.attendees[i].ID == id {
			return i
		}
	}
	return -1
}

func (w *Wizard) flag(problems []Problem) {
	w.clearFlags()
	for _, p := range problems {
		if w.invalid[p.AttendeeID] == nil {
			w.invalid[p.AttendeeID] = make(map[model.Field]bool)
		}
		w.invalid[p.AttendeeID][p.Field] = true
	}
}

func (w *Wizard) clearFlags() {
	w.unanswered = false
	w.invalid = make(map[model.AttendeeID]map[model.Field]bool)
}
