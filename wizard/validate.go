package wizard

import (
	"fmt"
	"strings"

	"RSVPBot/model"
)

// Requirement says when a field must be filled in.
type Requirement int

const (
	Optional Requirement = iota
	Required
	// RequiredForPrimary applies only to the first attendee card.
	RequiredForPrimary
)

// Policy maps attendee fields to their requirement. Fields absent from
// the map are optional.
type Policy map[model.Field]Requirement

// DefaultPolicy is the policy of the wedding RSVP form.
func DefaultPolicy() Policy {
	return Policy{
		model.FieldName:           Required,
		model.FieldEmail:          RequiredForPrimary,
		model.FieldEmergencyName:  Required,
		model.FieldEmergencyPhone: Required,
	}
}

// Requires reports whether f must be filled in on the card at index.
func (p Policy) Requires(f model.Field, index int) bool {
	switch p[f] {
	case Required:
		return true
	case RequiredForPrimary:
		return index == 0
	}
	return false
}

// Problem is one empty required field.
type Problem struct {
	AttendeeID model.AttendeeID
	Index      int
	Field      model.Field
}

// ValidationError lists why the active step refused to advance.
type ValidationError struct {
	Step int
	// Unanswered is set when the ceremony question has no Yes answer.
	Unanswered bool
	Problems   []Problem
}

func (e *ValidationError) Error() string {
	if e.Unanswered {
		return fmt.Sprintf("step %d: ceremony attendance not answered", e.Step)
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field.PayloadName(p.Index))
	}
	return fmt.Sprintf("step %d: %s: %s", e.Step, model.ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == model.ErrValidation
}

func filled(v string) bool {
	return strings.TrimSpace(v) != ""
}

func validateCeremony(a model.Attendance) *ValidationError {
	if a == model.AttendanceYes {
		return nil
	}
	return &ValidationError{Step: 0, Unanswered: true}
}

func validateAttendees(attendees []model.Attendee, policy Policy) *ValidationError {
	var problems []Problem
	for i, a := range attendees {
		for _, f := range model.AttendeeFields {
			if policy.Requires(f, i) && !filled(a.Get(f)) {
				problems = append(problems, Problem{AttendeeID: a.ID, Index: i, Field: f})
			}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Step: 1, Problems: problems}
}
