package model

// State is a state of the RSVP wizard.
type State int

const (
	StateCeremony State = iota
	StateAttendees
	StateAdditional
	StateNotAttending
	StateSubmitting
	StateSuccess
	StateError
)

// StepCount is the number of visible wizard steps.
const StepCount = 3

// StepIndex maps a state onto the visible step it is rendered in.
func (s State) StepIndex() int {
	switch s {
	case StateAttendees:
		return 1
	case StateAdditional, StateSubmitting, StateSuccess, StateError:
		return 2
	default:
		return 0
	}
}

// Terminal reports whether no forward transition leaves s.
func (s State) Terminal() bool {
	return s == StateNotAttending || s == StateSuccess
}

func (s State) String() string {
	switch s {
	case StateCeremony:
		return "ceremony"
	case StateAttendees:
		return "attendees"
	case StateAdditional:
		return "additional"
	case StateNotAttending:
		return "not_attending"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Attendance is the answer to "Will you be attending the ceremony?".
type Attendance int

const (
	AttendanceUnanswered Attendance = iota
	AttendanceYes
	AttendanceNo
)

func (a Attendance) String() string {
	switch a {
	case AttendanceYes:
		return "yes"
	case AttendanceNo:
		return "no"
	}
	return ""
}
