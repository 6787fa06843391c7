package model

import "errors"

var (
	ErrValidation        = errors.New("required field missing")
	ErrSubmission        = errors.New("rsvp submission failed")
	ErrInvalidTransition = errors.New("action not available in current step")
	ErrAttendeeNotFound  = errors.New("attendee does not exist")
	ErrLastAttendee      = errors.New("at least one attendee is required")
	ErrUnknownField      = errors.New("unknown field")
	ErrPageNotFound      = errors.New("page does not exist")
	ErrRSVPDoesNotExist  = errors.New("rsvp does not exist")
)
