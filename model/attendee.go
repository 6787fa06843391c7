package model

import (
	"fmt"
	"strconv"
)

// AttendeeID identifies an attendee card for the lifetime of a wizard.
// It is allocated once and never derived from the card's position.
type AttendeeID string

// Field names a per-attendee input.
type Field string

const (
	FieldName           Field = "name"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldEmergencyName  Field = "emergency_name"
	FieldEmergencyPhone Field = "emergency_phone"
	FieldDietary        Field = "dietary"
	FieldHealth         Field = "health"
	FieldArrival        Field = "arrival"  // overnight stay
	FieldSleeping       Field = "sleeping" // overnight stay
	FieldPackingList    Field = "packing_list"
	FieldMeals          Field = "meals"
)

// AttendeeFields lists the attendee inputs in card order.
var AttendeeFields = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldEmergencyName,
	FieldEmergencyPhone,
	FieldDietary,
	FieldHealth,
	FieldArrival,
	FieldSleeping,
	FieldPackingList,
	FieldMeals,
}

var fieldInfo = map[Field]struct {
	label  string
	prefix string
}{
	FieldName:           {"Full name", "attendee_name_"},
	FieldEmail:          {"Email", "attendee_email_"},
	FieldPhone:          {"Phone", "attendee_phone_"},
	FieldEmergencyName:  {"Emergency contact name", "attendee_emergency_name_"},
	FieldEmergencyPhone: {"Emergency contact phone", "attendee_emergency_phone_"},
	FieldDietary:        {"Dietary restrictions", "attendee_dietary_"},
	FieldHealth:         {"Health considerations", "attendee_health_"},
	FieldArrival:        {"Overnight arrival", "arrival_"},
	FieldSleeping:       {"Sleeping arrangement", "sleeping_"},
	FieldPackingList:    {"Packing list", "packing_list_"},
	FieldMeals:          {"Meal preference", "meals_"},
}

// ParseField returns the attendee field named s.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if _, ok := fieldInfo[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

func (f Field) Label() string {
	return fieldInfo[f].label
}

// PayloadName is the index-suffixed form field name, e.g. attendee_name_0.
func (f Field) PayloadName(index int) string {
	return fieldInfo[f].prefix + strconv.Itoa(index)
}

// Attendee is the data collected for one guest.
type Attendee struct {
	ID             AttendeeID `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	EmergencyName  string     `json:"emergencyName"`
	EmergencyPhone string     `json:"emergencyPhone"`
	Dietary        string     `json:"dietary"`
	Health         string     `json:"health"`
	Arrival        string     `json:"arrival"`
	Sleeping       string     `json:"sleeping"`
	PackingList    string     `json:"packingList"`
	Meals          string     `json:"meals"`
}

func (a *Attendee) field(f Field) *string {
	switch f {
	case FieldName:
		return &a.Name
	case FieldEmail:
		return &a.Email
	case FieldPhone:
		return &a.Phone
	case FieldEmergencyName:
		return &a.EmergencyName
	case FieldEmergencyPhone:
		return &a.EmergencyPhone
	case FieldDietary:
		return &a.Dietary
	case FieldHealth:
		return &a.Health
	case FieldArrival:
		return &a.Arrival
	case FieldSleeping:
		return &a.Sleeping
	case FieldPackingList:
		return &a.PackingList
	case FieldMeals:
		return &a.Meals
	}
	return nil
}

// Get returns the value of f, or "" for an unknown field.
func (a Attendee) Get(f Field) string {
	if p := a.field(f); p != nil {
		return *p
	}
	return ""
}

// Set stores v in f.
func (a *Attendee) Set(f Field, v string) error {
	p := a.field(f)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*p = v
	return nil
}

// MiscField names a free-text input of the additional information step.
type MiscField string

const (
	MiscSongRequests MiscField = "song_requests"
	MiscComments     MiscField = "comments"
)

// MiscFields lists the additional information inputs in display order.
var MiscFields = []MiscField{MiscSongRequests, MiscComments}

// ParseMiscField returns the misc field named s.
func ParseMiscField(s string) (MiscField, error) {
	for _, f := range MiscFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

func (f MiscField) Label() string {
	switch f {
	case MiscSongRequests:
		return "Song requests"
	case MiscComments:
		return "Comments"
	}
	return string(f)
}
