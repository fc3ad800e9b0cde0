// Package event holds the structured event record produced by extraction and
// the iCalendar object built from it.
package event

import (
	"strings"
	"time"

	ics "github.com/emersion/go-ical"
)

// TimeLayout is the fixed textual timestamp format the model is instructed
// to emit for start and end.
const TimeLayout = "2006-01-02 15:04:05"

// Extracted is the structured record decoded from the model's JSON payload.
// Required: Summary, Start, End. Optional fields are absent when empty and
// are omitted from any rendered JSON.
type Extracted struct {
	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end"`

	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	RRule       string `json:"rrule,omitempty"`
}

// MissingFields returns the required keys absent from the record, in schema
// order.
func (e Extracted) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(e.Summary) == "" {
		missing = append(missing, "summary")
	}
	if strings.TrimSpace(e.Start) == "" {
		missing = append(missing, "start")
	}
	if strings.TrimSpace(e.End) == "" {
		missing = append(missing, "end")
	}
	return missing
}

// Object is one calendar entry ready for publishing: the semantic fields
// echoed from the extracted record plus the generated UID and build-time
// stamp, wrapped around the serializable iCalendar component. Immutable once
// built; one Object maps to exactly one remote entry.
type Object struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	BuiltAt time.Time

	Location    string
	Description string
	RRule       string

	cal *ics.Calendar
}

// Calendar returns the underlying iCalendar document.
func (o *Object) Calendar() *ics.Calendar { return o.cal }
