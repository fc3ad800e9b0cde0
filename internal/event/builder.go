package event

import (
	"fmt"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// DateParseError reports a start/end value that does not match TimeLayout.
// Field and Value are surfaced to the user as-is.
type DateParseError struct {
	Field string
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q: expected %q", e.Field, e.Value, "YYYY-MM-DD HH:MM:SS")
}

func (e *DateParseError) Unwrap() error { return e.Err }

// RecurrenceParseError reports an rrule value the recurrence grammar rejects.
type RecurrenceParseError struct {
	Value string
	Err   error
}

func (e *RecurrenceParseError) Error() string {
	return fmt.Sprintf("cannot parse recurrence rule %q: %v", e.Value, e.Err)
}

func (e *RecurrenceParseError) Unwrap() error { return e.Err }

// Builder turns extracted records into calendar objects. Aside from UID and
// build-time generation it is pure: no network, no disk.
type Builder struct {
	now    func() time.Time
	newUID func() string
}

func NewBuilder() *Builder {
	return &Builder{now: time.Now, newUID: uuid.NewString}
}

// Build parses the record's timestamps, generates a fresh UID, stamps the
// build time, and assembles the iCalendar document. Optional fields are only
// added when present; end is not required to be after start.
func (b *Builder) Build(ev Extracted) (*Object, error) {
	start, err := time.ParseInLocation(TimeLayout, ev.Start, time.Local)
	if err != nil {
		return nil, &DateParseError{Field: "start", Value: ev.Start, Err: err}
	}
	end, err := time.ParseInLocation(TimeLayout, ev.End, time.Local)
	if err != nil {
		return nil, &DateParseError{Field: "end", Value: ev.End, Err: err}
	}
	if ev.RRule != "" {
		if _, err := rrule.StrToROption(ev.RRule); err != nil {
			return nil, &RecurrenceParseError{Value: ev.RRule, Err: err}
		}
	}

	uid := b.newUID()
	builtAt := b.now()

	ve := ics.NewEvent()
	ve.Props.SetText(ics.PropUID, uid)
	ve.Props.SetDateTime(ics.PropDateTimeStamp, builtAt)
	ve.Props.SetText(ics.PropSummary, ev.Summary)
	ve.Props.SetDateTime(ics.PropDateTimeStart, start)
	ve.Props.SetDateTime(ics.PropDateTimeEnd, end)
	if ev.Location != "" {
		ve.Props.SetText(ics.PropLocation, ev.Location)
	}
	if ev.Description != "" {
		ve.Props.SetText(ics.PropDescription, ev.Description)
	}
	if ev.RRule != "" {
		// RRULE is a RECUR value, not TEXT; SetText would escape the
		// semicolons that separate its parts.
		prop := ics.NewProp(ics.PropRecurrenceRule)
		prop.Value = ev.RRule
		ve.Props.Set(prop)
	}

	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, "-//textcal//textcal//EN")
	cal.Children = append(cal.Children, ve.Component)

	return &Object{
		UID:         uid,
		Summary:     ev.Summary,
		Start:       start,
		End:         end,
		BuiltAt:     builtAt,
		Location:    ev.Location,
		Description: ev.Description,
		RRule:       ev.RRule,
		cal:         cal,
	}, nil
}
