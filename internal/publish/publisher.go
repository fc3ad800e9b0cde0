// Package publish persists built calendar objects to the remote calendar
// service.
package publish

import (
	"context"
	"fmt"
	"strings"

	ics "github.com/emersion/go-ical"
	"github.com/rs/zerolog/log"

	"textcal/internal/event"
)

// CalendarRef identifies one collection visible to the authenticated
// principal.
type CalendarRef struct {
	Path string
	Name string
}

// Directory is the slice of the calendar service the publisher needs:
// enumerate collections, store an object. The CalDAV client fills this in;
// tests use a fake.
type Directory interface {
	Calendars(ctx context.Context) ([]CalendarRef, error)
	Put(ctx context.Context, path string, cal *ics.Calendar) (location string, err error)
}

// Result confirms a stored object: the server-assigned resource location and
// an echo of the stored summary.
type Result struct {
	URL     string
	Summary string
}

// CalendarNotFoundError reports that no collection matched the configured
// name. Available carries every visible collection name for diagnostics.
type CalendarNotFoundError struct {
	Name      string
	Available []string
}

func (e *CalendarNotFoundError) Error() string {
	return fmt.Sprintf("calendar %q not found; available: %s", e.Name, strings.Join(e.Available, ", "))
}

// PublishError wraps any other failure while talking to the calendar
// service. Op names the step that failed.
type PublishError struct {
	Op  string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("calendar service: %s: %v", e.Op, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Publisher stores objects in the collection whose display name exactly
// equals the configured target. Collections are looked up fresh on every
// call; nothing is cached across publishes.
type Publisher struct {
	dir          Directory
	calendarName string
}

func NewPublisher(dir Directory, calendarName string) *Publisher {
	return &Publisher{dir: dir, calendarName: calendarName}
}

func (p *Publisher) Publish(ctx context.Context, obj *event.Object) (Result, error) {
	cals, err := p.dir.Calendars(ctx)
	if err != nil {
		return Result{}, &PublishError{Op: "list calendars", Err: err}
	}

	var target *CalendarRef
	names := make([]string, 0, len(cals))
	for i, cal := range cals {
		names = append(names, cal.Name)
		if cal.Name == p.calendarName && target == nil {
			target = &cals[i]
		}
	}
	if target == nil {
		return Result{}, &CalendarNotFoundError{Name: p.calendarName, Available: names}
	}

	objPath := strings.TrimRight(target.Path, "/") + "/" + obj.UID + ".ics"
	location, err := p.dir.Put(ctx, objPath, obj.Calendar())
	if err != nil {
		return Result{}, &PublishError{Op: "save event", Err: err}
	}

	log.Info().Str("calendar", target.Name).Str("uid", obj.UID).Str("url", location).Msg("event created")
	return Result{URL: location, Summary: obj.Summary}, nil
}
