package publish

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	ics "github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"textcal/internal/config"
)

// DAVDirectory is the CalDAV-backed Directory: basic auth, principal
// discovery, home-set enumeration, object creation. The wire protocol itself
// belongs to the client library.
type DAVDirectory struct {
	client  *caldav.Client
	baseURL *url.URL
}

func NewDAVDirectory(cfg config.CalDAVConfig) (*DAVDirectory, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("caldav url: %w", err)
	}

	httpClient := webdav.HTTPClientWithBasicAuth(http.DefaultClient, cfg.Username, cfg.Password)
	client, err := caldav.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, err
	}
	return &DAVDirectory{client: client, baseURL: base}, nil
}

func (d *DAVDirectory) Calendars(ctx context.Context) ([]CalendarRef, error) {
	principal, err := d.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := d.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home set: %w", err)
	}
	cals, err := d.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	refs := make([]CalendarRef, 0, len(cals))
	for _, cal := range cals {
		refs = append(refs, CalendarRef{Path: cal.Path, Name: cal.Name})
	}
	return refs, nil
}

func (d *DAVDirectory) Put(ctx context.Context, path string, cal *ics.Calendar) (string, error) {
	obj, err := d.client.PutCalendarObject(ctx, path, cal)
	if err != nil {
		return "", err
	}
	return d.baseURL.ResolveReference(&url.URL{Path: obj.Path}).String(), nil
}
