// Package calendar wraps the Calendar API surface the gateway exposes:
// calendar listing plus CRUD over events on a single calendar.
package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultCalendarID addresses the user's primary calendar.
const DefaultCalendarID = "primary"

// Client is a request-scoped wrapper over the Calendar service.
type Client struct {
	svc *calendar.Service
}

// NewClient builds a Calendar client from an access-token source.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CalendarInfo is one entry of the user's calendar list.
type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary,omitempty"`
}

// ListCalendars returns the calendars visible to the user.
func (c *Client) ListCalendars(ctx context.Context) ([]*CalendarInfo, error) {
	list, err := c.svc.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	calendars := make([]*CalendarInfo, 0, len(list.Items))
	for _, item := range list.Items {
		calendars = append(calendars, &CalendarInfo{
			ID:      item.Id,
			Summary: item.Summary,
			Primary: item.Primary,
		})
	}
	return calendars, nil
}

// ListParams narrows an event listing.
type ListParams struct {
	CalendarID string
	TimeMin    string // RFC 3339; defaults to now
	TimeMax    string
	MaxResults int64
	Query      string
	PageToken  string
}

// EventList is one page of events.
type EventList struct {
	Events        []*Event `json:"events"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}

// ListEvents returns upcoming events expanded to single instances, ordered
// by start time.
func (c *Client) ListEvents(ctx context.Context, params ListParams) (*EventList, error) {
	calendarID := params.CalendarID
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	timeMin := params.TimeMin
	if timeMin == "" {
		timeMin = time.Now().Format(time.RFC3339)
	}
	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if params.TimeMax != "" {
		call = call.TimeMax(params.TimeMax)
	}
	if params.Query != "" {
		call = call.Q(params.Query)
	}
	if params.PageToken != "" {
		call = call.PageToken(params.PageToken)
	}

	listed, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]*Event, 0, len(listed.Items))
	for _, item := range listed.Items {
		events = append(events, parseEvent(item))
	}
	return &EventList{Events: events, NextPageToken: listed.NextPageToken}, nil
}

// TodayEvents returns the events between midnight and end of day local time.
func (c *Client) TodayEvents(ctx context.Context, calendarID string) ([]*Event, error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	list, err := c.ListEvents(ctx, ListParams{
		CalendarID: calendarID,
		TimeMin:    startOfDay.Format(time.RFC3339),
		TimeMax:    endOfDay.Format(time.RFC3339),
		MaxResults: 50,
	})
	if err != nil {
		return nil, err
	}
	return list.Events, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	event, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	return parseEvent(event), nil
}

// CreateEvent inserts a new event and notifies attendees.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, params CreateEventParams) (*Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	created, err := c.svc.Events.Insert(calendarID, params.toAPI()).
		SendUpdates("all").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return parseEvent(created), nil
}

// UpdateEvent applies a partial update by overlaying the supplied fields
// onto the stored event, then writing the result back.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, params UpdateEventParams) (*Event, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}

	params.applyTo(existing)

	updated, err := c.svc.Events.Update(calendarID, eventID, existing).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("update event %s: %w", eventID, err)
	}
	return parseEvent(updated), nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}
