package calendar

import (
	"fmt"
	"regexp"

	"google.golang.org/api/calendar/v3"
)

// Event is the reshaped view of a calendar event the gateway returns.
type Event struct {
	ID          string      `json:"id,omitempty"`
	Summary     string      `json:"summary"`
	Description string      `json:"description,omitempty"`
	Location    string      `json:"location,omitempty"`
	Start       EventTime   `json:"start"`
	End         EventTime   `json:"end"`
	Attendees   []*Attendee `json:"attendees,omitempty"`
	Status      string      `json:"status,omitempty"`
	HTMLLink    string      `json:"htmlLink,omitempty"`
}

// EventTime holds either a dateTime (timed event) or a date (all-day).
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Attendee is an invited participant.
type Attendee struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// CreateEventParams describe a new event.
type CreateEventParams struct {
	Summary       string   `json:"summary"`
	Description   string   `json:"description,omitempty"`
	Location      string   `json:"location,omitempty"`
	StartDateTime string   `json:"startDateTime"`
	EndDateTime   string   `json:"endDateTime"`
	TimeZone      string   `json:"timeZone,omitempty"`
	Attendees     []string `json:"attendees,omitempty"`
}

// Validate checks the required create fields.
func (p *CreateEventParams) Validate() error {
	if p.Summary == "" || p.StartDateTime == "" || p.EndDateTime == "" {
		return fmt.Errorf("missing required fields: summary, startDateTime, endDateTime")
	}
	return nil
}

func (p *CreateEventParams) toAPI() *calendar.Event {
	tz := p.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	event := &calendar.Event{
		Summary:     p.Summary,
		Description: p.Description,
		Location:    p.Location,
		Start: &calendar.EventDateTime{
			DateTime: NormalizeDateTime(p.StartDateTime),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: NormalizeDateTime(p.EndDateTime),
			TimeZone: tz,
		},
	}
	for _, email := range p.Attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}
	return event
}

// UpdateEventParams carry a partial update; nil fields keep the stored
// value.
type UpdateEventParams struct {
	Summary       *string   `json:"summary,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Location      *string   `json:"location,omitempty"`
	StartDateTime *string   `json:"startDateTime,omitempty"`
	EndDateTime   *string   `json:"endDateTime,omitempty"`
	TimeZone      string    `json:"timeZone,omitempty"`
	Attendees     *[]string `json:"attendees,omitempty"`
}

func (p *UpdateEventParams) applyTo(event *calendar.Event) {
	tz := p.TimeZone
	if tz == "" {
		tz = "UTC"
	}
	if p.Summary != nil {
		event.Summary = *p.Summary
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	if p.Location != nil {
		event.Location = *p.Location
	}
	if p.StartDateTime != nil {
		event.Start = &calendar.EventDateTime{
			DateTime: NormalizeDateTime(*p.StartDateTime),
			TimeZone: tz,
		}
	}
	if p.EndDateTime != nil {
		event.End = &calendar.EventDateTime{
			DateTime: NormalizeDateTime(*p.EndDateTime),
			TimeZone: tz,
		}
	}
	if p.Attendees != nil {
		event.Attendees = nil
		for _, email := range *p.Attendees {
			event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
		}
	}
}

var minutePrecision = regexp.MustCompile(`T(\d{2}:\d{2})$`)

// NormalizeDateTime pads a minute-precision datetime to the full RFC 3339
// seconds form the Calendar API requires. Strings that already carry
// seconds, a Z suffix, or an offset pass through unchanged.
func NormalizeDateTime(dt string) string {
	return minutePrecision.ReplaceAllString(dt, "T$1:00")
}

func parseEvent(event *calendar.Event) *Event {
	parsed := &Event{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}
	if parsed.Summary == "" {
		parsed.Summary = "(No title)"
	}
	if event.Start != nil {
		parsed.Start = EventTime{
			DateTime: event.Start.DateTime,
			Date:     event.Start.Date,
			TimeZone: event.Start.TimeZone,
		}
	}
	if event.End != nil {
		parsed.End = EventTime{
			DateTime: event.End.DateTime,
			Date:     event.End.Date,
			TimeZone: event.End.TimeZone,
		}
	}
	for _, a := range event.Attendees {
		parsed.Attendees = append(parsed.Attendees, &Attendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
		})
	}
	return parsed
}
