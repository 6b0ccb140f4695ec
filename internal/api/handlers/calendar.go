package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/google/calendar"
)

func calendarClient(r *http.Request, sessions *session.Manager) (*calendar.Client, error) {
	client, err := sessions.AuthenticatedClient(r.Context())
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(r.Context(), client.TokenSource())
}

// CalendarListHandler serves GET /api/calendar. The view query parameter
// switches between event listing (default), the calendar list, and today's
// agenda.
func CalendarListHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := calendarClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		query := r.URL.Query()
		calendarID := query.Get("calendarId")

		switch query.Get("view") {
		case "calendars":
			calendars, err := svc.ListCalendars(r.Context())
			if err != nil {
				writeSessionError(w, err)
				return
			}
			writeData(w, calendars)
			return
		case "today":
			events, err := svc.TodayEvents(r.Context(), calendarID)
			if err != nil {
				writeSessionError(w, err)
				return
			}
			writeData(w, events)
			return
		}

		params := calendar.ListParams{
			CalendarID: calendarID,
			TimeMin:    query.Get("timeMin"),
			TimeMax:    query.Get("timeMax"),
			Query:      query.Get("q"),
			PageToken:  query.Get("pageToken"),
		}
		if v := query.Get("maxResults"); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid maxResults", err)
				return
			}
			params.MaxResults = n
		}

		list, err := svc.ListEvents(r.Context(), params)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeData(w, list)
	}
}

type createEventRequest struct {
	calendar.CreateEventParams
	CalendarID string `json:"calendarId,omitempty"`
}

// CalendarCreateHandler serves POST /api/calendar: create an event.
func CalendarCreateHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if err := body.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		svc, err := calendarClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		event, err := svc.CreateEvent(r.Context(), body.CalendarID, body.CreateEventParams)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeMessage(w, http.StatusCreated, "Event created successfully", event)
	}
}

// CalendarGetHandler serves GET /api/calendar/{id}.
func CalendarGetHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		svc, err := calendarClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		event, err := svc.GetEvent(r.Context(), r.URL.Query().Get("calendarId"), id)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeData(w, event)
	}
}

type updateEventRequest struct {
	calendar.UpdateEventParams
	CalendarID string `json:"calendarId,omitempty"`
}

// CalendarUpdateHandler serves PATCH /api/calendar/{id}: partial update.
func CalendarUpdateHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body updateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}

		svc, err := calendarClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		event, err := svc.UpdateEvent(r.Context(), body.CalendarID, id, body.UpdateEventParams)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Event updated", event)
	}
}

// CalendarDeleteHandler serves DELETE /api/calendar/{id}.
func CalendarDeleteHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		svc, err := calendarClient(r, sessions)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		if err := svc.DeleteEvent(r.Context(), r.URL.Query().Get("calendarId"), id); err != nil {
			writeSessionError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Event deleted", nil)
	}
}
