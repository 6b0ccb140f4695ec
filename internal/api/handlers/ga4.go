package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wsgateway/workspace-gateway/internal/auth/session"
	"github.com/wsgateway/workspace-gateway/internal/google/analytics"
)

func analyticsClient(r *http.Request, sessions *session.Manager, propertyID string) (*analytics.Client, error) {
	client, err := sessions.AuthenticatedClient(r.Context())
	if err != nil {
		return nil, err
	}
	return analytics.NewClient(r.Context(), client.TokenSource(), propertyID)
}

// GA4ReportHandler serves GET /api/ga4: preset reports selected by the
// report query parameter, or the realtime active-user count.
func GA4ReportHandler(sessions *session.Manager, propertyID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		preset := query.Get("report")
		if preset == "" {
			preset = analytics.PresetOverview
		}

		if preset == "realtime" {
			svc, err := analyticsClient(r, sessions, propertyID)
			if err != nil {
				writeSessionError(w, err)
				return
			}
			users, err := svc.RealtimeUsers(r.Context())
			if err != nil {
				writeSessionError(w, err)
				return
			}
			writeData(w, map[string]int64{"activeUsers": users})
			return
		}

		params, err := analytics.PresetParams(preset, query.Get("startDate"), query.Get("endDate"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		svc, err := analyticsClient(r, sessions, propertyID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		report, err := svc.RunReport(r.Context(), params)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeData(w, report)
	}
}

// GA4CustomReportHandler serves POST /api/ga4: an ad-hoc report defined by
// the request body.
func GA4CustomReportHandler(sessions *session.Manager, propertyID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params analytics.ReportParams
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
		if err := params.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}

		svc, err := analyticsClient(r, sessions, propertyID)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		report, err := svc.RunReport(r.Context(), params)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeData(w, report)
	}
}

// GA4DisabledHandler answers when the analytics surface is switched off.
func GA4DisabledHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable, "GA4 service is currently disabled.", nil)
	}
}
