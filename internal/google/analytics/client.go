// Package analytics wraps the GA4 Data API: ad-hoc reports, a set of preset
// website-traffic reports, and the realtime active-user count.
package analytics

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"
)

// Client is a request-scoped wrapper over the Analytics Data service, bound
// to one GA4 property.
type Client struct {
	svc      *analyticsdata.Service
	property string
}

// NewClient builds an analytics client for the given GA4 property id.
func NewClient(ctx context.Context, ts oauth2.TokenSource, propertyID string) (*Client, error) {
	if propertyID == "" {
		return nil, fmt.Errorf("analytics: GA4 property id is not configured")
	}
	svc, err := analyticsdata.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("analytics service: %w", err)
	}
	return &Client{svc: svc, property: "properties/" + propertyID}, nil
}

// OrderBy sorts report rows by a metric.
type OrderBy struct {
	FieldName  string `json:"fieldName"`
	Descending bool   `json:"descending"`
}

// ReportParams describe an ad-hoc GA4 report.
type ReportParams struct {
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Metrics    []string  `json:"metrics"`
	Dimensions []string  `json:"dimensions,omitempty"`
	Limit      int64     `json:"limit,omitempty"`
	OrderBy    []OrderBy `json:"orderBy,omitempty"`
}

// Validate checks the required report fields.
func (p *ReportParams) Validate() error {
	if p.StartDate == "" || p.EndDate == "" || len(p.Metrics) == 0 {
		return fmt.Errorf("missing required fields: startDate, endDate, metrics")
	}
	return nil
}

// Report is the reshaped report response.
type Report struct {
	DimensionHeaders []Header `json:"dimensionHeaders"`
	MetricHeaders    []Header `json:"metricHeaders"`
	Rows             []Row    `json:"rows"`
	RowCount         int64    `json:"rowCount"`
}

// Header names one report column; Type is set for metric columns only.
type Header struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Row pairs dimension values with metric values.
type Row struct {
	DimensionValues []string `json:"dimensionValues"`
	MetricValues    []string `json:"metricValues"`
}

// RunReport executes an ad-hoc report against the configured property.
func (c *Client) RunReport(ctx context.Context, params ReportParams) (*Report, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{
			{StartDate: params.StartDate, EndDate: params.EndDate},
		},
		Limit: params.Limit,
	}
	if req.Limit <= 0 {
		req.Limit = 100
	}
	for _, name := range params.Metrics {
		req.Metrics = append(req.Metrics, &analyticsdata.Metric{Name: name})
	}
	for _, name := range params.Dimensions {
		req.Dimensions = append(req.Dimensions, &analyticsdata.Dimension{Name: name})
	}
	for _, ob := range params.OrderBy {
		entry := &analyticsdata.OrderBy{Desc: ob.Descending}
		if containsString(params.Dimensions, ob.FieldName) {
			entry.Dimension = &analyticsdata.DimensionOrderBy{DimensionName: ob.FieldName}
		} else {
			entry.Metric = &analyticsdata.MetricOrderBy{MetricName: ob.FieldName}
		}
		req.OrderBys = append(req.OrderBys, entry)
	}

	resp, err := c.svc.Properties.RunReport(c.property, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("run report: %w", err)
	}
	return parseReport(resp), nil
}

// RealtimeUsers returns the current active-user count from the realtime API.
func (c *Client) RealtimeUsers(ctx context.Context) (int64, error) {
	resp, err := c.svc.Properties.RunRealtimeReport(c.property, &analyticsdata.RunRealtimeReportRequest{
		Metrics: []*analyticsdata.Metric{{Name: "activeUsers"}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("run realtime report: %w", err)
	}
	return activeUsersFromResponse(resp)
}

func activeUsersFromResponse(resp *analyticsdata.RunRealtimeReportResponse) (int64, error) {
	if len(resp.Rows) == 0 || len(resp.Rows[0].MetricValues) == 0 {
		return 0, nil
	}
	raw := resp.Rows[0].MetricValues[0].Value
	users, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse active users %q: %w", raw, err)
	}
	return users, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func parseReport(resp *analyticsdata.RunReportResponse) *Report {
	report := &Report{
		DimensionHeaders: make([]Header, 0, len(resp.DimensionHeaders)),
		MetricHeaders:    make([]Header, 0, len(resp.MetricHeaders)),
		Rows:             make([]Row, 0, len(resp.Rows)),
		RowCount:         resp.RowCount,
	}
	for _, h := range resp.DimensionHeaders {
		report.DimensionHeaders = append(report.DimensionHeaders, Header{Name: h.Name})
	}
	for _, h := range resp.MetricHeaders {
		report.MetricHeaders = append(report.MetricHeaders, Header{Name: h.Name, Type: h.Type})
	}
	for _, r := range resp.Rows {
		row := Row{
			DimensionValues: make([]string, 0, len(r.DimensionValues)),
			MetricValues:    make([]string, 0, len(r.MetricValues)),
		}
		for _, d := range r.DimensionValues {
			row.DimensionValues = append(row.DimensionValues, d.Value)
		}
		for _, m := range r.MetricValues {
			row.MetricValues = append(row.MetricValues, m.Value)
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}
