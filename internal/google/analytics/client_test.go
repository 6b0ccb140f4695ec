package analytics

import (
	"testing"

	"google.golang.org/api/analyticsdata/v1beta"
)

func TestParseReport(t *testing.T) {
	resp := &analyticsdata.RunReportResponse{
		DimensionHeaders: []*analyticsdata.DimensionHeader{{Name: "country"}},
		MetricHeaders: []*analyticsdata.MetricHeader{
			{Name: "sessions", Type: "TYPE_INTEGER"},
		},
		Rows: []*analyticsdata.Row{
			{
				DimensionValues: []*analyticsdata.DimensionValue{{Value: "Germany"}},
				MetricValues:    []*analyticsdata.MetricValue{{Value: "42"}},
			},
		},
		RowCount: 1,
	}

	report := parseReport(resp)
	if len(report.DimensionHeaders) != 1 || report.DimensionHeaders[0].Name != "country" {
		t.Fatalf("dimension headers = %+v", report.DimensionHeaders)
	}
	if report.MetricHeaders[0].Type != "TYPE_INTEGER" {
		t.Fatalf("metric header type = %q", report.MetricHeaders[0].Type)
	}
	if len(report.Rows) != 1 || report.Rows[0].DimensionValues[0] != "Germany" || report.Rows[0].MetricValues[0] != "42" {
		t.Fatalf("rows = %+v", report.Rows)
	}
	if report.RowCount != 1 {
		t.Fatalf("rowCount = %d", report.RowCount)
	}
}

func TestActiveUsersFromResponse(t *testing.T) {
	tests := []struct {
		name    string
		resp    *analyticsdata.RunRealtimeReportResponse
		want    int64
		wantErr bool
	}{
		{
			name: "numeric value",
			resp: &analyticsdata.RunRealtimeReportResponse{
				Rows: []*analyticsdata.Row{{MetricValues: []*analyticsdata.MetricValue{{Value: "17"}}}},
			},
			want: 17,
		},
		{name: "no rows means zero users", resp: &analyticsdata.RunRealtimeReportResponse{}, want: 0},
		{
			name: "non-numeric value surfaces an error",
			resp: &analyticsdata.RunRealtimeReportResponse{
				Rows: []*analyticsdata.Row{{MetricValues: []*analyticsdata.MetricValue{{Value: "n/a"}}}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := activeUsersFromResponse(tt.resp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseReport_EmptyResponse(t *testing.T) {
	report := parseReport(&analyticsdata.RunReportResponse{})
	if report.Rows == nil || len(report.Rows) != 0 {
		t.Fatalf("rows should be an empty slice, got %v", report.Rows)
	}
}
