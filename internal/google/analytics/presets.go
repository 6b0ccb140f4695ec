package analytics

import "fmt"

// Preset report names accepted by the report endpoint.
const (
	PresetOverview = "overview"
	PresetPages    = "pages"
	PresetCountry  = "country"
	PresetDevice   = "device"
	PresetSources  = "sources"
)

const (
	defaultStartDate = "7daysAgo"
	defaultEndDate   = "today"
)

// PresetParams returns the canned report definition for name. Empty dates
// fall back to the last seven days.
func PresetParams(name, startDate, endDate string) (ReportParams, error) {
	if startDate == "" {
		startDate = defaultStartDate
	}
	if endDate == "" {
		endDate = defaultEndDate
	}

	switch name {
	case PresetOverview:
		return ReportParams{
			StartDate: startDate,
			EndDate:   endDate,
			Metrics: []string{
				"sessions", "activeUsers", "newUsers", "screenPageViews",
				"bounceRate", "averageSessionDuration",
			},
			Dimensions: []string{"date"},
			OrderBy:    []OrderBy{{FieldName: "date", Descending: false}},
		}, nil
	case PresetPages:
		return ReportParams{
			StartDate:  startDate,
			EndDate:    endDate,
			Metrics:    []string{"screenPageViews", "activeUsers", "averageSessionDuration"},
			Dimensions: []string{"pagePath", "pageTitle"},
			Limit:      10,
			OrderBy:    []OrderBy{{FieldName: "screenPageViews", Descending: true}},
		}, nil
	case PresetCountry:
		return ReportParams{
			StartDate:  startDate,
			EndDate:    endDate,
			Metrics:    []string{"sessions", "activeUsers"},
			Dimensions: []string{"country"},
			Limit:      20,
			OrderBy:    []OrderBy{{FieldName: "sessions", Descending: true}},
		}, nil
	case PresetDevice:
		return ReportParams{
			StartDate:  startDate,
			EndDate:    endDate,
			Metrics:    []string{"sessions", "activeUsers", "screenPageViews"},
			Dimensions: []string{"deviceCategory"},
			OrderBy:    []OrderBy{{FieldName: "sessions", Descending: true}},
		}, nil
	case PresetSources:
		return ReportParams{
			StartDate:  startDate,
			EndDate:    endDate,
			Metrics:    []string{"sessions", "activeUsers"},
			Dimensions: []string{"sessionSource", "sessionMedium"},
			Limit:      10,
			OrderBy:    []OrderBy{{FieldName: "sessions", Descending: true}},
		}, nil
	default:
		return ReportParams{}, fmt.Errorf("unknown report preset %q", name)
	}
}
