package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bearing-weather/internal/modules/weather/client"
	"bearing-weather/internal/modules/weather/insights"
	"bearing-weather/internal/modules/weather/service"
	"bearing-weather/internal/modules/weather/views"
)

const (
	msgInvalidLocation = "Invalid location"
	msgEmptyForecast   = "Forecast contains no observations"
	msgFetchFailed     = "Failed to fetch weather data"

	maxForecastBody = 1 << 20
)

// searchStatus maps a search error to the HTTP status and the message shown
// to the user.
func searchStatus(err error, location string) (int, string) {
	var nf *client.NotFoundError
	switch {
	case errors.Is(err, service.ErrInvalidLocation):
		return http.StatusBadRequest, msgInvalidLocation
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.Is(err, client.ErrLocationNotFound):
		return http.StatusNotFound, fmt.Sprintf("Location %q not found", strings.TrimSpace(location))
	case errors.Is(err, insights.ErrEmptyForecast):
		return http.StatusBadGateway, msgEmptyForecast
	default:
		return http.StatusBadGateway, msgFetchFailed
	}
}

// locationQuery returns ?location=, or fallback when the parameter is absent.
// A present but blank value is returned as is so the search rejects it.
func locationQuery(r *http.Request, fallback string) string {
	q := r.URL.Query()
	if !q.Has("location") {
		return fallback
	}
	return q.Get("location")
}

// conditionIcon picks an icon by keyword over the lower-cased summary. The
// first matching keyword wins.
func conditionIcon(summary string) string {
	s := strings.ToLower(summary)
	switch {
	case strings.Contains(s, "sun"), strings.Contains(s, "clear"):
		return views.IconSun
	case strings.Contains(s, "rain"):
		return views.IconRain
	case strings.Contains(s, "snow"):
		return views.IconSnow
	case strings.Contains(s, "thunder"):
		return views.IconThunder
	case strings.Contains(s, "fog"):
		return views.IconFog
	case strings.Contains(s, "cloud"):
		return views.IconCloud
	default:
		return views.IconUnknown
	}
}

func toReportView(r *service.Report) *views.ReportView {
	now, _ := r.Forecast.Current()
	summary := now.SummaryText()

	v := &views.ReportView{
		Name:           r.Forecast.Location.Name,
		Lat:            r.Forecast.Lat,
		Lon:            r.Forecast.Lon,
		Condition:      summary,
		Icon:           conditionIcon(summary),
		TempC:          now.Temp,
		Humidity:       now.Humidity,
		WindMS:         now.WindSpeed,
		Visibility:     now.Visibility,
		UpdatedAt:      r.FetchedAt,
		Considerations: r.Insights.CurrentConsiderations,
		IsSnowing:      r.Insights.Flags.IsSnowing,
		IsUnstable:     r.Insights.Flags.IsUnstable,
	}
	if r.Insights.WeeklyOutlook != nil {
		v.Outlook = *r.Insights.WeeklyOutlook
	}
	return v
}
