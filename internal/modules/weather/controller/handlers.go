package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bearing-weather/internal/modules/weather/insights"
	"bearing-weather/internal/modules/weather/types"
	"bearing-weather/internal/modules/weather/views"
	"bearing-weather/internal/utils"
)

func (c *weatherControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	status, data := c.search(r)

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, data); err != nil {
		c.logger.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, status, buf.Bytes())
}

// handleReportPartial always answers 200 so htmx swaps the fragment in;
// a failed search is carried by the banner's data-status.
func (c *weatherControllerImpl) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	_, data := c.search(r)

	var buf bytes.Buffer
	if err := views.RenderReportPartial(&buf, data); err != nil {
		c.logger.Error("report partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

// search runs the location search for the HTML routes and returns the
// status to respond with along with the view model.
func (c *weatherControllerImpl) search(r *http.Request) (int, *views.DashboardData) {
	location := locationQuery(r, c.defaultLocation)
	data := &views.DashboardData{Location: location}

	report, err := c.searcher.Search(r.Context(), location)
	if err != nil {
		status, msg := searchStatus(err, location)
		c.logSearchError(location, status, err)
		data.Error = &views.ErrorBanner{Status: status, Message: msg}
		return status, data
	}
	data.Report = toReportView(report)
	return http.StatusOK, data
}

func (c *weatherControllerImpl) handleForecast(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	report, err := c.searcher.Search(r.Context(), location)
	if err != nil {
		status, msg := searchStatus(err, location)
		c.logSearchError(location, status, err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report)
}

func (c *weatherControllerImpl) handleInsights(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	report, err := c.searcher.Search(r.Context(), location)
	if err != nil {
		status, msg := searchStatus(err, location)
		c.logSearchError(location, status, err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteJSON(w, http.StatusOK, report.Insights)
}

// handleDeriveInsights runs the engine on a caller supplied forecast.
func (c *weatherControllerImpl) handleDeriveInsights(w http.ResponseWriter, r *http.Request) {
	var forecast types.Forecast
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxForecastBody))
	if err := dec.Decode(&forecast); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "forecast body too large")
		case errors.Is(err, io.EOF):
			utils.WriteError(w, http.StatusBadRequest, "missing forecast body")
		default:
			utils.WriteError(w, http.StatusBadRequest, "invalid forecast JSON")
		}
		return
	}

	result, err := insights.Derive(forecast)
	if err != nil {
		if errors.Is(err, insights.ErrEmptyForecast) {
			utils.WriteError(w, http.StatusUnprocessableEntity, msgEmptyForecast)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

func (c *weatherControllerImpl) logSearchError(location string, status int, err error) {
	if status >= http.StatusInternalServerError {
		c.logger.Error("search failed", "location", location, "status", status, "error", err)
		return
	}
	c.logger.Info("search rejected", "location", location, "status", status, "error", err)
}
