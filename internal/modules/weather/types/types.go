package types

type Location struct {
	Name string `json:"name"`
}

// Observation is one time step of a forecast. Summary is nil when the
// upstream omits the condition text.
type Observation struct {
	Temp       float64 `json:"temp"`
	WindSpeed  float64 `json:"windSpeed"`
	Visibility float64 `json:"visibility"`
	Humidity   float64 `json:"humidity"`
	Summary    *string `json:"summary"`
}

// SummaryText returns the condition summary, or "" when absent.
func (o Observation) SummaryText() string {
	if o.Summary == nil {
		return ""
	}
	return *o.Summary
}

// Forecast is the upstream forecast document. Timeseries[0] is "now".
type Forecast struct {
	Location   Location      `json:"location"`
	Lat        float64       `json:"lat"`
	Lon        float64       `json:"lon"`
	Timeseries []Observation `json:"timeseries"`
}

// Current returns the first observation, if any.
func (f Forecast) Current() (Observation, bool) {
	if len(f.Timeseries) == 0 {
		return Observation{}, false
	}
	return f.Timeseries[0], true
}
