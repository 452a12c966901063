// Package insights derives advisory text from a forecast time series: a list
// of considerations for today and a stability outlook for the coming days.
package insights

import (
	"errors"
	"strings"

	"bearing-weather/internal/modules/weather/types"
)

// ErrEmptyForecast is returned by Derive when the forecast has no observations.
var ErrEmptyForecast = errors.New("forecast has no observations")

const (
	ConsiderationWindPrecipitation = "Wind and precipitation may affect outdoor activities today."
	ConsiderationLowVisibility     = "Reduced visibility may affect transport and travel."
	ConsiderationSlippery          = "Cold temperatures combined with precipitation may create slippery conditions - Probability high"
	ConsiderationCalm              = "No significant weather-related disruptions are expected today."
)

const (
	OutlookStable     = "Conditions appear generally stable over the coming days, which may support planning with fewer weather-related interruptions."
	OutlookVariable   = "The coming days show variable conditions, with shifts that may require flexibility when planning weather-sensitive activities."
	OutlookDisruptive = "The period ahead includes signs of increased weather disruption, which may affect timing and continuity for outdoor or exposed work."
)

const (
	strongWindMS       = 8.0
	lowVisibilityKM    = 3.0
	freezingTempC      = 1.0
	minOutlookSteps    = 5
	outlookWindowSteps = 7

	disruptivePrecipSteps  = 3
	disruptiveWindVariance = 10.0
	variableTempVariance   = 6.0
	variableWindVariance   = 6.0
)

type Stability string

const (
	StabilityStable     Stability = "stable"
	StabilityVariable   Stability = "variable"
	StabilityDisruptive Stability = "disruptive"
)

type Flags struct {
	IsSnowing  bool `json:"isSnowing"`
	IsUnstable bool `json:"isUnstable"`
}

// Result is the advisory output for one forecast. WeeklyOutlook is nil when
// the forecast is too short to judge the coming days.
type Result struct {
	CurrentConsiderations []string `json:"currentConsiderations"`
	WeeklyOutlook         *string  `json:"weeklyOutlook"`
	Flags                 Flags    `json:"flags"`
}

// Derive classifies the current observation and, given at least five
// observations, the stability of the upcoming window.
func Derive(forecast types.Forecast) (Result, error) {
	now, ok := forecast.Current()
	if !ok {
		return Result{}, ErrEmptyForecast
	}

	summary := now.SummaryText()
	result := Result{
		CurrentConsiderations: considerations(now),
		WeeklyOutlook:         weeklyOutlook(forecast.Timeseries),
	}
	result.Flags.IsSnowing = IsSnowing(summary)
	if result.WeeklyOutlook != nil {
		result.Flags.IsUnstable = strings.Contains(*result.WeeklyOutlook, "variable")
	}
	return result, nil
}

func considerations(now types.Observation) []string {
	precipitation := HasPrecipitation(now.SummaryText())

	var out []string
	if now.WindSpeed >= strongWindMS && precipitation {
		out = append(out, ConsiderationWindPrecipitation)
	}
	if now.Visibility <= lowVisibilityKM {
		out = append(out, ConsiderationLowVisibility)
	}
	if now.Temp <= freezingTempC && precipitation {
		out = append(out, ConsiderationSlippery)
	}
	if len(out) == 0 {
		out = append(out, ConsiderationCalm)
	}
	return out
}

func weeklyOutlook(series []types.Observation) *string {
	if len(series) < minOutlookSteps {
		return nil
	}
	window := series[:min(outlookWindowSteps, len(series))]

	temps := make([]float64, 0, len(window))
	winds := make([]float64, 0, len(window))
	precipitationSteps := 0
	for _, o := range window {
		temps = append(temps, o.Temp)
		winds = append(winds, o.WindSpeed)
		if precipitationPattern.MatchString(o.SummaryText()) {
			precipitationSteps++
		}
	}

	text := OutlookText(ClassifyStability(Variance(temps), Variance(winds), precipitationSteps))
	return &text
}

// ClassifyStability maps window statistics to a stability class. Disruption
// takes precedence over variability.
func ClassifyStability(tempVariance, windVariance float64, precipitationSteps int) Stability {
	if precipitationSteps >= disruptivePrecipSteps || windVariance > disruptiveWindVariance {
		return StabilityDisruptive
	}
	if tempVariance > variableTempVariance || windVariance > variableWindVariance {
		return StabilityVariable
	}
	return StabilityStable
}

// OutlookText returns the advisory sentence for s. Unknown values read as stable.
func OutlookText(s Stability) string {
	switch s {
	case StabilityDisruptive:
		return OutlookDisruptive
	case StabilityVariable:
		return OutlookVariable
	default:
		return OutlookStable
	}
}
