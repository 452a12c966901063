package views

import "strconv"

const (
	IconSun     = "sun"
	IconRain    = "rain"
	IconSnow    = "snow"
	IconThunder = "thunder"
	IconFog     = "fog"
	IconCloud   = "cloud"
	IconUnknown = "unknown"
)

var iconGlyphs = map[string]string{
	IconSun:     "☀️",
	IconRain:    "🌧️",
	IconSnow:    "❄️",
	IconThunder: "⛈️",
	IconFog:     "🌫️",
	IconCloud:   "☁️",
	IconUnknown: "🌡️",
}

// IconGlyph returns the emoji for an icon name.
func IconGlyph(icon string) string {
	if g, ok := iconGlyphs[icon]; ok {
		return g
	}
	return iconGlyphs[IconUnknown]
}

func formatOneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
