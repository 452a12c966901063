package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"time"
)

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"iconGlyph":  IconGlyph,
	"oneDecimal": formatOneDecimal,
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("15:04 MST")
	},
}

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.New("").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded dashboard templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// ErrorBanner is shown above the report when a search fails.
type ErrorBanner struct {
	Status  int
	Message string
}

// ReportView is the view model for one searched location.
type ReportView struct {
	Name       string
	Lat        float64
	Lon        float64
	Condition  string
	Icon       string
	TempC      float64
	Humidity   float64
	WindMS     float64
	Visibility float64
	UpdatedAt  time.Time

	Considerations []string
	// Outlook is empty when the forecast is too short for an outlook.
	Outlook    string
	IsSnowing  bool
	IsUnstable bool
}

// DashboardData backs both the full page and the report partial.
type DashboardData struct {
	Location string
	Report   *ReportView
	Error    *ErrorBanner
}

// Snowing reports whether the report backdrop should use the cold gradient.
func (d *DashboardData) Snowing() bool {
	return d != nil && d.Report != nil && d.Report.IsSnowing
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderReportPartial executes only the report partial into w.
// Use for HTMX fragment refresh.
func RenderReportPartial(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("report template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/report.html", data)
}
