package views

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"strconv"

	"weather-dashboard/internal/models"
	"weather-dashboard/internal/report"
)

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html")
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

// ProvinceRow is the view model for one city line on the dashboard.
// Measurements are pre-formatted; an empty string means the record had none.
type ProvinceRow struct {
	City        string
	Temperature string
	Humidity    string
	Condition   string
	DisplayTime string
}

// RegionGroup is the view model for one region section.
type RegionGroup struct {
	Name      string
	Provinces []ProvinceRow
}

// SensorRow is the view model for one recent sensor reading.
type SensorRow struct {
	Temperature string
	Humidity    string
	DisplayTime string
}

// DashboardData is the full dashboard view model.
type DashboardData struct {
	Locale  string
	Query   string
	Regions []RegionGroup
	Sensors []SensorRow
}

// BuildDashboardData maps aggregated records and recent readings into the
// dashboard view model, attaching a display-time string to every row.
func BuildDashboardData(regions []report.RegionView, readings []models.SensorReading, query string) (*DashboardData, error) {
	data := &DashboardData{
		Locale:  DisplayLocale,
		Query:   query,
		Regions: make([]RegionGroup, 0, len(regions)),
		Sensors: make([]SensorRow, 0, len(readings)),
	}

	for _, region := range regions {
		group := RegionGroup{
			Name:      region.Region,
			Provinces: make([]ProvinceRow, 0, len(region.Provinces)),
		}

		for _, rec := range region.Provinces {
			displayTime, err := FormatDisplayTime(rec.RecordedAt)
			if err != nil {
				return nil, err
			}

			row := ProvinceRow{
				City:        rec.City,
				Temperature: formatMeasure(rec.TemperatureCelsius),
				Humidity:    formatMeasure(rec.HumidityPct),
				DisplayTime: displayTime,
			}
			if rec.Condition != nil {
				row.Condition = *rec.Condition
			}

			group.Provinces = append(group.Provinces, row)
		}

		data.Regions = append(data.Regions, group)
	}

	for _, reading := range readings {
		displayTime, err := FormatDisplayTime(reading.RecordedAt)
		if err != nil {
			return nil, err
		}

		data.Sensors = append(data.Sensors, SensorRow{
			Temperature: strconv.FormatFloat(reading.Temperature, 'f', -1, 64),
			Humidity:    strconv.FormatFloat(reading.Humidity, 'f', -1, 64),
			DisplayTime: displayTime,
		})
	}

	return data, nil
}

// formatMeasure renders an optional measurement; NULL columns become "".
func formatMeasure(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// RenderDashboard executes the dashboard template into w.
func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderErrorPage executes the error template into w with the localized
// user-facing message.
func RenderErrorPage(w io.Writer) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "error.html", &ErrorData{
		Locale:  DisplayLocale,
		Message: InternalErrorMessage,
	})
}

// ErrorData is the error page view model.
type ErrorData struct {
	Locale  string
	Message string
}
