// Package report builds the dashboard's region groupings from raw weather
// records. Every step is a pure transformation over slices; the package has
// no knowledge of storage or HTTP.
package report

import (
	"sort"
	"strings"

	"weather-dashboard/internal/models"
)

// RegionView groups the most recent weather record of each city under the
// city's region. Provinces are ordered by city name ascending.
type RegionView struct {
	Region    string                 `json:"region"`
	Provinces []models.WeatherRecord `json:"provinces"`
}

// BuildRegionViews runs the full aggregation pipeline:
//
//	filter by city substring -> latest record per city ->
//	sort cities ascending -> group by region -> sort regions ascending
//
// The input slice is never mutated. An empty query matches every record.
func BuildRegionViews(records []models.WeatherRecord, query string) []RegionView {
	matched := filterByCity(records, query)
	latest := latestPerCity(matched)
	sortByCity(latest)
	views := groupByRegion(latest)
	sortByRegion(views)
	return views
}

// filterByCity keeps records whose city name contains the query,
// case-insensitively. An empty query passes the input through.
func filterByCity(records []models.WeatherRecord, query string) []models.WeatherRecord {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}

	matched := make([]models.WeatherRecord, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.City), q) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// latestPerCity reduces the records to at most one per city: the one with
// the greatest timestamp. Equal timestamps resolve to the record with the
// highest insertion id, so the outcome never depends on input order.
func latestPerCity(records []models.WeatherRecord) []models.WeatherRecord {
	best := make(map[string]models.WeatherRecord, len(records))
	for _, rec := range records {
		cur, ok := best[rec.City]
		if !ok || newerRecord(rec, cur) {
			best[rec.City] = rec
		}
	}

	latest := make([]models.WeatherRecord, 0, len(best))
	for _, rec := range best {
		latest = append(latest, rec)
	}
	return latest
}

// newerRecord reports whether a should replace b as a city's latest record.
func newerRecord(a, b models.WeatherRecord) bool {
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.After(b.RecordedAt)
	}
	return a.ID > b.ID
}

// sortByCity orders records by city name ascending, in place.
func sortByCity(records []models.WeatherRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].City < records[j].City
	})
}

// groupByRegion buckets records into one RegionView per region, preserving
// the incoming record order within each region.
func groupByRegion(records []models.WeatherRecord) []RegionView {
	views := make([]RegionView, 0)
	index := make(map[string]int)

	for _, rec := range records {
		i, ok := index[rec.Region]
		if !ok {
			i = len(views)
			index[rec.Region] = i
			views = append(views, RegionView{Region: rec.Region})
		}
		views[i].Provinces = append(views[i].Provinces, rec)
	}
	return views
}

// sortByRegion orders region views by region name ascending, in place.
func sortByRegion(views []RegionView) {
	sort.Slice(views, func(i, j int) bool {
		return views[i].Region < views[j].Region
	})
}
