package store

import (
	"sort"
	"time"

	"blog-viewstats/models"
)

// countryNames maps common country codes to display names.
var countryNames = map[string]string{
	"CN": "China",
	"US": "United States",
	"JP": "Japan",
	"KR": "South Korea",
	"TW": "Taiwan",
	"HK": "Hong Kong",
	"SG": "Singapore",
	"GB": "United Kingdom",
	"DE": "Germany",
	"FR": "France",
	"CA": "Canada",
	"AU": "Australia",
	"IN": "India",
	"RU": "Russia",
	"BR": "Brazil",
	"NL": "Netherlands",
	"SE": "Sweden",
	"IT": "Italy",
	"ES": "Spain",
	"XX": "Unknown",
}

// CountryName returns the display name for code, or code itself when unmapped.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

// WindowSum adds up daily counts for the n UTC calendar days ending with
// the day of now, inclusive.
func WindowSum(daily map[string]int64, n int, now time.Time) int64 {
	day := now.UTC()
	var sum int64
	for i := 0; i < n; i++ {
		sum += daily[day.Format(models.DayLayout)]
		day = day.AddDate(0, 0, -1)
	}
	return sum
}

// BuildSummary derives the dashboard view of state. topPaths > 0 truncates
// the byPath list.
func BuildSummary(state *models.AggregateState, now time.Time, topPaths int) *models.Summary {
	state = state.Normalize()

	byPath := make([]models.PathViews, 0, len(state.Views))
	var total int64
	for path, views := range state.Views {
		if models.IsReservedPath(path) {
			continue
		}
		total += views
		byPath = append(byPath, models.PathViews{Path: path, Views: views})
	}
	sort.SliceStable(byPath, func(i, j int) bool {
		if byPath[i].Views != byPath[j].Views {
			return byPath[i].Views > byPath[j].Views
		}
		return byPath[i].Path < byPath[j].Path
	})
	if topPaths > 0 && len(byPath) > topPaths {
		byPath = byPath[:topPaths]
	}

	byDevice := make(map[string]int64, len(models.AllDevices))
	for _, d := range models.AllDevices {
		byDevice[string(d)] = state.ByDevice[string(d)]
	}

	byCountry := make([]models.CountryViews, 0, len(state.ByCountry))
	for code, views := range state.ByCountry {
		if views <= 0 {
			continue
		}
		byCountry = append(byCountry, models.CountryViews{Country: CountryName(code), Code: code, Views: views})
	}
	sort.SliceStable(byCountry, func(i, j int) bool {
		if byCountry[i].Views != byCountry[j].Views {
			return byCountry[i].Views > byCountry[j].Views
		}
		return byCountry[i].Code < byCountry[j].Code
	})

	return &models.Summary{
		Total:       total,
		Last7Days:   WindowSum(state.Daily, 7, now),
		Last30Days:  WindowSum(state.Daily, 30, now),
		Last365Days: WindowSum(state.Daily, 365, now),
		ByPath:      byPath,
		ByDevice:    byDevice,
		ByCountry:   byCountry,
	}
}
