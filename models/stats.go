package models

import "strings"

// DeviceCategory is the coarse client class derived from a user agent.
type DeviceCategory string

const (
	DeviceDesktop DeviceCategory = "desktop"
	DeviceMobile  DeviceCategory = "mobile"
	DeviceTablet  DeviceCategory = "tablet"
	DeviceBot     DeviceCategory = "bot"
	DeviceUnknown DeviceCategory = "unknown"
)

// AllDevices lists every category in the order the summary reports them.
var AllDevices = []DeviceCategory{DeviceDesktop, DeviceMobile, DeviceTablet, DeviceBot, DeviceUnknown}

// Valid reports whether d is one of the known categories.
func (d DeviceCategory) Valid() bool {
	for _, known := range AllDevices {
		if d == known {
			return true
		}
	}
	return false
}

// UnknownCountry is stored when no country could be resolved.
const UnknownCountry = "XX"

// ReservedPrefix marks internal keys in the views mapping.
// They are counted in the document but hidden from summaries.
const ReservedPrefix = "__"

// DayLayout is the key format of the daily mapping (UTC).
const DayLayout = "2006-01-02"

// ViewRecord is a single page visit before it is folded into counters.
type ViewRecord struct {
	Path    string
	Device  DeviceCategory
	Country string
}

// AggregateState is the single persisted counters document.
type AggregateState struct {
	Views     map[string]int64 `json:"views"`
	ByDevice  map[string]int64 `json:"byDevice"`
	ByCountry map[string]int64 `json:"byCountry"`
	Daily     map[string]int64 `json:"daily"`
}

func NewAggregateState() *AggregateState {
	return &AggregateState{
		Views:     map[string]int64{},
		ByDevice:  map[string]int64{},
		ByCountry: map[string]int64{},
		Daily:     map[string]int64{},
	}
}

// Normalize repairs a partially decoded document: nil mappings become
// empty ones and negative counters are dropped.
func (s *AggregateState) Normalize() *AggregateState {
	if s == nil {
		return NewAggregateState()
	}
	s.Views = repair(s.Views)
	s.ByDevice = repair(s.ByDevice)
	s.ByCountry = repair(s.ByCountry)
	s.Daily = repair(s.Daily)
	return s
}

func repair(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	for k, v := range m {
		if v < 0 {
			delete(m, k)
		}
	}
	return m
}

// Apply folds one record into every mapping and returns the new path count.
// day must already be formatted with DayLayout.
func (s *AggregateState) Apply(rec ViewRecord, day string) int64 {
	s.Views[rec.Path]++
	s.ByDevice[string(rec.Device)]++
	s.ByCountry[rec.Country]++
	s.Daily[day]++
	return s.Views[rec.Path]
}

// IsReservedPath reports whether path is an internal key.
func IsReservedPath(path string) bool {
	return strings.HasPrefix(path, ReservedPrefix)
}

type PathViews struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type CountryViews struct {
	Country string `json:"country"`
	Code    string `json:"code"`
	Views   int64  `json:"views"`
}

// Summary is the dashboard view of the aggregate document.
type Summary struct {
	Total       int64            `json:"total"`
	Last7Days   int64            `json:"last7Days"`
	Last30Days  int64            `json:"last30Days"`
	Last365Days int64            `json:"last365Days"`
	ByPath      []PathViews      `json:"byPath"`
	ByDevice    map[string]int64 `json:"byDevice"`
	ByCountry   []CountryViews   `json:"byCountry"`
}

// NormalizeCountry upper-cases a two letter code. Anything else becomes XX.
func NormalizeCountry(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return UnknownCountry
	}
	for i := 0; i < 2; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return UnknownCountry
		}
	}
	return code
}
