package store

import (
	"testing"
	"time"

	"blog-viewstats/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)

func TestWindowSum(t *testing.T) {
	t.Parallel()

	daily := map[string]int64{
		"2026-03-15": 1, // today
		"2026-03-09": 2, // 7th day back, inside 7
		"2026-03-08": 4, // outside 7, inside 30
		"2025-03-16": 8, // 365th day back
		"2025-03-15": 16,
	}

	assert.Equal(t, int64(3), WindowSum(daily, 7, fixedNow))
	assert.Equal(t, int64(7), WindowSum(daily, 30, fixedNow))
	assert.Equal(t, int64(15), WindowSum(daily, 365, fixedNow))
	assert.Equal(t, int64(0), WindowSum(nil, 7, fixedNow))
}

func TestWindowSumUsesUTC(t *testing.T) {
	t.Parallel()

	// 01:00 in UTC+8 is still the previous day in UTC.
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 3, 16, 1, 0, 0, 0, loc)
	daily := map[string]int64{"2026-03-15": 5, "2026-03-16": 7}

	assert.Equal(t, int64(5), WindowSum(daily, 1, now))
}

func TestBuildSummary_OrderAndTotals(t *testing.T) {
	t.Parallel()

	state := models.NewAggregateState()
	state.Views = map[string]int64{"/blog/a": 3, "/blog/b": 1, "__meta": 9}
	state.ByDevice = map[string]int64{"mobile": 4}
	state.ByCountry = map[string]int64{"US": 1, "CN": 3, "ZZ": 0}
	state.Daily = map[string]int64{"2026-03-15": 4}

	s := BuildSummary(state, fixedNow, 0)

	assert.Equal(t, int64(4), s.Total)
	assert.Equal(t, []models.PathViews{{Path: "/blog/a", Views: 3}, {Path: "/blog/b", Views: 1}}, s.ByPath)
	assert.Equal(t, map[string]int64{"desktop": 0, "mobile": 4, "tablet": 0, "bot": 0, "unknown": 0}, s.ByDevice)
	require.Len(t, s.ByCountry, 2)
	assert.Equal(t, models.CountryViews{Country: "China", Code: "CN", Views: 3}, s.ByCountry[0])
	assert.Equal(t, models.CountryViews{Country: "United States", Code: "US", Views: 1}, s.ByCountry[1])
	assert.Equal(t, int64(4), s.Last7Days)
}

func TestBuildSummary_TiesAndTopPaths(t *testing.T) {
	t.Parallel()

	state := models.NewAggregateState()
	state.Views = map[string]int64{"/c": 2, "/a": 2, "/b": 5}

	s := BuildSummary(state, fixedNow, 2)

	assert.Equal(t, []models.PathViews{{Path: "/b", Views: 5}, {Path: "/a", Views: 2}}, s.ByPath)
	// total covers every path, not only the listed ones
	assert.Equal(t, int64(9), s.Total)
}

func TestBuildSummary_EmptyState(t *testing.T) {
	t.Parallel()

	s := BuildSummary(&models.AggregateState{}, fixedNow, 0)

	assert.Zero(t, s.Total)
	assert.Zero(t, s.Last365Days)
	assert.Empty(t, s.ByPath)
	assert.Empty(t, s.ByCountry)
	assert.Len(t, s.ByDevice, 5)
}

func TestCountryName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Japan", CountryName("JP"))
	assert.Equal(t, "Unknown", CountryName("XX"))
	assert.Equal(t, "NZ", CountryName("NZ"))
}
