package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	s := NewAggregateState()

	assert.Equal(t, int64(1), s.Apply(ViewRecord{Path: "/a", Device: DeviceMobile, Country: "US"}, "2026-03-15"))
	assert.Equal(t, int64(2), s.Apply(ViewRecord{Path: "/a", Device: DeviceDesktop, Country: "US"}, "2026-03-15"))
	assert.Equal(t, int64(1), s.Apply(ViewRecord{Path: "/b", Device: DeviceMobile, Country: "XX"}, "2026-03-16"))

	assert.Equal(t, map[string]int64{"/a": 2, "/b": 1}, s.Views)
	assert.Equal(t, map[string]int64{"mobile": 2, "desktop": 1}, s.ByDevice)
	assert.Equal(t, map[string]int64{"US": 2, "XX": 1}, s.ByCountry)
	assert.Equal(t, map[string]int64{"2026-03-15": 2, "2026-03-16": 1}, s.Daily)
}

func TestNormalize(t *testing.T) {
	s := (&AggregateState{Views: map[string]int64{"/a": 3, "/bad": -2}}).Normalize()

	assert.Equal(t, map[string]int64{"/a": 3}, s.Views)
	assert.NotNil(t, s.ByDevice)
	assert.NotNil(t, s.ByCountry)
	assert.NotNil(t, s.Daily)

	var nilState *AggregateState
	assert.Equal(t, NewAggregateState(), nilState.Normalize())
}

func TestDeviceCategoryValid(t *testing.T) {
	for _, d := range AllDevices {
		assert.True(t, d.Valid(), d)
	}
	assert.False(t, DeviceCategory("toaster").Valid())
	assert.False(t, DeviceCategory("").Valid())
}

func TestNormalizeCountry(t *testing.T) {
	cases := map[string]string{
		"us":   "US",
		" de ": "DE",
		"XX":   "XX",
		"":     "XX",
		"USA":  "XX",
		"1A":   "XX",
		"é":    "XX",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCountry(in), in)
	}
}

func TestIsReservedPath(t *testing.T) {
	assert.True(t, IsReservedPath("__meta"))
	assert.False(t, IsReservedPath("/__meta"))
	assert.False(t, IsReservedPath("/blog/a"))
}
