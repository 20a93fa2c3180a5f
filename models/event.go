package models

import "time"

// ViewEvent is published on the live feed after a view has been stored.
type ViewEvent struct {
	Path    string         `json:"path"`
	Device  DeviceCategory `json:"device"`
	Country string         `json:"country"`
	Views   int64          `json:"views"`
	At      time.Time      `json:"at"`
}
