package models

import "time"

// AggregateDocument is the sqlite row holding a serialized AggregateState.
type AggregateDocument struct {
	Name      string `gorm:"primaryKey;size:128"`
	Body      string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}
