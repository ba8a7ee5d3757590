package models

import "time"

// Major is a field of study members can attach to their profile.
type Major struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex:uk_majors_name" json:"name"`
	Code *string `gorm:"size:32" json:"code,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Major) TableName() string { return "majors" }

// MajorFilter provides filter fields for repository queries
type MajorFilter struct {
	ID   *uint
	Name *string
	Code *string
}
