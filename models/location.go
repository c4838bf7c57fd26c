package models

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	LocationSourceMetadata  = "metadata"
	LocationSourceInference = "inference"
	LocationSourceManual    = "manual"
)

// Location is the confirmed position of an image. At most one row per image;
// confirmation replaces the row instead of editing it in place.
type Location struct {
	ID         uint64 `gorm:"primaryKey"`
	CreatedAt  int64
	ImageID    uint64   `gorm:"index:uniq_location_image,unique;not null"`
	Image      Image    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GpsLat     float64  `gorm:"type:double;not null"`
	GpsLong    float64  `gorm:"type:double;not null"`
	Geoname    *string  `gorm:"type:varchar(500)"`
	Source     string   `gorm:"type:varchar(20);not null"`
	Confidence *float64 `gorm:"type:double"`
	Geom       string   `gorm:"type:varchar(100)"` // WKT point, derived
}

func (l *Location) BeforeSave(tx *gorm.DB) error {
	l.Geom = fmt.Sprintf("POINT(%f %f)", l.GpsLong, l.GpsLat)
	return nil
}
