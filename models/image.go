package models

import (
	"pinaly/storage"
)

// Location resolution states. An image starts in NoGPS or ExifPresent and
// only leaves via analyze/confirm or a manual pin.
const (
	StatusNoGPS       = "NO_GPS"
	StatusExifPresent = "EXIF_PRESENT"
	StatusAICandidate = "AI_CANDIDATE"
	StatusConfirmed   = "CONFIRMED"
	StatusUserManual  = "USER_MANUAL"
)

type Image struct {
	ID             uint64 `gorm:"primaryKey"`
	UserID         uint64 `gorm:"not null;index:user_image_created,priority:1"`
	User           User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      int64  `gorm:"index:user_image_created,priority:2"`
	UpdatedAt      int64
	BucketID       uint64
	Bucket         storage.Bucket `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Path           string         `gorm:"type:varchar(500);not null"`
	ThumbPath      string         `gorm:"type:varchar(500)"`
	MimeType       string         `gorm:"type:varchar(50)"`
	Size           int64
	ThumbSize      int64
	Title          *string `gorm:"type:varchar(300)"`
	Comment        *string `gorm:"type:varchar(2000)"`
	Favourite      bool    `gorm:"not null;default:0"`
	TakenAt        *int64  // Unix UTC, from metadata only
	LocationStatus string  `gorm:"type:varchar(20);not null;default:NO_GPS;index"`
}

// HasConfirmedLocation reports whether the image is in a state backed by a
// confirmed Location row.
func (img *Image) HasConfirmedLocation() bool {
	switch img.LocationStatus {
	case StatusExifPresent, StatusConfirmed, StatusUserManual:
		return true
	}
	return false
}
