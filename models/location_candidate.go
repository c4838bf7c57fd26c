package models

// LocationCandidate is one ranked guess from the inference model. Candidate
// sets are always written and cleared as a whole, never edited row by row.
type LocationCandidate struct {
	ID         uint64  `gorm:"primaryKey"`
	CreatedAt  int64
	ImageID    uint64  `gorm:"index:uniq_image_rank,unique,priority:1;not null"`
	Image      Image   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rank       int     `gorm:"column:rank_index;index:uniq_image_rank,unique,priority:2;not null"` // 1-based
	GpsLat     float64 `gorm:"type:double;not null"`
	GpsLong    float64 `gorm:"type:double;not null"`
	Confidence float64 `gorm:"type:double;not null"`
	Geoname    *string `gorm:"type:varchar(500)"`
}
