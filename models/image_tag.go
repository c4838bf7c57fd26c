package models

type ImageTag struct {
	CreatedAt int64
	ImageID   uint64 `gorm:"primaryKey"`
	Image     Image  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TagID     uint64 `gorm:"primaryKey"`
	Tag       Tag    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
