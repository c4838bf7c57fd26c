package models

// Tag names are global across users and case-sensitive. The unique index is
// what makes concurrent find-or-create race-safe.
type Tag struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	Name      string `gorm:"type:varchar(250);index:uniq_tag_name,unique;not null"`
}
