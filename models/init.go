package models

import "pinaly/db"

func Init() {
	db.Instance.AutoMigrate(&User{})
	db.Instance.AutoMigrate(&Image{})
	db.Instance.AutoMigrate(&Location{})
	db.Instance.AutoMigrate(&LocationCandidate{})
	db.Instance.AutoMigrate(&Tag{})
	db.Instance.AutoMigrate(&ImageTag{})
}
