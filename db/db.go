package db

import (
	"pinaly/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

func Init() {
	gormConfig := &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
	var (
		instance *gorm.DB
		err      error
	)
	if config.MYSQL_DSN != "" {
		instance, err = gorm.Open(mysql.Open(config.MYSQL_DSN), gormConfig)
	} else {
		instance, err = gorm.Open(sqlite.Open(config.SQLITE_FILE), gormConfig)
	}
	if err != nil || instance == nil {
		panic(err)
	}
	Instance = instance
}
