package models

import (
	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/sirupsen/logrus"
)

// MigrateTable creates/updates the schema idempotently at process start.
func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Report{},
		&User{},
	)
	if err != nil {
		logger := config.GetLogger()
		logger.WithFields(logrus.Fields{
			"field": "migration",
		}).Panic(err.Error())
	}
}
