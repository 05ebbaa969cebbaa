package database

import (
	"gorm.io/gorm"

	"worldfund-api/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Campaign{},
		&domain.DonationRecord{},
	)
}
