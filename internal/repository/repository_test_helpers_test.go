package repository

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"worldfund-api/internal/domain"
)

var testDBSeq atomic.Int64

// Each test gets its own named in-memory database; cache=shared keeps it
// alive across the pool's connections within the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Campaign{}, &domain.DonationRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCampaign(t *testing.T, db *gorm.DB, id, owner string) *domain.Campaign {
	t.Helper()
	campaign := &domain.Campaign{
		ID:       id,
		OwnerID:  owner,
		Title:    "Test Campaign",
		Goal:     100,
		Currency: "WLD",
		Status:   domain.CampaignStatusActive,
	}
	if err := db.Create(campaign).Error; err != nil {
		t.Fatalf("seed campaign: %v", err)
	}
	return campaign
}
