package domain

import "time"

type Campaign struct {
	ID        string           `gorm:"primaryKey;size:64" json:"id"`
	OwnerID   string           `gorm:"size:64;index;not null" json:"ownerId"`
	Title     string           `gorm:"size:256" json:"title"`
	Goal      float64          `json:"goal"`
	Raised    float64          `json:"raised"`
	Currency  string           `gorm:"size:16" json:"currency"`
	Status    string           `gorm:"size:32;index" json:"status"`
	Donations []DonationRecord `gorm:"foreignKey:CampaignID" json:"donations,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

const (
	CampaignStatusActive = "ACTIVE"
	CampaignStatusClosed = "CLOSED"
)
