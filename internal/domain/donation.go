package domain

import "time"

// DonationRecord is written only after full on-chain verification and is
// immutable afterwards. The composite unique index on (campaign_id, tx_hash)
// is the guard against double-crediting the same transaction: a second writer
// racing past the read-side duplicate check fails on insert instead.
type DonationRecord struct {
	ID                        string    `gorm:"primaryKey;size:64" json:"id"`
	CampaignID                string    `gorm:"size:64;not null;uniqueIndex:idx_donation_campaign_tx" json:"-"`
	Amount                    float64   `json:"amount"`
	OnChainAmountSmallestUnit string    `gorm:"size:80;not null" json:"onChainAmountSmallestUnit"`
	DonorAddress              string    `gorm:"size:64;index;not null" json:"donorAddress"`
	TxHash                    string    `gorm:"size:80;not null;uniqueIndex:idx_donation_campaign_tx" json:"txHash"`
	VerifiedStatus            string    `gorm:"size:16;not null" json:"verifiedStatus"`
	VerifiedAt                time.Time `json:"verifiedAt"`
	Currency                  string    `gorm:"size:16" json:"currency"`
	ChainID                   int64     `json:"chainId"`
	BlockNumber               string    `gorm:"size:32" json:"blockNumber"`
	CreatedAt                 time.Time `json:"createdAt"`
}

const DonationStatusVerified = "VERIFIED"
