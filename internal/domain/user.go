package domain

import "time"

// User is keyed by wallet address: one record per wallet, created on the
// first successful sign-in and touched on every subsequent login.
type User struct {
	WalletAddress     string     `gorm:"primaryKey;size:64" json:"walletAddress"`
	CreatedAt         time.Time  `json:"createdAt"`
	LastLoginAt       time.Time  `gorm:"index" json:"lastLoginAt"`
	IsWorldIDVerified bool       `json:"isWorldIdVerified"`
	WorldIDVerifiedAt *time.Time `json:"worldIdVerifiedAt,omitempty"`
	WorldIDNullifier  string     `gorm:"size:128;index" json:"-"`
	LastWorldIDAction string     `gorm:"size:128" json:"-"`
	LastWorldIDSignal string     `gorm:"size:256" json:"-"`
}
