package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worldfund-api/internal/domain"
	"worldfund-api/internal/observability"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	UpsertOnLogin(walletAddress string, now time.Time) error
	MarkWorldIDVerified(walletAddress, nullifier, action, signal string, now time.Time) error
	FindByWallet(walletAddress string) (*domain.User, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// UpsertOnLogin inserts the user on first sign-in and only touches
// last_login_at afterwards. The conflict clause makes this a single atomic
// statement, so concurrent first logins cannot race into duplicates.
func (r *GormUserRepository) UpsertOnLogin(walletAddress string, now time.Time) error {
	user := domain.User{
		WalletAddress: walletAddress,
		CreatedAt:     now,
		LastLoginAt:   now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]any{"last_login_at": now}),
	}).Create(&user).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "upsert_on_login", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "upsert_on_login", "success")
	return nil
}

// MarkWorldIDVerified is a last-write-wins field update: verifying again
// with a different nullifier overwrites the previous one. Cross-wallet
// nullifier reuse is deliberately not rejected here.
func (r *GormUserRepository) MarkWorldIDVerified(walletAddress, nullifier, action, signal string, now time.Time) error {
	res := r.db.Model(&domain.User{}).Where("wallet_address = ?", walletAddress).Updates(map[string]any{
		"is_world_id_verified": true,
		"world_id_verified_at": now,
		"world_id_nullifier":   nullifier,
		"last_world_id_action": action,
		"last_world_id_signal": signal,
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "mark_verified", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "mark_verified", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "mark_verified", "success")
	return nil
}

func (r *GormUserRepository) FindByWallet(walletAddress string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("wallet_address = ?", walletAddress).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_wallet", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_wallet", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_wallet", "success")
	return &user, nil
}
