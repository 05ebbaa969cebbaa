package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"worldfund-api/internal/domain"
	"worldfund-api/internal/observability"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrDonationExists   = errors.New("donation already recorded for this transaction")
)

type CampaignRepository interface {
	FindByID(id string) (*domain.Campaign, error)
	ListByOwner(walletAddress string) ([]domain.Campaign, error)
	AppendVerifiedDonation(donation *domain.DonationRecord) error
}

type GormCampaignRepository struct{ db *gorm.DB }

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &GormCampaignRepository{db: db}
}

func (r *GormCampaignRepository) FindByID(id string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := r.db.Preload("Donations", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).Where("id = ?", id).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "campaign", "find_by_id", "not_found")
			return nil, ErrCampaignNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "campaign", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "campaign", "find_by_id", "success")
	return &campaign, nil
}

func (r *GormCampaignRepository) ListByOwner(walletAddress string) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := r.db.Where("owner_id = ?", walletAddress).Order("created_at desc").Find(&campaigns).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "campaign", "list_by_owner", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "campaign", "list_by_owner", "success")
	return campaigns, nil
}

// AppendVerifiedDonation commits a verified donation in one transaction:
// the insert rides on the (campaign_id, tx_hash) unique index, and the
// raised-total increment doubles as the campaign existence check. Either
// both writes land or neither does, so a duplicate transaction reference or
// a concurrently deleted campaign leaves raised untouched.
func (r *GormCampaignRepository) AppendVerifiedDonation(donation *domain.DonationRecord) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(donation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDonationExists
			}
			return err
		}
		res := tx.Model(&domain.Campaign{}).Where("id = ?", donation.CampaignID).Updates(map[string]any{
			"raised":     gorm.Expr("raised + ?", donation.Amount),
			"updated_at": time.Now().UTC(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCampaignNotFound
		}
		return nil
	})
	switch {
	case err == nil:
		observability.RecordRepositoryOperation(context.Background(), "donation", "append_verified", "success")
	case errors.Is(err, ErrDonationExists):
		observability.RecordRepositoryOperation(context.Background(), "donation", "append_verified", "duplicate")
	case errors.Is(err, ErrCampaignNotFound):
		observability.RecordRepositoryOperation(context.Background(), "donation", "append_verified", "not_found")
	default:
		observability.RecordRepositoryOperation(context.Background(), "donation", "append_verified", "error")
	}
	return err
}
