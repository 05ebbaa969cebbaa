package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"worldfund-api/internal/chain"
	"worldfund-api/internal/domain"
	"worldfund-api/internal/observability"
	"worldfund-api/internal/repository"
	"worldfund-api/internal/token"
)

// DonationInput carries the donor's claim about an on-chain transfer. Every
// field is re-checked against the chain before anything is written; the
// donor address is never claimed, it comes from the Transfer event itself.
type DonationInput struct {
	CampaignID string `json:"-"`
	TxHash     string `json:"transactionHash"`
	Amount     string `json:"donatedAmount"`
	ChainID    int64  `json:"chainId"`
}

// DonationService verifies claimed donations against transaction receipts
// and appends them to the campaign ledger. The receipt is the source of
// truth: the claimed amount, recipient and donor must all match what the
// chain recorded, exactly.
type DonationService struct {
	campaigns     repository.CampaignRepository
	receipts      chain.ReceiptFetcher
	chainID       int64
	tokenContract common.Address
	tokenDecimals int
	logger        *slog.Logger
}

func NewDonationService(campaigns repository.CampaignRepository, receipts chain.ReceiptFetcher, chainID int64, tokenContract string, tokenDecimals int, logger *slog.Logger) *DonationService {
	return &DonationService{
		campaigns:     campaigns,
		receipts:      receipts,
		chainID:       chainID,
		tokenContract: common.HexToAddress(tokenContract),
		tokenDecimals: tokenDecimals,
		logger:        logger,
	}
}

func (s *DonationService) VerifyAndRecord(ctx context.Context, input DonationInput) (*domain.DonationRecord, error) {
	if input.CampaignID == "" || input.TxHash == "" || input.Amount == "" {
		observability.RecordDonationEvent(ctx, "bad_request")
		return nil, ErrMissingFields
	}
	if input.ChainID != s.chainID {
		observability.RecordDonationEvent(ctx, "wrong_chain")
		return nil, ErrWrongChain
	}

	expected, err := token.ParseUnits(input.Amount, s.tokenDecimals)
	if err != nil {
		observability.RecordDonationEvent(ctx, "bad_request")
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	campaign, err := s.campaigns.FindByID(input.CampaignID)
	if err != nil {
		observability.RecordDonationEvent(ctx, "campaign_not_found")
		return nil, err
	}

	// Courtesy pre-check so known duplicates fail before the chain call.
	// The insert's unique index is the real guard; a racing second writer
	// gets the same ErrDonationExists from the append below.
	for _, d := range campaign.Donations {
		if strings.EqualFold(d.TxHash, input.TxHash) {
			observability.RecordDonationEvent(ctx, "duplicate")
			return nil, repository.ErrDonationExists
		}
	}

	receipt, err := s.receipts.TransactionReceipt(ctx, common.HexToHash(input.TxHash))
	if err != nil {
		if errors.Is(err, chain.ErrReceiptNotFound) {
			observability.RecordDonationEvent(ctx, "receipt_not_found")
			return nil, ErrReceiptNotFound
		}
		observability.RecordDonationEvent(ctx, "chain_error")
		return nil, fmt.Errorf("%w: %v", ErrChainUnavailable, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		observability.RecordDonationEvent(ctx, "tx_failed")
		return nil, ErrChainTxFailed
	}

	transfer, ok := chain.FirstTransfer(receipt.Logs, s.tokenContract)
	if !ok {
		observability.RecordDonationEvent(ctx, "no_transfer")
		return nil, ErrTransferNotFound
	}

	if !strings.EqualFold(transfer.To.Hex(), campaign.OwnerID) {
		observability.RecordDonationEvent(ctx, "recipient_mismatch")
		return nil, ErrRecipientMismatch
	}

	if transfer.Value.Cmp(expected) != 0 {
		observability.RecordDonationEvent(ctx, "amount_mismatch")
		return nil, &AmountMismatchError{
			Expected: token.FormatUnits(expected, s.tokenDecimals),
			Found:    token.FormatUnits(transfer.Value, s.tokenDecimals),
		}
	}

	displayAmount, err := strconv.ParseFloat(input.Amount, 64)
	if err != nil {
		observability.RecordDonationEvent(ctx, "bad_request")
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	now := time.Now().UTC()
	record := &domain.DonationRecord{
		ID:                        uuid.NewString(),
		CampaignID:                campaign.ID,
		Amount:                    displayAmount,
		OnChainAmountSmallestUnit: transfer.Value.String(),
		DonorAddress:              transfer.From.Hex(),
		TxHash:                    input.TxHash,
		VerifiedStatus:            domain.DonationStatusVerified,
		VerifiedAt:                now,
		Currency:                  campaign.Currency,
		ChainID:                   input.ChainID,
		BlockNumber:               receipt.BlockNumber.String(),
		CreatedAt:                 now,
	}

	if err := s.campaigns.AppendVerifiedDonation(record); err != nil {
		if errors.Is(err, repository.ErrDonationExists) {
			observability.RecordDonationEvent(ctx, "duplicate")
		} else {
			observability.RecordDonationEvent(ctx, "store_error")
		}
		return nil, err
	}

	observability.RecordDonationEvent(ctx, "verified")
	s.logger.InfoContext(ctx, "donation verified",
		"campaign", campaign.ID,
		"tx", input.TxHash,
		"donor", record.DonorAddress,
		"amount", input.Amount,
	)
	return record, nil
}

// CampaignByID returns a campaign with its donation history.
func (s *DonationService) CampaignByID(ctx context.Context, id string) (*domain.Campaign, error) {
	if id == "" {
		return nil, ErrMissingFields
	}
	return s.campaigns.FindByID(id)
}

// CampaignsByOwner lists the campaigns owned by a wallet.
func (s *DonationService) CampaignsByOwner(ctx context.Context, walletAddress string) ([]domain.Campaign, error) {
	if walletAddress == "" {
		return nil, ErrMissingFields
	}
	return s.campaigns.ListByOwner(walletAddress)
}
