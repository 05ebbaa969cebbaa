package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"worldfund-api/internal/http/middleware"
	"worldfund-api/internal/http/response"
	"worldfund-api/internal/repository"
	"worldfund-api/internal/service"
)

type DonationHandler struct {
	donationSvc *service.DonationService
}

func NewDonationHandler(donationSvc *service.DonationService) *DonationHandler {
	return &DonationHandler{donationSvc: donationSvc}
}

// Donate verifies a claimed on-chain donation and appends it to the
// campaign. Everything the donor claims is re-checked against the
// transaction receipt before any write happens.
func (h *DonationHandler) Donate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.WalletFromContext(r.Context()); !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing session", nil)
		return
	}

	var req service.DonationInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	req.CampaignID = chi.URLParam(r, "campaignID")

	record, err := h.donationSvc.VerifyAndRecord(r.Context(), req)
	if err != nil {
		var mismatch *service.AmountMismatchError
		switch {
		case errors.Is(err, service.ErrMissingFields):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "donatedAmount, transactionHash and chainId are required", nil)
		case errors.Is(err, service.ErrWrongChain):
			response.Error(w, r, http.StatusBadRequest, "WRONG_CHAIN", "donation was sent on an unsupported chain", nil)
		case errors.Is(err, repository.ErrCampaignNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "campaign not found", nil)
		case errors.Is(err, repository.ErrDonationExists):
			response.Error(w, r, http.StatusConflict, "CONFLICT", "donation already recorded for this transaction", nil)
		case errors.Is(err, service.ErrChainUnavailable):
			response.Error(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", "chain node is unavailable; retry later", nil)
		case errors.Is(err, service.ErrReceiptNotFound):
			response.Error(w, r, http.StatusNotFound, "RECEIPT_NOT_FOUND", "transaction receipt not found; the transaction may still be pending", nil)
		case errors.Is(err, service.ErrChainTxFailed):
			response.Error(w, r, http.StatusBadRequest, "TX_FAILED", "transaction failed on-chain", nil)
		case errors.Is(err, service.ErrTransferNotFound):
			response.Error(w, r, http.StatusBadRequest, "TRANSFER_NOT_FOUND", "no matching token transfer in the transaction", nil)
		case errors.Is(err, service.ErrRecipientMismatch):
			response.Error(w, r, http.StatusBadRequest, "RECIPIENT_MISMATCH", "transfer recipient does not match the campaign owner", nil)
		case errors.As(err, &mismatch):
			response.Error(w, r, http.StatusBadRequest, "AMOUNT_MISMATCH", "donation amount does not match the on-chain transfer", map[string]any{
				"expected": mismatch.Expected,
				"found":    mismatch.Found,
			})
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to verify donation", nil)
		}
		return
	}

	response.JSON(w, r, http.StatusCreated, record)
}

func (h *DonationHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.donationSvc.CampaignByID(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "campaign not found", nil)
			return
		}
		if errors.Is(err, service.ErrMissingFields) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "campaign id is required", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to load campaign", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, campaign)
}

func (h *DonationHandler) ListUserCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.donationSvc.CampaignsByOwner(r.Context(), chi.URLParam(r, "walletAddress"))
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "wallet address is required", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list campaigns", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, campaigns)
}
