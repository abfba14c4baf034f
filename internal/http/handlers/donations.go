package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"charitychain/internal/contract"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

type donationRequest struct {
	Amount  int64  `json:"amount"`
	DonorID string `json:"donorId"`
	Message string `json:"message"`
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var out *domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		c, err := a.Svc.Donate(tx, contract.DonateInput{
			CampaignID: id,
			Amount:     req.Amount,
			DonorID:    req.DonorID,
			Message:    req.Message,
		})
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, out)
}

func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var out []*domain.Donation
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		ds, err := a.Svc.DonationHistory(tx, id)
		if err != nil {
			return err
		}
		out = ds
		return nil
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Donation{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}
