package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

type verifyMilestoneRequest struct {
	Notes string `json:"notes"`
}

func (a *App) MilestonesVerify(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	milestoneID := chi.URLParam(r, "milestoneID")

	var req verifyMilestoneRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	var out *domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		c, err := a.Svc.VerifyMilestone(tx, campaignID, milestoneID, req.Notes)
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
	a.json(w, http.StatusOK, out)
}

func (a *App) MilestonesRelease(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	milestoneID := chi.URLParam(r, "milestoneID")

	var out *domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		c, err := a.Svc.ReleaseMilestoneFunds(tx, campaignID, milestoneID)
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
	a.json(w, http.StatusOK, out)
}
