package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"charitychain/internal/contract"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

type milestoneRequest struct {
	MilestoneID  string `json:"milestoneId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	BudgetAmount int64  `json:"budgetAmount"`
	TargetDate   string `json:"targetDate"`
}

type createCampaignRequest struct {
	CampaignID  string             `json:"campaignId"`
	NGOWallet   string             `json:"ngoWallet"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Tags        []string           `json:"tags"`
	GoalAmount  int64              `json:"goalAmount"`
	Deadline    string             `json:"deadline"`
	Milestones  []milestoneRequest `json:"milestones"`
}

func (a *App) CampaignsCreate(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	deadline, err := parseISODate(req.Deadline)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "deadline must be an ISO-8601 timestamp")
		return
	}
	in := contract.CreateCampaignInput{
		ID:          req.CampaignID,
		NGOWallet:   req.NGOWallet,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		GoalAmount:  req.GoalAmount,
		Deadline:    deadline,
	}
	for _, m := range req.Milestones {
		var target time.Time
		if m.TargetDate != "" {
			target, err = parseISODate(m.TargetDate)
			if err != nil {
				a.error(w, http.StatusBadRequest, "bad_request",
					fmt.Sprintf("milestone %s: targetDate must be an ISO-8601 timestamp", m.MilestoneID))
				return
			}
		}
		in.Milestones = append(in.Milestones, contract.MilestoneSpec{
			ID:           m.MilestoneID,
			Title:        m.Title,
			Description:  m.Description,
			BudgetAmount: m.BudgetAmount,
			TargetDate:   target,
		})
	}

	var out *domain.Campaign
	err = a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		c, err := a.Svc.CreateCampaign(tx, in)
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

func (a *App) CampaignsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var out *domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		c, err := a.Svc.ReadCampaign(tx, id)
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

func (a *App) CampaignsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageSize := 0
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "bad_request", "page_size must be a non-negative integer")
			return
		}
		pageSize = n
	}

	var out []*domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		cs, err := a.Svc.ListCampaigns(tx, q.Get("start"), q.Get("end"), pageSize)
		if err != nil {
			return err
		}
		out = cs
		return nil
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Campaign{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

func (a *App) CampaignsByNGO(w http.ResponseWriter, r *http.Request) {
	wallet := chi.URLParam(r, "wallet")
	var out []*domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		cs, err := a.Svc.CampaignsByNGO(tx, wallet)
		if err != nil {
			return err
		}
		out = cs
		return nil
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Campaign{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": out})
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (a *App) CampaignsUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var out *domain.Campaign
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		c, err := a.Svc.UpdateCampaignStatus(tx, id, domain.CampaignStatus(req.Status), req.Reason)
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

func (a *App) CampaignsAnalytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var out *contract.Summary
	err := a.Ledger.Invoke(r.Context(), a.caller(r), func(tx ledger.Tx) error {
		sum, err := a.Svc.CampaignAnalytics(tx, id)
		if err != nil {
			return err
		}
		out = sum
		return nil
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, out)
}

func parseISODate(v string) (time.Time, error) {
	return time.Parse(time.RFC3339, v)
}
