package contract

import (
	"fmt"

	"charitychain/internal/authz"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// ReleaseMilestoneFunds pays out a verified milestone's budget and writes
// the immutable FundRelease record. The sufficiency check compares against
// the campaign's cumulative raised amount; released budgets are never
// subtracted from CurrentAmount, so the same funds can notionally cover
// several milestones. That is inherited behavior, kept on purpose.
func (s *Service) ReleaseMilestoneFunds(tx ledger.Tx, campaignID, milestoneID string) (*domain.Campaign, error) {
	caller, err := tx.CallerIdentity()
	if err != nil {
		return nil, err
	}
	if !s.policy.Authorize(caller, authz.ActionReleaseFunds) {
		return nil, fmt.Errorf("caller %s may not release funds: %w", caller, domain.ErrUnauthorized)
	}

	c, err := s.loadCampaign(tx, campaignID)
	if err != nil {
		return nil, err
	}
	m := c.Milestone(milestoneID)
	if m == nil {
		return nil, fmt.Errorf("milestone %s in campaign %s: %w", milestoneID, campaignID, domain.ErrNotFound)
	}
	if !m.IsVerified {
		return nil, fmt.Errorf("milestone %s: %w", milestoneID, domain.ErrNotVerified)
	}
	if m.FundsReleased {
		return nil, fmt.Errorf("milestone %s was released by %s: %w", milestoneID, m.ReleasedBy, domain.ErrAlreadyReleased)
	}
	if c.CurrentAmount < m.BudgetAmount {
		return nil, fmt.Errorf("campaign %s raised %d, milestone %s needs %d: %w",
			c.ID, c.CurrentAmount, milestoneID, m.BudgetAmount, domain.ErrInsufficientFunds)
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}

	m.FundsReleased = true
	m.ReleasedBy = caller
	m.ReleasedAt = &now
	c.CompletedMilestones++
	completed := c.CompletedMilestones == c.TotalMilestones
	if completed {
		c.Status = domain.StatusCompleted
	}
	if err := s.putCampaign(tx, c); err != nil {
		return nil, err
	}

	r := &domain.FundRelease{
		CampaignID:      c.ID,
		MilestoneID:     m.ID,
		Amount:          m.BudgetAmount,
		RecipientWallet: c.NGOWallet,
		ReleasedAt:      now,
		ReleasedBy:      caller,
		TxID:            tx.TxID(),
	}
	rb, err := domain.MarshalFundRelease(r)
	if err != nil {
		return nil, fmt.Errorf("encode fund release: %w", err)
	}
	if err := tx.PutState(domain.ReleaseKey(c.ID, m.ID, r.TxID), rb); err != nil {
		return nil, err
	}

	if err := s.emit(tx, domain.EventFundsReleased, domain.FundsReleasedEvent{
		CampaignID:      c.ID,
		MilestoneID:     m.ID,
		Amount:          r.Amount,
		RecipientWallet: r.RecipientWallet,
		ReleasedAt:      now,
	}); err != nil {
		return nil, err
	}
	if completed {
		if err := s.emit(tx, domain.EventCampaignCompleted, domain.CampaignCompletedEvent{
			CampaignID:          c.ID,
			CompletedMilestones: c.CompletedMilestones,
		}); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("campaign", c.ID).
		Str("milestone", m.ID).
		Int64("amount", r.Amount).
		Str("recipient", r.RecipientWallet).
		Bool("campaignCompleted", completed).
		Msg("milestone funds released")
	return c, nil
}
