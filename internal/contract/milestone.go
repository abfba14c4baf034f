package contract

import (
	"fmt"

	"charitychain/internal/authz"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// VerifyMilestone marks a milestone verified. Verification is one-way and
// rejects repeats rather than absorbing them, so a second attempt is a
// caller error, not a no-op.
func (s *Service) VerifyMilestone(tx ledger.Tx, campaignID, milestoneID, notes string) (*domain.Campaign, error) {
	caller, err := tx.CallerIdentity()
	if err != nil {
		return nil, err
	}
	if !s.policy.Authorize(caller, authz.ActionVerifyMilestone) {
		return nil, fmt.Errorf("caller %s is not an oracle: %w", caller, domain.ErrUnauthorized)
	}

	c, err := s.loadCampaign(tx, campaignID)
	if err != nil {
		return nil, err
	}
	m := c.Milestone(milestoneID)
	if m == nil {
		return nil, fmt.Errorf("milestone %s in campaign %s: %w", milestoneID, campaignID, domain.ErrNotFound)
	}
	if m.IsVerified {
		return nil, fmt.Errorf("milestone %s was verified by %s: %w", milestoneID, m.VerifiedBy, domain.ErrAlreadyVerified)
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}

	m.IsVerified = true
	m.VerifiedBy = caller
	m.VerifiedAt = &now
	m.VerificationNotes = notes
	if err := s.putCampaign(tx, c); err != nil {
		return nil, err
	}
	if err := s.emit(tx, domain.EventMilestoneVerified, domain.MilestoneVerifiedEvent{
		CampaignID:   c.ID,
		MilestoneID:  m.ID,
		VerifiedBy:   caller,
		VerifiedAt:   now,
		BudgetAmount: m.BudgetAmount,
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("campaign", c.ID).
		Str("milestone", m.ID).
		Str("oracle", caller).
		Msg("milestone verified")
	return c, nil
}
