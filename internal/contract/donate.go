package contract

import (
	"fmt"

	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// DonateInput carries one donation. DonorID is the donor's self-reported
// name and may be empty; the attested identity is taken from the ledger.
type DonateInput struct {
	CampaignID string
	Amount     int64
	DonorID    string
	Message    string
}

// Donate applies a donation to an Active campaign. CurrentAmount only ever
// grows; if this donation pushes it to or past the goal, the campaign
// transitions to GOAL_REACHED and the GoalReached event fires on exactly
// that crossing edge.
func (s *Service) Donate(tx ledger.Tx, in DonateInput) (*domain.Campaign, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("donation amount must be positive, got %d: %w", in.Amount, domain.ErrInvalidInput)
	}
	c, err := s.loadCampaign(tx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.StatusActive {
		return nil, fmt.Errorf("campaign %s is %s, donations need %s: %w",
			c.ID, c.Status, domain.StatusActive, domain.ErrInvalidState)
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}
	if now.After(c.Deadline) {
		return nil, fmt.Errorf("campaign %s deadline %s has passed: %w",
			c.ID, c.Deadline.Format("2006-01-02"), domain.ErrDeadlineExceeded)
	}
	caller, err := tx.CallerIdentity()
	if err != nil {
		return nil, err
	}

	c.CurrentAmount += in.Amount
	c.LastDonationAt = &now
	goalReached := c.CurrentAmount >= c.GoalAmount
	if goalReached {
		c.Status = domain.StatusGoalReached
	}
	if err := s.putCampaign(tx, c); err != nil {
		return nil, err
	}

	donorID := in.DonorID
	if donorID == "" {
		donorID = domain.AnonymousDonor
	}
	d := &domain.Donation{
		CampaignID:    c.ID,
		DonorID:       donorID,
		Amount:        in.Amount,
		Message:       in.Message,
		Timestamp:     now,
		TxID:          tx.TxID(),
		DonorIdentity: caller,
	}
	db, err := domain.MarshalDonation(d)
	if err != nil {
		return nil, fmt.Errorf("encode donation: %w", err)
	}
	if err := tx.PutState(domain.DonationKey(c.ID, d.TxID), db); err != nil {
		return nil, err
	}

	if err := s.emit(tx, domain.EventDonationReceived, domain.DonationReceivedEvent{
		CampaignID:    c.ID,
		DonorID:       donorID,
		Amount:        in.Amount,
		CurrentAmount: c.CurrentAmount,
		Timestamp:     now,
	}); err != nil {
		return nil, err
	}
	if goalReached {
		if err := s.emit(tx, domain.EventGoalReached, domain.GoalReachedEvent{
			CampaignID:    c.ID,
			GoalAmount:    c.GoalAmount,
			CurrentAmount: c.CurrentAmount,
		}); err != nil {
			return nil, err
		}
	}

	s.log.Info().
		Str("campaign", c.ID).
		Str("donor", donorID).
		Int64("amount", in.Amount).
		Int64("raised", c.CurrentAmount).
		Bool("goalReached", goalReached).
		Msg("donation accepted")
	return c, nil
}
