package contract

import (
	"fmt"
	"math"
	"time"

	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// Summary is the read-only aggregate view of one campaign. It is a pure
// function of persisted state; computing it mutates nothing.
type Summary struct {
	CampaignID         string                `json:"campaignId"`
	Title              string                `json:"title"`
	Status             domain.CampaignStatus `json:"status"`
	GoalAmount         int64                 `json:"goalAmount"`
	CurrentAmount      int64                 `json:"currentAmount"`
	ProgressPercent    float64               `json:"progressPercent"`
	DonationCount      int                   `json:"donationCount"`
	AverageDonation    float64               `json:"averageDonation"`
	TotalMilestones    int                   `json:"totalMilestones"`
	VerifiedMilestones int                   `json:"verifiedMilestones"`
	ReleasedMilestones int                   `json:"releasedMilestones"`
	DaysRemaining      int                   `json:"daysRemaining"`
}

// DonationHistory returns every donation recorded against a campaign via a
// rich query on the donation discriminator. Order is store-defined.
func (s *Service) DonationHistory(tx ledger.Tx, campaignID string) ([]*domain.Donation, error) {
	if _, err := s.loadCampaign(tx, campaignID); err != nil {
		return nil, err
	}
	return s.donationsFor(tx, campaignID)
}

func (s *Service) donationsFor(tx ledger.Tx, campaignID string) ([]*domain.Donation, error) {
	iter, err := tx.Query(ledger.Filter{
		DocType: domain.DocTypeDonation,
		Equals:  map[string]string{"campaignId": campaignID},
	})
	if err != nil {
		return nil, fmt.Errorf("query donations for %s: %w", campaignID, err)
	}
	defer iter.Close()

	var out []*domain.Donation
	for {
		kv, ok, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("query donations for %s: %w", campaignID, err)
		}
		if !ok {
			break
		}
		d, err := domain.UnmarshalDonation(kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// CampaignAnalytics derives the summary aggregates for one campaign.
func (s *Service) CampaignAnalytics(tx ledger.Tx, campaignID string) (*Summary, error) {
	c, err := s.loadCampaign(tx, campaignID)
	if err != nil {
		return nil, err
	}
	donations, err := s.donationsFor(tx, campaignID)
	if err != nil {
		return nil, err
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		CampaignID:      c.ID,
		Title:           c.Title,
		Status:          c.Status,
		GoalAmount:      c.GoalAmount,
		CurrentAmount:   c.CurrentAmount,
		TotalMilestones: c.TotalMilestones,
		DonationCount:   len(donations),
		DaysRemaining:   daysRemaining(c.Deadline, now),
	}
	if c.GoalAmount > 0 {
		sum.ProgressPercent = round2(float64(c.CurrentAmount) / float64(c.GoalAmount) * 100)
	}
	if len(donations) > 0 {
		sum.AverageDonation = float64(c.CurrentAmount) / float64(len(donations))
	}
	for _, m := range c.Milestones {
		if m.IsVerified {
			sum.VerifiedMilestones++
		}
		if m.FundsReleased {
			sum.ReleasedMilestones++
		}
	}
	return sum, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func daysRemaining(deadline, now time.Time) int {
	if !deadline.After(now) {
		return 0
	}
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}
