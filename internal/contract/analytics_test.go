package contract_test

import (
	"errors"
	"testing"
	"time"

	"charitychain/internal/contract"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

func (f *fixture) analytics(campaignID string) (*contract.Summary, error) {
	var out *contract.Summary
	err := f.invoke("reader", func(tx ledger.Tx) error {
		sum, err := f.svc.CampaignAnalytics(tx, campaignID)
		if err != nil {
			return err
		}
		out = sum
		return nil
	})
	return out, err
}

func TestCampaignAnalytics(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	if err := f.donate("a", contract.DonateInput{CampaignID: "camp-1", Amount: 10000}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if err := f.donate("b", contract.DonateInput{CampaignID: "camp-1", Amount: 2345}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if err := f.verify(oracleID, "camp-1", "m1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// 10 days and a bit before the deadline; daysRemaining rounds up.
	f.now = time.Date(2025, 5, 21, 18, 0, 0, 0, time.UTC)

	sum, err := f.analytics("camp-1")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if sum.DonationCount != 2 {
		t.Errorf("donationCount = %d, want 2", sum.DonationCount)
	}
	if sum.CurrentAmount != 12345 {
		t.Errorf("currentAmount = %d, want 12345", sum.CurrentAmount)
	}
	// 12345/50000*100 = 24.69
	if sum.ProgressPercent != 24.69 {
		t.Errorf("progressPercent = %v, want 24.69", sum.ProgressPercent)
	}
	if sum.AverageDonation != 6172.5 {
		t.Errorf("averageDonation = %v, want 6172.5", sum.AverageDonation)
	}
	if sum.VerifiedMilestones != 1 || sum.ReleasedMilestones != 0 || sum.TotalMilestones != 2 {
		t.Errorf("milestone counts = %d/%d/%d", sum.VerifiedMilestones, sum.ReleasedMilestones, sum.TotalMilestones)
	}
	if sum.DaysRemaining != 11 {
		t.Errorf("daysRemaining = %d, want 11", sum.DaysRemaining)
	}
}

func TestCampaignAnalyticsNoDonations(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	sum, err := f.analytics("camp-1")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if sum.DonationCount != 0 || sum.AverageDonation != 0 || sum.ProgressPercent != 0 {
		t.Errorf("empty campaign summary = %+v", sum)
	}
}

func TestCampaignAnalyticsPastDeadline(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	f.now = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	sum, err := f.analytics("camp-1")
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if sum.DaysRemaining != 0 {
		t.Errorf("daysRemaining = %d, want 0", sum.DaysRemaining)
	}
}

func TestCampaignAnalyticsNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.analytics("ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
