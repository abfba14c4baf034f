package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCampaignRoundTrip(t *testing.T) {
	created := time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)
	verified := created.Add(48 * time.Hour)
	c := &Campaign{
		ID:            "camp-9",
		NGOWallet:     "wallet-9",
		Title:         "School rebuild",
		Description:   "Rebuild two classrooms",
		Category:      "education",
		Tags:          []string{"school", "kenya"},
		GoalAmount:    120000,
		CurrentAmount: 45000,
		Deadline:      created.AddDate(0, 6, 0),
		Status:        StatusActive,
		CreatedBy:     "x509::CN=ngo-9",
		CreatedAt:     created,
		Milestones: map[string]*Milestone{
			"m1": {
				ID:                "m1",
				Title:             "Foundation",
				BudgetAmount:      40000,
				TargetDate:        created.AddDate(0, 2, 0),
				IsVerified:        true,
				VerifiedBy:        "oracle-1",
				VerifiedAt:        &verified,
				VerificationNotes: "inspected",
			},
		},
		TotalMilestones: 1,
	}

	b, err := MarshalCampaign(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalCampaign(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDonationRoundTrip(t *testing.T) {
	d := &Donation{
		CampaignID:    "camp-9",
		DonorID:       AnonymousDonor,
		Amount:        2500,
		Message:       "keep going",
		Timestamp:     time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		TxID:          "tx-123",
		DonorIdentity: "x509::CN=donor",
	}
	b, err := MarshalDonation(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalDonation(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFundReleaseRoundTrip(t *testing.T) {
	r := &FundRelease{
		CampaignID:      "camp-9",
		MilestoneID:     "m1",
		Amount:          40000,
		RecipientWallet: "wallet-9",
		ReleasedAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ReleasedBy:      "treasurer",
		TxID:            "tx-456",
	}
	b, err := MarshalFundRelease(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := UnmarshalFundRelease(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalCampaign([]byte("{not json")); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("garbage campaign: err = %v, want ErrMalformedRecord", err)
	}
	if _, err := UnmarshalDonation([]byte("[]")); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("wrong-shape donation: err = %v, want ErrMalformedRecord", err)
	}
}

func TestUnmarshalRejectsWrongDocType(t *testing.T) {
	d := &Donation{CampaignID: "c", Amount: 1, TxID: "t"}
	b, err := MarshalDonation(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := UnmarshalCampaign(b); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("donation bytes as campaign: err = %v, want ErrMalformedRecord", err)
	}
}

func TestKeyNamespace(t *testing.T) {
	if got := CampaignKey("c1"); got != "CAMPAIGN_c1" {
		t.Errorf("CampaignKey = %q", got)
	}
	if got := DonationKey("c1", "tx1"); got != "DONATION_c1_tx1" {
		t.Errorf("DonationKey = %q", got)
	}
	if got := ReleaseKey("c1", "m1", "tx1"); got != "RELEASE_c1_m1_tx1" {
		t.Errorf("ReleaseKey = %q", got)
	}
	start, end := CampaignKeyRange()
	if !(start < CampaignKey("anything") && CampaignKey("anything") < end) {
		t.Errorf("campaign keys fall outside [%q, %q)", start, end)
	}
	if end >= DonationKey("a", "t") {
		t.Errorf("campaign range overlaps donation namespace")
	}
}
