package contract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"charitychain/internal/authz"
	"charitychain/internal/contract"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
	"charitychain/internal/ledger/memledger"
)

const (
	oracleID  = "x509::CN=verifier-1"
	ngoWallet = "wallet-ngo-1"
)

type fixture struct {
	t   *testing.T
	ldg *memledger.Ledger
	svc *contract.Service
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:   t,
		ldg: memledger.New(),
		svc: contract.New(authz.Default(oracleID), zerolog.Nop()),
		now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.ldg.NowFunc = func() time.Time { return f.now }
	return f
}

// invoke runs one contract invocation as the given caller and returns its error.
func (f *fixture) invoke(caller string, fn func(tx ledger.Tx) error) error {
	f.t.Helper()
	return f.ldg.Invoke(context.Background(), caller, fn)
}

func (f *fixture) mustInvoke(caller string, fn func(tx ledger.Tx) error) {
	f.t.Helper()
	if err := f.invoke(caller, fn); err != nil {
		f.t.Fatalf("invocation failed: %v", err)
	}
}

func baseInput() contract.CreateCampaignInput {
	return contract.CreateCampaignInput{
		ID:         "camp-1",
		NGOWallet:  ngoWallet,
		Title:      "Clean water for Makindu",
		Category:   "water",
		GoalAmount: 50000,
		Deadline:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Milestones: []contract.MilestoneSpec{
			{ID: "m1", Title: "Drill borehole", BudgetAmount: 25000},
			{ID: "m2", Title: "Install pump", BudgetAmount: 15000},
		},
	}
}

func (f *fixture) createCampaign(in contract.CreateCampaignInput) *domain.Campaign {
	f.t.Helper()
	var out *domain.Campaign
	f.mustInvoke("ngo-admin", func(tx ledger.Tx) error {
		c, err := f.svc.CreateCampaign(tx, in)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	return out
}

func (f *fixture) readCampaign(id string) *domain.Campaign {
	f.t.Helper()
	var out *domain.Campaign
	f.mustInvoke("reader", func(tx ledger.Tx) error {
		c, err := f.svc.ReadCampaign(tx, id)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	return out
}

func (f *fixture) donate(caller string, in contract.DonateInput) error {
	return f.invoke(caller, func(tx ledger.Tx) error {
		_, err := f.svc.Donate(tx, in)
		return err
	})
}

func (f *fixture) verify(caller, campaignID, milestoneID string) error {
	return f.invoke(caller, func(tx ledger.Tx) error {
		_, err := f.svc.VerifyMilestone(tx, campaignID, milestoneID, "checked on site")
		return err
	})
}

func (f *fixture) release(caller, campaignID, milestoneID string) error {
	return f.invoke(caller, func(tx ledger.Tx) error {
		_, err := f.svc.ReleaseMilestoneFunds(tx, campaignID, milestoneID)
		return err
	})
}

func (f *fixture) eventNames() []string {
	var names []string
	for _, e := range f.ldg.Events() {
		names = append(names, e.Name)
	}
	return names
}

func TestCreateCampaign(t *testing.T) {
	f := newFixture(t)
	c := f.createCampaign(baseInput())

	if c.Status != domain.StatusActive {
		t.Errorf("status = %s, want %s", c.Status, domain.StatusActive)
	}
	if c.CurrentAmount != 0 || c.CompletedMilestones != 0 {
		t.Errorf("new campaign carries amounts: current=%d completed=%d", c.CurrentAmount, c.CompletedMilestones)
	}
	if c.TotalMilestones != 2 {
		t.Errorf("totalMilestones = %d, want 2", c.TotalMilestones)
	}
	if c.CreatedBy != "ngo-admin" {
		t.Errorf("createdBy = %q", c.CreatedBy)
	}
	if got := f.eventNames(); len(got) != 1 || got[0] != domain.EventCampaignCreated {
		t.Errorf("events = %v, want [CampaignCreated]", got)
	}

	got := f.readCampaign("camp-1")
	if got.Milestone("m1") == nil || got.Milestone("m2") == nil {
		t.Fatalf("persisted campaign lost milestones: %+v", got.Milestones)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*contract.CreateCampaignInput)
		wantErr error
	}{
		{"missing id", func(in *contract.CreateCampaignInput) { in.ID = "" }, domain.ErrInvalidInput},
		{"missing wallet", func(in *contract.CreateCampaignInput) { in.NGOWallet = "" }, domain.ErrInvalidInput},
		{"missing title", func(in *contract.CreateCampaignInput) { in.Title = "" }, domain.ErrInvalidInput},
		{"zero goal", func(in *contract.CreateCampaignInput) { in.GoalAmount = 0 }, domain.ErrInvalidInput},
		{"missing deadline", func(in *contract.CreateCampaignInput) { in.Deadline = time.Time{} }, domain.ErrInvalidInput},
		{"milestone without id", func(in *contract.CreateCampaignInput) { in.Milestones[0].ID = "" }, domain.ErrInvalidMilestone},
		{"milestone without title", func(in *contract.CreateCampaignInput) { in.Milestones[0].Title = "" }, domain.ErrInvalidMilestone},
		{"milestone zero budget", func(in *contract.CreateCampaignInput) { in.Milestones[0].BudgetAmount = 0 }, domain.ErrInvalidMilestone},
		{"duplicate milestone id", func(in *contract.CreateCampaignInput) { in.Milestones[1].ID = "m1" }, domain.ErrInvalidMilestone},
		{"budgets exceed goal", func(in *contract.CreateCampaignInput) {
			in.Milestones[0].BudgetAmount = 40000
			in.Milestones[1].BudgetAmount = 20000
		}, domain.ErrInvalidMilestone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := baseInput()
			tc.mutate(&in)
			err := f.invoke("ngo-admin", func(tx ledger.Tx) error {
				_, err := f.svc.CreateCampaign(tx, in)
				return err
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if len(f.ldg.Snapshot()) != 0 {
				t.Errorf("rejected create left state behind")
			}
		})
	}
}

func TestCreateCampaignBudgetSumAtGoalIsAllowed(t *testing.T) {
	f := newFixture(t)
	in := baseInput()
	in.Milestones[0].BudgetAmount = 30000
	in.Milestones[1].BudgetAmount = 20000
	f.createCampaign(in)
}

func TestCreateCampaignDuplicateID(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())
	err := f.invoke("ngo-admin", func(tx ledger.Tx) error {
		_, err := f.svc.CreateCampaign(tx, baseInput())
		return err
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestDonateAccumulatesAndReachesGoal(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	if err := f.donate("donor-a", contract.DonateInput{CampaignID: "camp-1", Amount: 30000, DonorID: "alice"}); err != nil {
		t.Fatalf("first donation: %v", err)
	}
	c := f.readCampaign("camp-1")
	if c.CurrentAmount != 30000 || c.Status != domain.StatusActive {
		t.Fatalf("after first donation: amount=%d status=%s", c.CurrentAmount, c.Status)
	}
	if c.LastDonationAt == nil || !c.LastDonationAt.Equal(f.now) {
		t.Errorf("lastDonationAt = %v, want %v", c.LastDonationAt, f.now)
	}

	if err := f.donate("donor-b", contract.DonateInput{CampaignID: "camp-1", Amount: 25000}); err != nil {
		t.Fatalf("second donation: %v", err)
	}
	c = f.readCampaign("camp-1")
	if c.CurrentAmount != 55000 {
		t.Errorf("currentAmount = %d, want 55000", c.CurrentAmount)
	}
	if c.Status != domain.StatusGoalReached {
		t.Errorf("status = %s, want %s", c.Status, domain.StatusGoalReached)
	}

	want := []string{
		domain.EventCampaignCreated,
		domain.EventDonationReceived,
		domain.EventDonationReceived,
		domain.EventGoalReached,
	}
	got := f.eventNames()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestDonateRecordsAuditTrail(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())
	if err := f.donate("donor-identity-1", contract.DonateInput{CampaignID: "camp-1", Amount: 500, Message: "good luck"}); err != nil {
		t.Fatalf("donate: %v", err)
	}

	var history []*domain.Donation
	f.mustInvoke("reader", func(tx ledger.Tx) error {
		ds, err := f.svc.DonationHistory(tx, "camp-1")
		if err != nil {
			return err
		}
		history = ds
		return nil
	})
	if len(history) != 1 {
		t.Fatalf("history len = %d, want 1", len(history))
	}
	d := history[0]
	if d.DonorID != domain.AnonymousDonor {
		t.Errorf("donorId = %q, want anonymous default", d.DonorID)
	}
	if d.DonorIdentity != "donor-identity-1" {
		t.Errorf("donorIdentity = %q", d.DonorIdentity)
	}
	if d.Amount != 500 || d.Message != "good luck" || d.TxID == "" {
		t.Errorf("donation record = %+v", d)
	}
}

func TestDonateRejections(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	if err := f.donate("d", contract.DonateInput{CampaignID: "camp-1", Amount: 0}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero amount: err = %v, want ErrInvalidInput", err)
	}
	if err := f.donate("d", contract.DonateInput{CampaignID: "nope", Amount: 10}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing campaign: err = %v, want ErrNotFound", err)
	}

	f.mustInvoke("admin", func(tx ledger.Tx) error {
		_, err := f.svc.UpdateCampaignStatus(tx, "camp-1", domain.StatusPaused, "audit")
		return err
	})
	if err := f.donate("d", contract.DonateInput{CampaignID: "camp-1", Amount: 10}); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("paused campaign: err = %v, want ErrInvalidState", err)
	}
}

func TestDonatePastDeadline(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())
	before := f.ldg.Snapshot()

	f.now = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	err := f.donate("d", contract.DonateInput{CampaignID: "camp-1", Amount: 100})
	if !errors.Is(err, domain.ErrDeadlineExceeded) {
		t.Fatalf("err = %v, want ErrDeadlineExceeded", err)
	}

	after := f.ldg.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("failed donation mutated state")
	}
	for k, v := range before {
		if string(after[k]) != string(v) {
			t.Fatalf("failed donation mutated key %s", k)
		}
	}
}

func TestVerifyMilestone(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	if err := f.verify("random-caller", "camp-1", "m1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("non-oracle verify: err = %v, want ErrUnauthorized", err)
	}
	if err := f.verify(oracleID, "camp-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing milestone: err = %v, want ErrNotFound", err)
	}
	if err := f.verify(oracleID, "camp-1", "m1"); err != nil {
		t.Fatalf("oracle verify: %v", err)
	}

	m := f.readCampaign("camp-1").Milestone("m1")
	if !m.IsVerified || m.VerifiedBy != oracleID || m.VerifiedAt == nil {
		t.Fatalf("milestone after verify = %+v", m)
	}
	if m.VerificationNotes != "checked on site" {
		t.Errorf("notes = %q", m.VerificationNotes)
	}

	if err := f.verify(oracleID, "camp-1", "m1"); !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("second verify: err = %v, want ErrAlreadyVerified", err)
	}
}

func TestVerifyMilestoneSubstringFallback(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())
	if err := f.verify("x509::CN=some-Oracle-node", "camp-1", "m1"); err != nil {
		t.Fatalf("substring-fallback verify: %v", err)
	}
}

func TestReleaseMilestoneFunds(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	if err := f.release("anyone", "camp-1", "m1"); !errors.Is(err, domain.ErrNotVerified) {
		t.Fatalf("release before verify: err = %v, want ErrNotVerified", err)
	}

	if err := f.verify(oracleID, "camp-1", "m1"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	// Scenario D: verified but underfunded.
	before := f.ldg.Snapshot()
	if err := f.release("anyone", "camp-1", "m1"); !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("underfunded release: err = %v, want ErrInsufficientFunds", err)
	}
	after := f.ldg.Snapshot()
	for k, v := range before {
		if string(after[k]) != string(v) {
			t.Fatalf("failed release mutated key %s", k)
		}
	}

	if err := f.donate("donor", contract.DonateInput{CampaignID: "camp-1", Amount: 30000}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if err := f.release("treasurer", "camp-1", "m1"); err != nil {
		t.Fatalf("release: %v", err)
	}

	c := f.readCampaign("camp-1")
	m := c.Milestone("m1")
	if !m.FundsReleased || m.ReleasedBy != "treasurer" || m.ReleasedAt == nil {
		t.Fatalf("milestone after release = %+v", m)
	}
	if c.CompletedMilestones != 1 {
		t.Errorf("completedMilestones = %d, want 1", c.CompletedMilestones)
	}
	if c.Status == domain.StatusCompleted {
		t.Errorf("campaign completed with milestones outstanding")
	}
	if c.CurrentAmount != 30000 {
		t.Errorf("release changed currentAmount: %d", c.CurrentAmount)
	}

	if err := f.release("treasurer", "camp-1", "m1"); !errors.Is(err, domain.ErrAlreadyReleased) {
		t.Fatalf("second release: err = %v, want ErrAlreadyReleased", err)
	}
}

func TestReleaseChecksCumulativeRaisedAmount(t *testing.T) {
	// Released budgets are not subtracted from the pool: 30000 raised covers
	// m2 (15000) and then m1 (25000) even though their sum exceeds it.
	f := newFixture(t)
	f.createCampaign(baseInput())
	if err := f.donate("donor", contract.DonateInput{CampaignID: "camp-1", Amount: 30000}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	for _, m := range []string{"m2", "m1"} {
		if err := f.verify(oracleID, "camp-1", m); err != nil {
			t.Fatalf("verify %s: %v", m, err)
		}
		if err := f.release("treasurer", "camp-1", m); err != nil {
			t.Fatalf("release %s: %v", m, err)
		}
	}
}

func TestFinalReleaseCompletesCampaign(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())
	if err := f.donate("donor", contract.DonateInput{CampaignID: "camp-1", Amount: 50000}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	for _, m := range []string{"m1", "m2"} {
		if err := f.verify(oracleID, "camp-1", m); err != nil {
			t.Fatalf("verify %s: %v", m, err)
		}
		if err := f.release("treasurer", "camp-1", m); err != nil {
			t.Fatalf("release %s: %v", m, err)
		}
	}

	c := f.readCampaign("camp-1")
	if c.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want %s", c.Status, domain.StatusCompleted)
	}
	if c.CompletedMilestones != c.TotalMilestones {
		t.Errorf("completed = %d, total = %d", c.CompletedMilestones, c.TotalMilestones)
	}

	names := f.eventNames()
	completions := 0
	for _, n := range names {
		if n == domain.EventCampaignCompleted {
			completions++
		}
	}
	if completions != 1 {
		t.Errorf("CampaignCompleted emitted %d times in %v", completions, names)
	}
}

func TestReleaseWritesFundReleaseRecord(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())
	if err := f.donate("donor", contract.DonateInput{CampaignID: "camp-1", Amount: 50000}); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if err := f.verify(oracleID, "camp-1", "m1"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := f.release("treasurer", "camp-1", "m1"); err != nil {
		t.Fatalf("release: %v", err)
	}

	var release *domain.FundRelease
	for key, raw := range f.ldg.Snapshot() {
		if len(key) >= 8 && key[:8] == "RELEASE_" {
			r, err := domain.UnmarshalFundRelease(raw)
			if err != nil {
				t.Fatalf("decode release record: %v", err)
			}
			release = r
		}
	}
	if release == nil {
		t.Fatal("no FundRelease record persisted")
	}
	if release.Amount != 25000 || release.RecipientWallet != ngoWallet || release.ReleasedBy != "treasurer" {
		t.Errorf("release record = %+v", release)
	}
}

func TestUpdateCampaignStatus(t *testing.T) {
	f := newFixture(t)
	f.createCampaign(baseInput())

	err := f.invoke("admin", func(tx ledger.Tx) error {
		_, err := f.svc.UpdateCampaignStatus(tx, "camp-1", "SUSPENDED", "bad status")
		return err
	})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}

	f.mustInvoke("admin", func(tx ledger.Tx) error {
		_, err := f.svc.UpdateCampaignStatus(tx, "camp-1", domain.StatusCancelled, "fraud report")
		return err
	})
	c := f.readCampaign("camp-1")
	if c.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want %s", c.Status, domain.StatusCancelled)
	}
	if c.LastStatusChange == nil || c.LastStatusChange.Reason != "fraud report" || c.LastStatusChange.ChangedBy != "admin" {
		t.Errorf("lastStatusChange = %+v", c.LastStatusChange)
	}
}

func TestListCampaignsPagination(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		in := baseInput()
		in.ID = id
		in.Milestones = nil
		f.createCampaign(in)
	}

	var page []*domain.Campaign
	f.mustInvoke("reader", func(tx ledger.Tx) error {
		cs, err := f.svc.ListCampaigns(tx, "", "", 3)
		if err != nil {
			return err
		}
		page = cs
		return nil
	})
	if len(page) != 3 {
		t.Fatalf("page len = %d, want 3", len(page))
	}
	if page[0].ID != "a" || page[1].ID != "b" || page[2].ID != "c" {
		t.Errorf("page order = %s,%s,%s", page[0].ID, page[1].ID, page[2].ID)
	}

	// Restart from the last id seen.
	f.mustInvoke("reader", func(tx ledger.Tx) error {
		cs, err := f.svc.ListCampaigns(tx, "d", "", 3)
		if err != nil {
			return err
		}
		page = cs
		return nil
	})
	if len(page) != 1 || page[0].ID != "d" {
		t.Fatalf("second page = %+v", page)
	}
}

func TestCampaignsByNGO(t *testing.T) {
	f := newFixture(t)
	first := baseInput()
	f.createCampaign(first)
	second := baseInput()
	second.ID = "camp-2"
	second.NGOWallet = "wallet-ngo-2"
	f.createCampaign(second)

	var mine []*domain.Campaign
	f.mustInvoke("reader", func(tx ledger.Tx) error {
		cs, err := f.svc.CampaignsByNGO(tx, ngoWallet)
		if err != nil {
			return err
		}
		mine = cs
		return nil
	})
	if len(mine) != 1 || mine[0].ID != "camp-1" {
		t.Fatalf("byNGO = %+v", mine)
	}
}
