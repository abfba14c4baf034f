package contract

import (
	"fmt"
	"time"

	"charitychain/internal/authz"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// MilestoneSpec describes one milestone at campaign creation. Milestones
// are fixed from then on; only verification and release mutate them.
type MilestoneSpec struct {
	ID           string    `json:"milestoneId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	BudgetAmount int64     `json:"budgetAmount"`
	TargetDate   time.Time `json:"targetDate"`
}

// CreateCampaignInput carries the caller-supplied campaign fields.
type CreateCampaignInput struct {
	ID          string
	NGOWallet   string
	Title       string
	Description string
	Category    string
	Tags        []string
	GoalAmount  int64
	Deadline    time.Time
	Milestones  []MilestoneSpec
}

// CreateCampaign persists a new Active campaign with its milestone set.
// The sum of milestone budgets must not exceed the goal amount; this is the
// only time the budget-conservation invariant is checked, since milestones
// never change afterward.
func (s *Service) CreateCampaign(tx ledger.Tx, in CreateCampaignInput) (*domain.Campaign, error) {
	switch {
	case in.ID == "":
		return nil, fmt.Errorf("campaignId is required: %w", domain.ErrInvalidInput)
	case in.NGOWallet == "":
		return nil, fmt.Errorf("ngoWallet is required: %w", domain.ErrInvalidInput)
	case in.Title == "":
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	case in.GoalAmount <= 0:
		return nil, fmt.Errorf("goalAmount must be positive, got %d: %w", in.GoalAmount, domain.ErrInvalidInput)
	case in.Deadline.IsZero():
		return nil, fmt.Errorf("deadline is required: %w", domain.ErrInvalidInput)
	}

	milestones := make(map[string]*domain.Milestone, len(in.Milestones))
	var budgetSum int64
	for _, m := range in.Milestones {
		if m.ID == "" || m.Title == "" {
			return nil, fmt.Errorf("milestone needs an id and title: %w", domain.ErrInvalidMilestone)
		}
		if m.BudgetAmount <= 0 {
			return nil, fmt.Errorf("milestone %s: budget must be positive, got %d: %w",
				m.ID, m.BudgetAmount, domain.ErrInvalidMilestone)
		}
		if _, dup := milestones[m.ID]; dup {
			return nil, fmt.Errorf("milestone %s: duplicate id: %w", m.ID, domain.ErrInvalidMilestone)
		}
		budgetSum += m.BudgetAmount
		milestones[m.ID] = &domain.Milestone{
			ID:           m.ID,
			Title:        m.Title,
			Description:  m.Description,
			BudgetAmount: m.BudgetAmount,
			TargetDate:   m.TargetDate,
		}
	}
	if budgetSum > in.GoalAmount {
		return nil, fmt.Errorf("milestone budgets sum to %d, exceeding goal %d: %w",
			budgetSum, in.GoalAmount, domain.ErrInvalidMilestone)
	}

	existing, err := tx.GetState(domain.CampaignKey(in.ID))
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", in.ID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("campaign %s: %w", in.ID, domain.ErrAlreadyExists)
	}

	caller, err := tx.CallerIdentity()
	if err != nil {
		return nil, err
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}

	c := &domain.Campaign{
		ID:              in.ID,
		NGOWallet:       in.NGOWallet,
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		Tags:            in.Tags,
		GoalAmount:      in.GoalAmount,
		Deadline:        in.Deadline,
		Status:          domain.StatusActive,
		CreatedBy:       caller,
		CreatedAt:       now,
		Milestones:      milestones,
		TotalMilestones: len(milestones),
	}
	if err := s.putCampaign(tx, c); err != nil {
		return nil, err
	}
	if err := s.emit(tx, domain.EventCampaignCreated, domain.CampaignCreatedEvent{
		CampaignID: c.ID,
		NGOWallet:  c.NGOWallet,
		GoalAmount: c.GoalAmount,
		CreatedBy:  caller,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("campaign", c.ID).
		Str("ngo", c.NGOWallet).
		Int64("goal", c.GoalAmount).
		Int("milestones", c.TotalMilestones).
		Msg("campaign created")
	return c, nil
}

// ReadCampaign returns a campaign by id.
func (s *Service) ReadCampaign(tx ledger.Tx, campaignID string) (*domain.Campaign, error) {
	return s.loadCampaign(tx, campaignID)
}

// DefaultPageSize bounds ListCampaigns when the caller does not.
const DefaultPageSize = 10

// ListCampaigns returns up to pageSize campaigns in ledger key order.
// startID/endID restrict the id range; pass the last id seen (suffixed past
// it) as the next startID to page through. Order is the store's native key
// order, nothing more.
func (s *Service) ListCampaigns(tx ledger.Tx, startID, endID string, pageSize int) ([]*domain.Campaign, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	startKey, endKey := domain.CampaignKeyRange()
	if startID != "" {
		startKey = domain.CampaignKey(startID)
	}
	if endID != "" {
		endKey = domain.CampaignKey(endID)
	}

	iter, err := tx.GetStateRange(startKey, endKey)
	if err != nil {
		return nil, fmt.Errorf("range campaigns: %w", err)
	}
	defer iter.Close()

	var out []*domain.Campaign
	for len(out) < pageSize {
		kv, ok, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("range campaigns: %w", err)
		}
		if !ok {
			break
		}
		c, err := domain.UnmarshalCampaign(kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// CampaignsByNGO returns every campaign owned by the given wallet via a
// rich query on the docType discriminator. Result order is store-defined.
func (s *Service) CampaignsByNGO(tx ledger.Tx, ngoWallet string) ([]*domain.Campaign, error) {
	if ngoWallet == "" {
		return nil, fmt.Errorf("ngoWallet is required: %w", domain.ErrInvalidInput)
	}
	iter, err := tx.Query(ledger.Filter{
		DocType: domain.DocTypeCampaign,
		Equals:  map[string]string{"ngoWallet": ngoWallet},
	})
	if err != nil {
		return nil, fmt.Errorf("query campaigns by ngo %s: %w", ngoWallet, err)
	}
	defer iter.Close()

	var out []*domain.Campaign
	for {
		kv, ok, err := iter.Next()
		if err != nil {
			return nil, fmt.Errorf("query campaigns by ngo %s: %w", ngoWallet, err)
		}
		if !ok {
			break
		}
		c, err := domain.UnmarshalCampaign(kv.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// UpdateCampaignStatus administratively overrides the campaign status. Any
// declared status may replace any other; there is no transition graph here.
// Note there is also no caller gate beyond the configured policy, which
// allows everyone by default (inherited behavior, see authz.Default).
func (s *Service) UpdateCampaignStatus(tx ledger.Tx, campaignID string, newStatus domain.CampaignStatus, reason string) (*domain.Campaign, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("status %q: %w", newStatus, domain.ErrInvalidStatus)
	}
	caller, err := tx.CallerIdentity()
	if err != nil {
		return nil, err
	}
	if !s.policy.Authorize(caller, authz.ActionUpdateStatus) {
		return nil, fmt.Errorf("caller %s may not update status: %w", caller, domain.ErrUnauthorized)
	}

	c, err := s.loadCampaign(tx, campaignID)
	if err != nil {
		return nil, err
	}
	now, err := tx.Now()
	if err != nil {
		return nil, err
	}

	old := c.Status
	c.Status = newStatus
	c.LastStatusChange = &domain.StatusChange{Reason: reason, ChangedBy: caller, ChangedAt: now}
	if err := s.putCampaign(tx, c); err != nil {
		return nil, err
	}
	if err := s.emit(tx, domain.EventCampaignStatusUpdated, domain.CampaignStatusUpdatedEvent{
		CampaignID: c.ID,
		OldStatus:  old,
		NewStatus:  newStatus,
		Reason:     reason,
		ChangedBy:  caller,
		ChangedAt:  now,
	}); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("campaign", c.ID).
		Str("from", string(old)).
		Str("to", string(newStatus)).
		Str("actor", caller).
		Msg("campaign status overridden")
	return c, nil
}
