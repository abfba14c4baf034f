package domain

import "time"

// CampaignStatus is the flat status enum for a campaign. System-driven
// transitions only move ACTIVE -> GOAL_REACHED (donation crossing the goal)
// and any -> COMPLETED (final milestone release); everything else is an
// administrative override with no transition-graph restriction.
type CampaignStatus string

const (
	StatusActive      CampaignStatus = "ACTIVE"
	StatusGoalReached CampaignStatus = "GOAL_REACHED"
	StatusPaused      CampaignStatus = "PAUSED"
	StatusCancelled   CampaignStatus = "CANCELLED"
	StatusCompleted   CampaignStatus = "COMPLETED"
)

// Valid reports whether s is one of the declared statuses.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusActive, StatusGoalReached, StatusPaused, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// StatusChange records the most recent administrative status override.
type StatusChange struct {
	Reason    string    `json:"reason"`
	ChangedBy string    `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
}

// Milestone is a fixed sub-goal of a campaign. Milestones are created
// atomically with their campaign and never added or removed afterward; the
// only mutations are verification and fund release, each one-way.
type Milestone struct {
	ID                string     `json:"milestoneId"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	BudgetAmount      int64      `json:"budgetAmount"`
	TargetDate        time.Time  `json:"targetDate"`
	IsVerified        bool       `json:"isVerified"`
	VerifiedBy        string     `json:"verifiedBy,omitempty"`
	VerifiedAt        *time.Time `json:"verifiedAt,omitempty"`
	VerificationNotes string     `json:"verificationNotes,omitempty"`
	FundsReleased     bool       `json:"fundsReleased"`
	ReleasedBy        string     `json:"releasedBy,omitempty"`
	ReleasedAt        *time.Time `json:"releasedAt,omitempty"`
}

// Campaign is the mutable root entity. CurrentAmount is monotonically
// non-decreasing; released milestone budgets are never subtracted from it.
type Campaign struct {
	DocType             string                `json:"docType"`
	ID                  string                `json:"campaignId"`
	NGOWallet           string                `json:"ngoWallet"`
	Title               string                `json:"title"`
	Description         string                `json:"description"`
	Category            string                `json:"category"`
	Tags                []string              `json:"tags,omitempty"`
	GoalAmount          int64                 `json:"goalAmount"`
	CurrentAmount       int64                 `json:"currentAmount"`
	Deadline            time.Time             `json:"deadline"`
	Status              CampaignStatus        `json:"status"`
	CreatedBy           string                `json:"createdBy"`
	CreatedAt           time.Time             `json:"createdAt"`
	LastDonationAt      *time.Time            `json:"lastDonationAt,omitempty"`
	LastStatusChange    *StatusChange         `json:"lastStatusChange,omitempty"`
	Milestones          map[string]*Milestone `json:"milestones"`
	TotalMilestones     int                   `json:"totalMilestones"`
	CompletedMilestones int                   `json:"completedMilestones"`
}

// Milestone returns the milestone with the given id, or nil.
func (c *Campaign) Milestone(id string) *Milestone {
	if c.Milestones == nil {
		return nil
	}
	return c.Milestones[id]
}
