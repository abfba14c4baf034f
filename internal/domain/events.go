package domain

import "time"

// Event names published on state transitions. Events are fire-and-forget
// notifications; nothing in the contract relies on their delivery.
const (
	EventCampaignCreated       = "CampaignCreated"
	EventDonationReceived      = "DonationReceived"
	EventGoalReached           = "GoalReached"
	EventMilestoneVerified     = "MilestoneVerified"
	EventFundsReleased         = "FundsReleased"
	EventCampaignCompleted     = "CampaignCompleted"
	EventCampaignStatusUpdated = "CampaignStatusUpdated"
)

type CampaignCreatedEvent struct {
	CampaignID string    `json:"campaignId"`
	NGOWallet  string    `json:"ngoWallet"`
	GoalAmount int64     `json:"goalAmount"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

type DonationReceivedEvent struct {
	CampaignID    string    `json:"campaignId"`
	DonorID       string    `json:"donorId"`
	Amount        int64     `json:"amount"`
	CurrentAmount int64     `json:"currentAmount"`
	Timestamp     time.Time `json:"timestamp"`
}

type GoalReachedEvent struct {
	CampaignID    string `json:"campaignId"`
	GoalAmount    int64  `json:"goalAmount"`
	CurrentAmount int64  `json:"currentAmount"`
}

type MilestoneVerifiedEvent struct {
	CampaignID   string    `json:"campaignId"`
	MilestoneID  string    `json:"milestoneId"`
	VerifiedBy   string    `json:"verifiedBy"`
	VerifiedAt   time.Time `json:"verifiedAt"`
	BudgetAmount int64     `json:"budgetAmount"`
}

type FundsReleasedEvent struct {
	CampaignID      string    `json:"campaignId"`
	MilestoneID     string    `json:"milestoneId"`
	Amount          int64     `json:"amount"`
	RecipientWallet string    `json:"recipientWallet"`
	ReleasedAt      time.Time `json:"releasedAt"`
}

type CampaignCompletedEvent struct {
	CampaignID          string `json:"campaignId"`
	CompletedMilestones int    `json:"completedMilestones"`
}

type CampaignStatusUpdatedEvent struct {
	CampaignID string         `json:"campaignId"`
	OldStatus  CampaignStatus `json:"oldStatus"`
	NewStatus  CampaignStatus `json:"newStatus"`
	Reason     string         `json:"reason"`
	ChangedBy  string         `json:"changedBy"`
	ChangedAt  time.Time      `json:"changedAt"`
}
