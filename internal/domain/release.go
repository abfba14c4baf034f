package domain

import "time"

// FundRelease is an immutable audit record of one milestone payout. Amount
// always equals the milestone's budget; RecipientWallet is copied from the
// campaign at release time.
type FundRelease struct {
	DocType         string    `json:"docType"`
	CampaignID      string    `json:"campaignId"`
	MilestoneID     string    `json:"milestoneId"`
	Amount          int64     `json:"amount"`
	RecipientWallet string    `json:"recipientWallet"`
	ReleasedAt      time.Time `json:"releasedAt"`
	ReleasedBy      string    `json:"releasedBy"`
	TxID            string    `json:"txId"`
}
