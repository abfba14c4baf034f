package domain

import "time"

// AnonymousDonor is the sentinel donor id recorded when the donor does not
// self-report one. The attested DonorIdentity is kept separately.
const AnonymousDonor = "anonymous"

// Donation is an immutable audit record. Its ledger key embeds the
// transaction id, so it is write-once and collision-free by construction.
type Donation struct {
	DocType       string    `json:"docType"`
	CampaignID    string    `json:"campaignId"`
	DonorID       string    `json:"donorId"`
	Amount        int64     `json:"amount"`
	Message       string    `json:"message,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	TxID          string    `json:"txId"`
	DonorIdentity string    `json:"donorIdentity"`
}
