package domain

// Document type discriminators. Every persisted entity carries one so rich
// queries over the mixed keyspace can recover the kind without relying on
// the key prefix.
const (
	DocTypeCampaign    = "CAMPAIGN"
	DocTypeDonation    = "DONATION"
	DocTypeFundRelease = "FUND_RELEASE"
)

// Key namespace. Campaign keys share a common prefix so a plain range scan
// in key order enumerates campaigns; donation and release keys embed the
// transaction id for per-invocation uniqueness.
const campaignKeyPrefix = "CAMPAIGN_"

// CampaignKey builds the ledger key for a campaign.
func CampaignKey(campaignID string) string {
	return campaignKeyPrefix + campaignID
}

// DonationKey builds the write-once ledger key for a donation record.
func DonationKey(campaignID, txID string) string {
	return "DONATION_" + campaignID + "_" + txID
}

// ReleaseKey builds the write-once ledger key for a fund release record.
func ReleaseKey(campaignID, milestoneID, txID string) string {
	return "RELEASE_" + campaignID + "_" + milestoneID + "_" + txID
}

// CampaignKeyRange returns the half-open key range covering every campaign.
func CampaignKeyRange() (string, string) {
	return campaignKeyPrefix, campaignKeyPrefix + "\U0010FFFF"
}
