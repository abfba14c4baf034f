package domain

import (
	"encoding/json"
	"fmt"
)

// MarshalCampaign encodes a campaign for storage, stamping its docType.
func MarshalCampaign(c *Campaign) ([]byte, error) {
	c.DocType = DocTypeCampaign
	return json.Marshal(c)
}

// UnmarshalCampaign decodes stored campaign bytes.
func UnmarshalCampaign(b []byte) (*Campaign, error) {
	var c Campaign
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode campaign: %v: %w", err, ErrMalformedRecord)
	}
	if c.DocType != DocTypeCampaign {
		return nil, fmt.Errorf("decode campaign: docType %q: %w", c.DocType, ErrMalformedRecord)
	}
	return &c, nil
}

// MarshalDonation encodes a donation record, stamping its docType.
func MarshalDonation(d *Donation) ([]byte, error) {
	d.DocType = DocTypeDonation
	return json.Marshal(d)
}

// UnmarshalDonation decodes stored donation bytes.
func UnmarshalDonation(b []byte) (*Donation, error) {
	var d Donation
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode donation: %v: %w", err, ErrMalformedRecord)
	}
	if d.DocType != DocTypeDonation {
		return nil, fmt.Errorf("decode donation: docType %q: %w", d.DocType, ErrMalformedRecord)
	}
	return &d, nil
}

// MarshalFundRelease encodes a fund release record, stamping its docType.
func MarshalFundRelease(r *FundRelease) ([]byte, error) {
	r.DocType = DocTypeFundRelease
	return json.Marshal(r)
}

// UnmarshalFundRelease decodes stored fund release bytes.
func UnmarshalFundRelease(b []byte) (*FundRelease, error) {
	var r FundRelease
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode fund release: %v: %w", err, ErrMalformedRecord)
	}
	if r.DocType != DocTypeFundRelease {
		return nil, fmt.Errorf("decode fund release: docType %q: %w", r.DocType, ErrMalformedRecord)
	}
	return &r, nil
}
