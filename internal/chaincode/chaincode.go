// Package chaincode exposes the contract operations as Hyperledger Fabric
// transactions. It is a thin boundary: string-encoded arguments are parsed
// and validated here, then handed to the same core the HTTP gateway uses.
package chaincode

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"charitychain/internal/contract"
	"charitychain/internal/domain"
	"charitychain/internal/ledger/fabricledger"
)

// CharityContract is the chaincode contract surface.
type CharityContract struct {
	contractapi.Contract
	svc *contract.Service
}

// New builds the contract surface around the given core service.
func New(svc *contract.Service) *CharityContract {
	return &CharityContract{svc: svc}
}

type milestoneArg struct {
	MilestoneID  string `json:"milestoneId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	BudgetAmount int64  `json:"budgetAmount"`
	TargetDate   string `json:"targetDate"`
}

type createCampaignArg struct {
	CampaignID  string         `json:"campaignId"`
	NGOWallet   string         `json:"ngoWallet"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	GoalAmount  int64          `json:"goalAmount"`
	Deadline    string         `json:"deadline"`
	Milestones  []milestoneArg `json:"milestones"`
}

// CreateCampaign registers a new campaign. payload must be a JSON object
// matching createCampaignArg; dates are ISO-8601.
func (c *CharityContract) CreateCampaign(ctx contractapi.TransactionContextInterface, payload string) (*domain.Campaign, error) {
	var arg createCampaignArg
	if err := json.Unmarshal([]byte(payload), &arg); err != nil {
		return nil, fmt.Errorf("invalid campaign JSON: %v: %w", err, domain.ErrInvalidInput)
	}
	deadline, err := parseDate(arg.Deadline, "deadline")
	if err != nil {
		return nil, err
	}
	in := contract.CreateCampaignInput{
		ID:          arg.CampaignID,
		NGOWallet:   arg.NGOWallet,
		Title:       arg.Title,
		Description: arg.Description,
		Category:    arg.Category,
		Tags:        arg.Tags,
		GoalAmount:  arg.GoalAmount,
		Deadline:    deadline,
	}
	for _, m := range arg.Milestones {
		target := time.Time{}
		if m.TargetDate != "" {
			target, err = parseDate(m.TargetDate, "milestone targetDate")
			if err != nil {
				return nil, err
			}
		}
		in.Milestones = append(in.Milestones, contract.MilestoneSpec{
			ID:           m.MilestoneID,
			Title:        m.Title,
			Description:  m.Description,
			BudgetAmount: m.BudgetAmount,
			TargetDate:   target,
		})
	}
	return c.svc.CreateCampaign(fabricledger.New(ctx), in)
}

// Donate records a donation against a campaign.
func (c *CharityContract) Donate(ctx contractapi.TransactionContextInterface, campaignID string, amount int64, donorID, message string) (*domain.Campaign, error) {
	return c.svc.Donate(fabricledger.New(ctx), contract.DonateInput{
		CampaignID: campaignID,
		Amount:     amount,
		DonorID:    donorID,
		Message:    message,
	})
}

// SetMilestoneVerified marks a milestone verified by the calling oracle.
func (c *CharityContract) SetMilestoneVerified(ctx contractapi.TransactionContextInterface, campaignID, milestoneID, notes string) (*domain.Campaign, error) {
	return c.svc.VerifyMilestone(fabricledger.New(ctx), campaignID, milestoneID, notes)
}

// ReleaseMilestoneFunds pays out a verified milestone.
func (c *CharityContract) ReleaseMilestoneFunds(ctx contractapi.TransactionContextInterface, campaignID, milestoneID string) (*domain.Campaign, error) {
	return c.svc.ReleaseMilestoneFunds(fabricledger.New(ctx), campaignID, milestoneID)
}

// ReadCampaign returns one campaign.
func (c *CharityContract) ReadCampaign(ctx contractapi.TransactionContextInterface, campaignID string) (*domain.Campaign, error) {
	return c.svc.ReadCampaign(fabricledger.New(ctx), campaignID)
}

// GetAllCampaigns pages through campaigns in key order.
func (c *CharityContract) GetAllCampaigns(ctx contractapi.TransactionContextInterface, startID, endID string, pageSize int) ([]*domain.Campaign, error) {
	return c.svc.ListCampaigns(fabricledger.New(ctx), startID, endID, pageSize)
}

// GetCampaignsByNGO lists campaigns owned by a wallet.
func (c *CharityContract) GetCampaignsByNGO(ctx contractapi.TransactionContextInterface, ngoWallet string) ([]*domain.Campaign, error) {
	return c.svc.CampaignsByNGO(fabricledger.New(ctx), ngoWallet)
}

// GetDonationHistory returns the donation audit trail for a campaign.
func (c *CharityContract) GetDonationHistory(ctx contractapi.TransactionContextInterface, campaignID string) ([]*domain.Donation, error) {
	return c.svc.DonationHistory(fabricledger.New(ctx), campaignID)
}

// UpdateCampaignStatus administratively overrides a campaign's status.
func (c *CharityContract) UpdateCampaignStatus(ctx contractapi.TransactionContextInterface, campaignID, status, reason string) (*domain.Campaign, error) {
	return c.svc.UpdateCampaignStatus(fabricledger.New(ctx), campaignID, domain.CampaignStatus(status), reason)
}

// GetCampaignAnalytics returns derived aggregates for a campaign.
func (c *CharityContract) GetCampaignAnalytics(ctx contractapi.TransactionContextInterface, campaignID string) (*contract.Summary, error) {
	return c.svc.CampaignAnalytics(fabricledger.New(ctx), campaignID)
}

func parseDate(v, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q is not an ISO-8601 timestamp: %w", field, v, domain.ErrInvalidInput)
	}
	return t, nil
}
