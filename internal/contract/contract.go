// Package contract implements the campaign/milestone/donation state machine.
// Every operation is one atomic invocation: it reads entities through the
// injected ledger.Tx, validates preconditions, computes the next state,
// writes it back and emits domain events. Atomicity of the write set is
// owed by the ledger adapter, not by this package.
package contract

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"charitychain/internal/authz"
	"charitychain/internal/domain"
	"charitychain/internal/ledger"
)

// Service holds the injected collaborators shared by all operations.
type Service struct {
	policy authz.Policy
	log    zerolog.Logger
}

// New builds a Service. A nil policy falls back to the default open policy.
func New(policy authz.Policy, log zerolog.Logger) *Service {
	if policy == nil {
		policy = authz.Default("")
	}
	return &Service{policy: policy, log: log}
}

func (s *Service) loadCampaign(tx ledger.Tx, campaignID string) (*domain.Campaign, error) {
	b, err := tx.GetState(domain.CampaignKey(campaignID))
	if err != nil {
		return nil, fmt.Errorf("read campaign %s: %w", campaignID, err)
	}
	if b == nil {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, domain.ErrNotFound)
	}
	return domain.UnmarshalCampaign(b)
}

func (s *Service) putCampaign(tx ledger.Tx, c *domain.Campaign) error {
	b, err := domain.MarshalCampaign(c)
	if err != nil {
		return fmt.Errorf("encode campaign %s: %w", c.ID, err)
	}
	return tx.PutState(domain.CampaignKey(c.ID), b)
}

func (s *Service) emit(tx ledger.Tx, name string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}
	return tx.EmitEvent(name, b)
}
