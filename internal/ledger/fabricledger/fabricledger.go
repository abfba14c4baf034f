// Package fabricledger adapts a Hyperledger Fabric transaction context onto
// the ledger.Tx collaborator interface. Fabric already provides everything
// the contract needs: simulated reads over committed state, a write set that
// commits atomically with the transaction, client identity attestation, a
// unique tx id and an endorsed timestamp.
package fabricledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"charitychain/internal/ledger"
)

// Tx wraps one Fabric transaction context.
type Tx struct {
	ctx contractapi.TransactionContextInterface
}

// New returns a ledger.Tx backed by the given Fabric context.
func New(ctx contractapi.TransactionContextInterface) *Tx {
	return &Tx{ctx: ctx}
}

func (t *Tx) GetState(key string) ([]byte, error) {
	return t.ctx.GetStub().GetState(key)
}

func (t *Tx) PutState(key string, value []byte) error {
	return t.ctx.GetStub().PutState(key, value)
}

func (t *Tx) GetStateRange(startKey, endKey string) (ledger.Iterator, error) {
	iter, err := t.ctx.GetStub().GetStateByRange(startKey, endKey)
	if err != nil {
		return nil, err
	}
	return &stateIterator{inner: iter}, nil
}

// Query translates the filter into a CouchDB selector. Requires a rich-query
// capable state database.
func (t *Tx) Query(f ledger.Filter) (ledger.Iterator, error) {
	selector := make(map[string]any, len(f.Equals)+1)
	if f.DocType != "" {
		selector["docType"] = f.DocType
	}
	for field, want := range f.Equals {
		selector[field] = want
	}
	q, err := json.Marshal(map[string]any{"selector": selector})
	if err != nil {
		return nil, fmt.Errorf("build selector: %w", err)
	}
	iter, err := t.ctx.GetStub().GetQueryResult(string(q))
	if err != nil {
		return nil, err
	}
	return &stateIterator{inner: iter}, nil
}

func (t *Tx) CallerIdentity() (string, error) {
	return t.ctx.GetClientIdentity().GetID()
}

func (t *Tx) TxID() string {
	return t.ctx.GetStub().GetTxID()
}

func (t *Tx) Now() (time.Time, error) {
	ts, err := t.ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("tx timestamp: %w", err)
	}
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC(), nil
}

// EmitEvent sets the chaincode event. Fabric keeps a single event per
// transaction, so when an invocation emits twice (DonationReceived then
// GoalReached) only the last one reaches listeners.
func (t *Tx) EmitEvent(name string, payload []byte) error {
	return t.ctx.GetStub().SetEvent(name, payload)
}

type stateIterator struct {
	inner shim.StateQueryIteratorInterface
}

func (it *stateIterator) Next() (ledger.KV, bool, error) {
	if !it.inner.HasNext() {
		return ledger.KV{}, false, nil
	}
	kv, err := it.inner.Next()
	if err != nil {
		return ledger.KV{}, false, err
	}
	return ledger.KV{Key: kv.Key, Value: kv.Value}, true, nil
}

func (it *stateIterator) Close() error {
	return it.inner.Close()
}
