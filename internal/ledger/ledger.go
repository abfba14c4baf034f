// Package ledger defines the collaborator interface the contract core runs
// against: an atomic key-value store with range and rich queries, a caller
// identity attestation, a transaction id and timestamp source, and an event
// sink. One Tx spans exactly one contract invocation; the adapter owns the
// all-or-nothing commit boundary, the core never does its own locking.
package ledger

import (
	"context"
	"time"
)

// KV is one key/value pair yielded by an iterator.
type KV struct {
	Key   string
	Value []byte
}

// Iterator walks a query result in store order. Next returns ok=false once
// the sequence is exhausted.
type Iterator interface {
	Next() (kv KV, ok bool, err error)
	Close() error
}

// Filter is an equality predicate over the JSON documents in the store.
// DocType matches the discriminator field; Equals matches top-level string
// fields. Result order is store-defined and not guaranteed stable.
type Filter struct {
	DocType string
	Equals  map[string]string
}

// Tx is one atomic invocation against the ledger. GetState returns
// (nil, nil) for an absent key. Writes issued through PutState and events
// through EmitEvent become visible only if the whole invocation commits.
type Tx interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error

	// GetStateRange iterates keys in [startKey, endKey) in lexicographic
	// order; empty bounds mean unbounded on that side.
	GetStateRange(startKey, endKey string) (Iterator, error)

	// Query runs a rich query over the document contents.
	Query(f Filter) (Iterator, error)

	CallerIdentity() (string, error)
	TxID() string
	Now() (time.Time, error)

	EmitEvent(name string, payload []byte) error
}

// Invoker runs one contract invocation inside a fresh Tx, committing on a
// nil return and discarding every buffered write otherwise.
type Invoker interface {
	Invoke(ctx context.Context, caller string, fn func(Tx) error) error
}
