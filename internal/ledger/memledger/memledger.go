// Package memledger is an in-memory ledger.Invoker. Each invocation buffers
// its writes and events and applies them atomically on commit, mirroring the
// all-or-nothing boundary a real ledger provides. It backs the API gateway
// when no database is configured, and the contract test suites.
package memledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"charitychain/internal/ledger"
)

// Event is one committed event emission.
type Event struct {
	TxID    string
	Name    string
	Payload []byte
}

// Ledger holds committed state. NowFunc and TxIDFunc are hooks for
// deterministic tests; both have sane defaults.
type Ledger struct {
	mu     sync.Mutex
	state  map[string][]byte
	events []Event

	NowFunc  func() time.Time
	TxIDFunc func() string
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		state:    make(map[string][]byte),
		NowFunc:  func() time.Time { return time.Now().UTC() },
		TxIDFunc: uuid.NewString,
	}
}

// Invoke runs fn in a fresh transaction, committing its write set only if
// fn returns nil.
func (l *Ledger) Invoke(_ context.Context, caller string, fn func(ledger.Tx) error) error {
	tx := l.Begin(caller)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Begin opens a transaction for the given caller identity. Committing is
// handled by Invoke; a Tx that is never committed leaves no trace.
func (l *Ledger) Begin(caller string) *Tx {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Tx{
		ledger: l,
		caller: caller,
		txID:   l.TxIDFunc(),
		now:    l.NowFunc(),
		writes: make(map[string][]byte),
	}
}

// Snapshot returns a deep copy of the committed state, keyed by ledger key.
func (l *Ledger) Snapshot() map[string][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string][]byte, len(l.state))
	for k, v := range l.state {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

// Events returns all committed events in emission order.
func (l *Ledger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// Tx implements ledger.Tx with a private write buffer. Reads observe
// committed state only, matching the ledger substrate's read-your-committed
// semantics; the contract never reads back its own writes in one invocation.
type Tx struct {
	ledger *Ledger
	caller string
	txID   string
	now    time.Time
	writes map[string][]byte
	events []Event
}

func (t *Tx) GetState(key string) ([]byte, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	v, ok := t.ledger.state[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (t *Tx) PutState(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("memledger: empty key")
	}
	t.writes[key] = append([]byte(nil), value...)
	return nil
}

func (t *Tx) GetStateRange(startKey, endKey string) (ledger.Iterator, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	keys := make([]string, 0, len(t.ledger.state))
	for k := range t.ledger.state {
		if startKey != "" && k < startKey {
			continue
		}
		if endKey != "" && k >= endKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kvs := make([]ledger.KV, 0, len(keys))
	for _, k := range keys {
		kvs = append(kvs, ledger.KV{Key: k, Value: append([]byte(nil), t.ledger.state[k]...)})
	}
	return &sliceIterator{kvs: kvs}, nil
}

func (t *Tx) Query(f ledger.Filter) (ledger.Iterator, error) {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	keys := make([]string, 0, len(t.ledger.state))
	for k := range t.ledger.state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var kvs []ledger.KV
	for _, k := range keys {
		v := t.ledger.state[k]
		if !matches(v, f) {
			continue
		}
		kvs = append(kvs, ledger.KV{Key: k, Value: append([]byte(nil), v...)})
	}
	return &sliceIterator{kvs: kvs}, nil
}

func (t *Tx) CallerIdentity() (string, error) {
	if t.caller == "" {
		return "", fmt.Errorf("memledger: no caller identity attached")
	}
	return t.caller, nil
}

func (t *Tx) TxID() string { return t.txID }

func (t *Tx) Now() (time.Time, error) { return t.now, nil }

func (t *Tx) EmitEvent(name string, payload []byte) error {
	t.events = append(t.events, Event{
		TxID:    t.txID,
		Name:    name,
		Payload: append([]byte(nil), payload...),
	})
	return nil
}

func (t *Tx) commit() {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	for k, v := range t.writes {
		t.ledger.state[k] = v
	}
	t.ledger.events = append(t.ledger.events, t.events...)
}

func matches(doc []byte, f ledger.Filter) bool {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return false
	}
	if f.DocType != "" {
		dt, _ := m["docType"].(string)
		if !strings.EqualFold(dt, f.DocType) {
			return false
		}
	}
	for field, want := range f.Equals {
		got, _ := m[field].(string)
		if got != want {
			return false
		}
	}
	return true
}

type sliceIterator struct {
	kvs []ledger.KV
	idx int
}

func (it *sliceIterator) Next() (ledger.KV, bool, error) {
	if it.idx >= len(it.kvs) {
		return ledger.KV{}, false, nil
	}
	kv := it.kvs[it.idx]
	it.idx++
	return kv, true, nil
}

func (it *sliceIterator) Close() error { return nil }
