// Package pgledger persists ledger state in PostgreSQL. Documents live in a
// single JSONB table so the rich query maps onto a containment match, and
// every contract invocation runs inside one database transaction, which is
// where the all-or-nothing guarantee comes from.
package pgledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"charitychain/internal/ledger"
)

const schema = `
CREATE TABLE IF NOT EXISTS ledger_state (
	key text PRIMARY KEY,
	doc jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_state_doc_idx ON ledger_state USING gin (doc jsonb_path_ops);
CREATE TABLE IF NOT EXISTS ledger_events (
	id bigserial PRIMARY KEY,
	tx_id text NOT NULL,
	name text NOT NULL,
	payload jsonb NOT NULL,
	emitted_at timestamptz NOT NULL DEFAULT now()
);
`

// Store is a ledger.Invoker over a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the state and event tables if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// Invoke runs fn inside one database transaction. The write set commits only
// if fn returns nil; any failure rolls back every state and event write.
func (s *Store) Invoke(ctx context.Context, caller string, fn func(ledger.Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	tx := &Tx{
		ctx:    ctx,
		pgtx:   pgtx,
		caller: caller,
		txID:   uuid.NewString(),
		now:    time.Now().UTC(),
	}
	if err := fn(tx); err != nil {
		_ = pgtx.Rollback(ctx)
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

// Tx implements ledger.Tx over one open database transaction. The timestamp
// is fixed at invocation start so every write in the invocation shares it.
type Tx struct {
	ctx    context.Context
	pgtx   pgx.Tx
	caller string
	txID   string
	now    time.Time
}

func (t *Tx) GetState(key string) ([]byte, error) {
	var doc []byte
	err := t.pgtx.QueryRow(t.ctx, `SELECT doc FROM ledger_state WHERE key = $1`, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (t *Tx) PutState(key string, value []byte) error {
	_, err := t.pgtx.Exec(t.ctx, `
INSERT INTO ledger_state (key, doc) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc;
`, key, value)
	return err
}

func (t *Tx) GetStateRange(startKey, endKey string) (ledger.Iterator, error) {
	rows, err := t.pgtx.Query(t.ctx, `
SELECT key, doc FROM ledger_state
WHERE ($1 = '' OR key >= $1) AND ($2 = '' OR key < $2)
ORDER BY key;
`, startKey, endKey)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (t *Tx) Query(f ledger.Filter) (ledger.Iterator, error) {
	match := make(map[string]string, len(f.Equals)+1)
	if f.DocType != "" {
		match["docType"] = f.DocType
	}
	for field, want := range f.Equals {
		match[field] = want
	}
	filter, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}
	rows, err := t.pgtx.Query(t.ctx, `
SELECT key, doc FROM ledger_state WHERE doc @> $1::jsonb ORDER BY key;
`, filter)
	if err != nil {
		return nil, err
	}
	return collectRows(rows)
}

func (t *Tx) CallerIdentity() (string, error) {
	if t.caller == "" {
		return "", fmt.Errorf("pgledger: no caller identity attached")
	}
	return t.caller, nil
}

func (t *Tx) TxID() string { return t.txID }

func (t *Tx) Now() (time.Time, error) { return t.now, nil }

func (t *Tx) EmitEvent(name string, payload []byte) error {
	_, err := t.pgtx.Exec(t.ctx, `
INSERT INTO ledger_events (tx_id, name, payload) VALUES ($1, $2, $3);
`, t.txID, name, payload)
	return err
}

// collectRows materializes the result so the transaction's connection is
// free for further statements while the contract walks the iterator.
func collectRows(rows pgx.Rows) (ledger.Iterator, error) {
	defer rows.Close()
	var kvs []ledger.KV
	for rows.Next() {
		var key string
		var doc []byte
		if err := rows.Scan(&key, &doc); err != nil {
			return nil, err
		}
		kvs = append(kvs, ledger.KV{Key: key, Value: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &sliceIterator{kvs: kvs}, nil
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
