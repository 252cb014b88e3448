// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package mempool stores pending transactions awaiting inclusion in a
// block: indexed by content digest and by (account, nonce), bounded by a
// per-account backlog and a global cap, and dispensed to a block producer
// in round-robin order between accounts.
package mempool

import (
	"container/list"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"

	"github.com/commonwarexyz/battleware/pkg/core/data/account"
	"github.com/commonwarexyz/battleware/pkg/core/data/transaction"
)

var log = logger.WithFields(logger.Fields{"prefix": "mempool"})

const (
	// MaxBacklog is the default maximum number of tracked nonces per
	// account, used when Limits.MaxBacklog is unset. Overridable via
	// NewWithLimits.
	MaxBacklog = 16

	// MaxTransactions is the default maximum number of transactions the
	// mempool will hold at once, across all accounts, used when
	// Limits.MaxTransactions is unset. Overridable via NewWithLimits.
	MaxTransactions = 32_768
)

// Limits bounds a Mempool's capacity. A zero field falls back to the
// package default of the same name (MaxTransactions, MaxBacklog).
type Limits struct {
	MaxTransactions int
	MaxBacklog      int
}

func (l Limits) withDefaults() Limits {
	if l.MaxTransactions <= 0 {
		l.MaxTransactions = MaxTransactions
	}
	if l.MaxBacklog <= 0 {
		l.MaxBacklog = MaxBacklog
	}
	return l
}

// Mempool is a passive, single-writer data structure: every method here
// must complete synchronously and assumes exclusive access for its
// duration. Embedders that share a Mempool across goroutines should guard
// it the way LockedMempool does.
type Mempool struct {
	transactions map[account.Digest]transaction.Transaction
	tracked      map[account.PublicKey]*nonceIndex

	// queue holds the public keys of the accounts to be processed next, in
	// round-robin order. We track public keys (rather than transactions
	// directly) because retain() may have pruned an account's backlog
	// without the queue knowing; next() discovers and skips stale entries
	// lazily instead of paying to scrub the queue on every retain.
	queue *list.List

	maxTransactions int
	maxBacklog      int

	transactionsGauge prometheus.Gauge
	accountsGauge     prometheus.Gauge
}

// New constructs an empty Mempool bounded by the package defaults
// (MaxTransactions, MaxBacklog) and, if reg is non-nil, registers its
// "transactions" and "accounts" gauges against it.
func New(reg prometheus.Registerer) *Mempool {
	return NewWithLimits(reg, Limits{})
}

// NewWithLimits constructs an empty Mempool bounded by limits (zero
// fields fall back to the package defaults) and, if reg is non-nil,
// registers its "transactions" and "accounts" gauges against it.
func NewWithLimits(reg prometheus.Registerer, limits Limits) *Mempool {
	limits = limits.withDefaults()

	m := &Mempool{
		transactions:    make(map[account.Digest]transaction.Transaction),
		tracked:         make(map[account.PublicKey]*nonceIndex),
		queue:           list.New(),
		maxTransactions: limits.MaxTransactions,
		maxBacklog:      limits.MaxBacklog,
		transactionsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transactions",
			Help: "Number of transactions in the mempool",
		}),
		accountsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "accounts",
			Help: "Number of accounts in the mempool",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.transactionsGauge, m.accountsGauge)
	}

	return m
}

// Add admits a transaction. Rejections (global cap reached, duplicate
// digest, conflicting nonce) are silent no-ops. A successful admission
// that pushes an account's backlog past MaxBacklog evicts that account's
// highest-nonce entry.
func (m *Mempool) Add(tx transaction.Transaction) {
	if len(m.transactions) >= m.maxTransactions {
		return
	}

	digest := tx.Digest()
	if _, exists := m.transactions[digest]; exists {
		return
	}

	idx, ok := m.tracked[tx.Public]
	if !ok {
		idx = newNonceIndex()
		m.tracked[tx.Public] = idx
	}

	if idx.has(tx.Nonce) {
		// First-writer-wins for a given (public, nonce).
		return
	}

	idx.insert(tx.Nonce, digest)
	m.transactions[digest] = tx

	entries := idx.len()
	if entries > m.maxBacklog {
		_, evicted, _ := idx.deleteMax()
		delete(m.transactions, evicted)
		log.WithFields(logger.Fields{
			"account": tx.Public.String(),
			"digest":  evicted.String(),
		}).Trace("evicted highest-nonce transaction on backlog overflow")
	}

	// entries is the backlog size right after insertion, before any
	// overflow eviction; it is 1 exactly when this admission created the
	// account's first tracked nonce, and in that case the overflow branch
	// above cannot have fired (maxBacklog is always at least 1).
	if entries == 1 {
		m.queue.PushBack(tx.Public)
	}

	m.updateMetrics()
}

// Retain garbage-collects every (nonce, digest) entry for public whose
// nonce is strictly less than minNonce. If the account's backlog becomes
// empty, the account entry itself is removed. Unknown accounts are a
// no-op. The drain queue is never scrubbed here: stale entries are
// discarded lazily by Next.
func (m *Mempool) Retain(public account.PublicKey, minNonce uint64) {
	idx, ok := m.tracked[public]
	if !ok {
		return
	}

	removeAccount := true
	for {
		_, digest, ok := idx.deleteMinIfBelow(minNonce)
		if !ok {
			removeAccount = idx.len() == 0
			break
		}
		delete(m.transactions, digest)
	}

	if removeAccount {
		delete(m.tracked, public)
	}

	m.updateMetrics()
}

// Next drains one transaction, fairly. Within a single account,
// transactions are returned in ascending nonce order; between accounts,
// draining rotates strictly round-robin in admission order. Returns false
// when the mempool has nothing left to drain.
func (m *Mempool) Next() (transaction.Transaction, bool) {
	var result transaction.Transaction
	found := false

	for {
		front := m.queue.Front()
		if front == nil {
			break
		}
		m.queue.Remove(front)
		address := front.Value.(account.PublicKey)

		idx, ok := m.tracked[address]
		if !ok {
			// Stale queue entry left behind by a prior Retain; skip it.
			continue
		}

		_, digest, ok := idx.deleteMin()
		if !ok {
			continue
		}

		if idx.len() > 0 {
			m.queue.PushBack(address)
		} else {
			delete(m.tracked, address)
		}

		tx, ok := m.transactions[digest]
		if !ok {
			log.WithField("digest", digest.String()).Error("tracked digest missing from primary index")
			continue
		}
		delete(m.transactions, digest)

		result, found = tx, true
		break
	}

	m.updateMetrics()
	return result, found
}

// LogSummary writes a single trace-level line describing the mempool's
// current occupancy. It performs no mutation; it is an ambient convenience
// for embedders that want a periodic heartbeat, not one of the three
// mempool operations.
func (m *Mempool) LogSummary(entry *logger.Entry) {
	entry.WithFields(logger.Fields{
		"transactions": len(m.transactions),
		"accounts":     len(m.tracked),
	}).Trace("mempool summary")
}

func (m *Mempool) updateMetrics() {
	m.transactionsGauge.Set(float64(len(m.transactions)))
	m.accountsGauge.Set(float64(len(m.tracked)))
}
