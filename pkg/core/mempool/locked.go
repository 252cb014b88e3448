// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"

	"github.com/commonwarexyz/battleware/pkg/core/data/account"
	"github.com/commonwarexyz/battleware/pkg/core/data/transaction"
)

// LockedMempool imposes the single-writer discipline left to the embedder:
// a Mempool itself has no internal mutex, so any consumer sharing one
// across goroutines wraps it here.
type LockedMempool struct {
	mu   sync.Mutex
	pool *Mempool
}

// NewLocked constructs a LockedMempool bounded by the package defaults,
// registering its gauges against reg.
func NewLocked(reg prometheus.Registerer) *LockedMempool {
	return &LockedMempool{pool: New(reg)}
}

// NewLockedWithLimits constructs a LockedMempool bounded by limits,
// registering its gauges against reg.
func NewLockedWithLimits(reg prometheus.Registerer, limits Limits) *LockedMempool {
	return &LockedMempool{pool: NewWithLimits(reg, limits)}
}

// Add admits tx under exclusive access.
func (l *LockedMempool) Add(tx transaction.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool.Add(tx)
}

// Retain garbage-collects public's backlog below minNonce under exclusive
// access.
func (l *LockedMempool) Retain(public account.PublicKey, minNonce uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool.Retain(public, minNonce)
}

// Next drains one transaction under exclusive access.
func (l *LockedMempool) Next() (transaction.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pool.Next()
}

// LogSummary logs the mempool's current occupancy under exclusive access.
func (l *LockedMempool) LogSummary(entry *logger.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool.LogSummary(entry)
}
