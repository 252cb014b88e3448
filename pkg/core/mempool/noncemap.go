// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"github.com/google/btree"

	"github.com/commonwarexyz/battleware/pkg/core/data/account"
)

// nonceDegree is the branching factor handed to google/btree. MaxBacklog
// is small enough that this is mostly bookkeeping; it is kept modest so a
// tree never holds more than a couple of internal nodes per account.
const nonceDegree = 8

// nonceEntry is one (nonce, digest) pair tracked for an account.
type nonceEntry struct {
	nonce  uint64
	digest account.Digest
}

func nonceLess(a, b nonceEntry) bool {
	return a.nonce < b.nonce
}

// nonceIndex is the per-account ordered mapping from nonce to digest: it
// supports lowest-nonce and highest-nonce lookup/removal in O(log k) for
// a backlog of k entries.
type nonceIndex struct {
	tree *btree.BTreeG[nonceEntry]
}

func newNonceIndex() *nonceIndex {
	return &nonceIndex{tree: btree.NewG(nonceDegree, nonceLess)}
}

func (n *nonceIndex) len() int {
	return n.tree.Len()
}

func (n *nonceIndex) has(nonce uint64) bool {
	_, ok := n.tree.Get(nonceEntry{nonce: nonce})
	return ok
}

func (n *nonceIndex) insert(nonce uint64, digest account.Digest) {
	n.tree.ReplaceOrInsert(nonceEntry{nonce: nonce, digest: digest})
}

func (n *nonceIndex) deleteMin() (uint64, account.Digest, bool) {
	e, ok := n.tree.DeleteMin()
	if !ok {
		return 0, account.Digest{}, false
	}
	return e.nonce, e.digest, true
}

// deleteMinIfBelow removes and returns the lowest-nonce entry only if its
// nonce is strictly less than watermark. ok is false both when the index is
// empty and when the lowest entry is at or past the watermark; callers
// distinguish the two via len().
func (n *nonceIndex) deleteMinIfBelow(watermark uint64) (uint64, account.Digest, bool) {
	e, ok := n.tree.Min()
	if !ok || e.nonce >= watermark {
		return 0, account.Digest{}, false
	}
	n.tree.DeleteMin()
	return e.nonce, e.digest, true
}

func (n *nonceIndex) deleteMax() (uint64, account.Digest, bool) {
	e, ok := n.tree.DeleteMax()
	if !ok {
		return 0, account.Digest{}, false
	}
	return e.nonce, e.digest, true
}
