// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"github.com/blinklabs-io/folio/claims"
	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/identity"
)

// Post returns a stored post
func (ls *LedgerState) Post(postId content.PostId) (content.Post, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.content.Post(txn, postId)
}

// Comments returns the comments on a post in submission order
func (ls *LedgerState) Comments(postId content.PostId) ([]content.Comment, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.content.Comments(txn, postId)
}

// PostsByAuthor returns an author's posts, oldest first
func (ls *LedgerState) PostsByAuthor(
	author identity.ParticipantId,
) ([]content.PostSummary, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.content.PostsByAuthor(txn, author)
}

// Claim returns the current record for a claim key
func (ls *LedgerState) Claim(key []byte) (claims.Claim, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.claims.Claim(txn, key)
}

// ClaimsByOwner returns the claims held by owner, oldest first
func (ls *LedgerState) ClaimsByOwner(
	owner identity.ParticipantId,
) ([]claims.OwnedClaim, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.claims.ClaimsByOwner(txn, owner)
}

// Balance returns the free balance of a participant
func (ls *LedgerState) Balance(who identity.ParticipantId) (currency.Balance, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	return ls.accounts.Balance(txn, who)
}
