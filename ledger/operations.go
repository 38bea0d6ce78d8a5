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
	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/identity"
)

func (ls *LedgerState) CreatePost(
	author identity.ParticipantId,
	data []byte,
) (content.PostId, error) {
	result, err := ls.Dispatch(author, CreatePostCall{Content: data})
	if err != nil {
		return content.PostId{}, err
	}
	return result.PostId, nil
}

func (ls *LedgerState) AddComment(
	author identity.ParticipantId,
	postId content.PostId,
	data []byte,
) error {
	_, err := ls.Dispatch(author, AddCommentCall{PostId: postId, Content: data})
	return err
}

func (ls *LedgerState) TipPost(
	tipper identity.ParticipantId,
	postId content.PostId,
	amount currency.Balance,
) error {
	_, err := ls.Dispatch(tipper, TipPostCall{PostId: postId, Amount: amount})
	return err
}

func (ls *LedgerState) CreateClaim(caller identity.ParticipantId, key []byte) error {
	_, err := ls.Dispatch(caller, CreateClaimCall{Key: key})
	return err
}

func (ls *LedgerState) RevokeClaim(caller identity.ParticipantId, key []byte) error {
	_, err := ls.Dispatch(caller, RevokeClaimCall{Key: key})
	return err
}

func (ls *LedgerState) TransferClaim(
	caller identity.ParticipantId,
	newOwner identity.ParticipantId,
	key []byte,
) error {
	_, err := ls.Dispatch(caller, TransferClaimCall{NewOwner: newOwner, Key: key})
	return err
}
