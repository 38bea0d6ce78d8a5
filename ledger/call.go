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
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
)

// Call is a state transition submitted on behalf of an origin participant
type Call interface {
	CallName() string
}

type CreatePostCall struct {
	Content []byte
}

func (CreatePostCall) CallName() string { return "create_post" }

type AddCommentCall struct {
	PostId  content.PostId
	Content []byte
}

func (AddCommentCall) CallName() string { return "add_comment" }

type TipPostCall struct {
	PostId content.PostId
	Amount currency.Balance
}

func (TipPostCall) CallName() string { return "tip_post" }

type CreateClaimCall struct {
	Key []byte
}

func (CreateClaimCall) CallName() string { return "create_claim" }

type RevokeClaimCall struct {
	Key []byte
}

func (RevokeClaimCall) CallName() string { return "revoke_claim" }

type TransferClaimCall struct {
	NewOwner identity.ParticipantId
	Key      []byte
}

func (TransferClaimCall) CallName() string { return "transfer_claim" }

// Result describes a committed call
type Result struct {
	// PostId is set by CreatePostCall
	PostId content.PostId
	Height uint64
	Events []event.Event
}
