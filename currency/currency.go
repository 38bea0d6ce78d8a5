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

// Package currency moves balances between ledger participants.
package currency

import (
	"errors"

	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
)

const (
	TransferEventType event.EventType = "currency.transfer"

	DefaultExistentialDeposit Balance = 1
)

type Balance = uint64

// ExistenceRequirement controls whether a transfer may empty the sender
type ExistenceRequirement int

const (
	// KeepAlive requires the sender to keep at least the existential deposit
	KeepAlive ExistenceRequirement = iota
	// AllowDeath lets the sender drop below the existential deposit, which
	// removes the sender account
	AllowDeath
)

func (r ExistenceRequirement) String() string {
	switch r {
	case KeepAlive:
		return "keep-alive"
	case AllowDeath:
		return "allow-death"
	default:
		return "unknown"
	}
}

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrKeepAlive           = errors.New("transfer would kill sender account")
	ErrExistentialDeposit  = errors.New("value too low to create account")
	ErrOverflow            = errors.New("balance overflow")
)

// Currency performs balance transfers inside a ledger transaction
type Currency interface {
	Transfer(
		txn *database.Txn,
		events event.Emitter,
		from identity.ParticipantId,
		to identity.ParticipantId,
		amount Balance,
		req ExistenceRequirement,
	) error
}

// TransferEvent is emitted for every transfer that moved a non-zero amount
type TransferEvent struct {
	From   identity.ParticipantId
	To     identity.ParticipantId
	Amount Balance
}
