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

package currency

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/database/types"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/blinklabs-io/gouroboros/cbor"
)

// Account is the stored balance record of a participant
type Account struct {
	cbor.StructAsArray
	Free Balance
}

type AccountsConfig struct {
	Logger             *slog.Logger
	ExistentialDeposit Balance
}

// Accounts is a Currency that keeps balances in the ledger store. An account
// exists while its balance is at least the existential deposit
type Accounts struct {
	logger             *slog.Logger
	existentialDeposit Balance
}

var _ Currency = (*Accounts)(nil)

func NewAccounts(cfg AccountsConfig) *Accounts {
	a := &Accounts{
		logger:             cfg.Logger,
		existentialDeposit: cfg.ExistentialDeposit,
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if a.existentialDeposit == 0 {
		a.existentialDeposit = DefaultExistentialDeposit
	}
	return a
}

// ExistentialDeposit returns the minimum balance of a live account
func (a *Accounts) ExistentialDeposit() Balance {
	return a.existentialDeposit
}

// Balance returns the free balance of a participant. Missing accounts hold 0
func (a *Accounts) Balance(
	txn *database.Txn,
	who identity.ParticipantId,
) (Balance, error) {
	acct, _, err := a.getAccount(txn, who)
	if err != nil {
		return 0, err
	}
	return acct.Free, nil
}

// Deposit credits a participant out of thin air. It's used for genesis
// funding and development tooling
func (a *Accounts) Deposit(
	txn *database.Txn,
	who identity.ParticipantId,
	amount Balance,
) error {
	if amount == 0 {
		return nil
	}
	acct, _, err := a.getAccount(txn, who)
	if err != nil {
		return err
	}
	if acct.Free+amount < acct.Free {
		return ErrOverflow
	}
	if acct.Free+amount < a.existentialDeposit {
		return ErrExistentialDeposit
	}
	acct.Free += amount
	if err := a.putAccount(txn, who, acct); err != nil {
		return err
	}
	a.logger.Debug(
		"deposited funds",
		"component", "currency",
		"account", who.String(),
		"amount", amount,
	)
	return nil
}

// Transfer moves amount from one participant to another. All checks run
// before the first write, so a failed transfer leaves both accounts untouched
func (a *Accounts) Transfer(
	txn *database.Txn,
	events event.Emitter,
	from identity.ParticipantId,
	to identity.ParticipantId,
	amount Balance,
	req ExistenceRequirement,
) error {
	if amount == 0 || from == to {
		return nil
	}
	fromAcct, _, err := a.getAccount(txn, from)
	if err != nil {
		return err
	}
	if fromAcct.Free < amount {
		return fmt.Errorf(
			"%w: have %d, need %d",
			ErrInsufficientBalance,
			fromAcct.Free,
			amount,
		)
	}
	remaining := fromAcct.Free - amount
	reap := remaining < a.existentialDeposit
	if reap && req == KeepAlive {
		return ErrKeepAlive
	}
	toAcct, toExists, err := a.getAccount(txn, to)
	if err != nil {
		return err
	}
	if toAcct.Free+amount < toAcct.Free {
		return ErrOverflow
	}
	if !toExists && amount < a.existentialDeposit {
		return ErrExistentialDeposit
	}
	if reap {
		if err := txn.Delete(types.AccountKey(from.Bytes())); err != nil {
			return err
		}
		if remaining > 0 {
			a.logger.Debug(
				"dropping dust from reaped account",
				"component", "currency",
				"account", from.String(),
				"dust", remaining,
			)
		}
	} else {
		fromAcct.Free = remaining
		if err := a.putAccount(txn, from, fromAcct); err != nil {
			return err
		}
	}
	toAcct.Free += amount
	if err := a.putAccount(txn, to, toAcct); err != nil {
		return err
	}
	event.OrDiscard(events).Emit(
		TransferEventType,
		TransferEvent{From: from, To: to, Amount: amount},
	)
	return nil
}

func (a *Accounts) getAccount(
	txn *database.Txn,
	who identity.ParticipantId,
) (Account, bool, error) {
	var acct Account
	data, err := txn.Get(types.AccountKey(who.Bytes()))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return acct, false, nil
		}
		return acct, false, err
	}
	if _, err := cbor.Decode(data, &acct); err != nil {
		return acct, false, fmt.Errorf("decode account: %w", err)
	}
	return acct, true, nil
}

func (a *Accounts) putAccount(
	txn *database.Txn,
	who identity.ParticipantId,
	acct Account,
) error {
	data, err := cbor.Encode(&acct)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	return txn.Set(types.AccountKey(who.Bytes()), data)
}
