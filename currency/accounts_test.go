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

package currency_test

import (
	"testing"

	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = identity.ParticipantFromName("alice")
	bob   = identity.ParticipantFromName("bob")
)

func newTestAccounts(t *testing.T, ed currency.Balance) (*database.Database, *currency.Accounts) {
	t.Helper()
	db, err := database.New(&database.Config{BlobCacheSize: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, currency.NewAccounts(currency.AccountsConfig{ExistentialDeposit: ed})
}

func fund(t *testing.T, db *database.Database, a *currency.Accounts, who identity.ParticipantId, amount currency.Balance) {
	t.Helper()
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return a.Deposit(txn, who, amount)
	}))
}

func balance(t *testing.T, db *database.Database, a *currency.Accounts, who identity.ParticipantId) currency.Balance {
	t.Helper()
	txn := db.Transaction(false)
	defer txn.Release()
	bal, err := a.Balance(txn, who)
	require.NoError(t, err)
	return bal
}

func transfer(db *database.Database, a *currency.Accounts, events event.Emitter, from, to identity.ParticipantId, amount currency.Balance, req currency.ExistenceRequirement) error {
	return db.Transaction(true).Do(func(txn *database.Txn) error {
		return a.Transfer(txn, events, from, to, amount, req)
	})
}

func TestDefaultExistentialDeposit(t *testing.T) {
	a := currency.NewAccounts(currency.AccountsConfig{})
	assert.Equal(t, currency.DefaultExistentialDeposit, a.ExistentialDeposit())
}

func TestTransferMovesFunds(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	fund(t, db, a, alice, 100)
	var buf event.Buffer
	require.NoError(t, transfer(db, a, &buf, alice, bob, 40, currency.KeepAlive))
	assert.Equal(t, currency.Balance(60), balance(t, db, a, alice))
	assert.Equal(t, currency.Balance(40), balance(t, db, a, bob))
	require.Len(t, buf.Events(), 1)
	assert.Equal(
		t,
		currency.TransferEvent{From: alice, To: bob, Amount: 40},
		buf.Events()[0].Data,
	)
}

func TestTransferInsufficientBalance(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	fund(t, db, a, alice, 30)
	err := transfer(db, a, nil, alice, bob, 31, currency.AllowDeath)
	require.ErrorIs(t, err, currency.ErrInsufficientBalance)
	assert.Equal(t, currency.Balance(30), balance(t, db, a, alice))
	assert.Equal(t, currency.Balance(0), balance(t, db, a, bob))
}

func TestTransferKeepAlive(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	fund(t, db, a, alice, 100)
	// Leaving exactly the existential deposit is allowed
	require.NoError(t, transfer(db, a, nil, alice, bob, 90, currency.KeepAlive))
	err := transfer(db, a, nil, alice, bob, 1, currency.KeepAlive)
	require.ErrorIs(t, err, currency.ErrKeepAlive)
	assert.Equal(t, currency.Balance(10), balance(t, db, a, alice))
}

func TestTransferAllowDeathReapsSender(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	fund(t, db, a, alice, 100)
	fund(t, db, a, bob, 10)
	require.NoError(t, transfer(db, a, nil, alice, bob, 95, currency.AllowDeath))
	// The remaining 5 is below the existential deposit and is dropped
	assert.Equal(t, currency.Balance(0), balance(t, db, a, alice))
	assert.Equal(t, currency.Balance(105), balance(t, db, a, bob))
}

func TestTransferBelowExistentialDepositToNewAccount(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	fund(t, db, a, alice, 100)
	err := transfer(db, a, nil, alice, bob, 9, currency.KeepAlive)
	require.ErrorIs(t, err, currency.ErrExistentialDeposit)
	assert.Equal(t, currency.Balance(100), balance(t, db, a, alice))
}

func TestTransferZeroAndSelfAreNoops(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	var buf event.Buffer
	// Neither account exists, but nothing is checked or written
	require.NoError(t, transfer(db, a, &buf, alice, bob, 0, currency.KeepAlive))
	require.NoError(t, transfer(db, a, &buf, alice, alice, 50, currency.KeepAlive))
	assert.Empty(t, buf.Events())
	assert.Equal(t, currency.Balance(0), balance(t, db, a, bob))
}

func TestDepositOverflow(t *testing.T) {
	db, a := newTestAccounts(t, 1)
	fund(t, db, a, alice, ^currency.Balance(0))
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return a.Deposit(txn, alice, 1)
	})
	require.ErrorIs(t, err, currency.ErrOverflow)
}

func TestDepositBelowExistentialDeposit(t *testing.T) {
	db, a := newTestAccounts(t, 10)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return a.Deposit(txn, alice, 5)
	})
	require.ErrorIs(t, err, currency.ErrExistentialDeposit)
}

func TestExistenceRequirementString(t *testing.T) {
	assert.Equal(t, "keep-alive", currency.KeepAlive.String())
	assert.Equal(t, "allow-death", currency.AllowDeath.String())
}
