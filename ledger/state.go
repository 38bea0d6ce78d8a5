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

// Package ledger applies calls to the content ledger and claims registry,
// one transaction per call, and publishes the resulting events once the
// transaction has committed.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/folio/claims"
	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/database/types"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/folio/ledger"

const BlockEventType event.EventType = "ledger.block"

var ErrUnknownCall = errors.New("unknown call")

// BlockEvent is published when the block height advances
type BlockEvent struct {
	Height uint64
}

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	Hasher       identity.Hasher
	// Currency overrides the store-backed accounts for tips
	Currency           currency.Currency
	Limits             content.Limits
	ExistentialDeposit currency.Balance
	PostCacheTTL       time.Duration
	// Genesis balances are credited once, when the store is empty
	Genesis map[identity.ParticipantId]currency.Balance
}

// LedgerState owns the ledger modules and serializes calls against them
type LedgerState struct {
	sync.Mutex
	config   LedgerStateConfig
	db       *database.Database
	content  *content.Content
	claims   *claims.Registry
	accounts *currency.Accounts
	metrics  stateMetrics
	height   uint64
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, errors.New("ledger: database must be provided")
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
	}
	ls.metrics.init(cfg.PromRegistry)
	ls.accounts = currency.NewAccounts(currency.AccountsConfig{
		Logger:             cfg.Logger,
		ExistentialDeposit: cfg.ExistentialDeposit,
	})
	var tipCurrency currency.Currency = ls.accounts
	if cfg.Currency != nil {
		tipCurrency = cfg.Currency
	}
	c, err := content.New(content.Config{
		Hasher:       cfg.Hasher,
		Currency:     tipCurrency,
		Logger:       cfg.Logger,
		Limits:       cfg.Limits,
		PostCacheTTL: cfg.PostCacheTTL,
	})
	if err != nil {
		return nil, err
	}
	ls.content = c
	ls.claims = claims.New(claims.Config{Logger: cfg.Logger})
	if err := ls.load(); err != nil {
		return nil, err
	}
	return ls, nil
}

// load reads the persisted block height, applying genesis on an empty store
func (ls *LedgerState) load() error {
	txn := ls.db.Transaction(true)
	err := txn.Do(func(txn *database.Txn) error {
		data, err := txn.Get([]byte(types.BlockHeightKey))
		if err == nil {
			ls.height = types.BytesToUint64(data)
			return nil
		}
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return err
		}
		for who, amount := range ls.config.Genesis {
			if err := ls.accounts.Deposit(txn, who, amount); err != nil {
				return fmt.Errorf("genesis funding for %s: %w", who.String(), err)
			}
		}
		ls.height = 0
		return txn.Set([]byte(types.BlockHeightKey), types.Uint64ToBytes(0))
	})
	if err != nil {
		return fmt.Errorf("load ledger state: %w", err)
	}
	ls.metrics.blockHeight.Set(float64(ls.height))
	ls.config.Logger.Debug(
		"loaded ledger state",
		"component", "ledger",
		"height", ls.height,
		"genesis_accounts", len(ls.config.Genesis),
	)
	return nil
}

// CurrentHeight returns the current block height
func (ls *LedgerState) CurrentHeight() uint64 {
	ls.Lock()
	defer ls.Unlock()
	return ls.height
}

// AdvanceBlock moves the block height forward by one and returns the new
// height
func (ls *LedgerState) AdvanceBlock() (uint64, error) {
	ls.Lock()
	defer ls.Unlock()
	next := ls.height + 1
	err := ls.db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Set([]byte(types.BlockHeightKey), types.Uint64ToBytes(next))
	})
	if err != nil {
		return ls.height, fmt.Errorf("advance block: %w", err)
	}
	ls.height = next
	ls.metrics.blockHeight.Set(float64(next))
	if ls.config.EventBus != nil {
		ls.config.EventBus.Publish(
			BlockEventType,
			event.NewEvent(BlockEventType, BlockEvent{Height: next}),
		)
	}
	return next, nil
}

// Fund credits a participant outside of any call. It backs development
// tooling that has no genesis to work from
func (ls *LedgerState) Fund(
	who identity.ParticipantId,
	amount currency.Balance,
) error {
	ls.Lock()
	defer ls.Unlock()
	return ls.db.Transaction(true).Do(func(txn *database.Txn) error {
		return ls.accounts.Deposit(txn, who, amount)
	})
}

// Dispatch applies call on behalf of origin. The call runs in its own
// transaction: on error nothing is written and no event is published
func (ls *LedgerState) Dispatch(
	origin identity.ParticipantId,
	call Call,
) (Result, error) {
	if call == nil {
		return Result{}, ErrUnknownCall
	}
	callName := call.CallName()
	_, span := otel.Tracer(tracerName).Start(
		context.Background(),
		"ledger.dispatch",
		trace.WithAttributes(
			attribute.String("call", callName),
			attribute.String("origin", origin.String()),
		),
	)
	defer span.End()
	ls.Lock()
	defer ls.Unlock()
	span.SetAttributes(attribute.Int64("height", int64(ls.height))) //nolint:gosec
	start := time.Now()
	var events event.Buffer
	result := Result{Height: ls.height}
	err := ls.db.Transaction(true).Do(func(txn *database.Txn) error {
		return ls.apply(txn, &events, origin, call, &result)
	})
	ls.metrics.callDuration.WithLabelValues(callName).Observe(
		time.Since(start).Seconds(),
	)
	if err != nil {
		events.Reset()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.metrics.callsTotal.WithLabelValues(callName, "error").Inc()
		ls.config.Logger.Debug(
			"call failed",
			"component", "ledger",
			"call", callName,
			"origin", origin.String(),
			"error", err,
		)
		return Result{}, err
	}
	ls.metrics.callsTotal.WithLabelValues(callName, "ok").Inc()
	result.Events = events.Events()
	events.PublishTo(ls.config.EventBus)
	return result, nil
}

func (ls *LedgerState) apply(
	txn *database.Txn,
	events event.Emitter,
	origin identity.ParticipantId,
	call Call,
	result *Result,
) error {
	switch c := call.(type) {
	case CreatePostCall:
		postId, err := ls.content.CreatePost(txn, events, ls.height, origin, c.Content)
		if err != nil {
			return err
		}
		result.PostId = postId
		return nil
	case AddCommentCall:
		return ls.content.AddComment(txn, events, origin, c.PostId, c.Content)
	case TipPostCall:
		return ls.content.TipPost(txn, events, origin, c.PostId, c.Amount)
	case CreateClaimCall:
		return ls.claims.CreateClaim(txn, events, ls.height, origin, c.Key)
	case RevokeClaimCall:
		return ls.claims.RevokeClaim(txn, events, origin, c.Key)
	case TransferClaimCall:
		return ls.claims.TransferClaim(txn, events, ls.height, origin, c.NewOwner, c.Key)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCall, call)
	}
}
