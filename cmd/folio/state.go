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

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/blinklabs-io/folio/claims"
	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/blinklabs-io/folio/internal/config"
	"github.com/blinklabs-io/folio/ledger"
	"github.com/spf13/cobra"
)

var errNoOrigin = errors.New("no origin participant, use --as")

var observedEventTypes = []event.EventType{
	content.PostCreatedEventType,
	content.CommentCreatedEventType,
	content.TippedEventType,
	claims.ClaimCreatedEventType,
	claims.ClaimRevokedEventType,
	currency.TransferEventType,
	ledger.BlockEventType,
}

// session holds the ledger opened for one command invocation
type session struct {
	logger        *slog.Logger
	db            *database.Database
	bus           *event.EventBus
	ls            *ledger.LedgerState
	traceShutdown func(context.Context) error
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("no config found in context")
	}
	logger := commonRun()
	traceShutdown, err := setupTracing(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	db, err := database.New(&database.Config{
		DataDir:        cfg.DatabasePath,
		BlobPlugin:     cfg.BlobPlugin,
		MetadataPlugin: cfg.MetadataPlugin,
		Logger:         logger,
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		_ = traceShutdown(context.Background())
		return nil, fmt.Errorf("open database: %w", err)
	}
	bus := event.NewEventBus(nil, logger)
	for _, evtType := range observedEventTypes {
		bus.SubscribeFunc(evtType, func(evt event.Event) {
			logger.Debug(
				"ledger event",
				"component", programName,
				"type", evt.Type,
				"data", fmt.Sprintf("%+v", evt.Data),
			)
		})
	}
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Logger:             logger,
		Database:           db,
		EventBus:           bus,
		Limits:             cfg.Limits(),
		ExistentialDeposit: cfg.ExistentialDeposit,
		PostCacheTTL:       cfg.PostCacheTTL,
		Genesis:            cfg.GenesisBalances(),
	})
	if err != nil {
		bus.Close()
		_ = db.Close()
		_ = traceShutdown(context.Background())
		return nil, err
	}
	return &session{
		logger:        logger,
		db:            db,
		bus:           bus,
		ls:            ls,
		traceShutdown: traceShutdown,
	}, nil
}

func (s *session) Close() error {
	s.bus.Close()
	return errors.Join(
		s.db.Close(),
		s.traceShutdown(context.Background()),
	)
}

// withSession opens the ledger, runs fn and closes the ledger again
func withSession(cmd *cobra.Command, fn func(*session) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	return errors.Join(fn(s), s.Close())
}

func origin() (identity.ParticipantId, error) {
	if globalFlags.as == "" {
		return identity.ParticipantId{}, errNoOrigin
	}
	return config.ResolveParticipant(globalFlags.as), nil
}

// parseClaimKey treats 0x-prefixed input as hex and anything else as raw bytes
func parseClaimKey(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		key, err := hex.DecodeString(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid hex claim key: %w", err)
		}
		return key, nil
	}
	return []byte(s), nil
}

func formatClaimKey(key []byte) string {
	return "0x" + hex.EncodeToString(key)
}

func printEvents(w io.Writer, events []event.Event) {
	for _, evt := range events {
		fmt.Fprintf(w, "event %s: %+v\n", evt.Type, evt.Data)
	}
}
