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

// Package claims implements an ownership registry for opaque claim keys.
package claims

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

const (
	ClaimCreatedEventType event.EventType = "claims.claim_created"
	ClaimRevokedEventType event.EventType = "claims.claim_revoked"
)

var (
	ErrClaimAlreadyExists = errors.New("claim already exists")
	ErrClaimNotExist      = errors.New("claim does not exist")
	ErrNotClaimOwner      = errors.New("caller is not the claim owner")
	ErrClaimKeyEmpty      = errors.New("claim key is empty")
)

// Claim is the stored ownership record of a claim key
type Claim struct {
	cbor.StructAsArray
	Owner     identity.ParticipantId
	CreatedAt uint64
}

// ClaimCreatedEvent is emitted when a claim is created or transferred. On
// transfer Owner is the new owner
type ClaimCreatedEvent struct {
	Owner identity.ParticipantId
	Key   []byte
}

type ClaimRevokedEvent struct {
	Owner identity.ParticipantId
	Key   []byte
}

// OwnedClaim pairs a claim key with its record
type OwnedClaim struct {
	Key   []byte
	Claim Claim
}

type Config struct {
	Logger *slog.Logger
}

type Registry struct {
	logger *slog.Logger
}

func New(cfg Config) *Registry {
	r := &Registry{
		logger: cfg.Logger,
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return r
}

// CreateClaim records caller as the owner of key at the given height
func (r *Registry) CreateClaim(
	txn *database.Txn,
	events event.Emitter,
	height uint64,
	caller identity.ParticipantId,
	key []byte,
) error {
	if len(key) == 0 {
		return ErrClaimKeyEmpty
	}
	exists, err := txn.Has(types.ClaimKey(key))
	if err != nil {
		return err
	}
	if exists {
		return ErrClaimAlreadyExists
	}
	if err := r.putClaim(txn, key, Claim{Owner: caller, CreatedAt: height}); err != nil {
		return err
	}
	event.OrDiscard(events).Emit(
		ClaimCreatedEventType,
		ClaimCreatedEvent{Owner: caller, Key: key},
	)
	r.logger.Debug(
		"created claim",
		"component", "claims",
		"key", fmt.Sprintf("%x", key),
		"owner", caller.String(),
	)
	return nil
}

// RevokeClaim removes a claim owned by caller. The key becomes free to claim
// again by anyone
func (r *Registry) RevokeClaim(
	txn *database.Txn,
	events event.Emitter,
	caller identity.ParticipantId,
	key []byte,
) error {
	if _, err := r.ownedBy(txn, caller, key); err != nil {
		return err
	}
	if err := txn.Delete(types.ClaimKey(key)); err != nil {
		return err
	}
	if err := txn.DB().Metadata().DeleteClaim(key, txn.Metadata()); err != nil {
		return fmt.Errorf("unindex claim: %w", err)
	}
	event.OrDiscard(events).Emit(
		ClaimRevokedEventType,
		ClaimRevokedEvent{Owner: caller, Key: key},
	)
	return nil
}

// TransferClaim hands a claim owned by caller to newOwner. The claim height
// is reset to the transfer height
func (r *Registry) TransferClaim(
	txn *database.Txn,
	events event.Emitter,
	height uint64,
	caller identity.ParticipantId,
	newOwner identity.ParticipantId,
	key []byte,
) error {
	if _, err := r.ownedBy(txn, caller, key); err != nil {
		return err
	}
	if err := r.putClaim(txn, key, Claim{Owner: newOwner, CreatedAt: height}); err != nil {
		return err
	}
	event.OrDiscard(events).Emit(
		ClaimCreatedEventType,
		ClaimCreatedEvent{Owner: newOwner, Key: key},
	)
	return nil
}

// Claim returns the record for key
func (r *Registry) Claim(txn *database.Txn, key []byte) (Claim, error) {
	var ret Claim
	if len(key) == 0 {
		return ret, ErrClaimKeyEmpty
	}
	data, err := txn.Get(types.ClaimKey(key))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return ret, ErrClaimNotExist
		}
		return ret, err
	}
	if _, err := cbor.Decode(data, &ret); err != nil {
		return ret, fmt.Errorf("decode claim: %w", err)
	}
	return ret, nil
}

// ClaimsByOwner returns the claims held by owner, oldest first
func (r *Registry) ClaimsByOwner(
	txn *database.Txn,
	owner identity.ParticipantId,
) ([]OwnedClaim, error) {
	rows, err := txn.DB().Metadata().GetClaimsByOwner(
		owner.Bytes(),
		txn.Metadata(),
	)
	if err != nil {
		return nil, err
	}
	ret := make([]OwnedClaim, 0, len(rows))
	for _, row := range rows {
		ret = append(ret, OwnedClaim{
			Key: row.ClaimKey,
			Claim: Claim{
				Owner:     owner,
				CreatedAt: row.ClaimedHeight,
			},
		})
	}
	return ret, nil
}

func (r *Registry) ownedBy(
	txn *database.Txn,
	caller identity.ParticipantId,
	key []byte,
) (Claim, error) {
	claim, err := r.Claim(txn, key)
	if err != nil {
		return claim, err
	}
	if claim.Owner != caller {
		return claim, ErrNotClaimOwner
	}
	return claim, nil
}

func (r *Registry) putClaim(txn *database.Txn, key []byte, claim Claim) error {
	data, err := cbor.Encode(&claim)
	if err != nil {
		return fmt.Errorf("encode claim: %w", err)
	}
	if err := txn.Set(types.ClaimKey(key), data); err != nil {
		return err
	}
	if err := txn.DB().Metadata().SetClaim(
		key,
		claim.Owner.Bytes(),
		claim.CreatedAt,
		txn.Metadata(),
	); err != nil {
		return fmt.Errorf("index claim: %w", err)
	}
	return nil
}
