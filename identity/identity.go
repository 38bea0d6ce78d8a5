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

// Package identity derives deterministic identifiers from content. Nothing
// in the ledger is assigned a sequential id: participants are key hashes and
// posts are addressed by the hash of their canonical encoding.
package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	ParticipantIdSize = lcommon.Blake2b224Size
	DigestSize        = lcommon.Blake2b256Size

	// ParticipantHrp is the bech32 human-readable part for participant ids
	ParticipantHrp = "folio"
)

var ErrInvalidParticipant = errors.New("invalid participant id")

// Hasher is the one-way hash supplied by the host. Implementations must be
// pure and deterministic
type Hasher interface {
	Hash([]byte) lcommon.Blake2b256
}

// Blake2b256Hasher is the default Hasher
type Blake2b256Hasher struct{}

func (Blake2b256Hasher) Hash(data []byte) lcommon.Blake2b256 {
	return lcommon.Blake2b256Hash(data)
}

// ContentAddress returns the hash of the canonical CBOR encoding of v
func ContentAddress(h Hasher, v any) (lcommon.Blake2b256, error) {
	encoded, err := cbor.Encode(v)
	if err != nil {
		return lcommon.Blake2b256{}, fmt.Errorf("encode content: %w", err)
	}
	return h.Hash(encoded), nil
}

// ParticipantId identifies a ledger participant by the hash of its key
type ParticipantId [ParticipantIdSize]byte

// ParticipantFromName derives a participant id from a human readable name.
// This is used by the CLI and in tests, where there are no real keys
func ParticipantFromName(name string) ParticipantId {
	return ParticipantId(lcommon.Blake2b224Hash([]byte(name)))
}

// ParticipantFromBytes builds a participant id from its raw bytes
func ParticipantFromBytes(data []byte) (ParticipantId, error) {
	var ret ParticipantId
	if len(data) != ParticipantIdSize {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidParticipant,
			ParticipantIdSize,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// ParseParticipant accepts a bech32 id with the folio prefix or a hex string
func ParseParticipant(s string) (ParticipantId, error) {
	if strings.HasPrefix(s, ParticipantHrp+"1") {
		hrp, data, err := bech32.Decode(s)
		if err != nil {
			return ParticipantId{}, fmt.Errorf("%w: %w", ErrInvalidParticipant, err)
		}
		if hrp != ParticipantHrp {
			return ParticipantId{}, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidParticipant, hrp)
		}
		raw, err := bech32.ConvertBits(data, 5, 8, false)
		if err != nil {
			return ParticipantId{}, fmt.Errorf("%w: %w", ErrInvalidParticipant, err)
		}
		return ParticipantFromBytes(raw)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return ParticipantId{}, fmt.Errorf("%w: %w", ErrInvalidParticipant, err)
	}
	return ParticipantFromBytes(raw)
}

func (p ParticipantId) Bytes() []byte {
	return p[:]
}

// String returns the bech32 encoding of the participant id, or hex if
// encoding fails
func (p ParticipantId) String() string {
	conv, err := bech32.ConvertBits(p[:], 8, 5, true)
	if err != nil {
		return hex.EncodeToString(p[:])
	}
	encoded, err := bech32.Encode(ParticipantHrp, conv)
	if err != nil {
		return hex.EncodeToString(p[:])
	}
	return encoded
}
