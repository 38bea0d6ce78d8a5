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

package identity_test

import (
	"testing"

	"github.com/blinklabs-io/folio/identity"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	_       struct{} `cbor:",toarray"`
	Content []byte
	Author  identity.ParticipantId
}

func TestContentAddressDeterministic(t *testing.T) {
	h := identity.Blake2b256Hasher{}
	author := identity.ParticipantFromName("alice")
	rec := testRecord{Content: []byte("hello"), Author: author}
	id1, err := identity.ContentAddress(h, rec)
	require.NoError(t, err)
	id2, err := identity.ContentAddress(h, testRecord{Content: []byte("hello"), Author: author})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	other, err := identity.ContentAddress(h, testRecord{
		Content: []byte("hello"),
		Author:  identity.ParticipantFromName("bob"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, id1, other)
}

type fixedHasher struct{}

func (fixedHasher) Hash([]byte) lcommon.Blake2b256 {
	return lcommon.Blake2b256{0x01}
}

func TestContentAddressUsesHasher(t *testing.T) {
	id, err := identity.ContentAddress(fixedHasher{}, testRecord{Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, lcommon.Blake2b256{0x01}, id)
}

func TestParticipantFromName(t *testing.T) {
	assert.Equal(
		t,
		identity.ParticipantFromName("alice"),
		identity.ParticipantFromName("alice"),
	)
	assert.NotEqual(
		t,
		identity.ParticipantFromName("alice"),
		identity.ParticipantFromName("bob"),
	)
}

func TestParseParticipantRoundTrip(t *testing.T) {
	alice := identity.ParticipantFromName("alice")
	parsed, err := identity.ParseParticipant(alice.String())
	require.NoError(t, err)
	assert.Equal(t, alice, parsed)
	assert.Regexp(t, "^folio1", alice.String())
}

func TestParseParticipantHex(t *testing.T) {
	alice := identity.ParticipantFromName("alice")
	parsed, err := identity.ParseParticipant(lcommon.NewBlake2b224(alice.Bytes()).String())
	require.NoError(t, err)
	assert.Equal(t, alice, parsed)
}

func TestParseParticipantInvalid(t *testing.T) {
	for _, input := range []string{"", "zz", "abcd", "folio1invalid"} {
		_, err := identity.ParseParticipant(input)
		assert.ErrorIs(t, err, identity.ErrInvalidParticipant, input)
	}
}
