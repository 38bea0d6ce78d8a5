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

package types

import (
	"encoding/binary"
	"slices"
)

const (
	PostKeyPrefix     = "post_"
	CommentsKeyPrefix = "comments_"
	ClaimKeyPrefix    = "claim_"
	AccountKeyPrefix  = "account_"
	BlockHeightKey    = "tip_height"
)

func prefixedKey(prefix string, id []byte) []byte {
	return slices.Concat([]byte(prefix), id)
}

// PostKey returns the blob key for a post record
func PostKey(postId []byte) []byte {
	return prefixedKey(PostKeyPrefix, postId)
}

// CommentsKey returns the blob key for the comment list of a post
func CommentsKey(postId []byte) []byte {
	return prefixedKey(CommentsKeyPrefix, postId)
}

// ClaimKey returns the blob key for a claim record
func ClaimKey(claimKey []byte) []byte {
	return prefixedKey(ClaimKeyPrefix, claimKey)
}

// AccountKey returns the blob key for a participant balance
func AccountKey(participant []byte) []byte {
	return prefixedKey(AccountKeyPrefix, participant)
}

func Uint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

func BytesToUint64(input []byte) uint64 {
	if len(input) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(input)
}
