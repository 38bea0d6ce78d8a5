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

package models

import "errors"

// Claim is the metadata index row for an active claim. Revoked claims have
// their row removed
type Claim struct {
	ClaimKey      []byte `gorm:"uniqueIndex"`
	Owner         []byte `gorm:"index;size:28"`
	ID            uint   `gorm:"primarykey"`
	ClaimedHeight uint64 `gorm:"index"`
}

func (Claim) TableName() string {
	return "claim"
}

var ErrClaimNotFound = errors.New("claim not found")
