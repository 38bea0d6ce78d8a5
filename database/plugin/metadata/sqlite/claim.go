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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/folio/database/models"
	"github.com/blinklabs-io/folio/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetClaim creates or replaces the index row for a claim key
func (d *MetadataStoreSqlite) SetClaim(
	claimKey []byte,
	owner []byte,
	height uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpItem := models.Claim{
		ClaimKey:      claimKey,
		Owner:         owner,
		ClaimedHeight: height,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "claim_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner", "claimed_height"}),
	}).Create(&tmpItem)
	return result.Error
}

// DeleteClaim removes the index row for a claim key
func (d *MetadataStoreSqlite) DeleteClaim(
	claimKey []byte,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("claim_key = ?", claimKey).Delete(&models.Claim{})
	return result.Error
}

// GetClaim returns the index row for a claim key
func (d *MetadataStoreSqlite) GetClaim(
	claimKey []byte,
	txn types.Txn,
) (*models.Claim, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Claim
	result := db.Where("claim_key = ?", claimKey).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrClaimNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// GetClaimsByOwner returns the index rows for an owner's claims, oldest first
func (d *MetadataStoreSqlite) GetClaimsByOwner(
	owner []byte,
	txn types.Txn,
) ([]models.Claim, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Claim
	result := db.Where("owner = ?", owner).
		Order("claimed_height, id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
