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

// AddPost inserts the index row for a post. Re-adding an existing post is a
// no-op, matching the content-addressed identity of posts
func (d *MetadataStoreSqlite) AddPost(
	postId []byte,
	author []byte,
	height uint64,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpItem := models.Post{
		PostId:      postId,
		Author:      author,
		AddedHeight: height,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}},
		DoNothing: true,
	}).Create(&tmpItem)
	return result.Error
}

// GetPost returns the index row for a post
func (d *MetadataStoreSqlite) GetPost(
	postId []byte,
	txn types.Txn,
) (*models.Post, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Post
	result := db.Where("post_id = ?", postId).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrPostNotFound
		}
		return nil, result.Error
	}
	return &ret, nil
}

// IncrementCommentCount bumps the comment counter on a post's index row
func (d *MetadataStoreSqlite) IncrementCommentCount(
	postId []byte,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Post{}).
		Where("post_id = ?", postId).
		Update("comment_count", gorm.Expr("comment_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrPostNotFound
	}
	return nil
}

// GetPostsByAuthor returns the index rows for an author's posts, oldest first
func (d *MetadataStoreSqlite) GetPostsByAuthor(
	author []byte,
	txn types.Txn,
) ([]models.Post, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Post
	result := db.Where("author = ?", author).
		Order("added_height, id").
		Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
