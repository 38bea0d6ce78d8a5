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

package content

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/database/types"
	"github.com/blinklabs-io/folio/identity"
	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	gocache "github.com/patrickmn/go-cache"
)

// PostSummary is an indexed view of a post
type PostSummary struct {
	PostId       PostId
	Author       identity.ParticipantId
	AddedHeight  uint64
	CommentCount uint64
}

// Post returns the post stored at postId
func (c *Content) Post(txn *database.Txn, postId PostId) (Post, error) {
	return c.getPost(txn, postId)
}

// Comments returns the comments on a post in submission order
func (c *Content) Comments(txn *database.Txn, postId PostId) ([]Comment, error) {
	data, err := txn.Get(types.CommentsKey(postId.Bytes()))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	var comments []Comment
	if _, err := cbor.Decode(data, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

// PostsByAuthor returns the posts created by author, oldest first
func (c *Content) PostsByAuthor(
	txn *database.Txn,
	author identity.ParticipantId,
) ([]PostSummary, error) {
	rows, err := txn.DB().Metadata().GetPostsByAuthor(
		author.Bytes(),
		txn.Metadata(),
	)
	if err != nil {
		return nil, err
	}
	ret := make([]PostSummary, 0, len(rows))
	for _, row := range rows {
		if len(row.PostId) != lcommon.Blake2b256Size {
			return nil, fmt.Errorf("%w: bad index row %d", ErrInvalidPostId, row.ID)
		}
		ret = append(ret, PostSummary{
			PostId:       lcommon.NewBlake2b256(row.PostId),
			Author:       author,
			AddedHeight:  row.AddedHeight,
			CommentCount: row.CommentCount,
		})
	}
	return ret, nil
}

// getPost reads a post, consulting the read cache first. Posts never change
// once written, so only the insertion side needs care: a post read inside a
// read-write transaction may still be rolled back and is not cached
func (c *Content) getPost(txn *database.Txn, postId PostId) (Post, error) {
	cacheKey := postId.String()
	if val, found := c.postCache.Get(cacheKey); found {
		if post, ok := val.(Post); ok {
			return post, nil
		}
	}
	data, err := txn.Get(types.PostKey(postId.Bytes()))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return Post{}, ErrPostNotFound
		}
		return Post{}, err
	}
	var post Post
	if _, err := cbor.Decode(data, &post); err != nil {
		return Post{}, fmt.Errorf("decode post: %w", err)
	}
	if !txn.ReadWrite() {
		c.postCache.Set(cacheKey, post, gocache.DefaultExpiration)
	}
	return post, nil
}
