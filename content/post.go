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

	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/database/models"
	"github.com/blinklabs-io/folio/database/types"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/blinklabs-io/gouroboros/cbor"
)

// CreatePost stores a post together with its empty comment sequence and
// returns its content address. Creating an identical post again returns the
// same id and keeps the comments already made on it
func (c *Content) CreatePost(
	txn *database.Txn,
	events event.Emitter,
	height uint64,
	author identity.ParticipantId,
	content []byte,
) (PostId, error) {
	if err := checkLength(
		content,
		c.limits.PostMinBytes,
		c.limits.PostMaxBytes,
		ErrContentTooShort,
		ErrContentTooLong,
	); err != nil {
		return PostId{}, err
	}
	post := Post{
		Content: content,
		Author:  author,
	}
	postId, err := c.PostIdFor(post)
	if err != nil {
		return PostId{}, err
	}
	postCbor, err := cbor.Encode(&post)
	if err != nil {
		return PostId{}, fmt.Errorf("encode post: %w", err)
	}
	if err := txn.Set(types.PostKey(postId.Bytes()), postCbor); err != nil {
		return PostId{}, err
	}
	commentsKey := types.CommentsKey(postId.Bytes())
	exists, err := txn.Has(commentsKey)
	if err != nil {
		return PostId{}, err
	}
	if !exists {
		emptyCbor, err := cbor.Encode([]Comment{})
		if err != nil {
			return PostId{}, fmt.Errorf("encode comments: %w", err)
		}
		if err := txn.Set(commentsKey, emptyCbor); err != nil {
			return PostId{}, err
		}
	}
	if err := txn.DB().Metadata().AddPost(
		postId.Bytes(),
		author.Bytes(),
		height,
		txn.Metadata(),
	); err != nil {
		return PostId{}, fmt.Errorf("index post: %w", err)
	}
	event.OrDiscard(events).Emit(
		PostCreatedEventType,
		PostCreatedEvent{
			Content: content,
			Author:  author,
			PostId:  postId,
		},
	)
	c.logger.Debug(
		"created post",
		"component", "content",
		"post_id", postId.String(),
		"author", author.String(),
		"existing", exists,
	)
	return postId, nil
}

// AddComment appends a comment to the end of an existing post's comment
// sequence
func (c *Content) AddComment(
	txn *database.Txn,
	events event.Emitter,
	author identity.ParticipantId,
	postId PostId,
	content []byte,
) error {
	if err := checkLength(
		content,
		c.limits.CommentMinBytes,
		c.limits.CommentMaxBytes,
		ErrCommentTooShort,
		ErrCommentTooLong,
	); err != nil {
		return err
	}
	comment := Comment{
		Content: content,
		PostId:  postId,
		Author:  author,
	}
	err := txn.Mutate(
		types.CommentsKey(postId.Bytes()),
		func(cur []byte) ([]byte, error) {
			var comments []Comment
			if _, err := cbor.Decode(cur, &comments); err != nil {
				return nil, fmt.Errorf("decode comments: %w", err)
			}
			comments = append(comments, comment)
			return cbor.Encode(comments)
		},
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if err := txn.DB().Metadata().IncrementCommentCount(
		postId.Bytes(),
		txn.Metadata(),
	); err != nil {
		if errors.Is(err, models.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("index comment: %w", err)
	}
	event.OrDiscard(events).Emit(
		CommentCreatedEventType,
		CommentCreatedEvent{
			Content: content,
			Author:  author,
			PostId:  postId,
		},
	)
	return nil
}

// TipPost transfers amount from tipper to the post's author. The sender
// account must stay alive after the transfer
func (c *Content) TipPost(
	txn *database.Txn,
	events event.Emitter,
	tipper identity.ParticipantId,
	postId PostId,
	amount currency.Balance,
) error {
	post, err := c.getPost(txn, postId)
	if err != nil {
		return err
	}
	if tipper == post.Author {
		return ErrTipperIsAuthor
	}
	if err := c.currency.Transfer(
		txn,
		events,
		tipper,
		post.Author,
		amount,
		currency.KeepAlive,
	); err != nil {
		return fmt.Errorf("tip transfer: %w", err)
	}
	event.OrDiscard(events).Emit(
		TippedEventType,
		TippedEvent{
			Tipper: tipper,
			PostId: postId,
		},
	)
	return nil
}
