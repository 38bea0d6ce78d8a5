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

// Package content implements the content ledger: posts addressed by the hash
// of their content, append-only comment sequences and tips to post authors.
package content

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/blinklabs-io/gouroboros/cbor"
	lcommon "github.com/blinklabs-io/gouroboros/ledger/common"
	gocache "github.com/patrickmn/go-cache"
)

const (
	PostCreatedEventType    event.EventType = "content.post_created"
	CommentCreatedEventType event.EventType = "content.comment_created"
	TippedEventType         event.EventType = "content.tipped"

	DefaultPostMinBytes    = 64
	DefaultPostMaxBytes    = 4096
	DefaultCommentMinBytes = 64
	DefaultCommentMaxBytes = 1024

	DefaultPostCacheTTL = 10 * time.Minute
)

var (
	ErrContentTooShort = errors.New("post content too short")
	ErrContentTooLong  = errors.New("post content too long")
	ErrCommentTooShort = errors.New("comment content too short")
	ErrCommentTooLong  = errors.New("comment content too long")
	ErrPostNotFound    = errors.New("post not found")
	ErrTipperIsAuthor  = errors.New("tipper is the post author")
	ErrInvalidPostId   = errors.New("invalid post id")
)

type PostId = lcommon.Blake2b256

// ParsePostId decodes a hex post id
func ParsePostId(s string) (PostId, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PostId{}, fmt.Errorf("%w: %w", ErrInvalidPostId, err)
	}
	if len(raw) != lcommon.Blake2b256Size {
		return PostId{}, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidPostId,
			lcommon.Blake2b256Size,
			len(raw),
		)
	}
	return lcommon.NewBlake2b256(raw), nil
}

type Post struct {
	cbor.StructAsArray
	Content []byte
	Author  identity.ParticipantId
}

type Comment struct {
	cbor.StructAsArray
	Content []byte
	PostId  PostId
	Author  identity.ParticipantId
}

type PostCreatedEvent struct {
	Content []byte
	Author  identity.ParticipantId
	PostId  PostId
}

type CommentCreatedEvent struct {
	Content []byte
	Author  identity.ParticipantId
	PostId  PostId
}

type TippedEvent struct {
	Tipper identity.ParticipantId
	PostId PostId
}

// Limits holds the exclusive byte length bounds for posts and comments. A
// length equal to either bound is rejected
type Limits struct {
	PostMinBytes    uint32
	PostMaxBytes    uint32
	CommentMinBytes uint32
	CommentMaxBytes uint32
}

func DefaultLimits() Limits {
	return Limits{
		PostMinBytes:    DefaultPostMinBytes,
		PostMaxBytes:    DefaultPostMaxBytes,
		CommentMinBytes: DefaultCommentMinBytes,
		CommentMaxBytes: DefaultCommentMaxBytes,
	}
}

type Config struct {
	Hasher   identity.Hasher
	Currency currency.Currency
	Logger   *slog.Logger
	// Limits left at zero value use DefaultLimits
	Limits       Limits
	PostCacheTTL time.Duration
}

// Content is the content ledger. It holds no ledger state of its own: every
// operation reads and writes through the transaction it is given
type Content struct {
	hasher    identity.Hasher
	currency  currency.Currency
	logger    *slog.Logger
	limits    Limits
	postCache *gocache.Cache
}

func New(cfg Config) (*Content, error) {
	if cfg.Currency == nil {
		return nil, errors.New("content: currency must be provided")
	}
	c := &Content{
		hasher:   cfg.Hasher,
		currency: cfg.Currency,
		logger:   cfg.Logger,
		limits:   cfg.Limits,
	}
	if c.hasher == nil {
		c.hasher = identity.Blake2b256Hasher{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if c.limits == (Limits{}) {
		c.limits = DefaultLimits()
	}
	if c.limits.PostMinBytes >= c.limits.PostMaxBytes ||
		c.limits.CommentMinBytes >= c.limits.CommentMaxBytes {
		return nil, fmt.Errorf("content: invalid limits %+v", c.limits)
	}
	ttl := cfg.PostCacheTTL
	if ttl <= 0 {
		ttl = DefaultPostCacheTTL
	}
	c.postCache = gocache.New(ttl, 2*ttl)
	return c, nil
}

// Limits returns the active length bounds
func (c *Content) Limits() Limits {
	return c.limits
}

// PostIdFor returns the content address of a post
func (c *Content) PostIdFor(post Post) (PostId, error) {
	return identity.ContentAddress(c.hasher, &post)
}

func checkLength(data []byte, minLen, maxLen uint32, errShort, errLong error) error {
	l := uint64(len(data))
	if l <= uint64(minLen) {
		return fmt.Errorf("%w: %d bytes, need more than %d", errShort, l, minLen)
	}
	if l >= uint64(maxLen) {
		return fmt.Errorf("%w: %d bytes, need fewer than %d", errLong, l, maxLen)
	}
	return nil
}
