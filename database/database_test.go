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

package database_test

import (
	"errors"
	"testing"

	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/database/models"
	"github.com/blinklabs-io/folio/database/plugin/metadata/sqlite"
	"github.com/blinklabs-io/folio/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase(t *testing.T, dataDir string) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		BlobCacheSize: 1 << 20,
		DataDir:       dataDir,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestTxnCommitWritesBothStores(t *testing.T) {
	db := newTestDatabase(t, "")
	postId := []byte("post-id-0123456789abcdef01234567")
	author := []byte("author-0123456789abcdef0123")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := txn.Set([]byte("post_test"), []byte("record")); err != nil {
			return err
		}
		return db.Metadata().AddPost(postId, author, 1, txn.Metadata())
	})
	require.NoError(t, err)

	txn := db.Transaction(false)
	defer txn.Release()
	val, err := txn.Get([]byte("post_test"))
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), val)
	post, err := db.Metadata().GetPost(postId, txn.Metadata())
	require.NoError(t, err)
	assert.Equal(t, author, post.Author)
}

func TestTxnDoRollsBackBothStores(t *testing.T) {
	db := newTestDatabase(t, "")
	postId := []byte("post-id-0123456789abcdef01234567")
	failErr := errors.New("fail")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := txn.Set([]byte("post_test"), []byte("record")); err != nil {
			return err
		}
		if err := db.Metadata().AddPost(postId, []byte("author"), 1, txn.Metadata()); err != nil {
			return err
		}
		return failErr
	})
	require.ErrorIs(t, err, failErr)

	txn := db.Transaction(false)
	defer txn.Release()
	has, err := txn.Has([]byte("post_test"))
	require.NoError(t, err)
	assert.False(t, has)
	_, err = db.Metadata().GetPost(postId, txn.Metadata())
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}

func TestTxnMutate(t *testing.T) {
	db := newTestDatabase(t, "")
	key := []byte("counter")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Mutate(key, func(cur []byte) ([]byte, error) {
			return append(cur, 'x'), nil
		})
	})
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Set(key, []byte("a"))
	}))
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Mutate(key, func(cur []byte) ([]byte, error) {
			return append(cur, 'b'), nil
		})
	}))
	mutateErr := errors.New("mutate failed")
	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Mutate(key, func([]byte) ([]byte, error) {
			return nil, mutateErr
		})
	})
	require.ErrorIs(t, err, mutateErr)

	txn := db.Transaction(false)
	defer txn.Release()
	val, err := txn.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), val)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	db := newTestDatabase(t, "")
	txn := db.Transaction(false)
	defer txn.Release()
	assert.ErrorIs(t, txn.Set([]byte("k"), []byte("v")), types.ErrReadOnlyTxn)
	assert.ErrorIs(t, txn.Delete([]byte("k")), types.ErrReadOnlyTxn)
	assert.ErrorIs(
		t,
		txn.Mutate([]byte("k"), func(b []byte) ([]byte, error) { return b, nil }),
		types.ErrReadOnlyTxn,
	)
}

func TestDeleteMissingKey(t *testing.T) {
	db := newTestDatabase(t, "")
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Delete([]byte("missing"))
	}))
}

func TestCommitTimestampMatchesAfterReopen(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	}))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestCommitTimestampMismatch(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	require.NoError(t, db.Transaction(true).Do(func(txn *database.Txn) error {
		return txn.Set([]byte("k"), []byte("v"))
	}))
	require.NoError(t, db.Close())

	// Simulate a metadata commit that the blob store never saw
	metadataStore, err := sqlite.New(dataDir, nil, nil)
	require.NoError(t, err)
	mTxn := metadataStore.Transaction()
	require.NotNil(t, mTxn)
	require.NoError(t, metadataStore.SetCommitTimestamp(1, mTxn))
	require.NoError(t, mTxn.Commit())
	require.NoError(t, metadataStore.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(1), tsErr.MetadataTimestamp)
	assert.NotEqual(t, int64(1), tsErr.BlobTimestamp)
	require.NotNil(t, db)
	require.NoError(t, db.Close())
}
