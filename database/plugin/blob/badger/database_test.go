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

package badger

import (
	"testing"

	"github.com/blinklabs-io/folio/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...BlobStoreBadgerOptionFunc) *BlobStoreBadger {
	t.Helper()
	store, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestInMemoryDisablesGc(t *testing.T) {
	store := newTestStore(t, WithGc(true))
	assert.False(t, store.gcEnabled)
	assert.Nil(t, store.gcTicker)
}

func TestSetGetDelete(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	val, err := store.Get(txn, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), val)
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(true)
	require.NoError(t, store.Delete(txn, []byte("key")))
	require.NoError(t, txn.Commit())

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("key"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	store := newTestStore(t)
	txn := store.NewTransaction(true)
	require.NoError(t, store.Set(txn, []byte("key"), []byte("value")))
	require.NoError(t, txn.Rollback())
	// A finished transaction can't be reused
	_, err := store.Get(txn, []byte("key"))
	assert.ErrorIs(t, err, types.ErrTxnFinished)

	txn = store.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err = store.Get(txn, []byte("key"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
}

func TestUncommittedWritesAreIsolated(t *testing.T) {
	store := newTestStore(t)
	writer := store.NewTransaction(true)
	require.NoError(t, store.Set(writer, []byte("key"), []byte("value")))
	reader := store.NewTransaction(false)
	_, err := store.Get(reader, []byte("key"))
	assert.ErrorIs(t, err, types.ErrBlobKeyNotFound)
	require.NoError(t, reader.Rollback())
	require.NoError(t, writer.Commit())
}

func TestTransactionFromOtherStore(t *testing.T) {
	store1 := newTestStore(t)
	store2 := newTestStore(t)
	txn := store1.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	_, err := store2.Get(txn, []byte("key"))
	assert.Error(t, err)
}

func TestCommitTimestamp(t *testing.T) {
	store := newTestStore(t)
	ts, err := store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Zero(t, ts)
	txn := store.NewTransaction(true)
	require.NoError(t, store.SetCommitTimestamp(1700000000000, txn))
	require.NoError(t, txn.Commit())
	ts, err = store.GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), ts)
}

func TestMetricsRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	newTestStore(t, WithPromRegistry(registry))
	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "database_blob_lsm_size_bytes")
}
