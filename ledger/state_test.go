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

package ledger_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/blinklabs-io/folio/claims"
	"github.com/blinklabs-io/folio/content"
	"github.com/blinklabs-io/folio/currency"
	"github.com/blinklabs-io/folio/database"
	"github.com/blinklabs-io/folio/event"
	"github.com/blinklabs-io/folio/identity"
	"github.com/blinklabs-io/folio/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var (
	alice = identity.ParticipantFromName("alice")
	bob   = identity.ParticipantFromName("bob")
)

var testLimits = content.Limits{
	PostMinBytes:    4,
	PostMaxBytes:    64,
	CommentMinBytes: 2,
	CommentMaxBytes: 32,
}

type testEnv struct {
	db       *database.Database
	bus      *event.EventBus
	registry *prometheus.Registry
	ls       *ledger.LedgerState
}

func newTestEnv(t *testing.T, dataDir string) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{
		BlobCacheSize: 1 << 20,
		DataDir:       dataDir,
	})
	require.NoError(t, err)
	bus := event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		bus.Close()
		_ = db.Close()
	})
	registry := prometheus.NewRegistry()
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:           db,
		EventBus:           bus,
		PromRegistry:       registry,
		Limits:             testLimits,
		ExistentialDeposit: 10,
		Genesis: map[identity.ParticipantId]currency.Balance{
			alice: 1000,
			bob:   100,
		},
	})
	require.NoError(t, err)
	return &testEnv{db: db, bus: bus, registry: registry, ls: ls}
}

func recv(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for event")
	}
	return event.Event{}
}

func TestNewLedgerStateRequiresDatabase(t *testing.T) {
	_, err := ledger.NewLedgerState(ledger.LedgerStateConfig{})
	require.Error(t, err)
}

func TestGenesisFunding(t *testing.T) {
	env := newTestEnv(t, "")
	bal, err := env.ls.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, currency.Balance(1000), bal)
	bal, err = env.ls.Balance(bob)
	require.NoError(t, err)
	assert.Equal(t, currency.Balance(100), bal)
	assert.Equal(t, uint64(0), env.ls.CurrentHeight())
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	dataDir := t.TempDir()
	db, err := database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database: db,
		Limits:   testLimits,
		Genesis:  map[identity.ParticipantId]currency.Balance{alice: 500},
	})
	require.NoError(t, err)
	_, err = ls.AdvanceBlock()
	require.NoError(t, err)
	require.NoError(t, ls.CreateClaim(alice, []byte("doc")))
	require.NoError(t, db.Close())

	db, err = database.New(&database.Config{DataDir: dataDir})
	require.NoError(t, err)
	defer db.Close()
	ls, err = ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database: db,
		Limits:   testLimits,
		// Genesis only applies to an empty store
		Genesis: map[identity.ParticipantId]currency.Balance{alice: 999},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ls.CurrentHeight())
	bal, err := ls.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, currency.Balance(500), bal)
	c, err := ls.Claim([]byte("doc"))
	require.NoError(t, err)
	assert.Equal(t, claims.Claim{Owner: alice, CreatedAt: 1}, c)
}

func TestDispatchPublishesAfterCommit(t *testing.T) {
	env := newTestEnv(t, "")
	_, postCh := env.bus.Subscribe(content.PostCreatedEventType)
	result, err := env.ls.Dispatch(alice, ledger.CreatePostCall{Content: []byte("hello folio")})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	evt := recv(t, postCh)
	data, ok := evt.Data.(content.PostCreatedEvent)
	require.True(t, ok, "unexpected event data type %T", evt.Data)
	assert.Equal(t, result.PostId, data.PostId)
	assert.Equal(t, alice, data.Author)

	post, err := env.ls.Post(result.PostId)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello folio"), post.Content)
}

func TestFailedDispatchPublishesNothing(t *testing.T) {
	env := newTestEnv(t, "")
	_, postCh := env.bus.Subscribe(content.PostCreatedEventType)
	_, err := env.ls.Dispatch(alice, ledger.CreatePostCall{Content: []byte("hey")})
	require.ErrorIs(t, err, content.ErrContentTooShort)
	assert.Empty(t, postCh)
	count, err := testutil.GatherAndCount(env.registry, "folio_ledger_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTipPostMovesFunds(t *testing.T) {
	env := newTestEnv(t, "")
	_, tipCh := env.bus.Subscribe(content.TippedEventType)
	_, transferCh := env.bus.Subscribe(currency.TransferEventType)
	postId, err := env.ls.CreatePost(alice, []byte("tip me please"))
	require.NoError(t, err)
	require.NoError(t, env.ls.TipPost(bob, postId, 50))
	assert.Equal(t, content.TippedEvent{Tipper: bob, PostId: postId}, recv(t, tipCh).Data)
	assert.Equal(
		t,
		currency.TransferEvent{From: bob, To: alice, Amount: 50},
		recv(t, transferCh).Data,
	)
	bal, err := env.ls.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, currency.Balance(1050), bal)
	bal, err = env.ls.Balance(bob)
	require.NoError(t, err)
	assert.Equal(t, currency.Balance(50), bal)
}

func TestTipPostFailureLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t, "")
	_, tipCh := env.bus.Subscribe(content.TippedEventType)
	postId, err := env.ls.CreatePost(alice, []byte("tip me please"))
	require.NoError(t, err)
	// bob would drop below the existential deposit
	err = env.ls.TipPost(bob, postId, 95)
	require.ErrorIs(t, err, currency.ErrKeepAlive)
	err = env.ls.TipPost(bob, postId, 101)
	require.ErrorIs(t, err, currency.ErrInsufficientBalance)
	err = env.ls.TipPost(alice, postId, 0)
	require.ErrorIs(t, err, content.ErrTipperIsAuthor)
	assert.Empty(t, tipCh)
	bal, err := env.ls.Balance(bob)
	require.NoError(t, err)
	assert.Equal(t, currency.Balance(100), bal)
}

func TestAdvanceBlock(t *testing.T) {
	env := newTestEnv(t, "")
	_, blockCh := env.bus.Subscribe(ledger.BlockEventType)
	height, err := env.ls.AdvanceBlock()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), height)
	assert.Equal(t, ledger.BlockEvent{Height: 1}, recv(t, blockCh).Data)

	require.NoError(t, env.ls.CreateClaim(alice, []byte("k")))
	_, err = env.ls.AdvanceBlock()
	require.NoError(t, err)
	require.NoError(t, env.ls.TransferClaim(alice, bob, []byte("k")))
	c, err := env.ls.Claim([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, claims.Claim{Owner: bob, CreatedAt: 2}, c)
	assert.Equal(t, uint64(2), env.ls.CurrentHeight())
}

func TestClaimLifecycle(t *testing.T) {
	env := newTestEnv(t, "")
	key := []byte{0xab, 0xcd}
	require.NoError(t, env.ls.CreateClaim(alice, key))
	require.ErrorIs(t, env.ls.CreateClaim(bob, key), claims.ErrClaimAlreadyExists)
	require.NoError(t, env.ls.TransferClaim(alice, bob, key))
	require.ErrorIs(t, env.ls.RevokeClaim(alice, key), claims.ErrNotClaimOwner)
	owned, err := env.ls.ClaimsByOwner(bob)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.NoError(t, env.ls.RevokeClaim(bob, key))
	require.NoError(t, env.ls.CreateClaim(alice, key))
}

type bogusCall struct{}

func (bogusCall) CallName() string { return "bogus" }

func TestDispatchUnknownCall(t *testing.T) {
	env := newTestEnv(t, "")
	_, err := env.ls.Dispatch(alice, bogusCall{})
	require.ErrorIs(t, err, ledger.ErrUnknownCall)
	_, err = env.ls.Dispatch(alice, nil)
	require.ErrorIs(t, err, ledger.ErrUnknownCall)
}

func TestDispatchRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(t.Context())
	})

	env := newTestEnv(t, "")
	require.NoError(t, env.ls.CreateClaim(alice, []byte("doc")))
	require.Error(t, env.ls.CreateClaim(bob, []byte("doc")))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, "ledger.dispatch", span.Name())
		assert.Contains(
			t,
			span.Attributes(),
			attribute.String("call", "create_claim"),
		)
	}
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestConcurrentComments(t *testing.T) {
	env := newTestEnv(t, "")
	postId, err := env.ls.CreatePost(alice, []byte("busy thread"))
	require.NoError(t, err)
	const workers = 8
	const perWorker = 5
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range perWorker {
				assert.NoError(t, env.ls.AddComment(bob, postId, []byte{'c', 'm', byte('a' + i)}))
			}
		}(i)
	}
	wg.Wait()
	comments, err := env.ls.Comments(postId)
	require.NoError(t, err)
	assert.Len(t, comments, workers*perWorker)
	posts, err := env.ls.PostsByAuthor(alice)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, uint64(workers*perWorker), posts[0].CommentCount)
	// Every comment from every worker was applied
	for i := range workers {
		var seen int
		for _, c := range comments {
			if bytes.Equal(c.Content, []byte{'c', 'm', byte('a' + i)}) {
				seen++
			}
		}
		assert.Equal(t, perWorker, seen)
	}
}
