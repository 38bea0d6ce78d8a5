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

package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSubscriberDeliverNonBlocking(t *testing.T) {
	const bufferSize = 5
	sub := newChannelSubscriber(bufferSize)
	for i := range bufferSize {
		require.NoError(t, sub.Deliver(NewEvent("test", i)))
	}
	assert.ErrorIs(t, sub.Deliver(NewEvent("test", bufferSize)), ErrSubscriberFull)
	sub.Close()
	// Deliver after Close drops silently
	assert.NoError(t, sub.Deliver(NewEvent("test", 0)))
	// Close is idempotent
	sub.Close()
}

func TestUnsubscribeRemovesEmptyType(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Close()
	subId, _ := eb.Subscribe("test.remove")
	eb.Unsubscribe("test.remove", subId)
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	_, ok := eb.subscribers["test.remove"]
	assert.False(t, ok)
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Close()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			subId, ch := eb.Subscribe("test.race")
			for range 3 {
				select {
				case <-ch:
				default:
				}
			}
			eb.Unsubscribe("test.race", subId)
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				eb.Publish("test.race", NewEvent("test.race", i))
			}
		}()
	}
	wg.Wait()
}

func TestBufferPublishesInOrder(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Close()
	_, ch := eb.Subscribe("test.buffer")
	var buf Buffer
	buf.Emit("test.buffer", 1)
	buf.Emit("test.buffer", 2)
	require.Len(t, buf.Events(), 2)
	buf.PublishTo(eb)
	assert.Empty(t, buf.Events())
	assert.Equal(t, 1, (<-ch).Data)
	assert.Equal(t, 2, (<-ch).Data)
}

func TestBufferResetDiscards(t *testing.T) {
	eb := NewEventBus(nil, nil)
	defer eb.Close()
	_, ch := eb.Subscribe("test.buffer")
	var buf Buffer
	buf.Emit("test.buffer", 1)
	buf.Reset()
	buf.PublishTo(eb)
	assert.Empty(t, ch)
}

func TestOrDiscard(t *testing.T) {
	OrDiscard(nil).Emit("test.discard", nil)
	var buf Buffer
	OrDiscard(&buf).Emit("test.discard", nil)
	assert.Len(t, buf.Events(), 1)
}
