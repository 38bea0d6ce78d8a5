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

// Emitter records events produced by a ledger operation
type Emitter interface {
	Emit(eventType EventType, data any)
}

// Buffer is an Emitter that holds events until the enclosing transaction
// commits. A failed operation discards its buffer, so observers never see an
// event for a change that was rolled back
type Buffer struct {
	events []Event
}

func (b *Buffer) Emit(eventType EventType, data any) {
	b.events = append(b.events, NewEvent(eventType, data))
}

// Events returns the recorded events in emission order
func (b *Buffer) Events() []Event {
	return b.events
}

// Reset drops all recorded events
func (b *Buffer) Reset() {
	b.events = nil
}

// PublishTo publishes the recorded events in order and empties the buffer
func (b *Buffer) PublishTo(bus *EventBus) {
	if bus != nil {
		for _, evt := range b.events {
			bus.Publish(evt.Type, evt)
		}
	}
	b.events = nil
}

type discardEmitter struct{}

func (discardEmitter) Emit(EventType, any) {}

// OrDiscard returns e, or an Emitter that drops everything when e is nil
func OrDiscard(e Emitter) Emitter {
	if e == nil {
		return discardEmitter{}
	}
	return e
}
