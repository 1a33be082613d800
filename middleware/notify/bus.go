//   Copyright (C) 2018 TASChain
//
//   This program is free software: you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation, either version 3 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License
//   along with this program.  If not, see <https://www.gnu.org/licenses/>.

package notify

import (
	"sync"
)

// BUS is the process wide bus, set up by middleware.InitMiddleware
var BUS *Bus

// Bus routes each message to the topic it names. Delivery is synchronous:
// Publish returns once every handler of the topic has run, in the order they subscribed.
type Bus struct {
	topics map[string]*Topic
	lock   sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{
		topics: make(map[string]*Topic, 10),
	}
}

func (bus *Bus) topic(id string, create bool) *Topic {
	bus.lock.RLock()
	topic, ok := bus.topics[id]
	bus.lock.RUnlock()
	if ok || !create {
		return topic
	}

	bus.lock.Lock()
	defer bus.lock.Unlock()
	if topic, ok = bus.topics[id]; !ok {
		topic = &Topic{ID: id}
		bus.topics[id] = topic
	}
	return topic
}

func (bus *Bus) Subscribe(id string, handler Handler) {
	bus.topic(id, true).Subscribe(handler)
}

// SubscribeAll registers handler on every topic in ids.
func (bus *Bus) SubscribeAll(ids []string, handler Handler) {
	for _, id := range ids {
		bus.Subscribe(id, handler)
	}
}

// Publish delivers message to the handlers of its topic and returns how many ran.
func (bus *Bus) Publish(message Message) int {
	topic := bus.topic(message.TopicID(), false)
	if topic == nil {
		return 0
	}
	return topic.Handle(message)
}
