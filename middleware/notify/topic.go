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

// Message names the topic it is published on.
type Message interface {
	TopicID() string
}

type Handler func(message Message)

// Topic keeps its handlers in subscription order. Handlers run on the
// publisher's goroutine and must not block.
type Topic struct {
	ID       string
	handlers []Handler
	lock     sync.RWMutex
}

func (topic *Topic) Subscribe(h Handler) {
	topic.lock.Lock()
	defer topic.lock.Unlock()

	topic.handlers = append(topic.handlers, h)
}

// Handle runs every handler with message. The lock is not held while they run,
// so a handler may subscribe or publish.
func (topic *Topic) Handle(message Message) int {
	topic.lock.RLock()
	handlers := topic.handlers[:len(topic.handlers):len(topic.handlers)]
	topic.lock.RUnlock()

	for _, h := range handlers {
		h(message)
	}
	return len(handlers)
}
