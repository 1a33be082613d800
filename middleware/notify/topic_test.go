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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type textMessage struct {
	topic string
	text  string
}

func (m *textMessage) TopicID() string {
	return m.topic
}

func TestTopicHandleInOrder(t *testing.T) {
	var got []string
	topic := &Topic{ID: "t"}
	for i := 0; i < 3; i++ {
		i := i
		topic.Subscribe(func(m Message) {
			got = append(got, fmt.Sprintf("%v:%v", i, m.(*textMessage).text))
		})
	}

	assert.Equal(t, 3, topic.Handle(&textMessage{topic: "t", text: "a"}))
	assert.Equal(t, 3, topic.Handle(&textMessage{topic: "t", text: "b"}))
	assert.Equal(t, []string{"0:a", "1:a", "2:a", "0:b", "1:b", "2:b"}, got)
}

func TestBusPublish(t *testing.T) {
	bus := NewBus()
	var got []string
	record := func(m Message) {
		got = append(got, m.TopicID()+"/"+m.(*textMessage).text)
	}
	bus.SubscribeAll([]string{"x", "y"}, record)

	assert.Equal(t, 1, bus.Publish(&textMessage{topic: "x", text: "1"}))
	assert.Equal(t, 0, bus.Publish(&textMessage{topic: "z", text: "2"}))
	assert.Equal(t, 1, bus.Publish(&textMessage{topic: "y", text: "3"}))

	// delivered before Publish returned, no waiting needed
	assert.Equal(t, []string{"x/1", "y/3"}, got)
}

func TestHandlerMayPublish(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe("first", func(m Message) {
		got = append(got, "first")
		bus.Publish(&textMessage{topic: "second"})
	})
	bus.Subscribe("second", func(m Message) {
		got = append(got, "second")
	})

	bus.Publish(&textMessage{topic: "first"})
	assert.Equal(t, []string{"first", "second"}, got)
}
