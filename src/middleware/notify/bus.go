// Copyright 2021 The RegenProtocol Authors
// This file is part of the RegenProtocol library.
//
// The RegenProtocol library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The RegenProtocol library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the RegenProtocol library. If not, see <http://www.gnu.org/licenses/>.

package notify

import (
	"sync"
)

var BUS *Bus

type Bus struct {
	topics map[string]*Topic
	lock   sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{
		topics: make(map[string]*Topic),
	}
}

func (bus *Bus) Subscribe(id string, handler Handler) {
	bus.getOrCreate(id).Subscribe(handler)
}

func (bus *Bus) UnSubscribe(id string, handler Handler) {
	bus.lock.RLock()
	topic, ok := bus.topics[id]
	bus.lock.RUnlock()

	if ok {
		topic.UnSubscribe(handler)
	}
}

func (bus *Bus) Publish(id string, message Message) {
	bus.lock.RLock()
	topic, ok := bus.topics[id]
	bus.lock.RUnlock()

	if ok {
		topic.Handle(message)
	}
}

func (bus *Bus) getOrCreate(id string) *Topic {
	bus.lock.Lock()
	defer bus.lock.Unlock()

	topic, ok := bus.topics[id]
	if !ok {
		topic = &Topic{Id: id}
		bus.topics[id] = topic
	}
	return topic
}
