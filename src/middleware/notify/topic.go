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
	"reflect"
	"sync"
)

type Message interface {
	GetRaw() []byte
	GetData() interface{}
}

type DummyMessage struct {
}

func (d *DummyMessage) GetRaw() []byte {
	return []byte{}
}
func (d *DummyMessage) GetData() interface{} {
	return struct{}{}
}

type Handler func(message Message)

type Topic struct {
	Id       string
	handlers []Handler
	lock     sync.RWMutex
}

func (topic *Topic) Subscribe(h Handler) {
	topic.lock.Lock()
	defer topic.lock.Unlock()

	// check duplicated
	v := reflect.ValueOf(h).Pointer()
	for _, handler := range topic.handlers {
		v1 := reflect.ValueOf(handler).Pointer()
		if v == v1 {
			return
		}
	}

	topic.handlers = append(topic.handlers, h)
}

func (topic *Topic) UnSubscribe(h Handler) {
	topic.lock.Lock()
	defer topic.lock.Unlock()

	v := reflect.ValueOf(h).Pointer()
	for i, handler := range topic.handlers {
		v1 := reflect.ValueOf(handler).Pointer()
		if v == v1 {
			topic.handlers = append(topic.handlers[:i], topic.handlers[i+1:]...)
			return
		}
	}
}

// Handle runs every handler inline, in subscription order. Domain hooks
// mutate the same state transaction as the publisher, so dispatch stays on
// the calling goroutine and keeps a total order.
func (topic *Topic) Handle(message Message) {
	topic.lock.RLock()
	handlers := make([]Handler, len(topic.handlers))
	copy(handlers, topic.handlers)
	topic.lock.RUnlock()

	for _, h := range handlers {
		h(message)
	}
}
