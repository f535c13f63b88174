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

package state

import (
	"bytes"
	"sort"
	"sync"

	"com.terrabio.regen/node/src/common"
	xdb "com.terrabio.regen/node/src/middleware/db"
)

type Storage map[string][]byte

// bucketObject caches one bucket of the state. A nil cached value marks a
// deleted key; dirtyStorage holds everything pending flush. Unlike a
// per-block object it lives across commits, so the dirty callback fires on
// every write.
type bucketObject struct {
	address common.Address

	cachedLock    sync.RWMutex
	cachedStorage Storage // cache of original entries to dedup rewrites
	dirtyStorage  Storage // entries that need to be flushed to disk

	onDirty func(bucket common.Address)
}

func newBucketObject(address common.Address, onDirty func(bucket common.Address)) *bucketObject {
	return &bucketObject{
		address:       address,
		cachedStorage: make(Storage),
		dirtyStorage:  make(Storage),
		onDirty:       onDirty,
	}
}

func (object *bucketObject) getData(state *StateDB, key []byte) []byte {
	object.cachedLock.RLock()
	// If we have the original value cached, return that
	value, exists := object.cachedStorage[string(key)]
	object.cachedLock.RUnlock()
	if exists {
		return value
	}

	// Otherwise load the value from the database
	return object.getCommittedData(state, key)
}

func (object *bucketObject) getCommittedData(state *StateDB, key []byte) []byte {
	value, err := state.store.Get(object.address, key)
	if err != nil {
		state.setError(err)
		return nil
	}

	if value != nil {
		object.cachedLock.Lock()
		object.cachedStorage[string(key)] = value
		object.cachedLock.Unlock()
	}
	return value
}

// setData updates a value in bucket storage, journaling the previous value.
func (object *bucketObject) setData(state *StateDB, key []byte, value []byte) {
	preValue := object.getData(state, key)
	if 0 == bytes.Compare(value, preValue) {
		return
	}

	state.transitions = append(state.transitions, storageChange{
		bucket:   &object.address,
		key:      key,
		prevalue: preValue,
	})
	object.write(key, value)
}

func (object *bucketObject) write(key []byte, value []byte) {
	object.cachedLock.Lock()
	object.cachedStorage[string(key)] = value
	object.cachedLock.Unlock()
	object.dirtyStorage[string(key)] = value

	if object.onDirty != nil {
		object.onDirty(object.address)
	}
}

// flush stages every dirty key into the batch, keys in sorted order, and
// keeps the shared read cache coherent.
func (object *bucketObject) flush(store Database, batch xdb.Batch) error {
	keys := make([]string, 0, len(object.dirtyStorage))
	for key := range object.dirtyStorage {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := object.dirtyStorage[key]
		composite := CompositeKey(object.address, []byte(key))
		if 0 == len(value) {
			if err := batch.Delete(composite); err != nil {
				return err
			}
		} else {
			if err := batch.Put(composite, value); err != nil {
				return err
			}
		}
		store.Cache(object.address, []byte(key), value)
		delete(object.dirtyStorage, key)
	}
	return nil
}
