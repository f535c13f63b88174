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
	"fmt"
	"sort"
	"sync"

	"com.terrabio.regen/node/src/common"

	"github.com/pkg/errors"
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB is the bucketed kv store every protocol component writes through.
// All mutations are journaled: Snapshot/RevertToSnapshot give operation
// atomicity, Commit flushes dirty keys batch-wise to the backing store.
type StateDB struct {
	store Database

	bucketsLock  *sync.Mutex
	buckets      *sync.Map
	bucketsDirty map[common.Address]struct{}

	// Any error that occurs during a database read is memoized here and
	// will eventually be returned by StateDB.Commit.
	dbErr error

	transitions    transition
	validRevisions []revision
	nextRevisionID int
}

func NewStateDB(store Database) (*StateDB, error) {
	stateDB := &StateDB{
		store:        store,
		buckets:      new(sync.Map),
		bucketsDirty: make(map[common.Address]struct{}),
		bucketsLock:  new(sync.Mutex),
	}
	return stateDB, nil
}

// setError remembers the first non-nil error it is called with.
func (state *StateDB) setError(err error) {
	if state.dbErr == nil {
		state.dbErr = err
	}
}

// Error get the first non-nil error it is called with.
func (state *StateDB) Error() error {
	return state.dbErr
}

// GetData retrieves a value from the given bucket, nil if absent.
func (state *StateDB) GetData(bucket common.Address, key []byte) []byte {
	object := state.getBucketObject(bucket)
	if object != nil {
		return object.getData(state, key)
	}
	return nil
}

func (state *StateDB) SetData(bucket common.Address, key []byte, value []byte) {
	object := state.getBucketObject(bucket)
	if object != nil {
		object.setData(state, key, value)
	}
}

// RemoveData set data nil
func (state *StateDB) RemoveData(bucket common.Address, key []byte) {
	state.SetData(bucket, key, nil)
}

// Database retrieves the low level store.
func (state *StateDB) Database() Database {
	return state.store
}

// getBucketObject never returns nil: buckets are synthetic addresses and
// auto-exist.
func (state *StateDB) getBucketObject(bucket common.Address) *bucketObject {
	if object, ok := state.buckets.Load(bucket); ok {
		return object.(*bucketObject)
	}

	state.bucketsLock.Lock()
	defer state.bucketsLock.Unlock()

	if object, ok := state.buckets.Load(bucket); ok {
		return object.(*bucketObject)
	}

	object := newBucketObject(bucket, state.markBucketDirty)
	state.buckets.Store(bucket, object)
	return object
}

func (state *StateDB) markBucketDirty(bucket common.Address) {
	state.bucketsDirty[bucket] = struct{}{}
}

// Snapshot returns an identifier for the current revision of the state.
func (state *StateDB) Snapshot() int {
	id := state.nextRevisionID
	state.nextRevisionID++
	state.validRevisions = append(state.validRevisions, revision{id, len(state.transitions)})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (state *StateDB) RevertToSnapshot(revid int) {
	idx := sort.Search(len(state.validRevisions), func(i int) bool {
		return state.validRevisions[i].id >= revid
	})
	if idx == len(state.validRevisions) || state.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := state.validRevisions[idx].journalIndex
	for i := len(state.transitions) - 1; i >= snapshot; i-- {
		state.transitions[i].undo(state)
	}
	state.transitions = state.transitions[:snapshot]
	state.validRevisions = state.validRevisions[:idx]
}

func (state *StateDB) clearJournal() {
	state.transitions = nil
	state.validRevisions = state.validRevisions[:0]
}

// Commit writes every dirty key to the backing store in one batch. Buckets
// and keys flush in sorted order so repeated runs hit the disk identically.
func (state *StateDB) Commit() error {
	defer state.clearJournal()

	if state.dbErr != nil {
		return state.dbErr
	}

	batch := state.store.NewBatch()

	dirtyBuckets := make([]common.Address, 0, len(state.bucketsDirty))
	for bucket := range state.bucketsDirty {
		dirtyBuckets = append(dirtyBuckets, bucket)
	}
	sort.Slice(dirtyBuckets, func(i, j int) bool {
		return dirtyBuckets[i].String() < dirtyBuckets[j].String()
	})

	for _, bucket := range dirtyBuckets {
		value, exist := state.buckets.Load(bucket)
		if !exist {
			continue
		}
		object := value.(*bucketObject)
		if err := object.flush(state.store, batch); err != nil {
			return errors.WithMessagef(err, "flush bucket %s", bucket.String())
		}
		delete(state.bucketsDirty, bucket)
	}

	return errors.WithMessage(batch.Write(), "batch write")
}
