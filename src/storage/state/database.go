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
	"com.terrabio.regen/node/src/common"
	xdb "com.terrabio.regen/node/src/middleware/db"
	lru "github.com/hashicorp/golang-lru"
)

// Number of decoded values kept in the read cache.
const valueCacheSize = 100000

// Database is the backing store of StateDB. Keys are scoped by bucket
// address; values are opaque. Reads go through an LRU cache that commits
// keep coherent.
type Database interface {
	Get(bucket common.Address, key []byte) ([]byte, error)

	NewBatch() xdb.Batch

	// Cache lets commits publish fresh values to the read cache. A nil
	// value marks the key as known-absent.
	Cache(bucket common.Address, key []byte, value []byte)
}

// NewDatabase creates a backing store for state over any kv database.
// The returned database is safe for concurrent use.
func NewDatabase(db xdb.Database) Database {
	cache, _ := lru.New(valueCacheSize)
	return &storageDB{
		db:    db,
		cache: cache,
	}
}

type storageDB struct {
	db    xdb.Database
	cache *lru.Cache
}

// CompositeKey scopes a raw key by its bucket address.
func CompositeKey(bucket common.Address, key []byte) []byte {
	composite := make([]byte, 0, common.AddressLength+len(key))
	composite = append(composite, bucket.Bytes()...)
	composite = append(composite, key...)
	return composite
}

func (db *storageDB) Get(bucket common.Address, key []byte) ([]byte, error) {
	composite := CompositeKey(bucket, key)
	if cached, ok := db.cache.Get(string(composite)); ok {
		value := cached.([]byte)
		if 0 == len(value) {
			return nil, nil
		}
		return common.CopyBytes(value), nil
	}

	value, err := db.db.Get(composite)
	if err != nil {
		// 未找到不算错误
		value = nil
	}
	db.cache.Add(string(composite), common.CopyBytes(value))
	if 0 == len(value) {
		return nil, nil
	}
	return value, nil
}

func (db *storageDB) NewBatch() xdb.Batch {
	return db.db.NewBatch()
}

func (db *storageDB) Cache(bucket common.Address, key []byte, value []byte) {
	db.cache.Add(string(CompositeKey(bucket, key)), common.CopyBytes(value))
}
