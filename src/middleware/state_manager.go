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

package middleware

import (
	"strconv"
	"sync"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/db"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/storage/state"
)

const stateDBPrefix = "state"

type StateDBManager struct {
	database db.Database
	store    state.Database

	latestStateDB *state.StateDB
	height        uint64

	lock   sync.RWMutex
	logger log.Logger
}

var StateDBManagerInstance StateDBManager

func initStateDBManager() {
	StateDBManagerInstance = StateDBManager{}
	StateDBManagerInstance.logger = log.GetLoggerByIndex(log.StateLogConfig, strconv.Itoa(common.InstanceIndex))

	database, err := db.NewLDBDatabase(stateDBPrefix, 256, 256)
	if err != nil {
		StateDBManagerInstance.logger.Errorf("init stateDB error: %s", err.Error())
		panic(err)
	}
	StateDBManagerInstance.database = database
	StateDBManagerInstance.store = state.NewDatabase(database)
}

func (manager *StateDBManager) Close() {
	if nil != manager.database {
		manager.database.Close()
	}
}

// GetStateDB opens a fresh StateDB over the backing store.
func (manager *StateDBManager) GetStateDB() *state.StateDB {
	stateDB, err := state.NewStateDB(manager.store)
	if err != nil {
		manager.logger.Errorf("open stateDB error: %s", err.Error())
		panic(err)
	}
	return stateDB
}

func (manager *StateDBManager) GetLatestStateDB() *state.StateDB {
	manager.lock.RLock()
	defer manager.lock.RUnlock()

	return manager.latestStateDB
}

func (manager *StateDBManager) SetLatestStateDB(latestStateDB *state.StateDB, height uint64) {
	manager.lock.Lock()
	defer manager.lock.Unlock()

	manager.latestStateDB = latestStateDB
	manager.height = height
}

func (manager *StateDBManager) Height() uint64 {
	manager.lock.RLock()
	defer manager.lock.RUnlock()

	return manager.height
}
