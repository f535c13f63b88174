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

// log before/after lock

package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
)

type Loglock struct {
	lock  sync.RWMutex
	addr  string
	begin time.Time
}

var (
	lockLogger log.Logger
	lock       Loglock
)

func NewLoglock(title string) Loglock {
	loglock := Loglock{
		lock: sync.RWMutex{},
	}
	loglock.addr = fmt.Sprintf("%p", &loglock)
	if lockLogger == nil {
		lockLogger = log.GetLoggerByIndex(log.LockLogConfig, strconv.Itoa(common.InstanceIndex))
	}
	return loglock
}

func (lock *Loglock) Lock(msg string) {
	if 0 != len(msg) {
		lockLogger.Debugf("try to lock: %s, with msg: %s", lock.addr, msg)
	}

	begin := time.Now()
	lock.lock.Lock()
	lock.begin = time.Now()
	cost := time.Since(begin)

	lockLogger.Debugf("locked: %s, with msg: %s, waited: %v", lock.addr, msg, cost)
}

func (lock *Loglock) RLock(msg string) {
	if 0 != len(msg) {
		lockLogger.Debugf("try to Rlock: %s, with msg: %s", lock.addr, msg)
	}

	begin := time.Now()
	lock.lock.RLock()
	lock.begin = time.Now()
	cost := time.Since(begin)

	lockLogger.Debugf("Rlocked: %s, with msg: %s, waited: %v", lock.addr, msg, cost)
}

func (lock *Loglock) Unlock(msg string) {
	if 0 != len(msg) {
		lockLogger.Debugf("try to UnLock: %s, with msg: %s", lock.addr, msg)
	}

	duration := time.Since(lock.begin)
	lock.lock.Unlock()

	lockLogger.Debugf("Unlocked: %s, with msg: %s, duration:%v", lock.addr, msg, duration)
}

func (lock *Loglock) RUnlock(msg string) {
	if 0 != len(msg) {
		lockLogger.Debugf("try to UnRLock: %s, with msg: %s", lock.addr, msg)
	}

	duration := time.Since(lock.begin)
	lock.lock.RUnlock()

	lockLogger.Debugf("UnRlocked: %s, with msg: %s, duration:%v", lock.addr, msg, duration)
}

// LockProtocol serializes every mutating operation against shared state.
func LockProtocol(msg string) {
	lock.Lock(msg)
}

func UnLockProtocol(msg string) {
	lock.Unlock(msg)
}

func RLockProtocol(msg string) {
	lock.RLock(msg)
}

func RUnLockProtocol(msg string) {
	lock.RUnlock(msg)
}
