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

package service

import (
	"testing"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/db"
	"com.terrabio.regen/node/src/middleware/notify"
	"com.terrabio.regen/node/src/storage/state"
)

// setupService rebuilds the full service wiring over a fresh in-memory state.
// A fresh bus per test keeps handler subscriptions from stacking up.
func setupService(t *testing.T, env string) *state.StateDB {
	common.InitChainConfig(env)
	notify.BUS = notify.NewBus()
	InitService(common.LocalChainConfig)

	memDB, err := db.NewMemDatabase()
	if err != nil {
		t.Fatalf("mem database error: %s", err.Error())
	}
	stateDB, err := state.NewStateDB(state.NewDatabase(memDB))
	if err != nil {
		t.Fatalf("stateDB error: %s", err.Error())
	}

	// seed the emission reserve like genesis does
	TokenLedgerImpl.SetTotalSupply(stateDB, common.TokenAmount(common.LocalChainConfig.TotalSupply))
	TokenLedgerImpl.IncreaseLocked(stateDB, common.LocalChainConfig.TotalPoolSupply())
	return stateDB
}

func testAddr(tag byte) common.Address {
	raw := make([]byte, common.AddressLength)
	raw[common.AddressLength-1] = tag
	return common.BytesToAddress(raw)
}

// registerUser fails the test on rejection; the bootstrap window of the dev
// preset lets the first few members of every type in without invitations.
func registerUser(t *testing.T, stateDB *state.StateDB, addr common.Address, userType byte, height uint64) {
	area := uint64(0)
	if common.UserTypeRegenerator == userType {
		area = 5000
	}
	if err := CommunityRegistryImpl.AddUser(stateDB, addr, userType, area, height); nil != err {
		t.Fatalf("register %s type %d: %s", addr.ShortS(), userType, err.Error())
	}
}
