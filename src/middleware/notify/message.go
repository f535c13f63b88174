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
	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/storage/state"
)

// Domain messages carry the live state transaction so handlers join the
// publishing operation atomically.

type InspectionRealizedMessage struct {
	State  *state.StateDB
	Height uint64
	Era    uint64

	Id           common.Hash
	Regenerator  common.Address
	Inspector    common.Address
	Trees        uint64
	Biodiversity uint64
	Score        uint64

	// RegeneratorInspections is the lifetime counter after this realize.
	RegeneratorInspections uint64
	CrossedPoolEntry       bool
	// ActivistInviter is zero unless the regenerator was invited by an activist.
	ActivistInviter common.Address
}

func (m *InspectionRealizedMessage) GetRaw() []byte {
	return m.Id.Bytes()
}
func (m *InspectionRealizedMessage) GetData() interface{} {
	return m
}

type ResourceInvalidatedMessage struct {
	State  *state.StateDB
	Height uint64
	Era    uint64

	Kind  byte
	Id    common.Hash
	Owner common.Address
}

func (m *ResourceInvalidatedMessage) GetRaw() []byte {
	return m.Id.Bytes()
}
func (m *ResourceInvalidatedMessage) GetData() interface{} {
	return m
}

type UserDeniedMessage struct {
	State  *state.StateDB
	Height uint64

	Address  common.Address
	UserType byte
	Inviter  common.Address
}

func (m *UserDeniedMessage) GetRaw() []byte {
	return m.Address.Bytes()
}
func (m *UserDeniedMessage) GetData() interface{} {
	return m
}
