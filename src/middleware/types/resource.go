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

package types

import (
	"com.terrabio.regen/node/src/common"
)

// Resource is any challengeable artifact: a report, a research item, a
// contribution, or a reference to a realized inspection. Challenges only run
// inside Era; a resource surviving its creation era is final.
type Resource struct {
	Id    common.Hash
	Kind  byte
	Owner common.Address

	Era       uint64
	CreatedAt uint64

	ContentHash string
	Description string

	Invalidated   bool
	InvalidatedAt uint64
}

func (resource *Resource) Challengeable(currentEra uint64) bool {
	return !resource.Invalidated && resource.Era == currentEra
}

// VoteTally is the per-(era, target) accumulator of invalidation votes. The
// first voter is recorded as the hunter; Closed marks an executed threshold.
type VoteTally struct {
	Era    uint64
	Count  uint32
	Hunter common.Address
	Closed bool
}

// Delation counters per (era, target). Non-binding; a social signal only.
type Delation struct {
	Up   uint32
	Down uint32
}
