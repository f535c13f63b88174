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
	"fmt"

	"com.terrabio.regen/node/src/common"
)

// ErasPrecision is the fixed-point unit of ElapsedErasSince: one era equals
// 100000 units.
const ErasPrecision = 100000

// EraClock folds block height into eras and epochs. Eras are 1-indexed, the
// deploy block sits in era 1; an epoch spans halving eras.
type EraClock struct {
	deployBlock     uint64
	blocksPerEra    uint64
	halving         uint64
	safeguardWindow uint64
}

var EraClockImpl *EraClock

func initEraClock(conf *common.ProtocolConf) {
	EraClockImpl = NewEraClock(conf)
}

func NewEraClock(conf *common.ProtocolConf) *EraClock {
	if nil == conf {
		panic("era clock: missing configuration")
	}
	if 0 == conf.BlocksPerEra {
		panic("era clock: blocksPerEra must be positive")
	}
	if 0 == conf.Halving {
		panic("era clock: halving must be positive")
	}
	return &EraClock{
		deployBlock:     conf.DeployBlock,
		blocksPerEra:    conf.BlocksPerEra,
		halving:         conf.Halving,
		safeguardWindow: conf.SafeguardWindow,
	}
}

func (clock *EraClock) CurrentEra(height uint64) uint64 {
	if height < clock.deployBlock {
		panic(fmt.Sprintf("era clock: height %d before deploy block %d", height, clock.deployBlock))
	}
	return (height-clock.deployBlock)/clock.blocksPerEra + 1
}

func (clock *EraClock) EpochOf(era uint64) uint64 {
	if 0 == era {
		panic("era clock: era 0 does not exist")
	}
	return (era-1)/clock.halving + 1
}

func (clock *EraClock) Halving() uint64 {
	return clock.halving
}

// EraEndBoundary is the first block of era+1.
func (clock *EraClock) EraEndBoundary(era uint64) uint64 {
	return clock.deployBlock + era*clock.blocksPerEra
}

// BlocksUntilEraEnd is positive while the era runs, zero at its boundary and
// negative afterwards.
func (clock *EraClock) BlocksUntilEraEnd(era, height uint64) int64 {
	return int64(clock.EraEndBoundary(era)) - int64(height)
}

// ElapsedErasSince measures in ErasPrecision units how far behind the end of
// era the given height is, zero while the era is still running.
func (clock *EraClock) ElapsedErasSince(era, height uint64) uint64 {
	boundary := clock.EraEndBoundary(era)
	if height < boundary {
		return 0
	}
	return (height - boundary) * ErasPrecision / clock.blocksPerEra
}

// InSafeguardWindow reports whether height falls into the closing stretch of
// its era, where fresh submissions and accepts are blocked.
func (clock *EraClock) InSafeguardWindow(height uint64) bool {
	era := clock.CurrentEra(height)
	return clock.BlocksUntilEraEnd(era, height) <= int64(clock.safeguardWindow)
}
