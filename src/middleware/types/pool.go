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
	"math/big"
)

// EraStats aggregates one era of one reward pool. TokensClaimed is a base-unit
// big.Int kept as big-endian bytes for serialization.
type EraStats struct {
	TotalLevels   uint64
	ClaimsCount   uint64
	TokensClaimed []byte
}

func (stats *EraStats) Claimed() *big.Int {
	if 0 == len(stats.TokensClaimed) {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(stats.TokensClaimed)
}

func (stats *EraStats) AddClaimed(amount *big.Int) {
	stats.TokensClaimed = new(big.Int).Add(stats.Claimed(), amount).Bytes()
}

// PoolAccountState tracks one account inside one pool. Eras lists every era
// the account ever earned levels in, in grant order; level removal keeps the
// entry (withdrawal lazily skips zero eras).
type PoolAccountState struct {
	OnPool     bool
	EraPointer uint64
	TotalLevel uint64
	Eras       []uint64
}

func (state *PoolAccountState) RecordEra(era uint64) {
	if length := len(state.Eras); 0 == length || state.Eras[length-1] != era {
		state.Eras = append(state.Eras, era)
	}
}

// PoolTotals are the whole-pool aggregates consulted by the invitation and
// voting guards.
type PoolTotals struct {
	TotalLevels uint64
	UsersOnPool uint64
}
