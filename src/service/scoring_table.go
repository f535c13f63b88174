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
	"com.terrabio.regen/node/src/common"
)

// ScoringTable turns measured inspection results into points. Each dimension
// reads its own tier table: the highest tier whose threshold is reached wins,
// below the first tier the result scores zero.
type ScoringTable struct {
	treeTiers         []common.ScoreTier
	biodiversityTiers []common.ScoreTier
}

func NewScoringTable(conf *common.ProtocolConf) *ScoringTable {
	if 0 == len(conf.TreeTiers) || 0 == len(conf.BiodiversityTiers) {
		panic("scoring table: tiers missing")
	}
	return &ScoringTable{
		treeTiers:         conf.TreeTiers,
		biodiversityTiers: conf.BiodiversityTiers,
	}
}

func (table *ScoringTable) TreePoints(trees uint64) uint64 {
	return points(table.treeTiers, trees)
}

func (table *ScoringTable) BiodiversityPoints(species uint64) uint64 {
	return points(table.biodiversityTiers, species)
}

func (table *ScoringTable) Score(trees, species uint64) uint64 {
	return table.TreePoints(trees) + table.BiodiversityPoints(species)
}

func points(tiers []common.ScoreTier, value uint64) uint64 {
	result := uint64(0)
	for _, tier := range tiers {
		if value < tier.Threshold {
			break
		}
		result = tier.Points
	}
	return result
}
