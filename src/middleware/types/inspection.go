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

const (
	InspectionStatusOpen        = byte(1)
	InspectionStatusAccepted    = byte(2)
	InspectionStatusInspected   = byte(3)
	InspectionStatusInvalidated = byte(4)
)

type Inspection struct {
	Id          common.Hash
	Regenerator common.Address
	Inspector   common.Address
	Status      byte

	Area        uint64
	RequestedAt uint64
	AcceptedAt  uint64
	Deadline    uint64 // 接受后的截止高度
	RealizedAt  uint64
	Era         uint64 // realize时的era

	Trees        uint64
	Biodiversity uint64
	Score        uint64
	PostedLevels uint64 // 上链的level数，用于回退

	InvalidatedAt uint64

	EvidenceHash      string
	JustificationHash string
}

func (inspection *Inspection) Terminal() bool {
	return inspection.Status == InspectionStatusInvalidated
}

// Expired reports whether an accepted inspection ran past its deadline. The
// state machine never flips the status by itself: expiry is evaluated lazily
// against this at the next touching call.
func (inspection *Inspection) Expired(height uint64) bool {
	return inspection.Status == InspectionStatusAccepted && height > inspection.Deadline
}

// EraImpact aggregates the realized ecological results of one era.
type EraImpact struct {
	Trees        uint64
	Biodiversity uint64
	Realized     uint64
}
