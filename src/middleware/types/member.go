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

// Member is the registry record of one registered address. Type never changes
// after registration; denial keeps the original type and flips Status.
type Member struct {
	Address      common.Address
	Type         byte
	Status       byte
	RegisteredAt uint64
	DeniedAt     uint64

	InvitedBy      common.Address
	InvitesRevoked bool
	InviterPenalty uint32

	Regenerator *RegeneratorProfile
	Inspector   *InspectorProfile
}

// RegeneratorProfile carries the inspection-side state of a regenerator.
// AccumulatedScore only grows before the account reaches the pool entry
// threshold; afterwards scores post straight to the pool.
type RegeneratorProfile struct {
	Area              uint64 // 平方米
	PendingInspection bool
	TotalInspections  uint32
	LastRequestAt     uint64
	AccumulatedScore  uint64
}

type InspectorProfile struct {
	TotalInspections uint32
	GiveUps          uint32
	LastAcceptedAt   uint64
	LastRealizedAt   uint64
	ActiveInspection common.Hash // 零值表示空闲
}

func (member *Member) IsDenied() bool {
	return member.Status == common.UserStatusDenied
}

func (member *Member) HasInviter() bool {
	return member.InvitedBy != common.Address{}
}

// Invitation is held keyed by the invited address: one live invitation per
// invitee. Invalidated flips when the inviter is denied; consumption keeps
// the record for the invitation graph.
type Invitation struct {
	Inviter   common.Address
	Invited   common.Address
	UserType  byte
	CreatedAt uint64

	Invalidated bool
	ConsumedAt  uint64
}

func (invitation *Invitation) Live() bool {
	return !invitation.Invalidated && 0 == invitation.ConsumedAt
}
