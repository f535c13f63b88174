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
	"strconv"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
	"com.terrabio.regen/node/src/utility"
	"github.com/vmihailenco/msgpack"
)

const (
	invitationKeyPrefix  = "iv" // iv+invited -> Invitation
	issuedIndexKeyPrefix = "ix" // ix+inviter -> []Address
	lastInviteKeyPrefix  = "lt" // lt+inviter+type -> height
)

// InvitationService runs the anti-Sybil gate on population growth: who may
// invite, how often, and what happens to outstanding invitations when an
// inviter goes bad.
type InvitationService struct {
	conf   *common.ProtocolConf
	logger log.Logger
}

var InvitationServiceImpl *InvitationService

func initInvitationService(conf *common.ProtocolConf) {
	InvitationServiceImpl = &InvitationService{
		conf:   conf,
		logger: log.GetLoggerByIndex(log.InviteLogConfig, strconv.Itoa(common.InstanceIndex)),
	}
}

func invitationKey(invited common.Address) []byte {
	return append([]byte(invitationKeyPrefix), invited.Bytes()...)
}

func issuedIndexKey(inviter common.Address) []byte {
	return append([]byte(issuedIndexKeyPrefix), inviter.Bytes()...)
}

func lastInviteKey(inviter common.Address, userType byte) []byte {
	return append(append([]byte(lastInviteKeyPrefix), inviter.Bytes()...), userType)
}

// CanInvite is the recursive-Sybil defense: below the bootstrap threshold
// everyone may invite, beyond it only strictly above-average contributors.
func (invitations *InvitationService) CanInvite(totalLevelsOfType, totalUsersOfType, inviterLevels uint64) bool {
	if totalUsersOfType <= invitations.conf.BootstrapThreshold {
		return true
	}
	return inviterLevels >= totalLevelsOfType/totalUsersOfType+1
}

func (invitations *InvitationService) invitationOf(stateDB *state.StateDB, invited common.Address) *types.Invitation {
	data := stateDB.GetData(common.InvitationDBAddress, invitationKey(invited))
	if 0 == len(data) {
		return nil
	}

	invitation := &types.Invitation{}
	if err := msgpack.Unmarshal(data, invitation); err != nil {
		panic(fmt.Sprintf("invitation: corrupt record for %s: %s", invited.String(), err.Error()))
	}
	return invitation
}

func (invitations *InvitationService) saveInvitation(stateDB *state.StateDB, invitation *types.Invitation) {
	data, _ := msgpack.Marshal(invitation)
	stateDB.SetData(common.InvitationDBAddress, invitationKey(invitation.Invited), data)
}

// LiveInvitationOf returns the invitee's invitation if it is still usable.
func (invitations *InvitationService) LiveInvitationOf(stateDB *state.StateDB, invited common.Address) *types.Invitation {
	invitation := invitations.invitationOf(stateDB, invited)
	if nil == invitation || !invitation.Live() {
		return nil
	}
	return invitation
}

// Invite issues an invitation for one address under one type. The inviter's
// eligibility is measured with their whole earned weight: own type pool plus
// validator pool, compared against the invited type's average.
func (invitations *InvitationService) Invite(stateDB *state.StateDB, inviter, invited common.Address, userType byte, height uint64) *types.OpError {
	typeConf := invitations.conf.TypeConfOf(userType)
	if nil == typeConf || !typeConf.NeedInvitation {
		return types.NewOpError(types.ErrorCodeWrongUserType, fmt.Sprintf("type %d takes no invitations", userType))
	}

	member, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, inviter)
	if nil != err {
		return err
	}
	if member.InvitesRevoked {
		return types.NewOpError(types.ErrorCodeInvitesRevoked, fmt.Sprintf("%s lost invitation rights", inviter.ShortS()))
	}

	if existing := CommunityRegistryImpl.MemberOf(stateDB, invited); nil != existing {
		return types.NewOpError(types.ErrorCodeMemberExists, fmt.Sprintf("%s already registered", invited.ShortS()))
	}
	if live := invitations.LiveInvitationOf(stateDB, invited); nil != live {
		return types.NewOpError(types.ErrorCodeInvitationExists, fmt.Sprintf("%s already holds an invitation", invited.ShortS()))
	}

	lastData := stateDB.GetData(common.InvitationDBAddress, lastInviteKey(inviter, userType))
	if 0 != len(lastData) {
		retryAt := utility.ByteToUInt64(lastData) + typeConf.InvitationDelay
		if height < retryAt {
			return types.NewTemporalError(types.ErrorCodeTemporalGate, "invitation cool-down running", retryAt)
		}
	}

	totals := PoolOf(poolOfType(userType)).TotalsOf(stateDB)
	inviterLevels := invitations.levelsOf(stateDB, member)
	if !invitations.CanInvite(totals.TotalLevels, CommunityRegistryImpl.CountOf(stateDB, userType), inviterLevels) {
		return types.NewOpError(types.ErrorCodeBelowAverage,
			fmt.Sprintf("%s holds %d levels, below the type %d average gate", inviter.ShortS(), inviterLevels, userType))
	}

	invitation := &types.Invitation{
		Inviter:   inviter,
		Invited:   invited,
		UserType:  userType,
		CreatedAt: height,
	}
	invitations.saveInvitation(stateDB, invitation)
	invitations.appendIssued(stateDB, inviter, invited)
	stateDB.SetData(common.InvitationDBAddress, lastInviteKey(inviter, userType), utility.UInt64ToByte(height))

	invitations.logger.Infof("%s invited %s as type %d at height %d", inviter.ShortS(), invited.ShortS(), userType, height)
	return nil
}

// levelsOf is the inviter's full earned weight.
func (invitations *InvitationService) levelsOf(stateDB *state.StateDB, member *types.Member) uint64 {
	levels := PoolOf(common.PoolValidator).AccountStateOf(stateDB, member.Address).TotalLevel
	if pool := PoolOf(poolOfType(member.Type)); nil != pool {
		levels += pool.AccountStateOf(stateDB, member.Address).TotalLevel
	}
	return levels
}

// Consume marks the invitee's invitation as used during registration.
func (invitations *InvitationService) Consume(stateDB *state.StateDB, invited common.Address, userType byte, height uint64) (*types.Invitation, *types.OpError) {
	invitation := invitations.LiveInvitationOf(stateDB, invited)
	if nil == invitation {
		return nil, types.NewOpError(types.ErrorCodeInvitationMissing, fmt.Sprintf("no live invitation for %s", invited.ShortS()))
	}
	if invitation.UserType != userType {
		return nil, types.NewOpError(types.ErrorCodeInvitationMismatch,
			fmt.Sprintf("invitation is for type %d, not %d", invitation.UserType, userType))
	}

	invitation.ConsumedAt = height
	invitations.saveInvitation(stateDB, invitation)
	return invitation, nil
}

func (invitations *InvitationService) appendIssued(stateDB *state.StateDB, inviter, invited common.Address) {
	issued := invitations.issuedBy(stateDB, inviter)
	issued = append(issued, invited)
	data, _ := msgpack.Marshal(issued)
	stateDB.SetData(common.InvitationDBAddress, issuedIndexKey(inviter), data)
}

func (invitations *InvitationService) issuedBy(stateDB *state.StateDB, inviter common.Address) []common.Address {
	data := stateDB.GetData(common.InvitationDBAddress, issuedIndexKey(inviter))
	if 0 == len(data) {
		return nil
	}

	var issued []common.Address
	if err := msgpack.Unmarshal(data, &issued); err != nil {
		panic(fmt.Sprintf("invitation: corrupt issued index for %s: %s", inviter.String(), err.Error()))
	}
	return issued
}

// InvalidateIssuedBy kills every unconsumed invitation an inviter issued.
// Their already-registered invitees are untouched.
func (invitations *InvitationService) InvalidateIssuedBy(stateDB *state.StateDB, inviter common.Address) {
	for _, invited := range invitations.issuedBy(stateDB, inviter) {
		invitation := invitations.invitationOf(stateDB, invited)
		if nil == invitation || !invitation.Live() {
			continue
		}
		invitation.Invalidated = true
		invitations.saveInvitation(stateDB, invitation)
		invitations.logger.Infof("invalidated invitation of %s issued by %s", invited.ShortS(), inviter.ShortS())
	}
}

// AddInviterPenalty charges an inviter for a denied invitee. Hitting the
// limit revokes invitation rights until reviewed.
func (invitations *InvitationService) AddInviterPenalty(stateDB *state.StateDB, inviter common.Address) {
	member := CommunityRegistryImpl.MemberOf(stateDB, inviter)
	if nil == member || member.IsDenied() {
		return
	}

	member.InviterPenalty++
	if uint64(member.InviterPenalty) >= invitations.conf.MaxInviterPenalties {
		member.InvitesRevoked = true
		// revocation kills the pending invitations too, same as denial
		invitations.InvalidateIssuedBy(stateDB, inviter)
		invitations.logger.Warnf("%s reached %d inviter penalties, invites revoked", inviter.ShortS(), member.InviterPenalty)
	}
	CommunityRegistryImpl.SaveMember(stateDB, member)
}

// poolOfType maps a user type onto its pool id, zero for supporters who hold
// none.
func poolOfType(userType byte) byte {
	if common.UserTypeSupporter == userType || common.UserTypeUnknown == userType {
		return 0
	}
	return userType
}
