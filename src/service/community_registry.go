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
	"com.terrabio.regen/node/src/middleware/notify"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
	"com.terrabio.regen/node/src/utility"
	"github.com/vmihailenco/msgpack"
)

const (
	memberKeyPrefix = "mb" // mb+addr -> Member
	countKeyPrefix  = "ct" // ct+type -> uint64
)

// CommunityRegistry owns member identities: who is registered, under which
// type, and whether they were expelled. It is the only writer of Member
// records; other components reach them through its accessors.
type CommunityRegistry struct {
	conf   *common.ProtocolConf
	logger log.Logger
}

var CommunityRegistryImpl *CommunityRegistry

func initCommunityRegistry(conf *common.ProtocolConf) {
	CommunityRegistryImpl = &CommunityRegistry{
		conf:   conf,
		logger: log.GetLoggerByIndex(log.RegistryLogConfig, strconv.Itoa(common.InstanceIndex)),
	}
}

func memberKey(addr common.Address) []byte {
	return append([]byte(memberKeyPrefix), addr.Bytes()...)
}

func countKey(userType byte) []byte {
	return append([]byte(countKeyPrefix), userType)
}

// MemberOf returns the member record, nil for unregistered addresses.
func (registry *CommunityRegistry) MemberOf(stateDB *state.StateDB, addr common.Address) *types.Member {
	data := stateDB.GetData(common.RegistryDBAddress, memberKey(addr))
	if 0 == len(data) {
		return nil
	}

	member := &types.Member{}
	if err := msgpack.Unmarshal(data, member); err != nil {
		panic(fmt.Sprintf("registry: corrupt member record %s: %s", addr.String(), err.Error()))
	}
	return member
}

func (registry *CommunityRegistry) SaveMember(stateDB *state.StateDB, member *types.Member) {
	data, _ := msgpack.Marshal(member)
	stateDB.SetData(common.RegistryDBAddress, memberKey(member.Address), data)
}

// CountOf is the live population of a type; denials decrement it.
func (registry *CommunityRegistry) CountOf(stateDB *state.StateDB, userType byte) uint64 {
	data := stateDB.GetData(common.RegistryDBAddress, countKey(userType))
	if 0 == len(data) {
		return 0
	}
	return utility.ByteToUInt64(data)
}

func (registry *CommunityRegistry) setCount(stateDB *state.StateDB, userType byte, count uint64) {
	stateDB.SetData(common.RegistryDBAddress, countKey(userType), utility.UInt64ToByte(count))
}

// ActiveMemberOf resolves a member that must exist and must not be denied.
func (registry *CommunityRegistry) ActiveMemberOf(stateDB *state.StateDB, addr common.Address) (*types.Member, *types.OpError) {
	member := registry.MemberOf(stateDB, addr)
	if nil == member {
		return nil, types.NewOpError(types.ErrorCodeUnknownMember, fmt.Sprintf("%s is not registered", addr.ShortS()))
	}
	if member.IsDenied() {
		return nil, types.NewOpError(types.ErrorCodeMemberDenied, fmt.Sprintf("%s is denied", addr.ShortS()))
	}
	return member, nil
}

// AddUser registers an address under a type. Registration consumes the live
// invitation when the type requires one; the population cap and (for
// regenerators) the area bounds are checked first so a rejected registration
// leaves the invitation intact.
func (registry *CommunityRegistry) AddUser(stateDB *state.StateDB, addr common.Address, userType byte, area, height uint64) *types.OpError {
	typeConf := registry.conf.TypeConfOf(userType)
	if nil == typeConf {
		return types.NewOpError(types.ErrorCodeWrongUserType, fmt.Sprintf("unknown user type %d", userType))
	}

	if existing := registry.MemberOf(stateDB, addr); nil != existing {
		return types.NewOpError(types.ErrorCodeMemberExists, fmt.Sprintf("%s already registered as type %d", addr.ShortS(), existing.Type))
	}

	if common.UserTypeRegenerator == userType {
		if area < registry.conf.MinRegeneratorArea || area > registry.conf.MaxRegeneratorArea {
			return types.NewOpError(types.ErrorCodeAreaOutOfRange,
				fmt.Sprintf("area %d outside [%d, %d]", area, registry.conf.MinRegeneratorArea, registry.conf.MaxRegeneratorArea))
		}
	}

	count := registry.CountOf(stateDB, userType)
	limit := registry.conf.PopulationCap(userType, registry.CountOf(stateDB, common.UserTypeRegenerator))
	if count >= limit {
		return types.NewOpError(types.ErrorCodeCapReached, fmt.Sprintf("type %d population cap %d reached", userType, limit))
	}

	member := &types.Member{
		Address:      addr,
		Type:         userType,
		Status:       common.UserStatusActive,
		RegisteredAt: height,
	}

	// the invitation requirement only bites once the type left cold start
	if typeConf.NeedInvitation && count > registry.conf.BootstrapThreshold {
		invitation, err := InvitationServiceImpl.Consume(stateDB, addr, userType, height)
		if nil != err {
			return err
		}
		member.InvitedBy = invitation.Inviter
	} else if invitation := InvitationServiceImpl.LiveInvitationOf(stateDB, addr); nil != invitation && invitation.UserType == userType {
		// a matching invitation during cold start is consumed too, keeping
		// the invitation graph complete
		InvitationServiceImpl.Consume(stateDB, addr, userType, height)
		member.InvitedBy = invitation.Inviter
	}

	switch userType {
	case common.UserTypeRegenerator:
		member.Regenerator = &types.RegeneratorProfile{Area: area}
	case common.UserTypeInspector:
		member.Inspector = &types.InspectorProfile{}
	}

	registry.SaveMember(stateDB, member)
	registry.setCount(stateDB, userType, count+1)

	registry.logger.Infof("registered %s as type %d at height %d", addr.ShortS(), userType, height)
	return nil
}

// SetToDenied expels a member: the type counter shrinks, every invitation
// they ever issued dies, their inviter takes a penalty, and the UserDenied
// event lets the pools and the inspection lifecycle clean up after them.
func (registry *CommunityRegistry) SetToDenied(stateDB *state.StateDB, addr common.Address, height uint64) *types.OpError {
	member, err := registry.ActiveMemberOf(stateDB, addr)
	if nil != err {
		return err
	}

	member.Status = common.UserStatusDenied
	member.DeniedAt = height
	registry.SaveMember(stateDB, member)

	count := registry.CountOf(stateDB, member.Type)
	if 0 == count {
		panic(fmt.Sprintf("registry: type %d count underflow denying %s", member.Type, addr.String()))
	}
	registry.setCount(stateDB, member.Type, count-1)

	InvitationServiceImpl.InvalidateIssuedBy(stateDB, addr)
	if member.HasInviter() {
		InvitationServiceImpl.AddInviterPenalty(stateDB, member.InvitedBy)
	}

	registry.logger.Warnf("denied %s (type %d) at height %d", addr.ShortS(), member.Type, height)

	notify.BUS.Publish(notify.UserDenied, &notify.UserDeniedMessage{
		State:    stateDB,
		Height:   height,
		Address:  addr,
		UserType: member.Type,
		Inviter:  member.InvitedBy,
	})
	return nil
}
