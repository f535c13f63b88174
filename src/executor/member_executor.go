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

package executor

import (
	"encoding/json"
	"fmt"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/service"
	"com.terrabio.regen/node/src/storage/state"
	"com.terrabio.regen/node/src/utility"
)

type registerExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type registerData struct {
	UserType byte   `json:"userType"`
	Area     uint64 `json:"area"`
}

func (this *registerExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data registerData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad register payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	if err := service.CommunityRegistryImpl.AddUser(stateDB, op.SourceAddress(), data.UserType, data.Area, header.Height); nil != err {
		this.logger.Errorf("register failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("registered as type %d", data.UserType)
}

type inviteExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type inviteData struct {
	Invited  string `json:"invited"`
	UserType byte   `json:"userType"`
}

func (this *inviteExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data inviteData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad invite payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	invited := common.HexToAddress(data.Invited)
	if !invited.IsValid() {
		return false, "invalid invited address"
	}

	if err := service.InvitationServiceImpl.Invite(stateDB, op.SourceAddress(), invited, data.UserType, header.Height); nil != err {
		this.logger.Errorf("invite failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("invited %s as type %d", invited.ShortS(), data.UserType)
}

type withdrawExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type withdrawData struct {
	Pool byte `json:"pool"`
}

func (this *withdrawExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data withdrawData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad withdraw payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	source := op.SourceAddress()
	member, opErr := service.CommunityRegistryImpl.ActiveMemberOf(stateDB, source)
	if nil != opErr {
		return opFailed(context, opErr)
	}

	// an account may only draw from its own type pool or the shared
	// validator pool
	if data.Pool != member.Type && common.PoolValidator != data.Pool {
		opErr = types.NewOpError(types.ErrorCodeWrongUserType, fmt.Sprintf("pool %d is not withdrawable for type %d", data.Pool, member.Type))
		return opFailed(context, opErr)
	}

	pool := service.PoolOf(data.Pool)
	if nil == pool {
		opErr = types.NewOpError(types.ErrorCodeWrongUserType, fmt.Sprintf("no pool %d", data.Pool))
		return opFailed(context, opErr)
	}

	payout := pool.Withdraw(stateDB, source, header.Height)
	return true, fmt.Sprintf("withdrew %s from pool %d", payout.String(), data.Pool)
}

type certifyExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type certifyData struct {
	Amount string `json:"amount"`
}

// certifyExecutor burns a supporter's own balance and books it as certified
// regeneration backing.
func (this *certifyExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data certifyData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad certify payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	amount, err := utility.StrToBigInt(data.Amount)
	if nil != err {
		return false, fmt.Sprintf("bad amount %s", data.Amount)
	}

	source := op.SourceAddress()
	member, opErr := service.CommunityRegistryImpl.ActiveMemberOf(stateDB, source)
	if nil != opErr {
		return opFailed(context, opErr)
	}
	if common.UserTypeSupporter != member.Type {
		opErr = types.NewOpError(types.ErrorCodeWrongUserType, "only supporters certify")
		return opFailed(context, opErr)
	}

	if opErr = service.TokenLedgerImpl.BurnFrom(stateDB, source, amount); nil != opErr {
		return opFailed(context, opErr)
	}
	service.TokenLedgerImpl.AddCertified(stateDB, source, amount)

	this.logger.Infof("%s certified %s", source.ShortS(), amount.String())
	return true, fmt.Sprintf("certified %s", amount.String())
}
