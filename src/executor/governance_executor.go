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

type voteResourceExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type voteResourceData struct {
	Id string `json:"id"`
}

func (this *voteResourceExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data voteResourceData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad vote payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	id := common.HexToHash(data.Id)
	if err := service.GovernanceManagerImpl.VoteResource(stateDB, op.SourceAddress(), id, header.Height); nil != err {
		this.logger.Errorf("resource vote failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("vote recorded against resource %s", id.ShortS())
}

type voteUserExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type voteUserData struct {
	Target string `json:"target"`
}

func (this *voteUserExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data voteUserData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad vote payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	target := common.HexToAddress(data.Target)
	if !target.IsValid() {
		return false, "invalid target address"
	}

	if err := service.GovernanceManagerImpl.VoteUser(stateDB, op.SourceAddress(), target, header.Height); nil != err {
		this.logger.Errorf("user vote failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("vote recorded against user %s", target.ShortS())
}

type convertPointsExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

func (this *convertPointsExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	levels, err := service.GovernanceManagerImpl.ConvertPoints(stateDB, op.SourceAddress(), header.Height)
	if nil != err {
		this.logger.Errorf("point conversion failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("converted points into %d validator levels", levels)
}

type delateExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type delateData struct {
	Target   string `json:"target"`
	ThumbsUp bool   `json:"thumbsUp"`
}

func (this *delateExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data delateData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad delation payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	target := common.HexToAddress(data.Target)
	if !target.IsValid() {
		return false, "invalid target address"
	}

	if err := service.GovernanceManagerImpl.Delate(stateDB, op.SourceAddress(), target, data.ThumbsUp, header.Height); nil != err {
		this.logger.Errorf("delation failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("delation recorded against %s", target.ShortS())
}
