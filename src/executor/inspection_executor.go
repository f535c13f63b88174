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

type requestInspectionExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

func (this *requestInspectionExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	id, err := service.InspectionManagerImpl.Request(stateDB, op.SourceAddress(), header.Height)
	if nil != err {
		this.logger.Errorf("request failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}

	context["inspectionId"] = id
	return true, fmt.Sprintf("inspection %s opened", id.ShortS())
}

type acceptInspectionExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type inspectionIdData struct {
	Id string `json:"id"`
}

func (this *acceptInspectionExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data inspectionIdData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad accept payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	id := common.HexToHash(data.Id)
	if err := service.InspectionManagerImpl.Accept(stateDB, op.SourceAddress(), id, header.Height); nil != err {
		// an overdue acceptance settles as a give-up; that state must commit
		if types.ErrorCodeDeadlinePassed == err.Code {
			this.logger.Warnf("accept by %s settled an overdue give-up: %s", op.Source, err.Error())
			context["code"] = err.Code
			return true, err.Error()
		}
		this.logger.Errorf("accept failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("inspection %s accepted", id.ShortS())
}

type realizeInspectionExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

type realizeData struct {
	Id                string `json:"id"`
	Trees             uint64 `json:"trees"`
	Biodiversity      uint64 `json:"biodiversity"`
	EvidenceHash      string `json:"evidenceHash"`
	JustificationHash string `json:"justificationHash"`
}

func (this *realizeInspectionExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data realizeData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad realize payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	id := common.HexToHash(data.Id)
	err := service.InspectionManagerImpl.Realize(stateDB, op.SourceAddress(), id,
		data.Trees, data.Biodiversity, data.EvidenceHash, data.JustificationHash, header.Height)
	if nil != err {
		// an overdue realize settles the give-up; that state must commit
		if types.ErrorCodeDeadlinePassed == err.Code {
			this.logger.Warnf("realize of %s by %s past deadline: %s", data.Id, op.Source, err.Error())
			context["code"] = err.Code
			return true, err.Error()
		}
		this.logger.Errorf("realize failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("inspection %s realized", id.ShortS())
}

type expireInspectionExecutor struct {
	baseOperationExecutor
	logger log.Logger
}

func (this *expireInspectionExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data inspectionIdData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad expire payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	id := common.HexToHash(data.Id)
	if err := service.InspectionManagerImpl.Expire(stateDB, id, header.Height); nil != err {
		this.logger.Errorf("expire failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}
	return true, fmt.Sprintf("inspection %s expired", id.ShortS())
}
