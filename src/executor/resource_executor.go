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

	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/service"
	"com.terrabio.regen/node/src/storage/state"
	"com.terrabio.regen/node/src/utility"
)

// submitResourceExecutor serves all three submission operations; the
// resource kind is fixed per registered operation type.
type submitResourceExecutor struct {
	baseOperationExecutor
	kind   byte
	logger log.Logger
}

type submitResourceData struct {
	ContentHash string `json:"contentHash"`
	Description string `json:"description"`
}

func (this *submitResourceExecutor) Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	var data submitResourceData
	if err := json.Unmarshal(utility.StrToBytes(op.Data), &data); nil != err {
		this.logger.Errorf("bad submission payload %s: %s", op.Data, err.Error())
		return false, fmt.Sprintf("bad payload: %s", err.Error())
	}

	id, err := service.GovernanceManagerImpl.SubmitResource(stateDB, op.SourceAddress(), this.kind, data.ContentHash, data.Description, header.Height)
	if nil != err {
		this.logger.Errorf("submission failed for %s: %s", op.Source, err.Error())
		return opFailed(context, err)
	}

	context["resourceId"] = id
	return true, fmt.Sprintf("resource %s submitted", id.ShortS())
}
