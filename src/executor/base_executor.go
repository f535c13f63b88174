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
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
)

// executor handles one operation type. A false return from either phase
// makes the protocol engine revert the operation's state transition.
type executor interface {
	BeforeExecute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string)
	Execute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string)
}

type baseOperationExecutor struct {
}

func (this *baseOperationExecutor) BeforeExecute(op *types.Operation, header *types.BlockHeader, stateDB *state.StateDB, context map[string]interface{}) (bool, string) {
	if nil == op || nil == header {
		return false, "nil operation"
	}
	if !op.SourceAddress().IsValid() {
		return false, "invalid source address"
	}
	return true, ""
}

// opFailed surfaces a service rejection into the receipt context.
func opFailed(context map[string]interface{}, err *types.OpError) (bool, string) {
	context["code"] = err.Code
	if 0 != err.RetryAtBlock {
		context["retryAt"] = err.RetryAtBlock
	}
	return false, err.Error()
}
