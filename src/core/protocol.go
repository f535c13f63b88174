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

package core

import (
	"fmt"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/executor"
	"com.terrabio.regen/node/src/middleware"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/types"

	"gopkg.in/fatih/set.v0"
)

// Protocol applies operations to the state machine one at a time. It is built
// exactly once; its configuration cannot be swapped afterwards.
type Protocol struct {
	conf *common.ProtocolConf

	// applied keeps the hashes of operations seen since boot. A replayed
	// operation is rejected before touching state.
	applied set.Interface

	logger log.Logger
}

var ProtocolImpl *Protocol

func InitProtocol() {
	if nil != ProtocolImpl {
		panic("protocol already initialized")
	}

	ProtocolImpl = &Protocol{
		conf:    common.LocalChainConfig,
		applied: set.New(set.ThreadSafe),
		logger:  logger,
	}

	ensureGenesis(ProtocolImpl.conf)
}

// ApplyOperation runs one operation against the latest state under the global
// writer lock. Failure reverts every write the operation made.
func (protocol *Protocol) ApplyOperation(op *types.Operation, header *types.BlockHeader) *types.Receipt {
	middleware.LockProtocol("ApplyOperation")
	defer middleware.UnLockProtocol("ApplyOperation")

	if nil == op || nil == header {
		return types.NewReceipt(true, types.ErrorCodeBadPayload, 0, "nil operation", "")
	}

	op.Hash = op.GenHash()
	if protocol.applied.Has(op.Hash.String()) {
		protocol.logger.Warnf("op %s replayed, from %s", op.Hash.ShortS(), op.Source)
		return types.NewReceipt(true, types.ErrorCodeBadPayload, header.Height, "operation replayed", op.Source)
	}

	operationExecutor := executor.GetOperationExecutor(op.Type)
	if nil == operationExecutor {
		return types.NewReceipt(true, types.ErrorCodeBadPayload, header.Height, fmt.Sprintf("unknown operation type %d", op.Type), op.Source)
	}

	stateDB := middleware.StateDBManagerInstance.GetLatestStateDB()
	if nil == stateDB {
		stateDB = middleware.StateDBManagerInstance.GetStateDB()
	}

	snapshot := stateDB.Snapshot()
	context := make(map[string]interface{})

	success, msg := operationExecutor.BeforeExecute(op, header, stateDB, context)
	if success {
		success, msg = operationExecutor.Execute(op, header, stateDB, context)
	}

	if !success {
		stateDB.RevertToSnapshot(snapshot)
		protocol.logger.Debugf("op %s type %d rejected at %d: %s", op.Hash.ShortS(), op.Type, header.Height, msg)
		return types.NewReceipt(true, codeOf(context), header.Height, msg, op.Source)
	}

	if err := stateDB.Commit(); nil != err {
		stateDB.RevertToSnapshot(snapshot)
		protocol.logger.Errorf("op %s commit failed: %s", op.Hash.ShortS(), err.Error())
		return types.NewReceipt(true, types.ErrorCodeBadPayload, header.Height, err.Error(), op.Source)
	}

	protocol.applied.Add(op.Hash.String())
	middleware.StateDBManagerInstance.SetLatestStateDB(stateDB, header.Height)
	common.SetBlockHeight(header.Height)

	protocol.logger.Debugf("op %s type %d applied at %d: %s", op.Hash.ShortS(), op.Type, header.Height, msg)
	return types.NewReceipt(false, codeOf(context), header.Height, msg, op.Source)
}

func codeOf(context map[string]interface{}) int {
	if code, ok := context["code"].(int); ok {
		return code
	}
	return types.SUCCESS
}
