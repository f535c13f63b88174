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
	"strconv"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/types"
)

type opExecutors struct {
	executors map[int32]executor
}

var opExecutorsImpl *opExecutors

func GetOperationExecutor(opType int32) executor {
	return opExecutorsImpl.executors[opType]
}

func InitExecutors() {
	logger := log.GetLoggerByIndex(log.OpLogConfig, strconv.Itoa(common.InstanceIndex))

	executors := make(map[int32]executor)

	executors[types.OperationTypeRegister] = &registerExecutor{logger: logger}
	executors[types.OperationTypeInvite] = &inviteExecutor{logger: logger}
	executors[types.OperationTypeWithdraw] = &withdrawExecutor{logger: logger}
	executors[types.OperationTypeCertify] = &certifyExecutor{logger: logger}

	executors[types.OperationTypeRequestInspection] = &requestInspectionExecutor{logger: logger}
	executors[types.OperationTypeAcceptInspection] = &acceptInspectionExecutor{logger: logger}
	executors[types.OperationTypeRealizeInspection] = &realizeInspectionExecutor{logger: logger}
	executors[types.OperationTypeExpireInspection] = &expireInspectionExecutor{logger: logger}

	executors[types.OperationTypeSubmitReport] = &submitResourceExecutor{kind: common.ResourceKindReport, logger: logger}
	executors[types.OperationTypeSubmitResearch] = &submitResourceExecutor{kind: common.ResourceKindResearch, logger: logger}
	executors[types.OperationTypeSubmitContribution] = &submitResourceExecutor{kind: common.ResourceKindContribution, logger: logger}

	executors[types.OperationTypeVoteResource] = &voteResourceExecutor{logger: logger}
	executors[types.OperationTypeVoteUser] = &voteUserExecutor{logger: logger}
	executors[types.OperationTypeConvertPoints] = &convertPointsExecutor{logger: logger}
	executors[types.OperationTypeDelate] = &delateExecutor{logger: logger}

	opExecutorsImpl = &opExecutors{executors: executors}
}
