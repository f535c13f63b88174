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
	"strconv"
	"time"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/executor"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/service"
)

var logger log.Logger

func InitCore() error {
	logger = log.GetLoggerByIndex(log.CoreLogConfig, strconv.Itoa(common.InstanceIndex))

	start := time.Now()
	common.DefaultLogger.Infof("start InitCore")
	defer func() {
		common.DefaultLogger.Infof("end InitCore, cost: %s", time.Now().Sub(start).String())
	}()

	service.InitService(common.LocalChainConfig)
	executor.InitExecutors()

	InitProtocol()

	return nil
}
