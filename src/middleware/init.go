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

package middleware

import (
	"strconv"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/notify"
	"com.terrabio.regen/node/src/middleware/types"
)

func InitMiddleware() error {
	types.Logger = log.GetLoggerByIndex(log.MiddlewareLogConfig, strconv.Itoa(common.InstanceIndex))

	lock = NewLoglock("protocol")
	notify.BUS = notify.NewBus()

	initStateDBManager()

	return nil
}
