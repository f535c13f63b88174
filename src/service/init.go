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
	"com.terrabio.regen/node/src/common"
)

// InitService wires every protocol service against the locked configuration.
// Order matters: the clock and the ledger come first, the pools subscribe
// their denial handler before the lifecycle managers subscribe theirs.
func InitService(conf *common.ProtocolConf) {
	if nil == conf {
		panic("service: missing protocol configuration")
	}

	initEraClock(conf)
	initTokenLedger()
	initRewardPools(conf)
	initCommunityRegistry(conf)
	initInvitationService(conf)
	initInspectionManager(conf)
	initGovernanceManager(conf)
}
