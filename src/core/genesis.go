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
	"math/big"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware"
	"com.terrabio.regen/node/src/service"
)

var genesisKey = []byte("gn")

// ensureGenesis mints the fixed supply on first boot. The pool budgets stay
// locked; the remainder goes to the genesis holder.
func ensureGenesis(conf *common.ProtocolConf) {
	stateDB := middleware.StateDBManagerInstance.GetStateDB()

	if nil != stateDB.GetData(common.MetaDBAddress, genesisKey) {
		middleware.StateDBManagerInstance.SetLatestStateDB(stateDB, common.GetBlockHeight())
		return
	}

	totalSupply := common.TokenAmount(conf.TotalSupply)
	poolSupply := conf.TotalPoolSupply()

	service.TokenLedgerImpl.SetTotalSupply(stateDB, totalSupply)
	service.TokenLedgerImpl.IncreaseLocked(stateDB, poolSupply)

	remainder := new(big.Int).Sub(totalSupply, poolSupply)
	holder := common.HexToAddress(conf.GenesisHolder)
	service.TokenLedgerImpl.AddBalance(stateDB, holder, remainder)

	stateDB.SetData(common.MetaDBAddress, genesisKey, []byte{1})

	if err := stateDB.Commit(); nil != err {
		panic("genesis commit failed: " + err.Error())
	}
	middleware.StateDBManagerInstance.SetLatestStateDB(stateDB, conf.DeployBlock)
	common.SetBlockHeight(conf.DeployBlock)

	logger.Infof("genesis minted: supply %s, locked %s, holder %s gets %s",
		totalSupply.String(), poolSupply.String(), holder.ShortS(), remainder.String())
}
