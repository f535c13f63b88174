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
	"fmt"
	"math/big"
	"strconv"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
)

const (
	balanceKeyPrefix   = "bl"
	certifiedKeyPrefix = "cs"

	lockedKey         = "lk"
	totalSupplyKey    = "ts"
	totalCertifiedKey = "ce"
)

// TokenLedger keeps every RGN amount in the system: free balances, the
// locked emission reserve the pools draw from, and the burned certification
// counters. All amounts are base units.
type TokenLedger interface {
	BalanceOf(stateDB *state.StateDB, addr common.Address) *big.Int
	AddBalance(stateDB *state.StateDB, addr common.Address, amount *big.Int)
	Transfer(stateDB *state.StateDB, from, to common.Address, amount *big.Int) *types.OpError
	BurnFrom(stateDB *state.StateDB, from common.Address, amount *big.Int) *types.OpError

	IncreaseLocked(stateDB *state.StateDB, amount *big.Int)
	DecreaseLocked(stateDB *state.StateDB, amount *big.Int)

	AddCertified(stateDB *state.StateDB, addr common.Address, amount *big.Int)
	CertifiedOf(stateDB *state.StateDB, addr common.Address) *big.Int

	SetTotalSupply(stateDB *state.StateDB, amount *big.Int)
	TotalSupply(stateDB *state.StateDB) *big.Int
	TotalLocked(stateDB *state.StateDB) *big.Int
	TotalCertified(stateDB *state.StateDB) *big.Int
}

var TokenLedgerImpl TokenLedger

type ledgerManager struct {
	logger log.Logger
}

func initTokenLedger() {
	TokenLedgerImpl = &ledgerManager{
		logger: log.GetLoggerByIndex(log.LedgerLogConfig, strconv.Itoa(common.InstanceIndex)),
	}
}

func balanceKey(addr common.Address) []byte {
	return append([]byte(balanceKeyPrefix), addr.Bytes()...)
}

func certifiedKey(addr common.Address) []byte {
	return append([]byte(certifiedKeyPrefix), addr.Bytes()...)
}

func getAmount(stateDB *state.StateDB, key []byte) *big.Int {
	data := stateDB.GetData(common.LedgerDBAddress, key)
	if 0 == len(data) {
		return big.NewInt(0)
	}
	return new(big.Int).SetBytes(data)
}

func setAmount(stateDB *state.StateDB, key []byte, amount *big.Int) {
	stateDB.SetData(common.LedgerDBAddress, key, amount.Bytes())
}

func (ledger *ledgerManager) BalanceOf(stateDB *state.StateDB, addr common.Address) *big.Int {
	return getAmount(stateDB, balanceKey(addr))
}

func (ledger *ledgerManager) AddBalance(stateDB *state.StateDB, addr common.Address, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	key := balanceKey(addr)
	setAmount(stateDB, key, new(big.Int).Add(getAmount(stateDB, key), amount))
}

func (ledger *ledgerManager) Transfer(stateDB *state.StateDB, from, to common.Address, amount *big.Int) *types.OpError {
	if amount.Sign() < 0 {
		return types.NewOpError(types.ErrorCodeAmountInvalid, "negative amount")
	}
	if 0 == amount.Sign() {
		return nil
	}

	fromKey := balanceKey(from)
	balance := getAmount(stateDB, fromKey)
	if balance.Cmp(amount) < 0 {
		return types.NewOpError(types.ErrorCodeBalanceNotEnough, fmt.Sprintf("balance %s below %s", balance.String(), amount.String()))
	}

	setAmount(stateDB, fromKey, new(big.Int).Sub(balance, amount))
	toKey := balanceKey(to)
	setAmount(stateDB, toKey, new(big.Int).Add(getAmount(stateDB, toKey), amount))
	return nil
}

func (ledger *ledgerManager) BurnFrom(stateDB *state.StateDB, from common.Address, amount *big.Int) *types.OpError {
	if amount.Sign() <= 0 {
		return types.NewOpError(types.ErrorCodeAmountInvalid, "burn amount must be positive")
	}

	fromKey := balanceKey(from)
	balance := getAmount(stateDB, fromKey)
	if balance.Cmp(amount) < 0 {
		return types.NewOpError(types.ErrorCodeBalanceNotEnough, fmt.Sprintf("balance %s below %s", balance.String(), amount.String()))
	}

	setAmount(stateDB, fromKey, new(big.Int).Sub(balance, amount))
	supply := ledger.TotalSupply(stateDB)
	setAmount(stateDB, []byte(totalSupplyKey), new(big.Int).Sub(supply, amount))

	ledger.logger.Infof("burned %s from %s, supply now %s", amount.String(), from.ShortS(), ledger.TotalSupply(stateDB).String())
	return nil
}

func (ledger *ledgerManager) IncreaseLocked(stateDB *state.StateDB, amount *big.Int) {
	if amount.Sign() <= 0 {
		return
	}
	setAmount(stateDB, []byte(lockedKey), new(big.Int).Add(ledger.TotalLocked(stateDB), amount))
}

// DecreaseLocked releases emission reserve right before it is credited. The
// pool math caps every payout by the locked total, so underflow here means a
// broken invariant.
func (ledger *ledgerManager) DecreaseLocked(stateDB *state.StateDB, amount *big.Int) {
	locked := ledger.TotalLocked(stateDB)
	if locked.Cmp(amount) < 0 {
		panic(fmt.Sprintf("ledger: locked supply underflow, %s below %s", locked.String(), amount.String()))
	}
	setAmount(stateDB, []byte(lockedKey), new(big.Int).Sub(locked, amount))
	ledger.logger.Debugf("released %s from the emission reserve", amount.String())
}

func (ledger *ledgerManager) AddCertified(stateDB *state.StateDB, addr common.Address, amount *big.Int) {
	key := certifiedKey(addr)
	setAmount(stateDB, key, new(big.Int).Add(getAmount(stateDB, key), amount))
	setAmount(stateDB, []byte(totalCertifiedKey), new(big.Int).Add(ledger.TotalCertified(stateDB), amount))
}

func (ledger *ledgerManager) CertifiedOf(stateDB *state.StateDB, addr common.Address) *big.Int {
	return getAmount(stateDB, certifiedKey(addr))
}

func (ledger *ledgerManager) SetTotalSupply(stateDB *state.StateDB, amount *big.Int) {
	setAmount(stateDB, []byte(totalSupplyKey), amount)
}

func (ledger *ledgerManager) TotalSupply(stateDB *state.StateDB) *big.Int {
	return getAmount(stateDB, []byte(totalSupplyKey))
}

func (ledger *ledgerManager) TotalLocked(stateDB *state.StateDB) *big.Int {
	return getAmount(stateDB, []byte(lockedKey))
}

func (ledger *ledgerManager) TotalCertified(stateDB *state.StateDB) *big.Int {
	return getAmount(stateDB, []byte(totalCertifiedKey))
}
