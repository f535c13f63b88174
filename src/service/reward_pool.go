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
	"com.terrabio.regen/node/src/middleware/notify"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
	"com.terrabio.regen/node/src/utility"
	"github.com/vmihailenco/msgpack"
)

// keys inside one pool bucket
const (
	eraStatsKeyPrefix  = "es" // es+era -> EraStats
	levelKeyPrefix     = "lv" // lv+era+addr -> uint64
	withdrawnKeyPrefix = "wd" // wd+era+addr -> mark
	poolAccountPrefix  = "pa" // pa+addr -> PoolAccountState
	grantEventPrefix   = "ge" // ge+eventId -> mark
	poolTotalsKey      = "pt"
)

var markValue = []byte{1}

// RewardPool holds one participant type's token budget and its level/claim
// bookkeeping. All seven pools share this implementation; only the pool id
// and the budget differ.
type RewardPool struct {
	pool   byte
	bucket common.Address
	budget *big.Int

	clock  *EraClock
	logger log.Logger
}

var rewardPools map[byte]*RewardPool

func initRewardPools(conf *common.ProtocolConf) {
	logger := log.GetLoggerByIndex(log.PoolLogConfig, strconv.Itoa(common.InstanceIndex))

	rewardPools = make(map[byte]*RewardPool)
	for _, pool := range []byte{
		common.PoolRegenerator, common.PoolInspector, common.PoolResearcher,
		common.PoolDeveloper, common.PoolContributor, common.PoolActivist,
		common.PoolValidator,
	} {
		budget := conf.PoolBudget(pool)
		if nil == budget || 0 == budget.Sign() {
			panic(fmt.Sprintf("reward pool: budget missing for pool %d", pool))
		}
		rewardPools[pool] = &RewardPool{
			pool:   pool,
			bucket: common.PoolDBAddress(pool),
			budget: budget,
			clock:  EraClockImpl,
			logger: logger,
		}
	}

	notify.BUS.Subscribe(notify.UserDenied, onUserDeniedStripLevels)
}

// PoolOf resolves a pool by id, nil for types without one.
func PoolOf(pool byte) *RewardPool {
	return rewardPools[pool]
}

// TokensPerEpoch halves the budget once per elapsed epoch. Integer division:
// the lost remainder stays in the locked reserve.
func (pool *RewardPool) TokensPerEpoch(epoch uint64) *big.Int {
	return new(big.Int).Rsh(pool.budget, uint(epoch))
}

func (pool *RewardPool) TokensPerEra(era uint64) *big.Int {
	perEpoch := pool.TokensPerEpoch(pool.clock.EpochOf(era))
	return perEpoch.Div(perEpoch, new(big.Int).SetUint64(pool.clock.Halving()))
}

func eraStatsKey(era uint64) []byte {
	return append([]byte(eraStatsKeyPrefix), utility.UInt64ToByte(era)...)
}

func levelKey(era uint64, addr common.Address) []byte {
	key := append([]byte(levelKeyPrefix), utility.UInt64ToByte(era)...)
	return append(key, addr.Bytes()...)
}

func withdrawnKey(era uint64, addr common.Address) []byte {
	key := append([]byte(withdrawnKeyPrefix), utility.UInt64ToByte(era)...)
	return append(key, addr.Bytes()...)
}

func poolAccountKey(addr common.Address) []byte {
	return append([]byte(poolAccountPrefix), addr.Bytes()...)
}

func (pool *RewardPool) EraStatsOf(stateDB *state.StateDB, era uint64) *types.EraStats {
	stats := &types.EraStats{}
	data := stateDB.GetData(pool.bucket, eraStatsKey(era))
	if 0 != len(data) {
		if err := msgpack.Unmarshal(data, stats); err != nil {
			panic(fmt.Sprintf("reward pool %d: corrupt era stats, era %d: %s", pool.pool, era, err.Error()))
		}
	}
	return stats
}

func (pool *RewardPool) saveEraStats(stateDB *state.StateDB, era uint64, stats *types.EraStats) {
	data, _ := msgpack.Marshal(stats)
	stateDB.SetData(pool.bucket, eraStatsKey(era), data)
}

func (pool *RewardPool) AccountStateOf(stateDB *state.StateDB, addr common.Address) *types.PoolAccountState {
	accountState := &types.PoolAccountState{}
	data := stateDB.GetData(pool.bucket, poolAccountKey(addr))
	if 0 != len(data) {
		if err := msgpack.Unmarshal(data, accountState); err != nil {
			panic(fmt.Sprintf("reward pool %d: corrupt account state, %s: %s", pool.pool, addr.String(), err.Error()))
		}
	}
	return accountState
}

func (pool *RewardPool) saveAccountState(stateDB *state.StateDB, addr common.Address, accountState *types.PoolAccountState) {
	data, _ := msgpack.Marshal(accountState)
	stateDB.SetData(pool.bucket, poolAccountKey(addr), data)
}

func (pool *RewardPool) TotalsOf(stateDB *state.StateDB) *types.PoolTotals {
	totals := &types.PoolTotals{}
	data := stateDB.GetData(pool.bucket, []byte(poolTotalsKey))
	if 0 != len(data) {
		if err := msgpack.Unmarshal(data, totals); err != nil {
			panic(fmt.Sprintf("reward pool %d: corrupt totals: %s", pool.pool, err.Error()))
		}
	}
	return totals
}

func (pool *RewardPool) saveTotals(stateDB *state.StateDB, totals *types.PoolTotals) {
	data, _ := msgpack.Marshal(totals)
	stateDB.SetData(pool.bucket, []byte(poolTotalsKey), data)
}

// LevelsOf reads one account's levels recorded against one era.
func (pool *RewardPool) LevelsOf(stateDB *state.StateDB, addr common.Address, era uint64) uint64 {
	data := stateDB.GetData(pool.bucket, levelKey(era, addr))
	if 0 == len(data) {
		return 0
	}
	return utility.ByteToUInt64(data)
}

func (pool *RewardPool) setLevels(stateDB *state.StateDB, addr common.Address, era uint64, levels uint64) {
	stateDB.SetData(pool.bucket, levelKey(era, addr), utility.UInt64ToByte(levels))
}

func (pool *RewardPool) HasWithdrawn(stateDB *state.StateDB, addr common.Address, era uint64) bool {
	return 0 != len(stateDB.GetData(pool.bucket, withdrawnKey(era, addr)))
}

// GrantLevel credits levels against an era. The eventId dedup set keeps a
// replayed grant (same inspection, same resource) from double-crediting;
// a duplicate is a silent no-op and the pool stays additive otherwise.
// Returns whether the grant applied.
func (pool *RewardPool) GrantLevel(stateDB *state.StateDB, addr common.Address, amount, era uint64, eventId []byte) bool {
	if 0 == amount {
		return false
	}

	eventKey := append([]byte(grantEventPrefix), eventId...)
	if 0 != len(stateDB.GetData(pool.bucket, eventKey)) {
		pool.logger.Warnf("pool %d: duplicated grant event %s", pool.pool, utility.ToHex(eventId))
		return false
	}
	stateDB.SetData(pool.bucket, eventKey, markValue)

	pool.setLevels(stateDB, addr, era, pool.LevelsOf(stateDB, addr, era)+amount)

	stats := pool.EraStatsOf(stateDB, era)
	stats.TotalLevels += amount
	pool.saveEraStats(stateDB, era, stats)

	totals := pool.TotalsOf(stateDB)
	totals.TotalLevels += amount

	accountState := pool.AccountStateOf(stateDB, addr)
	if !accountState.OnPool {
		accountState.OnPool = true
		accountState.EraPointer = era
		totals.UsersOnPool++
	}
	accountState.TotalLevel += amount
	accountState.RecordEra(era)
	pool.saveAccountState(stateDB, addr, accountState)
	pool.saveTotals(stateDB, totals)

	pool.logger.Debugf("pool %d: granted %d levels to %s, era %d", pool.pool, amount, addr.ShortS(), era)
	return true
}

// RemoveLevel claws back levels recorded against an era. Underflow means a
// grant was never recorded and the caller's accounting is broken.
func (pool *RewardPool) RemoveLevel(stateDB *state.StateDB, addr common.Address, era, amount uint64) {
	if 0 == amount {
		return
	}

	levels := pool.LevelsOf(stateDB, addr, era)
	if levels < amount {
		panic(fmt.Sprintf("reward pool %d: level underflow for %s, era %d: %d below %d", pool.pool, addr.String(), era, levels, amount))
	}
	pool.setLevels(stateDB, addr, era, levels-amount)

	stats := pool.EraStatsOf(stateDB, era)
	if stats.TotalLevels < amount {
		panic(fmt.Sprintf("reward pool %d: era %d total underflow", pool.pool, era))
	}
	stats.TotalLevels -= amount
	pool.saveEraStats(stateDB, era, stats)

	totals := pool.TotalsOf(stateDB)
	totals.TotalLevels -= amount
	pool.saveTotals(stateDB, totals)

	accountState := pool.AccountStateOf(stateDB, addr)
	accountState.TotalLevel -= amount
	pool.saveAccountState(stateDB, addr, accountState)

	pool.logger.Debugf("pool %d: removed %d levels from %s, era %d", pool.pool, amount, addr.ShortS(), era)
}

// RemoveAllLevels zeroes an account across every era it ever earned in. The
// denial path: the account keeps its era history but the denominator of each
// touched era shrinks immediately.
func (pool *RewardPool) RemoveAllLevels(stateDB *state.StateDB, addr common.Address) {
	accountState := pool.AccountStateOf(stateDB, addr)
	if 0 == accountState.TotalLevel {
		return
	}

	for _, era := range accountState.Eras {
		levels := pool.LevelsOf(stateDB, addr, era)
		if 0 == levels {
			continue
		}
		pool.RemoveLevel(stateDB, addr, era, levels)
	}

	pool.logger.Infof("pool %d: stripped all levels of %s", pool.pool, addr.ShortS())
}

// Withdraw settles the account's stored era pointer. One era per call, at
// most one successful payout per (account, era); everything else is a no-op
// with the pointer advanced so the caller never gets stuck on an empty era.
func (pool *RewardPool) Withdraw(stateDB *state.StateDB, addr common.Address, height uint64) *big.Int {
	accountState := pool.AccountStateOf(stateDB, addr)
	if !accountState.OnPool {
		return common.Big0
	}

	currentEra := pool.clock.CurrentEra(height)
	recordedEra := accountState.EraPointer
	if recordedEra >= currentEra {
		// nothing matured yet
		return common.Big0
	}

	if pool.HasWithdrawn(stateDB, addr, recordedEra) {
		accountState.EraPointer = recordedEra + 1
		pool.saveAccountState(stateDB, addr, accountState)
		return common.Big0
	}

	levels := pool.LevelsOf(stateDB, addr, recordedEra)
	if 0 == levels {
		// lazy skip: zero-level eras advance the pointer without payout
		accountState.EraPointer = currentEra
		pool.saveAccountState(stateDB, addr, accountState)
		return common.Big0
	}

	stats := pool.EraStatsOf(stateDB, recordedEra)
	if 0 == stats.TotalLevels {
		panic(fmt.Sprintf("reward pool %d: era %d has levels for %s but zero total", pool.pool, recordedEra, addr.String()))
	}

	// payout = levels/totalLevels * tokensPerEra, multiply first so integer
	// division only rounds once
	payout := new(big.Int).SetUint64(levels)
	payout.Mul(payout, pool.TokensPerEra(recordedEra))
	payout.Div(payout, new(big.Int).SetUint64(stats.TotalLevels))

	stateDB.SetData(pool.bucket, withdrawnKey(recordedEra, addr), markValue)
	stats.ClaimsCount++
	stats.AddClaimed(payout)
	pool.saveEraStats(stateDB, recordedEra, stats)

	accountState.EraPointer = recordedEra + 1
	pool.saveAccountState(stateDB, addr, accountState)

	TokenLedgerImpl.DecreaseLocked(stateDB, payout)
	TokenLedgerImpl.AddBalance(stateDB, addr, payout)

	pool.logger.Infof("pool %d: %s withdrew %s for era %d (%d of %d levels)",
		pool.pool, addr.ShortS(), payout.String(), recordedEra, levels, stats.TotalLevels)
	return payout
}

// onUserDeniedStripLevels empties the denied account's type pool and its
// validator pool share.
func onUserDeniedStripLevels(message notify.Message) {
	denied, ok := message.(*notify.UserDeniedMessage)
	if !ok {
		return
	}

	if pool := PoolOf(denied.UserType); nil != pool {
		pool.RemoveAllLevels(denied.State, denied.Address)
	}
	PoolOf(common.PoolValidator).RemoveAllLevels(denied.State, denied.Address)
}
