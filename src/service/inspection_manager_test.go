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
	"testing"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
)

func requestInspection(t *testing.T, stateDB *state.StateDB, regenerator common.Address, height uint64) common.Hash {
	id, err := InspectionManagerImpl.Request(stateDB, regenerator, height)
	if nil != err {
		t.Fatalf("request at %d: %s", height, err.Error())
	}
	return id
}

func acceptInspection(t *testing.T, stateDB *state.StateDB, inspector common.Address, id common.Hash, height uint64) {
	if err := InspectionManagerImpl.Accept(stateDB, inspector, id, height); nil != err {
		t.Fatalf("accept at %d: %s", height, err.Error())
	}
}

func realizeInspection(t *testing.T, stateDB *state.StateDB, inspector common.Address, id common.Hash, trees, biodiversity, height uint64) {
	err := InspectionManagerImpl.Realize(stateDB, inspector, id, trees, biodiversity, "Qm-evidence", "Qm-justification", height)
	if nil != err {
		t.Fatalf("realize at %d: %s", height, err.Error())
	}
}

func TestInspectionHappyPath(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	id := requestInspection(t, stateDB, regenerator, 2)
	acceptInspection(t, stateDB, inspector, id, 3)
	// 5000 trees and 30 species score 4+4
	realizeInspection(t, stateDB, inspector, id, 5000, 30, 4)

	inspection := InspectionManagerImpl.InspectionOf(stateDB, id)
	if types.InspectionStatusInspected != inspection.Status || 8 != inspection.Score || 1 != inspection.Era {
		t.Fatalf("inspection %+v", inspection)
	}

	regenMember := CommunityRegistryImpl.MemberOf(stateDB, regenerator)
	if 1 != regenMember.Regenerator.TotalInspections || 8 != regenMember.Regenerator.AccumulatedScore {
		t.Fatalf("regenerator profile %+v", regenMember.Regenerator)
	}
	if regenMember.Regenerator.PendingInspection {
		t.Fatalf("request still pending after realize")
	}
	// below the pool-entry threshold nothing posts
	if 0 != PoolOf(common.PoolRegenerator).AccountStateOf(stateDB, regenerator).TotalLevel {
		t.Fatalf("levels posted before threshold")
	}

	inspectorMember := CommunityRegistryImpl.MemberOf(stateDB, inspector)
	if 1 != inspectorMember.Inspector.TotalInspections || (common.Hash{}) != inspectorMember.Inspector.ActiveInspection {
		t.Fatalf("inspector profile %+v", inspectorMember.Inspector)
	}
	if 1 != PoolOf(common.PoolInspector).LevelsOf(stateDB, inspector, 1) {
		t.Fatalf("inspector level missing")
	}

	impact := InspectionManagerImpl.EraImpactOf(stateDB, 1)
	if 5000 != impact.Trees || 30 != impact.Biodiversity || 1 != impact.Realized {
		t.Fatalf("era impact %+v", impact)
	}
}

// TestPoolEntryThreshold walks one regenerator through four inspections: the
// first two accumulate silently, the third posts the whole backlog, the
// fourth posts only itself. Four inspectors because a pairing burns on
// acceptance.
func TestPoolEntryThreshold(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspectors := []common.Address{testAddr(11), testAddr(12), testAddr(13), testAddr(14)}

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	for _, inspector := range inspectors {
		registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)
	}

	pool := PoolOf(common.PoolRegenerator)
	height := uint64(2)
	for round := 0; round < 4; round++ {
		id := requestInspection(t, stateDB, regenerator, height)
		acceptInspection(t, stateDB, inspectors[round], id, height+1)

		trees, biodiversity := uint64(50000), uint64(0) // 16分
		if 3 == round {
			biodiversity = 30 // 16+4
		}
		realizeInspection(t, stateDB, inspectors[round], id, trees, biodiversity, height+2)

		switch round {
		case 0, 1:
			if 0 != pool.AccountStateOf(stateDB, regenerator).TotalLevel {
				t.Fatalf("round %d posted early", round)
			}
		case 2:
			if 48 != pool.LevelsOf(stateDB, regenerator, 1) {
				t.Fatalf("backlog not posted: %d", pool.LevelsOf(stateDB, regenerator, 1))
			}
			if 48 != InspectionManagerImpl.InspectionOf(stateDB, id).PostedLevels {
				t.Fatalf("posted levels not recorded")
			}
		case 3:
			if 68 != pool.LevelsOf(stateDB, regenerator, 1) {
				t.Fatalf("fourth inspection posted wrong: %d", pool.LevelsOf(stateDB, regenerator, 1))
			}
		}
		height += 8
	}

	if 80 != CommunityRegistryImpl.MemberOf(stateDB, regenerator).Regenerator.AccumulatedScore {
		t.Fatalf("accumulated score drifted")
	}
}

func TestAcceptExclusivity(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	id := requestInspection(t, stateDB, regenerator, 2)
	acceptInspection(t, stateDB, inspector, id, 3)
	realizeInspection(t, stateDB, inspector, id, 5000, 30, 4)

	second := requestInspection(t, stateDB, regenerator, 10)
	err := InspectionManagerImpl.Accept(stateDB, inspector, second, 11)
	if nil == err || types.ErrorCodeInspectorExcluded != err.Code {
		t.Fatalf("repeat pairing passed: %v", err)
	}
}

func TestAcceptGates(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	first := testAddr(1)
	second := testAddr(2)
	inspector := testAddr(3)

	registerUser(t, stateDB, first, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, second, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	if err := InspectionManagerImpl.Accept(stateDB, inspector, common.BytesToHash([]byte("nope")), 2); nil == err || types.ErrorCodeInspectionNotFound != err.Code {
		t.Fatalf("unknown id passed: %v", err)
	}

	id := requestInspection(t, stateDB, first, 2)
	acceptInspection(t, stateDB, inspector, id, 3)

	// the acceptance pins the inspector
	other := requestInspection(t, stateDB, second, 4)
	if err := InspectionManagerImpl.Accept(stateDB, inspector, other, 5); nil == err || types.ErrorCodeInspectorBusy != err.Code {
		t.Fatalf("busy inspector passed: %v", err)
	}

	// freed but still cooling down
	realizeInspection(t, stateDB, inspector, id, 5000, 30, 6)
	err := InspectionManagerImpl.Accept(stateDB, inspector, other, 7)
	if nil == err || types.ErrorCodeTemporalGate != err.Code {
		t.Fatalf("cooldown ignored: %v", err)
	}
	if retryAt := 3 + common.LocalChainConfig.InterInspectionDelay; err.RetryAtBlock != retryAt {
		t.Fatalf("retry hint %d, want %d", err.RetryAtBlock, retryAt)
	}
	acceptInspection(t, stateDB, inspector, other, 8)
}

func TestAcceptInSafeguardWindow(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	id := requestInspection(t, stateDB, regenerator, 2)

	// blocks 90..99 close era 1
	err := InspectionManagerImpl.Accept(stateDB, inspector, id, 95)
	if nil == err || types.ErrorCodeSafeguardWindow != err.Code {
		t.Fatalf("safeguard window open: %v", err)
	}
	if 100 != err.RetryAtBlock {
		t.Fatalf("retry hint %d", err.RetryAtBlock)
	}

	acceptInspection(t, stateDB, inspector, id, 100)
}

func TestRequestGates(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	if _, err := InspectionManagerImpl.Request(stateDB, inspector, 2); nil == err || types.ErrorCodeWrongUserType != err.Code {
		t.Fatalf("inspector requested an inspection: %v", err)
	}

	requestInspection(t, stateDB, regenerator, 2)
	if _, err := InspectionManagerImpl.Request(stateDB, regenerator, 3); nil == err || types.ErrorCodeInspectionPending != err.Code {
		t.Fatalf("second pending request passed: %v", err)
	}
}

func TestRequestCooldownAndLifetimeLimit(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	id := requestInspection(t, stateDB, regenerator, 2)
	acceptInspection(t, stateDB, inspector, id, 3)
	realizeInspection(t, stateDB, inspector, id, 5000, 30, 4)

	_, err := InspectionManagerImpl.Request(stateDB, regenerator, 5)
	if nil == err || types.ErrorCodeTemporalGate != err.Code {
		t.Fatalf("request cooldown ignored: %v", err)
	}
	if retryAt := 2 + common.LocalChainConfig.RequestDelay; err.RetryAtBlock != retryAt {
		t.Fatalf("retry hint %d, want %d", err.RetryAtBlock, retryAt)
	}

	member := CommunityRegistryImpl.MemberOf(stateDB, regenerator)
	member.Regenerator.TotalInspections = uint32(common.LocalChainConfig.MaxLifetimeInspections)
	CommunityRegistryImpl.SaveMember(stateDB, member)

	if _, err := InspectionManagerImpl.Request(stateDB, regenerator, 20); nil == err || types.ErrorCodeInspectionLimit != err.Code {
		t.Fatalf("lifetime limit ignored: %v", err)
	}
}

func TestRealizePastDeadlineSettlesGiveUp(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	id := requestInspection(t, stateDB, regenerator, 2)
	acceptInspection(t, stateDB, inspector, id, 3)

	// deadline 53, realize arrives one block late
	err := InspectionManagerImpl.Realize(stateDB, inspector, id, 5000, 30, "Qm-evidence", "Qm-justification", 54)
	if nil == err || types.ErrorCodeDeadlinePassed != err.Code {
		t.Fatalf("late realize passed: %v", err)
	}

	inspection := InspectionManagerImpl.InspectionOf(stateDB, id)
	if types.InspectionStatusOpen != inspection.Status || (common.Address{}) != inspection.Inspector {
		t.Fatalf("inspection not reopened: %+v", inspection)
	}
	member := CommunityRegistryImpl.MemberOf(stateDB, inspector)
	if 1 != member.Inspector.GiveUps || (common.Hash{}) != member.Inspector.ActiveInspection {
		t.Fatalf("give-up not charged: %+v", member.Inspector)
	}

	// the burned pairing keeps the same inspector out
	if err := InspectionManagerImpl.Accept(stateDB, inspector, id, 60); nil == err || types.ErrorCodeInspectorExcluded != err.Code {
		t.Fatalf("burned pairing re-accepted: %v", err)
	}
}

func TestAcceptSettlesOverdueGiveUp(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	first := testAddr(1)
	second := testAddr(2)
	inspector := testAddr(3)

	registerUser(t, stateDB, first, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, second, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	overdue := requestInspection(t, stateDB, first, 2)
	acceptInspection(t, stateDB, inspector, overdue, 3)
	next := requestInspection(t, stateDB, second, 2)

	// deadline 53: the accept settles the give-up and nothing else
	err := InspectionManagerImpl.Accept(stateDB, inspector, next, 60)
	if nil == err || types.ErrorCodeDeadlinePassed != err.Code {
		t.Fatalf("overdue accept: %v", err)
	}

	inspection := InspectionManagerImpl.InspectionOf(stateDB, overdue)
	if types.InspectionStatusOpen != inspection.Status || (common.Address{}) != inspection.Inspector {
		t.Fatalf("overdue inspection not reopened: %+v", inspection)
	}
	member := CommunityRegistryImpl.MemberOf(stateDB, inspector)
	if 1 != member.Inspector.GiveUps || (common.Hash{}) != member.Inspector.ActiveInspection {
		t.Fatalf("give-up not charged: %+v", member.Inspector)
	}
	if types.InspectionStatusOpen != InspectionManagerImpl.InspectionOf(stateDB, next).Status {
		t.Fatalf("target inspection touched by the settlement")
	}

	// with the slate clean the retry lands
	acceptInspection(t, stateDB, inspector, next, 61)
}

func TestExpireBeforeDeadline(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspector := testAddr(2)

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)

	id := requestInspection(t, stateDB, regenerator, 2)
	acceptInspection(t, stateDB, inspector, id, 3)

	err := InspectionManagerImpl.Expire(stateDB, id, 30)
	if nil == err || types.ErrorCodeDeadlineNotReached != err.Code {
		t.Fatalf("early expire passed: %v", err)
	}
	if 54 != err.RetryAtBlock {
		t.Fatalf("retry hint %d", err.RetryAtBlock)
	}
}

// TestFourthGiveUpDeniesInspector drags one inspector through four expired
// acceptances. Heights dodge the era safeguard windows; four regenerators
// because every acceptance burns its pairing.
func TestFourthGiveUpDeniesInspector(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	inspector := testAddr(9)
	regenerators := []common.Address{testAddr(1), testAddr(2), testAddr(3), testAddr(4)}

	registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)
	for _, regenerator := range regenerators {
		registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	}

	accepts := []uint64{5, 60, 115, 170}
	var last common.Hash
	for i, regenerator := range regenerators {
		id := requestInspection(t, stateDB, regenerator, 2+uint64(i))
		acceptInspection(t, stateDB, inspector, id, accepts[i])
		if err := InspectionManagerImpl.Expire(stateDB, id, accepts[i]+common.LocalChainConfig.InspectionDeadline+1); nil != err {
			t.Fatalf("expire %d: %s", i, err.Error())
		}
		last = id
	}

	member := CommunityRegistryImpl.MemberOf(stateDB, inspector)
	if !member.IsDenied() || 4 != member.Inspector.GiveUps {
		t.Fatalf("fourth give-up did not deny: %+v", member)
	}
	if 0 != CommunityRegistryImpl.CountOf(stateDB, common.UserTypeInspector) {
		t.Fatalf("inspector count survived denial")
	}
	// the regenerator keeps an open request
	if types.InspectionStatusOpen != InspectionManagerImpl.InspectionOf(stateDB, last).Status {
		t.Fatalf("last inspection not reopened")
	}
}

func TestInvalidateRealizedInspection(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspectors := []common.Address{testAddr(11), testAddr(12), testAddr(13)}

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	for _, inspector := range inspectors {
		registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)
	}

	// three realizes cross the pool threshold, the third posts 48 levels
	height := uint64(2)
	var third common.Hash
	for _, inspector := range inspectors {
		id := requestInspection(t, stateDB, regenerator, height)
		acceptInspection(t, stateDB, inspector, id, height+1)
		realizeInspection(t, stateDB, inspector, id, 50000, 0, height+2)
		third = id
		height += 8
	}

	InspectionManagerImpl.Invalidate(stateDB, third, 40)

	inspection := InspectionManagerImpl.InspectionOf(stateDB, third)
	if types.InspectionStatusInvalidated != inspection.Status {
		t.Fatalf("status %d", inspection.Status)
	}

	member := CommunityRegistryImpl.MemberOf(stateDB, regenerator)
	if 2 != member.Regenerator.TotalInspections || 32 != member.Regenerator.AccumulatedScore {
		t.Fatalf("rollback wrong: %+v", member.Regenerator)
	}
	if 0 != PoolOf(common.PoolRegenerator).LevelsOf(stateDB, regenerator, 1) {
		t.Fatalf("posted levels survived invalidation")
	}
	// the third inspector loses the level, the other two keep theirs
	if 0 != PoolOf(common.PoolInspector).LevelsOf(stateDB, inspectors[2], 1) {
		t.Fatalf("third inspector kept the level")
	}
	if 1 != PoolOf(common.PoolInspector).LevelsOf(stateDB, inspectors[0], 1) {
		t.Fatalf("first inspector lost the level")
	}
}
