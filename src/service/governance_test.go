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

// setupVoters registers three researchers. Three of a kind stay inside the
// bootstrap window, so they vote without holding levels, and they are exactly
// the dev-preset invalidation threshold.
func setupVoters(t *testing.T, stateDB *state.StateDB) []common.Address {
	voters := []common.Address{testAddr(101), testAddr(102), testAddr(103)}
	for _, voter := range voters {
		registerUser(t, stateDB, voter, common.UserTypeResearcher, 1)
	}
	return voters
}

func submitResource(t *testing.T, stateDB *state.StateDB, owner common.Address, kind byte, height uint64) common.Hash {
	id, err := GovernanceManagerImpl.SubmitResource(stateDB, owner, kind, "Qm-content", "a short description", height)
	if nil != err {
		t.Fatalf("submit at %d: %s", height, err.Error())
	}
	return id
}

func TestSubmitResourceGrantsLevel(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	owner := testAddr(1)

	registerUser(t, stateDB, owner, common.UserTypeDeveloper, 1)
	id := submitResource(t, stateDB, owner, common.ResourceKindReport, 5)

	resource := GovernanceManagerImpl.ResourceOf(stateDB, id)
	if nil == resource || common.ResourceKindReport != resource.Kind || 1 != resource.Era {
		t.Fatalf("resource %+v", resource)
	}
	if 1 != PoolOf(common.PoolDeveloper).LevelsOf(stateDB, owner, 1) {
		t.Fatalf("submission level missing")
	}
}

func TestSubmitResourceGates(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	developer := testAddr(1)
	researcher := testAddr(2)

	registerUser(t, stateDB, developer, common.UserTypeDeveloper, 1)
	registerUser(t, stateDB, researcher, common.UserTypeResearcher, 1)

	// kind is bound to type
	if _, err := GovernanceManagerImpl.SubmitResource(stateDB, researcher, common.ResourceKindReport, "Qm-content", "", 5); nil == err || types.ErrorCodeWrongUserType != err.Code {
		t.Fatalf("cross-type submission passed: %v", err)
	}
	// inspections enter the desk through realize, never directly
	if _, err := GovernanceManagerImpl.SubmitResource(stateDB, developer, common.ResourceKindInspection, "Qm-content", "", 5); nil == err || types.ErrorCodeBadPayload != err.Code {
		t.Fatalf("inspection kind submitted directly: %v", err)
	}

	submitResource(t, stateDB, developer, common.ResourceKindReport, 5)
	if _, err := GovernanceManagerImpl.SubmitResource(stateDB, developer, common.ResourceKindReport, "Qm-content", "", 10); nil == err || types.ErrorCodeAlreadySubmitted != err.Code {
		t.Fatalf("second submission of the era passed: %v", err)
	}

	// era 2 reopens the slot, but not inside the closing window
	_, err := GovernanceManagerImpl.SubmitResource(stateDB, developer, common.ResourceKindReport, "Qm-content", "", 195)
	if nil == err || types.ErrorCodeSafeguardWindow != err.Code {
		t.Fatalf("safeguard window open: %v", err)
	}
	if 200 != err.RetryAtBlock {
		t.Fatalf("retry hint %d", err.RetryAtBlock)
	}
	submitResource(t, stateDB, developer, common.ResourceKindReport, 150)
}

func TestVoteResourceInvalidates(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	owner := testAddr(1)

	registerUser(t, stateDB, owner, common.UserTypeDeveloper, 1)
	voters := setupVoters(t, stateDB)

	if threshold := GovernanceManagerImpl.VotesToInvalidate(stateDB); 3 != threshold {
		t.Fatalf("threshold %d", threshold)
	}

	id := submitResource(t, stateDB, owner, common.ResourceKindReport, 5)

	for i, voter := range voters {
		if err := GovernanceManagerImpl.VoteResource(stateDB, voter, id, 10+uint64(i)); nil != err {
			t.Fatalf("vote %d: %s", i, err.Error())
		}
	}

	resource := GovernanceManagerImpl.ResourceOf(stateDB, id)
	if !resource.Invalidated {
		t.Fatalf("threshold crossed but resource stands")
	}
	// the earned level is clawed back and the creator charged
	if 0 != PoolOf(common.PoolDeveloper).LevelsOf(stateDB, owner, 1) {
		t.Fatalf("invalidated resource kept its level")
	}
	if 1 != GovernanceManagerImpl.PenaltyOf(stateDB, common.ResourceKindReport, owner) {
		t.Fatalf("penalty missing")
	}
	// participation points accrue per vote
	if 1 != GovernanceManagerImpl.PointsOf(stateDB, voters[0]) {
		t.Fatalf("voter point missing")
	}

	if err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], id, 20); nil == err || types.ErrorCodeResourceInvalidated != err.Code {
		t.Fatalf("vote on dead resource passed: %v", err)
	}
}

func TestVoteResourceEraClosed(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	owner := testAddr(1)

	registerUser(t, stateDB, owner, common.UserTypeDeveloper, 1)
	voters := setupVoters(t, stateDB)

	id := submitResource(t, stateDB, owner, common.ResourceKindReport, 5)

	// era 2: the artifact is final
	err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], id, 150)
	if nil == err || types.ErrorCodeEraClosed != err.Code {
		t.Fatalf("cross-era challenge passed: %v", err)
	}
}

func TestVoteSpacing(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	first := testAddr(1)
	second := testAddr(2)

	registerUser(t, stateDB, first, common.UserTypeDeveloper, 1)
	registerUser(t, stateDB, second, common.UserTypeDeveloper, 1)
	voters := setupVoters(t, stateDB)

	one := submitResource(t, stateDB, first, common.ResourceKindReport, 5)
	two := submitResource(t, stateDB, second, common.ResourceKindReport, 6)

	if err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], one, 10); nil != err {
		t.Fatalf("first vote: %s", err.Error())
	}
	err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], two, 11)
	if nil == err || types.ErrorCodeTemporalGate != err.Code {
		t.Fatalf("vote interval ignored: %v", err)
	}
	if 12 != err.RetryAtBlock {
		t.Fatalf("retry hint %d", err.RetryAtBlock)
	}
	if err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], two, 12); nil != err {
		t.Fatalf("spaced vote: %s", err.Error())
	}
	// the same target twice is a different rejection
	if err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], two, 20); nil == err || types.ErrorCodeAlreadyVoted != err.Code {
		t.Fatalf("double vote passed: %v", err)
	}
}

func TestVoterEligibility(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	owner := testAddr(1)
	regenerator := testAddr(2)

	registerUser(t, stateDB, owner, common.UserTypeDeveloper, 1)
	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)

	id := submitResource(t, stateDB, owner, common.ResourceKindReport, 5)

	// regenerators hold no vote
	err := GovernanceManagerImpl.VoteResource(stateDB, regenerator, id, 10)
	if nil == err || types.ErrorCodeVoterIneligible != err.Code {
		t.Fatalf("regenerator voted: %v", err)
	}

	// past the bootstrap window a below-average researcher is silenced too
	voters := setupVoters(t, stateDB)
	registerUser(t, stateDB, testAddr(104), common.UserTypeResearcher, 2)
	PoolOf(common.PoolResearcher).GrantLevel(stateDB, voters[0], 8, 1, []byte("g1"))

	err = GovernanceManagerImpl.VoteResource(stateDB, voters[1], id, 10)
	if nil == err || types.ErrorCodeVoterIneligible != err.Code {
		t.Fatalf("below-average researcher voted: %v", err)
	}
	if err := GovernanceManagerImpl.VoteResource(stateDB, voters[0], id, 10); nil != err {
		t.Fatalf("above-average researcher blocked: %s", err.Error())
	}
}

func TestVoteUserDeniesTarget(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	target := testAddr(1)

	registerUser(t, stateDB, target, common.UserTypeRegenerator, 1)
	voters := setupVoters(t, stateDB)

	if err := GovernanceManagerImpl.VoteUser(stateDB, voters[0], voters[0], 10); nil == err || types.ErrorCodeVoterIneligible != err.Code {
		t.Fatalf("self-vote passed: %v", err)
	}

	for i, voter := range voters {
		if err := GovernanceManagerImpl.VoteUser(stateDB, voter, target, 10+uint64(i)); nil != err {
			t.Fatalf("vote %d: %s", i, err.Error())
		}
	}

	if !CommunityRegistryImpl.MemberOf(stateDB, target).IsDenied() {
		t.Fatalf("threshold crossed but target stands")
	}
	// the first voter of the attempt is its hunter
	if 1 != PoolOf(common.PoolValidator).LevelsOf(stateDB, voters[0], 1) {
		t.Fatalf("hunter level missing")
	}
	if 0 != PoolOf(common.PoolValidator).LevelsOf(stateDB, voters[1], 1) {
		t.Fatalf("non-hunter rewarded")
	}

	// a denied member is no longer challengeable
	if err := GovernanceManagerImpl.VoteUser(stateDB, voters[1], target, 20); nil == err || types.ErrorCodeTargetNotChallengeable != err.Code {
		t.Fatalf("vote against denied member passed: %v", err)
	}
}

func TestConvertPoints(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	voter := testAddr(1)

	registerUser(t, stateDB, voter, common.UserTypeResearcher, 1)
	gov := GovernanceManagerImpl

	if _, err := gov.ConvertPoints(stateDB, voter, 10); nil == err || types.ErrorCodeNotEnoughPoints != err.Code {
		t.Fatalf("empty conversion passed: %v", err)
	}

	// 120 points at 50 per level: two levels, 20 remain
	gov.setPoints(stateDB, voter, 120)
	levels, opErr := gov.ConvertPoints(stateDB, voter, 10)
	if nil != opErr {
		t.Fatalf("convert: %s", opErr.Error())
	}
	if 2 != levels || 20 != gov.PointsOf(stateDB, voter) {
		t.Fatalf("levels %d, remainder %d", levels, gov.PointsOf(stateDB, voter))
	}
	if 2 != PoolOf(common.PoolValidator).LevelsOf(stateDB, voter, 1) {
		t.Fatalf("validator levels missing")
	}

	// the remainder is below the rate again
	if _, err := gov.ConvertPoints(stateDB, voter, 11); nil == err || types.ErrorCodeNotEnoughPoints != err.Code {
		t.Fatalf("remainder conversion passed: %v", err)
	}
}

func TestDelate(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	informer := testAddr(1)
	other := testAddr(2)
	reported := testAddr(3)

	registerUser(t, stateDB, informer, common.UserTypeSupporter, 1)
	registerUser(t, stateDB, other, common.UserTypeSupporter, 1)
	registerUser(t, stateDB, reported, common.UserTypeRegenerator, 1)

	gov := GovernanceManagerImpl
	if err := gov.Delate(stateDB, informer, reported, false, 10); nil != err {
		t.Fatalf("delate: %s", err.Error())
	}
	if err := gov.Delate(stateDB, informer, reported, true, 11); nil == err || types.ErrorCodeAlreadySubmitted != err.Code {
		t.Fatalf("second delation of the era passed: %v", err)
	}
	if err := gov.Delate(stateDB, other, reported, true, 11); nil != err {
		t.Fatalf("delate by other: %s", err.Error())
	}

	delation := gov.DelationOf(stateDB, 1, reported)
	if 1 != delation.Up || 1 != delation.Down {
		t.Fatalf("delation %+v", delation)
	}

	// next era the slot reopens
	if err := gov.Delate(stateDB, informer, reported, true, 150); nil != err {
		t.Fatalf("delate in era 2: %s", err.Error())
	}
}

// TestInspectionVerdictCascade votes a realized inspection down and checks
// the rollback runs end to end: regenerator counters, posted levels and the
// inspector's level all come back out.
func TestInspectionVerdictCascade(t *testing.T) {
	stateDB := setupService(t, common.ENV_DEV)
	regenerator := testAddr(1)
	inspectors := []common.Address{testAddr(11), testAddr(12), testAddr(13)}

	registerUser(t, stateDB, regenerator, common.UserTypeRegenerator, 1)
	for _, inspector := range inspectors {
		registerUser(t, stateDB, inspector, common.UserTypeInspector, 1)
	}
	voters := setupVoters(t, stateDB)

	// three realizes cross the pool threshold and post 48 levels
	height := uint64(2)
	var third common.Hash
	for _, inspector := range inspectors {
		id := requestInspection(t, stateDB, regenerator, height)
		acceptInspection(t, stateDB, inspector, id, height+1)
		realizeInspection(t, stateDB, inspector, id, 50000, 0, height+2)
		third = id
		height += 8
	}

	// the realize entered the desk as a challengeable resource
	resource := GovernanceManagerImpl.ResourceOf(stateDB, third)
	if nil == resource || common.ResourceKindInspection != resource.Kind || resource.Owner != inspectors[2] {
		t.Fatalf("inspection resource %+v", resource)
	}

	for i, voter := range voters {
		if err := GovernanceManagerImpl.VoteResource(stateDB, voter, third, 30+uint64(i)); nil != err {
			t.Fatalf("vote %d: %s", i, err.Error())
		}
	}

	member := CommunityRegistryImpl.MemberOf(stateDB, regenerator)
	if 2 != member.Regenerator.TotalInspections || 32 != member.Regenerator.AccumulatedScore {
		t.Fatalf("rollback wrong: %+v", member.Regenerator)
	}
	if 0 != PoolOf(common.PoolRegenerator).LevelsOf(stateDB, regenerator, 1) {
		t.Fatalf("posted levels survived the verdict")
	}
	if 0 != PoolOf(common.PoolInspector).LevelsOf(stateDB, inspectors[2], 1) {
		t.Fatalf("inspector kept the level")
	}
	if 1 != GovernanceManagerImpl.PenaltyOf(stateDB, common.ResourceKindInspection, inspectors[2]) {
		t.Fatalf("inspector penalty missing")
	}
	if types.InspectionStatusInvalidated != InspectionManagerImpl.InspectionOf(stateDB, third).Status {
		t.Fatalf("inspection still stands")
	}
}
