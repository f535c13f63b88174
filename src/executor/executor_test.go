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
	"fmt"
	"testing"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/db"
	"com.terrabio.regen/node/src/middleware/notify"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/service"
	"com.terrabio.regen/node/src/storage/state"
)

func setupExecutors(t *testing.T) *state.StateDB {
	common.InitChainConfig(common.ENV_DEV)
	notify.BUS = notify.NewBus()
	service.InitService(common.LocalChainConfig)
	InitExecutors()

	memDB, err := db.NewMemDatabase()
	if err != nil {
		t.Fatalf("mem database error: %s", err.Error())
	}
	stateDB, err := state.NewStateDB(state.NewDatabase(memDB))
	if err != nil {
		t.Fatalf("stateDB error: %s", err.Error())
	}

	service.TokenLedgerImpl.SetTotalSupply(stateDB, common.TokenAmount(common.LocalChainConfig.TotalSupply))
	service.TokenLedgerImpl.IncreaseLocked(stateDB, common.LocalChainConfig.TotalPoolSupply())
	return stateDB
}

func opSource(tag byte) string {
	raw := make([]byte, common.AddressLength)
	raw[common.AddressLength-1] = tag
	return common.BytesToAddress(raw).GetHexString()
}

// applyOp pushes one operation through BeforeExecute and Execute the way the
// protocol engine does.
func applyOp(t *testing.T, stateDB *state.StateDB, opType int32, source, data string, height uint64) (bool, string, map[string]interface{}) {
	op := &types.Operation{Source: source, Type: opType, Data: data, Nonce: height}
	op.Hash = op.GenHash()
	header := &types.BlockHeader{Height: height}
	context := make(map[string]interface{})

	target := GetOperationExecutor(opType)
	if nil == target {
		t.Fatalf("no executor for type %d", opType)
	}
	if ok, msg := target.BeforeExecute(op, header, stateDB, context); !ok {
		return false, msg, context
	}
	ok, msg := target.Execute(op, header, stateDB, context)
	return ok, msg, context
}

func TestExecutorTable(t *testing.T) {
	setupExecutors(t)

	for _, opType := range []int32{
		types.OperationTypeRegister, types.OperationTypeInvite, types.OperationTypeWithdraw, types.OperationTypeCertify,
		types.OperationTypeRequestInspection, types.OperationTypeAcceptInspection, types.OperationTypeRealizeInspection, types.OperationTypeExpireInspection,
		types.OperationTypeSubmitReport, types.OperationTypeSubmitResearch, types.OperationTypeSubmitContribution,
		types.OperationTypeVoteResource, types.OperationTypeVoteUser, types.OperationTypeConvertPoints, types.OperationTypeDelate,
	} {
		if nil == GetOperationExecutor(opType) {
			t.Fatalf("type %d unmapped", opType)
		}
	}
	if nil != GetOperationExecutor(99) {
		t.Fatalf("unknown type mapped")
	}
}

func TestRegisterOperation(t *testing.T) {
	stateDB := setupExecutors(t)
	source := opSource(1)

	ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, source, `{"userType":1,"area":5000}`, 10)
	if !ok {
		t.Fatalf("register failed: %s", msg)
	}
	member := service.CommunityRegistryImpl.MemberOf(stateDB, common.HexToAddress(source))
	if nil == member || common.UserTypeRegenerator != member.Type {
		t.Fatalf("member not written")
	}

	// a rejection surfaces the service code in the receipt context
	ok, _, context := applyOp(t, stateDB, types.OperationTypeRegister, source, `{"userType":2}`, 11)
	if ok || types.ErrorCodeMemberExists != context["code"] {
		t.Fatalf("duplicate register: ok=%v context=%v", ok, context)
	}

	if ok, _, _ := applyOp(t, stateDB, types.OperationTypeRegister, opSource(2), `not json`, 12); ok {
		t.Fatalf("garbage payload accepted")
	}
}

func TestWithdrawOperation(t *testing.T) {
	stateDB := setupExecutors(t)
	source := opSource(1)

	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, source, `{"userType":4}`, 10); !ok {
		t.Fatalf("register failed: %s", msg)
	}

	// the inspector pool is not the developer's to draw from
	ok, _, context := applyOp(t, stateDB, types.OperationTypeWithdraw, source, `{"pool":2}`, 20)
	if ok || types.ErrorCodeWrongUserType != context["code"] {
		t.Fatalf("foreign pool withdraw: ok=%v context=%v", ok, context)
	}

	// own pool and the validator pool both pass, a zero payout included
	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeWithdraw, source, `{"pool":4}`, 20); !ok {
		t.Fatalf("own pool withdraw failed: %s", msg)
	}
	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeWithdraw, source, `{"pool":8}`, 20); !ok {
		t.Fatalf("validator pool withdraw failed: %s", msg)
	}
}

func TestCertifyOperation(t *testing.T) {
	stateDB := setupExecutors(t)
	source := opSource(1)
	addr := common.HexToAddress(source)

	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeCertify, source, `{"amount":"2"}`, 9); ok {
		t.Fatalf("unregistered certify passed: %s", msg)
	}

	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, source, `{"userType":7}`, 10); !ok {
		t.Fatalf("register failed: %s", msg)
	}
	service.TokenLedgerImpl.AddBalance(stateDB, addr, common.TokenAmount(5))

	ok, msg, _ := applyOp(t, stateDB, types.OperationTypeCertify, source, `{"amount":"2"}`, 11)
	if !ok {
		t.Fatalf("certify failed: %s", msg)
	}
	if 0 != service.TokenLedgerImpl.BalanceOf(stateDB, addr).Cmp(common.TokenAmount(3)) {
		t.Fatalf("balance not burned: %s", service.TokenLedgerImpl.BalanceOf(stateDB, addr))
	}
	if 0 != service.TokenLedgerImpl.CertifiedOf(stateDB, addr).Cmp(common.TokenAmount(2)) {
		t.Fatalf("certified not booked: %s", service.TokenLedgerImpl.CertifiedOf(stateDB, addr))
	}

	// more than the remaining balance
	ok, _, context := applyOp(t, stateDB, types.OperationTypeCertify, source, `{"amount":"4"}`, 12)
	if ok || types.ErrorCodeBalanceNotEnough != context["code"] {
		t.Fatalf("overdraw certify: ok=%v context=%v", ok, context)
	}
}

func TestRealizeOperationPastDeadlineCommits(t *testing.T) {
	stateDB := setupExecutors(t)
	regenerator := opSource(1)
	inspector := opSource(2)

	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, regenerator, `{"userType":1,"area":5000}`, 1); !ok {
		t.Fatalf("register regenerator: %s", msg)
	}
	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, inspector, `{"userType":2}`, 1); !ok {
		t.Fatalf("register inspector: %s", msg)
	}

	ok, msg, context := applyOp(t, stateDB, types.OperationTypeRequestInspection, regenerator, "", 2)
	if !ok {
		t.Fatalf("request: %s", msg)
	}
	id := context["inspectionId"].(common.Hash)

	payload := fmt.Sprintf(`{"id":"%s"}`, id.String())
	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeAcceptInspection, inspector, payload, 3); !ok {
		t.Fatalf("accept: %s", msg)
	}

	// past the deadline the give-up settles, and that transition must commit:
	// the executor reports success with the rejection code in the context
	late := fmt.Sprintf(`{"id":"%s","trees":5000,"biodiversity":30,"evidenceHash":"Qm-e","justificationHash":"Qm-j"}`, id.String())
	ok, _, context = applyOp(t, stateDB, types.OperationTypeRealizeInspection, inspector, late, 60)
	if !ok || types.ErrorCodeDeadlinePassed != context["code"] {
		t.Fatalf("late realize: ok=%v context=%v", ok, context)
	}
	if types.InspectionStatusOpen != service.InspectionManagerImpl.InspectionOf(stateDB, id).Status {
		t.Fatalf("inspection not reopened")
	}
}

func TestAcceptOperationPastDeadlineCommits(t *testing.T) {
	stateDB := setupExecutors(t)
	first := opSource(1)
	second := opSource(2)
	inspector := opSource(3)

	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, first, `{"userType":1,"area":5000}`, 1); !ok {
		t.Fatalf("register first: %s", msg)
	}
	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, second, `{"userType":1,"area":5000}`, 1); !ok {
		t.Fatalf("register second: %s", msg)
	}
	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, inspector, `{"userType":2}`, 1); !ok {
		t.Fatalf("register inspector: %s", msg)
	}

	ok, msg, context := applyOp(t, stateDB, types.OperationTypeRequestInspection, first, "", 2)
	if !ok {
		t.Fatalf("request first: %s", msg)
	}
	overdue := context["inspectionId"].(common.Hash)
	if ok, msg, _ = applyOp(t, stateDB, types.OperationTypeAcceptInspection, inspector, fmt.Sprintf(`{"id":"%s"}`, overdue.String()), 3); !ok {
		t.Fatalf("accept: %s", msg)
	}

	ok, msg, context = applyOp(t, stateDB, types.OperationTypeRequestInspection, second, "", 2)
	if !ok {
		t.Fatalf("request second: %s", msg)
	}
	next := context["inspectionId"].(common.Hash)

	// the overdue accept settles as a give-up, and that transition must
	// commit: the executor reports success with the rejection code
	ok, _, context = applyOp(t, stateDB, types.OperationTypeAcceptInspection, inspector, fmt.Sprintf(`{"id":"%s"}`, next.String()), 60)
	if !ok || types.ErrorCodeDeadlinePassed != context["code"] {
		t.Fatalf("overdue accept: ok=%v context=%v", ok, context)
	}
	if types.InspectionStatusOpen != service.InspectionManagerImpl.InspectionOf(stateDB, overdue).Status {
		t.Fatalf("give-up not committed")
	}
	if 1 != service.CommunityRegistryImpl.MemberOf(stateDB, common.HexToAddress(inspector)).Inspector.GiveUps {
		t.Fatalf("give-up count not committed")
	}
}

func TestVoteOperations(t *testing.T) {
	stateDB := setupExecutors(t)
	owner := opSource(1)

	if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, owner, `{"userType":4}`, 1); !ok {
		t.Fatalf("register owner: %s", msg)
	}
	voters := []string{opSource(101), opSource(102), opSource(103)}
	for _, voter := range voters {
		if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeRegister, voter, `{"userType":3}`, 1); !ok {
			t.Fatalf("register voter: %s", msg)
		}
	}

	ok, msg, context := applyOp(t, stateDB, types.OperationTypeSubmitReport, owner, `{"contentHash":"Qm-r","description":"weekly build"}`, 5)
	if !ok {
		t.Fatalf("submit: %s", msg)
	}
	id := context["resourceId"].(common.Hash)

	payload := fmt.Sprintf(`{"id":"%s"}`, id.String())
	for i, voter := range voters {
		if ok, msg, _ := applyOp(t, stateDB, types.OperationTypeVoteResource, voter, payload, 10+uint64(i)); !ok {
			t.Fatalf("vote %d: %s", i, msg)
		}
	}
	if !service.GovernanceManagerImpl.ResourceOf(stateDB, id).Invalidated {
		t.Fatalf("votes did not land")
	}

	// era closed for a fresh challenge target
	ok, _, context = applyOp(t, stateDB, types.OperationTypeVoteResource, voters[0], payload, 150)
	if ok || types.ErrorCodeResourceInvalidated != context["code"] {
		t.Fatalf("vote on dead resource: ok=%v context=%v", ok, context)
	}
}
