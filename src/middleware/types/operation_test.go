package types

import (
	"testing"

	"com.terrabio.regen/node/src/common"
)

func TestOperationGenHash(t *testing.T) {
	op := Operation{Source: "0x6ed3a2ea39e1774096de4d920b4fb5b32d37fa98", Type: OperationTypeRegister, Time: "1556076659050692000", Nonce: 1}
	op.Data = `{"userType":1,"area":5000}`

	hash := op.GenHash()
	if hash != op.GenHash() {
		t.Fatalf("hash not deterministic")
	}

	op.Nonce = 2
	if hash == op.GenHash() {
		t.Fatalf("nonce not part of hash")
	}
}

func TestOperationSourceInHash(t *testing.T) {
	a := Operation{Source: "0x01", Type: OperationTypeWithdraw, Nonce: 5}
	b := Operation{Source: "0x02", Type: OperationTypeWithdraw, Nonce: 5}

	if a.GenHash() == b.GenHash() {
		t.Fatalf("source not part of hash")
	}
}

func TestNilOperationGenHash(t *testing.T) {
	var op *Operation
	if op.GenHash() != (common.Hash{}) {
		t.Fatalf("nil operation should hash to zero")
	}
}

func TestGenResourceId(t *testing.T) {
	owner := common.HexToAddress("0x38eb86eefe56ea3de939d104361ba3699a7bbf0d")

	a := GenResourceId(owner, 100, 1)
	b := GenResourceId(owner, 100, 2)
	if a == b {
		t.Fatalf("sequence not part of resource id")
	}
	if a != GenResourceId(owner, 100, 1) {
		t.Fatalf("resource id not deterministic")
	}
}
