package common

import (
	"math/big"
	"reflect"
)

const PREFIX = "0x"

const (
	AddressLength = 32 //地址字节长度(SHA-256)
	HashLength    = 32 //哈希字节长度(SHA-256)
)

// Participant types. Supporters burn certified tokens and hold no pool.
const (
	UserTypeUnknown     = byte(0)
	UserTypeRegenerator = byte(1)
	UserTypeInspector   = byte(2)
	UserTypeResearcher  = byte(3)
	UserTypeDeveloper   = byte(4)
	UserTypeContributor = byte(5)
	UserTypeActivist    = byte(6)
	UserTypeSupporter   = byte(7)
)

// Pool ids. The six participant pools reuse the user type byte; the validator
// pool is shared by every voter-eligible type.
const (
	PoolRegenerator = UserTypeRegenerator
	PoolInspector   = UserTypeInspector
	PoolResearcher  = UserTypeResearcher
	PoolDeveloper   = UserTypeDeveloper
	PoolContributor = UserTypeContributor
	PoolActivist    = UserTypeActivist
	PoolValidator   = byte(8)
)

const (
	UserStatusActive = 0
	UserStatusDenied = 1
)

// Resource kinds submitted for governance review.
const (
	ResourceKindReport       = byte(1)
	ResourceKindResearch     = byte(2)
	ResourceKindContribution = byte(3)
	ResourceKindInspection   = byte(4)
)

var (
	hashT    = reflect.TypeOf(Hash{})
	addressT = reflect.TypeOf(Address{})
)

// 地址相关常量
var (
	RegistryDBAddress   = BigToAddress(big.NewInt(1))
	InvitationDBAddress = BigToAddress(big.NewInt(2))
	InspectionDBAddress = BigToAddress(big.NewInt(3))
	ResourceDBAddress   = BigToAddress(big.NewInt(4))
	GovernanceDBAddress = BigToAddress(big.NewInt(5))
	LedgerDBAddress     = BigToAddress(big.NewInt(6))
	MetaDBAddress       = BigToAddress(big.NewInt(7))
)

const poolDBBase = 16

// PoolDBAddress returns the state bucket of a reward pool.
func PoolDBAddress(pool byte) Address {
	return BigToAddress(big.NewInt(poolDBBase + int64(pool)))
}

var (
	Big1 = big.NewInt(1)
	Big2 = big.NewInt(2)
	Big0 = big.NewInt(0)

	// TokenUnit is the base-unit value of one whole RGN token.
	TokenUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
)

// TokenAmount converts whole tokens into base units.
func TokenAmount(whole uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(whole), TokenUnit)
}

const (
	MaxInt32  = 1<<31 - 1
	MaxInt64  = 1<<63 - 1
	MaxUint32 = 1<<32 - 1
	MaxUint64 = 1<<64 - 1
)
