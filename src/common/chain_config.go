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

package common

import (
	"fmt"
	"io/ioutil"
	"math/big"

	"com.terrabio.regen/node/src/utility"
	"gopkg.in/yaml.v2"
)

const (
	ENV_MAINNET = "mainnet"
	ENV_TESTNET = "testnet"
	ENV_DEV     = "dev"
)

// Population cap modes. Direct and inverse caps scale with the regenerator
// population; fixed caps do not.
const (
	CapModeFixed   = "fixed"
	CapModeDirect  = "ratioDirect"
	CapModeInverse = "ratioInverse"
)

// TypeConf is the per-participant-type slice of the protocol configuration.
type TypeConf struct {
	// PoolTokens is the type pool's lifetime budget in whole tokens.
	PoolTokens uint64 `yaml:"poolTokens"`

	CapMode  string `yaml:"capMode"`
	CapRatio uint64 `yaml:"capRatio"`
	CapFixed uint64 `yaml:"capFixed"`
	// CapFloor keeps scaled caps from strangling a young community.
	CapFloor uint64 `yaml:"capFloor"`

	NeedInvitation  bool   `yaml:"needInvitation"`
	InvitationDelay uint64 `yaml:"invitationDelay"`
}

// ScoreTier maps a measured value threshold onto points. Tiers are kept in
// ascending threshold order; the highest satisfied tier wins.
type ScoreTier struct {
	Threshold uint64 `yaml:"threshold"`
	Points    uint64 `yaml:"points"`
}

type ProtocolConf struct {
	DeployBlock  uint64 `yaml:"deployBlock"`
	BlocksPerEra uint64 `yaml:"blocksPerEra"`
	// Halving is the number of eras per epoch. Emission halves every epoch.
	Halving uint64 `yaml:"halving"`

	Regenerator TypeConf `yaml:"regenerator"`
	Inspector   TypeConf `yaml:"inspector"`
	Researcher  TypeConf `yaml:"researcher"`
	Developer   TypeConf `yaml:"developer"`
	Contributor TypeConf `yaml:"contributor"`
	Activist    TypeConf `yaml:"activist"`
	Supporter   TypeConf `yaml:"supporter"`

	// ValidatorPoolTokens funds the shared validator pool (whole tokens).
	ValidatorPoolTokens uint64 `yaml:"validatorPoolTokens"`

	BootstrapThreshold uint64 `yaml:"bootstrapThreshold"`

	RequestDelay           uint64 `yaml:"requestDelay"`
	InterInspectionDelay   uint64 `yaml:"interInspectionDelay"`
	InspectionDeadline     uint64 `yaml:"inspectionDeadline"`
	MaxGiveUps             uint64 `yaml:"maxGiveUps"`
	MinRegeneratorArea     uint64 `yaml:"minRegeneratorArea"`
	MaxRegeneratorArea     uint64 `yaml:"maxRegeneratorArea"`
	MaxLifetimeInspections uint64 `yaml:"maxLifetimeInspections"`
	MinInspectionsToPool   uint64 `yaml:"minInspectionsToPool"`
	MaxTreesResult         uint64 `yaml:"maxTreesResult"`
	MaxBiodiversityResult  uint64 `yaml:"maxBiodiversityResult"`
	SafeguardWindow        uint64 `yaml:"safeguardWindow"`

	VoterMinInterval     uint64 `yaml:"voterMinInterval"`
	PointsPerLevel       uint64 `yaml:"pointsPerLevel"`
	QuorumDivisor        uint64 `yaml:"quorumDivisor"`
	MinVotesToInvalidate uint64 `yaml:"minVotesToInvalidate"`
	MaxPenaltiesPerKind  uint64 `yaml:"maxPenaltiesPerKind"`
	MaxInviterPenalties  uint64 `yaml:"maxInviterPenalties"`

	// Free-text inputs are size-bounded, never parsed.
	MaxHashLen        int `yaml:"maxHashLen"`
	MaxDescriptionLen int `yaml:"maxDescriptionLen"`

	// TotalSupply is the full token supply in whole tokens. The slice not
	// locked for pools is credited to GenesisHolder at genesis.
	TotalSupply   uint64 `yaml:"totalSupply"`
	GenesisHolder string `yaml:"genesisHolder"`

	TreeTiers         []ScoreTier `yaml:"treeTiers"`
	BiodiversityTiers []ScoreTier `yaml:"biodiversityTiers"`

	budgets map[byte]*big.Int
}

var LocalChainConfig *ProtocolConf

func initChainConfig(env string) {
	switch env {
	case ENV_MAINNET, "":
		LocalChainConfig = mainNetChainConfig()
	case ENV_TESTNET:
		LocalChainConfig = testNetChainConfig()
	case ENV_DEV:
		LocalChainConfig = devChainConfig()
	default:
		panic("chain config: unknown env " + env)
	}

	LocalChainConfig.complete()
}

// InitChainConfig loads an env preset without the full node bootstrap.
func InitChainConfig(env string) {
	initChainConfig(env)
}

// applyChainConfigFile overlays a yaml file onto the env preset. Unset keys
// keep their preset values.
func applyChainConfigFile(path string) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("chain config: read %s: %v", path, err))
	}

	conf := *LocalChainConfig
	if err = yaml.Unmarshal(data, &conf); err != nil {
		panic(fmt.Errorf("chain config: parse %s: %v", path, err))
	}

	conf.complete()
	LocalChainConfig = &conf
}

// TypeConfOf resolves the slice of configuration for a user type.
func (conf *ProtocolConf) TypeConfOf(userType byte) *TypeConf {
	switch userType {
	case UserTypeRegenerator:
		return &conf.Regenerator
	case UserTypeInspector:
		return &conf.Inspector
	case UserTypeResearcher:
		return &conf.Researcher
	case UserTypeDeveloper:
		return &conf.Developer
	case UserTypeContributor:
		return &conf.Contributor
	case UserTypeActivist:
		return &conf.Activist
	case UserTypeSupporter:
		return &conf.Supporter
	}
	return nil
}

// PoolBudget returns a pool's lifetime budget in base units.
func (conf *ProtocolConf) PoolBudget(pool byte) *big.Int {
	return conf.budgets[pool]
}

// PopulationCap computes a type's population cap against the current
// regenerator population.
func (conf *ProtocolConf) PopulationCap(userType byte, regeneratorCount uint64) uint64 {
	tc := conf.TypeConfOf(userType)
	if tc == nil {
		return 0
	}

	var limit uint64
	switch tc.CapMode {
	case CapModeDirect:
		product, overflow := utility.SafeMul(regeneratorCount, tc.CapRatio)
		if overflow {
			product = MaxUint64
		}
		limit = product
	case CapModeInverse:
		limit = regeneratorCount / tc.CapRatio
	default:
		limit = tc.CapFixed
	}

	if limit < tc.CapFloor {
		limit = tc.CapFloor
	}
	return limit
}

// complete validates the configuration and precomputes pool budgets.
// A broken configuration is fatal: the process must not come up with it.
func (conf *ProtocolConf) complete() {
	if 0 == conf.BlocksPerEra {
		panic("chain config: blocksPerEra must be positive")
	}
	if 0 == conf.Halving {
		panic("chain config: halving must be positive")
	}
	if 0 == conf.QuorumDivisor {
		panic("chain config: quorumDivisor must be positive")
	}
	if 0 == conf.PointsPerLevel {
		panic("chain config: pointsPerLevel must be positive")
	}
	if 0 == conf.MinRegeneratorArea || conf.MinRegeneratorArea >= conf.MaxRegeneratorArea {
		panic("chain config: regenerator area bounds invalid")
	}
	if conf.MinInspectionsToPool == 0 || conf.MinInspectionsToPool > conf.MaxLifetimeInspections {
		panic("chain config: inspection counts invalid")
	}
	if conf.SafeguardWindow >= conf.BlocksPerEra {
		panic("chain config: safeguardWindow must be shorter than an era")
	}
	if 0 == conf.MaxTreesResult || 0 == conf.MaxBiodiversityResult {
		panic("chain config: inspection result maxima missing")
	}
	if 0 == conf.MaxHashLen || 0 == conf.MaxDescriptionLen {
		panic("chain config: text bounds missing")
	}
	if 0 == conf.MaxPenaltiesPerKind {
		panic("chain config: maxPenaltiesPerKind must be positive")
	}

	checkTiers := func(name string, tiers []ScoreTier) {
		if 0 == len(tiers) {
			panic("chain config: " + name + " tiers missing")
		}
		for i := 1; i < len(tiers); i++ {
			if tiers[i].Threshold <= tiers[i-1].Threshold || tiers[i].Points <= tiers[i-1].Points {
				panic("chain config: " + name + " tiers must ascend")
			}
		}
	}
	checkTiers("tree", conf.TreeTiers)
	checkTiers("biodiversity", conf.BiodiversityTiers)

	for _, userType := range []byte{UserTypeRegenerator, UserTypeInspector, UserTypeResearcher, UserTypeDeveloper, UserTypeContributor, UserTypeActivist} {
		tc := conf.TypeConfOf(userType)
		if 0 == tc.PoolTokens {
			panic(fmt.Sprintf("chain config: pool budget missing for type %d", userType))
		}
		switch tc.CapMode {
		case CapModeFixed:
			if 0 == tc.CapFixed {
				panic(fmt.Sprintf("chain config: fixed cap missing for type %d", userType))
			}
		case CapModeDirect, CapModeInverse:
			if 0 == tc.CapRatio {
				panic(fmt.Sprintf("chain config: cap ratio missing for type %d", userType))
			}
		default:
			panic(fmt.Sprintf("chain config: unknown cap mode %q for type %d", tc.CapMode, userType))
		}
	}
	if 0 == conf.ValidatorPoolTokens {
		panic("chain config: validator pool budget missing")
	}

	conf.budgets = map[byte]*big.Int{
		PoolRegenerator: TokenAmount(conf.Regenerator.PoolTokens),
		PoolInspector:   TokenAmount(conf.Inspector.PoolTokens),
		PoolResearcher:  TokenAmount(conf.Researcher.PoolTokens),
		PoolDeveloper:   TokenAmount(conf.Developer.PoolTokens),
		PoolContributor: TokenAmount(conf.Contributor.PoolTokens),
		PoolActivist:    TokenAmount(conf.Activist.PoolTokens),
		PoolValidator:   TokenAmount(conf.ValidatorPoolTokens),
	}

	if TokenAmount(conf.TotalSupply).Cmp(conf.TotalPoolSupply()) < 0 {
		panic("chain config: totalSupply smaller than pool budgets")
	}
}

// TotalPoolSupply sums every pool budget in base units.
func (conf *ProtocolConf) TotalPoolSupply() *big.Int {
	total := new(big.Int)
	for _, budget := range conf.budgets {
		total.Add(total, budget)
	}
	return total
}

func mainNetChainConfig() *ProtocolConf {
	return &ProtocolConf{
		DeployBlock:  0,
		BlocksPerEra: 259200,
		Halving:      12,

		Regenerator: TypeConf{
			PoolTokens:      750000000,
			CapMode:         CapModeFixed,
			CapFixed:        1000000,
			NeedInvitation:  true,
			InvitationDelay: 10000,
		},
		Inspector: TypeConf{
			PoolTokens:      150000000,
			CapMode:         CapModeDirect,
			CapRatio:        20,
			CapFloor:        40,
			NeedInvitation:  true,
			InvitationDelay: 20000,
		},
		Researcher: TypeConf{
			PoolTokens:      90000000,
			CapMode:         CapModeInverse,
			CapRatio:        10,
			CapFloor:        20,
			NeedInvitation:  true,
			InvitationDelay: 50000,
		},
		Developer: TypeConf{
			PoolTokens:      120000000,
			CapMode:         CapModeInverse,
			CapRatio:        10,
			CapFloor:        20,
			NeedInvitation:  true,
			InvitationDelay: 50000,
		},
		Contributor: TypeConf{
			PoolTokens:      60000000,
			CapMode:         CapModeInverse,
			CapRatio:        10,
			CapFloor:        20,
			NeedInvitation:  true,
			InvitationDelay: 50000,
		},
		Activist: TypeConf{
			PoolTokens:      90000000,
			CapMode:         CapModeInverse,
			CapRatio:        10,
			CapFloor:        20,
			NeedInvitation:  true,
			InvitationDelay: 50000,
		},
		Supporter: TypeConf{
			CapMode:  CapModeFixed,
			CapFixed: 10000000,
		},
		ValidatorPoolTokens: 120000000,

		BootstrapThreshold: 10,

		RequestDelay:           2000,
		InterInspectionDelay:   6000,
		InspectionDeadline:     50000,
		MaxGiveUps:             4,
		MinRegeneratorArea:     2500,
		MaxRegeneratorArea:     1000000,
		MaxLifetimeInspections: 6,
		MinInspectionsToPool:   3,
		MaxTreesResult:         1000000,
		MaxBiodiversityResult:  10000,
		SafeguardWindow:        2000,

		VoterMinInterval:     100,
		PointsPerLevel:       50,
		QuorumDivisor:        2,
		MinVotesToInvalidate: 3,
		MaxPenaltiesPerKind:  3,
		MaxInviterPenalties:  5,

		MaxHashLen:        128,
		MaxDescriptionLen: 1024,

		TotalSupply:   1500000000,
		GenesisHolder: "0x38eb86eefe56ea3de939d104361ba3699a7bbf0d",

		TreeTiers: []ScoreTier{
			{200, 1}, {1000, 2}, {5000, 4}, {20000, 8}, {50000, 16}, {100000, 32},
		},
		BiodiversityTiers: []ScoreTier{
			{5, 1}, {15, 2}, {30, 4}, {60, 8}, {100, 16}, {200, 32},
		},
	}
}

func testNetChainConfig() *ProtocolConf {
	conf := mainNetChainConfig()
	conf.BlocksPerEra = 28800
	conf.RequestDelay = 200
	conf.InterInspectionDelay = 600
	conf.InspectionDeadline = 5000
	conf.SafeguardWindow = 600
	conf.VoterMinInterval = 10
	conf.Regenerator.InvitationDelay = 1000
	conf.Inspector.InvitationDelay = 2000
	conf.Researcher.InvitationDelay = 5000
	conf.Developer.InvitationDelay = 5000
	conf.Contributor.InvitationDelay = 5000
	conf.Activist.InvitationDelay = 5000
	return conf
}

func devChainConfig() *ProtocolConf {
	conf := mainNetChainConfig()
	conf.BlocksPerEra = 100
	conf.Halving = 2
	conf.BootstrapThreshold = 3
	conf.RequestDelay = 5
	conf.InterInspectionDelay = 5
	conf.InspectionDeadline = 50
	conf.SafeguardWindow = 10
	conf.VoterMinInterval = 2
	conf.Regenerator.InvitationDelay = 5
	conf.Inspector.InvitationDelay = 5
	conf.Researcher.InvitationDelay = 5
	conf.Developer.InvitationDelay = 5
	conf.Contributor.InvitationDelay = 5
	conf.Activist.InvitationDelay = 5
	return conf
}
