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
	"strconv"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/middleware/notify"
	"com.terrabio.regen/node/src/middleware/types"
	"com.terrabio.regen/node/src/storage/state"
	"com.terrabio.regen/node/src/utility"
	"github.com/vmihailenco/msgpack"
)

const (
	inspectionKeyPrefix = "in" // in+id -> Inspection
	exclusionKeyPrefix  = "ex" // ex+inspector+regenerator -> mark
	eraImpactKeyPrefix  = "im" // im+era -> EraImpact
	activeKeyPrefix     = "ri" // ri+regenerator -> live inspection id
	inspectionSeqKey    = "sq"
)

// InspectionManager drives Open -> Accepted -> Inspected. Expiry is never
// scheduled: an overdue acceptance is settled lazily by whichever call
// touches it next. Pool effects of a realize run as ordered handlers on the
// InspectionRealized topic.
type InspectionManager struct {
	conf   *common.ProtocolConf
	clock  *EraClock
	table  *ScoringTable
	logger log.Logger
}

var InspectionManagerImpl *InspectionManager

func initInspectionManager(conf *common.ProtocolConf) {
	InspectionManagerImpl = &InspectionManager{
		conf:   conf,
		clock:  EraClockImpl,
		table:  NewScoringTable(conf),
		logger: log.GetLoggerByIndex(log.InspectLogConfig, strconv.Itoa(common.InstanceIndex)),
	}

	// realize hooks, in effect order
	notify.BUS.Subscribe(notify.InspectionRealized, onRealizedRegeneratorLevels)
	notify.BUS.Subscribe(notify.InspectionRealized, onRealizedInspectorLevel)
	notify.BUS.Subscribe(notify.InspectionRealized, onRealizedActivistLevel)
	notify.BUS.Subscribe(notify.InspectionRealized, onRealizedEraImpact)

	notify.BUS.Subscribe(notify.UserDenied, onUserDeniedCleanInspections)
	notify.BUS.Subscribe(notify.ResourceInvalidated, onInspectionResourceInvalidated)
}

func inspectionKey(id common.Hash) []byte {
	return append([]byte(inspectionKeyPrefix), id.Bytes()...)
}

func exclusionKey(inspector, regenerator common.Address) []byte {
	return append(append([]byte(exclusionKeyPrefix), inspector.Bytes()...), regenerator.Bytes()...)
}

func eraImpactKey(era uint64) []byte {
	return append([]byte(eraImpactKeyPrefix), utility.UInt64ToByte(era)...)
}

func activeKey(regenerator common.Address) []byte {
	return append([]byte(activeKeyPrefix), regenerator.Bytes()...)
}

func (manager *InspectionManager) InspectionOf(stateDB *state.StateDB, id common.Hash) *types.Inspection {
	data := stateDB.GetData(common.InspectionDBAddress, inspectionKey(id))
	if 0 == len(data) {
		return nil
	}

	inspection := &types.Inspection{}
	if err := msgpack.Unmarshal(data, inspection); err != nil {
		panic(fmt.Sprintf("inspection: corrupt record %s: %s", id.String(), err.Error()))
	}
	return inspection
}

func (manager *InspectionManager) saveInspection(stateDB *state.StateDB, inspection *types.Inspection) {
	data, _ := msgpack.Marshal(inspection)
	stateDB.SetData(common.InspectionDBAddress, inspectionKey(inspection.Id), data)
}

// HasInspected reports the append-only inspector/regenerator exclusion.
func (manager *InspectionManager) HasInspected(stateDB *state.StateDB, inspector, regenerator common.Address) bool {
	return 0 != len(stateDB.GetData(common.InspectionDBAddress, exclusionKey(inspector, regenerator)))
}

func (manager *InspectionManager) EraImpactOf(stateDB *state.StateDB, era uint64) *types.EraImpact {
	impact := &types.EraImpact{}
	data := stateDB.GetData(common.InspectionDBAddress, eraImpactKey(era))
	if 0 != len(data) {
		if err := msgpack.Unmarshal(data, impact); err != nil {
			panic(fmt.Sprintf("inspection: corrupt era impact, era %d: %s", era, err.Error()))
		}
	}
	return impact
}

func (manager *InspectionManager) nextSeq(stateDB *state.StateDB) uint64 {
	seq := uint64(0)
	if data := stateDB.GetData(common.InspectionDBAddress, []byte(inspectionSeqKey)); 0 != len(data) {
		seq = utility.ByteToUInt64(data)
	}
	stateDB.SetData(common.InspectionDBAddress, []byte(inspectionSeqKey), utility.UInt64ToByte(seq+1))
	return seq
}

// Request opens an inspection for the calling regenerator.
func (manager *InspectionManager) Request(stateDB *state.StateDB, regenerator common.Address, height uint64) (common.Hash, *types.OpError) {
	member, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, regenerator)
	if nil != err {
		return common.Hash{}, err
	}
	if common.UserTypeRegenerator != member.Type {
		return common.Hash{}, types.NewOpError(types.ErrorCodeWrongUserType, fmt.Sprintf("%s is not a regenerator", regenerator.ShortS()))
	}

	profile := member.Regenerator
	if profile.PendingInspection {
		return common.Hash{}, types.NewOpError(types.ErrorCodeInspectionPending, "an inspection is already pending")
	}
	if uint64(profile.TotalInspections) >= manager.conf.MaxLifetimeInspections {
		return common.Hash{}, types.NewOpError(types.ErrorCodeInspectionLimit,
			fmt.Sprintf("lifetime inspection limit %d reached", manager.conf.MaxLifetimeInspections))
	}
	if 0 != profile.LastRequestAt && height < profile.LastRequestAt+manager.conf.RequestDelay {
		return common.Hash{}, types.NewTemporalError(types.ErrorCodeTemporalGate, "request cool-down running", profile.LastRequestAt+manager.conf.RequestDelay)
	}

	id := types.GenResourceId(regenerator, height, manager.nextSeq(stateDB))
	inspection := &types.Inspection{
		Id:          id,
		Regenerator: regenerator,
		Status:      types.InspectionStatusOpen,
		Area:        profile.Area,
		RequestedAt: height,
	}
	manager.saveInspection(stateDB, inspection)
	stateDB.SetData(common.InspectionDBAddress, activeKey(regenerator), id.Bytes())

	profile.PendingInspection = true
	profile.LastRequestAt = height
	CommunityRegistryImpl.SaveMember(stateDB, member)

	manager.logger.Infof("inspection %s requested by %s at height %d", id.ShortS(), regenerator.ShortS(), height)
	return id, nil
}

// Accept assigns an open inspection to the calling inspector. If the
// inspector sits on an overdue acceptance, that give-up settles instead and
// the call reports DeadlinePassed: that rejection carries applied state and
// must commit, same as an overdue realize.
func (manager *InspectionManager) Accept(stateDB *state.StateDB, inspector common.Address, id common.Hash, height uint64) *types.OpError {
	member, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, inspector)
	if nil != err {
		return err
	}
	if common.UserTypeInspector != member.Type {
		return types.NewOpError(types.ErrorCodeWrongUserType, fmt.Sprintf("%s is not an inspector", inspector.ShortS()))
	}

	profile := member.Inspector
	if (common.Hash{}) != profile.ActiveInspection {
		active := manager.InspectionOf(stateDB, profile.ActiveInspection)
		if nil == active || !active.Expired(height) {
			return types.NewOpError(types.ErrorCodeInspectorBusy, fmt.Sprintf("inspection %s still active", profile.ActiveInspection.ShortS()))
		}

		deadline := active.Deadline
		manager.giveUp(stateDB, active, height)
		return types.NewOpError(types.ErrorCodeDeadlinePassed, fmt.Sprintf("deadline %d passed, give-up recorded", deadline))
	}

	if manager.clock.InSafeguardWindow(height) {
		era := manager.clock.CurrentEra(height)
		return types.NewTemporalError(types.ErrorCodeSafeguardWindow, "era is closing", manager.clock.EraEndBoundary(era))
	}

	inspection := manager.InspectionOf(stateDB, id)
	if nil == inspection {
		return types.NewOpError(types.ErrorCodeInspectionNotFound, fmt.Sprintf("unknown inspection %s", id.ShortS()))
	}
	if types.InspectionStatusOpen != inspection.Status {
		return types.NewOpError(types.ErrorCodeInspectionStatus, fmt.Sprintf("inspection %s is not open", id.ShortS()))
	}
	if inspection.Regenerator == inspector {
		return types.NewOpError(types.ErrorCodeSelfInspection, "cannot inspect own land")
	}
	if manager.HasInspected(stateDB, inspector, inspection.Regenerator) {
		return types.NewOpError(types.ErrorCodeInspectorExcluded,
			fmt.Sprintf("%s already inspected %s", inspector.ShortS(), inspection.Regenerator.ShortS()))
	}
	if 0 != profile.LastAcceptedAt && height < profile.LastAcceptedAt+manager.conf.InterInspectionDelay {
		return types.NewTemporalError(types.ErrorCodeTemporalGate, "inter-inspection cool-down running", profile.LastAcceptedAt+manager.conf.InterInspectionDelay)
	}

	inspection.Status = types.InspectionStatusAccepted
	inspection.Inspector = inspector
	inspection.AcceptedAt = height
	inspection.Deadline = height + manager.conf.InspectionDeadline
	manager.saveInspection(stateDB, inspection)

	// the pairing burns on acceptance, give-ups included
	stateDB.SetData(common.InspectionDBAddress, exclusionKey(inspector, inspection.Regenerator), markValue)

	profile.LastAcceptedAt = height
	profile.ActiveInspection = id
	CommunityRegistryImpl.SaveMember(stateDB, member)

	manager.logger.Infof("inspection %s accepted by %s, deadline %d", id.ShortS(), inspector.ShortS(), inspection.Deadline)
	return nil
}

// Realize submits the inspection results and fires the level hooks. An
// overdue realize settles the give-up instead and reports DeadlinePassed:
// that rejection carries applied state and must commit.
func (manager *InspectionManager) Realize(stateDB *state.StateDB, inspector common.Address, id common.Hash, trees, biodiversity uint64, evidenceHash, justificationHash string, height uint64) *types.OpError {
	inspection := manager.InspectionOf(stateDB, id)
	if nil == inspection {
		return types.NewOpError(types.ErrorCodeInspectionNotFound, fmt.Sprintf("unknown inspection %s", id.ShortS()))
	}
	if types.InspectionStatusAccepted != inspection.Status {
		return types.NewOpError(types.ErrorCodeInspectionStatus, fmt.Sprintf("inspection %s is not accepted", id.ShortS()))
	}
	if inspection.Inspector != inspector {
		return types.NewOpError(types.ErrorCodeWrongInspector, fmt.Sprintf("inspection %s belongs to %s", id.ShortS(), inspection.Inspector.ShortS()))
	}

	if inspection.Expired(height) {
		deadline := inspection.Deadline
		manager.giveUp(stateDB, inspection, height)
		return types.NewOpError(types.ErrorCodeDeadlinePassed, fmt.Sprintf("deadline %d passed, give-up recorded", deadline))
	}

	if trees > manager.conf.MaxTreesResult || biodiversity > manager.conf.MaxBiodiversityResult {
		return types.NewOpError(types.ErrorCodeResultOutOfRange,
			fmt.Sprintf("results %d/%d exceed maxima %d/%d", trees, biodiversity, manager.conf.MaxTreesResult, manager.conf.MaxBiodiversityResult))
	}
	if badHash(evidenceHash, manager.conf.MaxHashLen) || badHash(justificationHash, manager.conf.MaxHashLen) {
		return types.NewOpError(types.ErrorCodeEvidenceInvalid, "evidence hashes missing or oversized")
	}

	era := manager.clock.CurrentEra(height)
	score := manager.table.Score(trees, biodiversity)

	inspection.Status = types.InspectionStatusInspected
	inspection.Trees = trees
	inspection.Biodiversity = biodiversity
	inspection.Score = score
	inspection.RealizedAt = height
	inspection.Era = era
	inspection.EvidenceHash = evidenceHash
	inspection.JustificationHash = justificationHash
	manager.saveInspection(stateDB, inspection)

	inspectorMember := CommunityRegistryImpl.MemberOf(stateDB, inspector)
	inspectorMember.Inspector.ActiveInspection = common.Hash{}
	inspectorMember.Inspector.LastRealizedAt = height
	inspectorMember.Inspector.TotalInspections++
	CommunityRegistryImpl.SaveMember(stateDB, inspectorMember)

	regenMember := CommunityRegistryImpl.MemberOf(stateDB, inspection.Regenerator)
	regenMember.Regenerator.PendingInspection = false
	regenMember.Regenerator.TotalInspections++
	CommunityRegistryImpl.SaveMember(stateDB, regenMember)
	stateDB.RemoveData(common.InspectionDBAddress, activeKey(inspection.Regenerator))

	crossed := uint64(regenMember.Regenerator.TotalInspections) == manager.conf.MinInspectionsToPool
	activistInviter := common.Address{}
	if regenMember.HasInviter() {
		if inviter := CommunityRegistryImpl.MemberOf(stateDB, regenMember.InvitedBy); nil != inviter &&
			common.UserTypeActivist == inviter.Type && !inviter.IsDenied() {
			activistInviter = regenMember.InvitedBy
		}
	}

	manager.logger.Infof("inspection %s realized by %s: trees %d, biodiversity %d, score %d, era %d",
		id.ShortS(), inspector.ShortS(), trees, biodiversity, score, era)

	notify.BUS.Publish(notify.InspectionRealized, &notify.InspectionRealizedMessage{
		State:                  stateDB,
		Height:                 height,
		Era:                    era,
		Id:                     id,
		Regenerator:            inspection.Regenerator,
		Inspector:              inspector,
		Trees:                  trees,
		Biodiversity:           biodiversity,
		Score:                  score,
		RegeneratorInspections: uint64(regenMember.Regenerator.TotalInspections),
		CrossedPoolEntry:       crossed,
		ActivistInviter:        activistInviter,
	})
	return nil
}

// Expire settles an overdue acceptance on explicit request.
func (manager *InspectionManager) Expire(stateDB *state.StateDB, id common.Hash, height uint64) *types.OpError {
	inspection := manager.InspectionOf(stateDB, id)
	if nil == inspection {
		return types.NewOpError(types.ErrorCodeInspectionNotFound, fmt.Sprintf("unknown inspection %s", id.ShortS()))
	}
	if types.InspectionStatusAccepted != inspection.Status {
		return types.NewOpError(types.ErrorCodeInspectionStatus, fmt.Sprintf("inspection %s is not accepted", id.ShortS()))
	}
	if !inspection.Expired(height) {
		return types.NewTemporalError(types.ErrorCodeDeadlineNotReached, "deadline not reached", inspection.Deadline+1)
	}

	manager.giveUp(stateDB, inspection, height)
	return nil
}

// giveUp reopens the inspection and charges the inspector. The fourth
// give-up cascades into denial.
func (manager *InspectionManager) giveUp(stateDB *state.StateDB, inspection *types.Inspection, height uint64) {
	inspector := inspection.Inspector

	inspection.Status = types.InspectionStatusOpen
	inspection.Inspector = common.Address{}
	inspection.AcceptedAt = 0
	inspection.Deadline = 0
	manager.saveInspection(stateDB, inspection)

	member := CommunityRegistryImpl.MemberOf(stateDB, inspector)
	member.Inspector.ActiveInspection = common.Hash{}
	member.Inspector.GiveUps++
	CommunityRegistryImpl.SaveMember(stateDB, member)

	manager.logger.Warnf("inspection %s given up by %s (%d give-ups)", inspection.Id.ShortS(), inspector.ShortS(), member.Inspector.GiveUps)

	if uint64(member.Inspector.GiveUps) >= manager.conf.MaxGiveUps {
		CommunityRegistryImpl.SetToDenied(stateDB, inspector, height)
	}
}

// Invalidate strips an inspection after a governance verdict or a denial.
// An accepted one frees both sides without penalty; an inspected one rolls
// the counters back and claws the posted levels out of its era.
func (manager *InspectionManager) Invalidate(stateDB *state.StateDB, id common.Hash, height uint64) {
	inspection := manager.InspectionOf(stateDB, id)
	if nil == inspection || inspection.Terminal() {
		return
	}

	prior := inspection.Status
	inspection.Status = types.InspectionStatusInvalidated
	inspection.InvalidatedAt = height
	manager.saveInspection(stateDB, inspection)
	stateDB.RemoveData(common.InspectionDBAddress, activeKey(inspection.Regenerator))

	if regenMember := CommunityRegistryImpl.MemberOf(stateDB, inspection.Regenerator); nil != regenMember {
		profile := regenMember.Regenerator
		switch prior {
		case types.InspectionStatusOpen, types.InspectionStatusAccepted:
			profile.PendingInspection = false
		case types.InspectionStatusInspected:
			profile.TotalInspections--
			if profile.AccumulatedScore >= inspection.Score {
				profile.AccumulatedScore -= inspection.Score
			} else {
				profile.AccumulatedScore = 0
			}
			if 0 != inspection.PostedLevels && !regenMember.IsDenied() {
				PoolOf(common.PoolRegenerator).RemoveLevel(stateDB, inspection.Regenerator, inspection.Era, inspection.PostedLevels)
			}
		}
		CommunityRegistryImpl.SaveMember(stateDB, regenMember)
	}

	if (common.Address{}) != inspection.Inspector {
		if inspectorMember := CommunityRegistryImpl.MemberOf(stateDB, inspection.Inspector); nil != inspectorMember {
			profile := inspectorMember.Inspector
			if types.InspectionStatusAccepted == prior {
				profile.ActiveInspection = common.Hash{}
			}
			if types.InspectionStatusInspected == prior {
				profile.TotalInspections--
				if !inspectorMember.IsDenied() {
					PoolOf(common.PoolInspector).RemoveLevel(stateDB, inspection.Inspector, inspection.Era, 1)
				}
			}
			CommunityRegistryImpl.SaveMember(stateDB, inspectorMember)
		}
	}

	manager.logger.Warnf("inspection %s invalidated (was status %d)", id.ShortS(), prior)
}

func badHash(hash string, maxLen int) bool {
	return 0 == len(hash) || len(hash) > maxLen
}

// onRealizedRegeneratorLevels applies the pool-entry rule: scores accumulate
// silently until the threshold inspection posts them all in one grant,
// afterwards each inspection posts its own score.
func onRealizedRegeneratorLevels(message notify.Message) {
	realized, ok := message.(*notify.InspectionRealizedMessage)
	if !ok {
		return
	}
	manager := InspectionManagerImpl
	stateDB := realized.State

	member := CommunityRegistryImpl.MemberOf(stateDB, realized.Regenerator)
	profile := member.Regenerator
	profile.AccumulatedScore += realized.Score
	CommunityRegistryImpl.SaveMember(stateDB, member)

	posted := uint64(0)
	if realized.CrossedPoolEntry {
		posted = profile.AccumulatedScore
	} else if realized.RegeneratorInspections > manager.conf.MinInspectionsToPool {
		posted = realized.Score
	}
	if 0 == posted {
		return
	}

	if PoolOf(common.PoolRegenerator).GrantLevel(stateDB, realized.Regenerator, posted, realized.Era, realized.Id.Bytes()) {
		inspection := manager.InspectionOf(stateDB, realized.Id)
		inspection.PostedLevels = posted
		manager.saveInspection(stateDB, inspection)
	}
}

// onRealizedInspectorLevel grants the inspector one level per realize,
// unconditionally.
func onRealizedInspectorLevel(message notify.Message) {
	realized, ok := message.(*notify.InspectionRealizedMessage)
	if !ok {
		return
	}

	eventId := append(realized.Id.Bytes(), 'i')
	PoolOf(common.PoolInspector).GrantLevel(realized.State, realized.Inspector, 1, realized.Era, eventId)
}

// onRealizedActivistLevel rewards the inviting activist when their invitee's
// qualifying inspection lands.
func onRealizedActivistLevel(message notify.Message) {
	realized, ok := message.(*notify.InspectionRealizedMessage)
	if !ok {
		return
	}
	if !realized.CrossedPoolEntry || (common.Address{}) == realized.ActivistInviter {
		return
	}

	eventId := append(realized.Id.Bytes(), 'a')
	PoolOf(common.PoolActivist).GrantLevel(realized.State, realized.ActivistInviter, 1, realized.Era, eventId)
}

func onRealizedEraImpact(message notify.Message) {
	realized, ok := message.(*notify.InspectionRealizedMessage)
	if !ok {
		return
	}
	manager := InspectionManagerImpl

	impact := manager.EraImpactOf(realized.State, realized.Era)
	impact.Trees += realized.Trees
	impact.Biodiversity += realized.Biodiversity
	impact.Realized++
	data, _ := msgpack.Marshal(impact)
	realized.State.SetData(common.InspectionDBAddress, eraImpactKey(realized.Era), data)
}

// onUserDeniedCleanInspections unwinds the denied account's live inspection:
// a regenerator's open/accepted request dies, an inspector's acceptance
// reopens for the regenerator without a give-up charge.
func onUserDeniedCleanInspections(message notify.Message) {
	denied, ok := message.(*notify.UserDeniedMessage)
	if !ok {
		return
	}
	manager := InspectionManagerImpl
	stateDB := denied.State

	switch denied.UserType {
	case common.UserTypeRegenerator:
		if data := stateDB.GetData(common.InspectionDBAddress, activeKey(denied.Address)); 0 != len(data) {
			manager.Invalidate(stateDB, common.BytesToHash(data), denied.Height)
		}
	case common.UserTypeInspector:
		member := CommunityRegistryImpl.MemberOf(stateDB, denied.Address)
		if active := member.Inspector.ActiveInspection; (common.Hash{}) != active {
			inspection := manager.InspectionOf(stateDB, active)
			if nil != inspection && types.InspectionStatusAccepted == inspection.Status {
				inspection.Status = types.InspectionStatusOpen
				inspection.Inspector = common.Address{}
				inspection.AcceptedAt = 0
				inspection.Deadline = 0
				manager.saveInspection(stateDB, inspection)
			}
			member.Inspector.ActiveInspection = common.Hash{}
			CommunityRegistryImpl.SaveMember(stateDB, member)
		}
	}
}

// onInspectionResourceInvalidated routes a governance verdict against an
// inspection resource into the rollback above.
func onInspectionResourceInvalidated(message notify.Message) {
	invalidated, ok := message.(*notify.ResourceInvalidatedMessage)
	if !ok || common.ResourceKindInspection != invalidated.Kind {
		return
	}

	InspectionManagerImpl.Invalidate(invalidated.State, invalidated.Id, invalidated.Height)
}
