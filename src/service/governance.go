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
	"gopkg.in/fatih/set.v0"
)

// resource bucket keys
const (
	resourceKeyPrefix   = "rs" // rs+id -> Resource
	submissionKeyPrefix = "sm" // sm+kind+era+owner -> mark
	penaltyKeyPrefix    = "pn" // pn+kind+owner -> uint32
	resourceSeqKey      = "sq"
)

// governance bucket keys
const (
	resourceTallyPrefix = "vr" // vr+era+id -> VoteTally
	userTallyPrefix     = "vu" // vu+era+addr -> VoteTally
	votedMarkPrefix     = "vm" // vm+era+target+voter -> mark
	pointsKeyPrefix     = "vp" // vp+voter -> uint64
	conversionKeyPrefix = "cv" // cv+voter -> uint64
	lastVoteKeyPrefix   = "lh" // lh+voter -> uint64
	delationKeyPrefix   = "dl" // dl+era+target -> Delation
	delationMarkPrefix  = "dm" // dm+era+target+informer -> mark
	hunterEventPrefix   = "ht"
)

// GovernanceManager runs the era-bounded validation cycle: resource
// submissions, invalidation votes against resources and users, the hunter
// and participation incentives, and the non-binding delation records. All
// tallies key on the era, so nothing carries across an era boundary.
type GovernanceManager struct {
	conf   *common.ProtocolConf
	clock  *EraClock
	logger log.Logger

	voterTypes set.Interface
}

var GovernanceManagerImpl *GovernanceManager

func initGovernanceManager(conf *common.ProtocolConf) {
	voterTypes := set.New(set.NonThreadSafe)
	voterTypes.Add(common.UserTypeDeveloper, common.UserTypeResearcher, common.UserTypeContributor, common.UserTypeActivist)

	GovernanceManagerImpl = &GovernanceManager{
		conf:       conf,
		clock:      EraClockImpl,
		logger:     log.GetLoggerByIndex(log.GovLogConfig, strconv.Itoa(common.InstanceIndex)),
		voterTypes: voterTypes,
	}

	// realized inspections enter the resource desk so they are challengeable
	// like any other submission
	notify.BUS.Subscribe(notify.InspectionRealized, onRealizedRecordResource)
}

func resourceKey(id common.Hash) []byte {
	return append([]byte(resourceKeyPrefix), id.Bytes()...)
}

func submissionKey(kind byte, era uint64, owner common.Address) []byte {
	key := append([]byte(submissionKeyPrefix), kind)
	key = append(key, utility.UInt64ToByte(era)...)
	return append(key, owner.Bytes()...)
}

func penaltyKey(kind byte, owner common.Address) []byte {
	return append(append([]byte(penaltyKeyPrefix), kind), owner.Bytes()...)
}

func tallyKey(prefix string, era uint64, target []byte) []byte {
	key := append([]byte(prefix), utility.UInt64ToByte(era)...)
	return append(key, target...)
}

func votedMarkKey(era uint64, target []byte, voter common.Address) []byte {
	key := append([]byte(votedMarkPrefix), utility.UInt64ToByte(era)...)
	key = append(key, target...)
	return append(key, voter.Bytes()...)
}

func voterKey(prefix string, voter common.Address) []byte {
	return append([]byte(prefix), voter.Bytes()...)
}

// typeOfKind maps a submission kind onto the participant type allowed to
// produce it.
func typeOfKind(kind byte) byte {
	switch kind {
	case common.ResourceKindReport:
		return common.UserTypeDeveloper
	case common.ResourceKindResearch:
		return common.UserTypeResearcher
	case common.ResourceKindContribution:
		return common.UserTypeContributor
	}
	return common.UserTypeUnknown
}

func (gov *GovernanceManager) ResourceOf(stateDB *state.StateDB, id common.Hash) *types.Resource {
	data := stateDB.GetData(common.ResourceDBAddress, resourceKey(id))
	if 0 == len(data) {
		return nil
	}

	resource := &types.Resource{}
	if err := msgpack.Unmarshal(data, resource); err != nil {
		panic(fmt.Sprintf("governance: corrupt resource %s: %s", id.String(), err.Error()))
	}
	return resource
}

func (gov *GovernanceManager) saveResource(stateDB *state.StateDB, resource *types.Resource) {
	data, _ := msgpack.Marshal(resource)
	stateDB.SetData(common.ResourceDBAddress, resourceKey(resource.Id), data)
}

func (gov *GovernanceManager) PenaltyOf(stateDB *state.StateDB, kind byte, owner common.Address) uint32 {
	data := stateDB.GetData(common.ResourceDBAddress, penaltyKey(kind, owner))
	if 0 == len(data) {
		return 0
	}
	return utility.ByteToUInt32(data)
}

func (gov *GovernanceManager) PointsOf(stateDB *state.StateDB, voter common.Address) uint64 {
	data := stateDB.GetData(common.GovernanceDBAddress, voterKey(pointsKeyPrefix, voter))
	if 0 == len(data) {
		return 0
	}
	return utility.ByteToUInt64(data)
}

func (gov *GovernanceManager) setPoints(stateDB *state.StateDB, voter common.Address, points uint64) {
	stateDB.SetData(common.GovernanceDBAddress, voterKey(pointsKeyPrefix, voter), utility.UInt64ToByte(points))
}

func (gov *GovernanceManager) tallyOf(stateDB *state.StateDB, prefix string, era uint64, target []byte) *types.VoteTally {
	tally := &types.VoteTally{Era: era}
	data := stateDB.GetData(common.GovernanceDBAddress, tallyKey(prefix, era, target))
	if 0 != len(data) {
		if err := msgpack.Unmarshal(data, tally); err != nil {
			panic(fmt.Sprintf("governance: corrupt tally, era %d: %s", era, err.Error()))
		}
	}
	return tally
}

func (gov *GovernanceManager) saveTally(stateDB *state.StateDB, prefix string, era uint64, target []byte, tally *types.VoteTally) {
	data, _ := msgpack.Marshal(tally)
	stateDB.SetData(common.GovernanceDBAddress, tallyKey(prefix, era, target), data)
}

func (gov *GovernanceManager) nextSeq(stateDB *state.StateDB) uint64 {
	seq := uint64(0)
	if data := stateDB.GetData(common.ResourceDBAddress, []byte(resourceSeqKey)); 0 != len(data) {
		seq = utility.ByteToUInt64(data)
	}
	stateDB.SetData(common.ResourceDBAddress, []byte(resourceSeqKey), utility.UInt64ToByte(seq+1))
	return seq
}

// SubmitResource records a level-earning artifact: one per account, kind and
// era, never inside the safeguard window.
func (gov *GovernanceManager) SubmitResource(stateDB *state.StateDB, owner common.Address, kind byte, contentHash, description string, height uint64) (common.Hash, *types.OpError) {
	requiredType := typeOfKind(kind)
	if common.UserTypeUnknown == requiredType {
		return common.Hash{}, types.NewOpError(types.ErrorCodeBadPayload, fmt.Sprintf("kind %d is not submittable", kind))
	}

	member, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, owner)
	if nil != err {
		return common.Hash{}, err
	}
	if member.Type != requiredType {
		return common.Hash{}, types.NewOpError(types.ErrorCodeWrongUserType,
			fmt.Sprintf("kind %d requires type %d, %s is type %d", kind, requiredType, owner.ShortS(), member.Type))
	}

	if gov.clock.InSafeguardWindow(height) {
		era := gov.clock.CurrentEra(height)
		return common.Hash{}, types.NewTemporalError(types.ErrorCodeSafeguardWindow, "era is closing", gov.clock.EraEndBoundary(era))
	}
	if badHash(contentHash, gov.conf.MaxHashLen) || len(description) > gov.conf.MaxDescriptionLen {
		return common.Hash{}, types.NewOpError(types.ErrorCodeEvidenceInvalid, "content hash missing or text oversized")
	}

	era := gov.clock.CurrentEra(height)
	if 0 != len(stateDB.GetData(common.ResourceDBAddress, submissionKey(kind, era, owner))) {
		return common.Hash{}, types.NewOpError(types.ErrorCodeAlreadySubmitted,
			fmt.Sprintf("%s already submitted kind %d in era %d", owner.ShortS(), kind, era))
	}

	id := types.GenResourceId(owner, height, gov.nextSeq(stateDB))
	resource := &types.Resource{
		Id:          id,
		Kind:        kind,
		Owner:       owner,
		Era:         era,
		CreatedAt:   height,
		ContentHash: contentHash,
		Description: description,
	}
	gov.saveResource(stateDB, resource)
	stateDB.SetData(common.ResourceDBAddress, submissionKey(kind, era, owner), markValue)

	PoolOf(poolOfType(requiredType)).GrantLevel(stateDB, owner, 1, era, id.Bytes())

	gov.logger.Infof("resource %s (kind %d) submitted by %s in era %d", id.ShortS(), kind, owner.ShortS(), era)
	return id, nil
}

// CanVote gates voting the same way inviting is gated: voter-eligible type
// plus the above-average rule against the voter's own type.
func (gov *GovernanceManager) CanVote(stateDB *state.StateDB, voter common.Address) (*types.Member, *types.OpError) {
	member, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, voter)
	if nil != err {
		return nil, err
	}
	if !gov.voterTypes.Has(member.Type) {
		return nil, types.NewOpError(types.ErrorCodeVoterIneligible, fmt.Sprintf("type %d does not vote", member.Type))
	}

	totals := PoolOf(poolOfType(member.Type)).TotalsOf(stateDB)
	users := CommunityRegistryImpl.CountOf(stateDB, member.Type)
	levels := InvitationServiceImpl.levelsOf(stateDB, member)
	if !InvitationServiceImpl.CanInvite(totals.TotalLevels, users, levels) {
		return nil, types.NewOpError(types.ErrorCodeVoterIneligible,
			fmt.Sprintf("%s holds %d levels, below the voting gate", voter.ShortS(), levels))
	}
	return member, nil
}

// VotesToInvalidate scales the invalidation bar with the live voter
// population, floored so a near-empty registry cannot expel with one vote.
func (gov *GovernanceManager) VotesToInvalidate(stateDB *state.StateDB) uint64 {
	eligible := uint64(0)
	for _, userType := range []byte{common.UserTypeDeveloper, common.UserTypeResearcher, common.UserTypeContributor, common.UserTypeActivist} {
		eligible += CommunityRegistryImpl.CountOf(stateDB, userType)
	}

	threshold := eligible/gov.conf.QuorumDivisor + 1
	if threshold < gov.conf.MinVotesToInvalidate {
		threshold = gov.conf.MinVotesToInvalidate
	}
	return threshold
}

// checkVoteSpacing enforces the per-voter minimum interval and stamps the
// vote height when it passes.
func (gov *GovernanceManager) checkVoteSpacing(stateDB *state.StateDB, voter common.Address, height uint64) *types.OpError {
	key := voterKey(lastVoteKeyPrefix, voter)
	if data := stateDB.GetData(common.GovernanceDBAddress, key); 0 != len(data) {
		retryAt := utility.ByteToUInt64(data) + gov.conf.VoterMinInterval
		if height < retryAt {
			return types.NewTemporalError(types.ErrorCodeTemporalGate, "vote interval running", retryAt)
		}
	}
	stateDB.SetData(common.GovernanceDBAddress, key, utility.UInt64ToByte(height))
	return nil
}

func (gov *GovernanceManager) addPoint(stateDB *state.StateDB, voter common.Address) {
	gov.setPoints(stateDB, voter, gov.PointsOf(stateDB, voter)+1)
}

// VoteResource casts an invalidation vote against a resource. Challenges
// only run inside the resource's creation era; crossing the threshold
// executes the invalidation immediately.
func (gov *GovernanceManager) VoteResource(stateDB *state.StateDB, voter common.Address, id common.Hash, height uint64) *types.OpError {
	if _, err := gov.CanVote(stateDB, voter); nil != err {
		return err
	}

	resource := gov.ResourceOf(stateDB, id)
	if nil == resource {
		return types.NewOpError(types.ErrorCodeResourceNotFound, fmt.Sprintf("unknown resource %s", id.ShortS()))
	}
	if resource.Invalidated {
		return types.NewOpError(types.ErrorCodeResourceInvalidated, fmt.Sprintf("resource %s already invalidated", id.ShortS()))
	}

	era := gov.clock.CurrentEra(height)
	if !resource.Challengeable(era) {
		return types.NewOpError(types.ErrorCodeEraClosed, fmt.Sprintf("resource %s is final, era %d closed", id.ShortS(), resource.Era))
	}

	if 0 != len(stateDB.GetData(common.GovernanceDBAddress, votedMarkKey(era, id.Bytes(), voter))) {
		return types.NewOpError(types.ErrorCodeAlreadyVoted, fmt.Sprintf("%s already voted on %s", voter.ShortS(), id.ShortS()))
	}
	if err := gov.checkVoteSpacing(stateDB, voter, height); nil != err {
		return err
	}
	stateDB.SetData(common.GovernanceDBAddress, votedMarkKey(era, id.Bytes(), voter), markValue)

	tally := gov.tallyOf(stateDB, resourceTallyPrefix, era, id.Bytes())
	tally.Count++
	gov.addPoint(stateDB, voter)

	if !tally.Closed && uint64(tally.Count) >= gov.VotesToInvalidate(stateDB) {
		tally.Closed = true
		gov.saveTally(stateDB, resourceTallyPrefix, era, id.Bytes(), tally)
		gov.invalidateResource(stateDB, resource, height)
		return nil
	}

	gov.saveTally(stateDB, resourceTallyPrefix, era, id.Bytes(), tally)
	gov.logger.Debugf("vote by %s against resource %s, %d cast", voter.ShortS(), id.ShortS(), tally.Count)
	return nil
}

// invalidateResource executes a threshold verdict: the artifact's level is
// clawed back, the creator takes a kind-specific penalty, and a repeat
// offender is denied outright.
func (gov *GovernanceManager) invalidateResource(stateDB *state.StateDB, resource *types.Resource, height uint64) {
	resource.Invalidated = true
	resource.InvalidatedAt = height
	gov.saveResource(stateDB, resource)

	if common.ResourceKindInspection != resource.Kind {
		if member := CommunityRegistryImpl.MemberOf(stateDB, resource.Owner); nil != member && !member.IsDenied() {
			PoolOf(poolOfType(member.Type)).RemoveLevel(stateDB, resource.Owner, resource.Era, 1)
		}
	}

	penalty := gov.PenaltyOf(stateDB, resource.Kind, resource.Owner) + 1
	stateDB.SetData(common.ResourceDBAddress, penaltyKey(resource.Kind, resource.Owner), utility.UInt32ToByte(penalty))

	gov.logger.Warnf("resource %s invalidated, owner %s penalty %d for kind %d",
		resource.Id.ShortS(), resource.Owner.ShortS(), penalty, resource.Kind)

	notify.BUS.Publish(notify.ResourceInvalidated, &notify.ResourceInvalidatedMessage{
		State:  stateDB,
		Height: height,
		Era:    resource.Era,
		Kind:   resource.Kind,
		Id:     resource.Id,
		Owner:  resource.Owner,
	})

	if uint64(penalty) >= gov.conf.MaxPenaltiesPerKind {
		CommunityRegistryImpl.SetToDenied(stateDB, resource.Owner, height)
	}
}

// VoteUser casts an invalidation vote against a member. The first voter of
// the era is the attempt's hunter and earns a validator level if the
// attempt lands.
func (gov *GovernanceManager) VoteUser(stateDB *state.StateDB, voter, target common.Address, height uint64) *types.OpError {
	if voter == target {
		return types.NewOpError(types.ErrorCodeVoterIneligible, "cannot vote against self")
	}
	if _, err := gov.CanVote(stateDB, voter); nil != err {
		return err
	}
	if _, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, target); nil != err {
		return types.NewOpError(types.ErrorCodeTargetNotChallengeable, fmt.Sprintf("%s is not challengeable", target.ShortS()))
	}

	era := gov.clock.CurrentEra(height)
	if 0 != len(stateDB.GetData(common.GovernanceDBAddress, votedMarkKey(era, target.Bytes(), voter))) {
		return types.NewOpError(types.ErrorCodeAlreadyVoted, fmt.Sprintf("%s already voted against %s", voter.ShortS(), target.ShortS()))
	}
	if err := gov.checkVoteSpacing(stateDB, voter, height); nil != err {
		return err
	}
	stateDB.SetData(common.GovernanceDBAddress, votedMarkKey(era, target.Bytes(), voter), markValue)

	tally := gov.tallyOf(stateDB, userTallyPrefix, era, target.Bytes())
	if 0 == tally.Count {
		tally.Hunter = voter
	}
	tally.Count++
	gov.addPoint(stateDB, voter)

	if !tally.Closed && uint64(tally.Count) >= gov.VotesToInvalidate(stateDB) {
		tally.Closed = true
		gov.saveTally(stateDB, userTallyPrefix, era, target.Bytes(), tally)

		CommunityRegistryImpl.SetToDenied(stateDB, target, height)

		eventId := append(append([]byte(hunterEventPrefix), utility.UInt64ToByte(era)...), target.Bytes()...)
		PoolOf(common.PoolValidator).GrantLevel(stateDB, tally.Hunter, 1, era, eventId)
		gov.logger.Warnf("user %s denied by vote, hunter %s rewarded", target.ShortS(), tally.Hunter.ShortS())
		return nil
	}

	gov.saveTally(stateDB, userTallyPrefix, era, target.Bytes(), tally)
	gov.logger.Debugf("vote by %s against user %s, %d cast", voter.ShortS(), target.ShortS(), tally.Count)
	return nil
}

// ConvertPoints trades accumulated validation points for validator-pool
// levels, explicitly, at the configured rate.
func (gov *GovernanceManager) ConvertPoints(stateDB *state.StateDB, voter common.Address, height uint64) (uint64, *types.OpError) {
	if _, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, voter); nil != err {
		return 0, err
	}

	points := gov.PointsOf(stateDB, voter)
	levels := points / gov.conf.PointsPerLevel
	if 0 == levels {
		return 0, types.NewOpError(types.ErrorCodeNotEnoughPoints,
			fmt.Sprintf("%d points below the %d conversion rate", points, gov.conf.PointsPerLevel))
	}

	gov.setPoints(stateDB, voter, points-levels*gov.conf.PointsPerLevel)

	conversionKey := voterKey(conversionKeyPrefix, voter)
	conversions := uint64(0)
	if data := stateDB.GetData(common.GovernanceDBAddress, conversionKey); 0 != len(data) {
		conversions = utility.ByteToUInt64(data)
	}
	stateDB.SetData(common.GovernanceDBAddress, conversionKey, utility.UInt64ToByte(conversions+1))

	era := gov.clock.CurrentEra(height)
	eventId := append(voterKey(conversionKeyPrefix, voter), utility.UInt64ToByte(conversions)...)
	PoolOf(common.PoolValidator).GrantLevel(stateDB, voter, levels, era, eventId)

	gov.logger.Infof("%s converted %d points into %d validator levels", voter.ShortS(), levels*gov.conf.PointsPerLevel, levels)
	return levels, nil
}

// Delate files the social pre-filter signal. One per informer, target and
// era; no binding effect.
func (gov *GovernanceManager) Delate(stateDB *state.StateDB, informer, reported common.Address, thumbsUp bool, height uint64) *types.OpError {
	if _, err := CommunityRegistryImpl.ActiveMemberOf(stateDB, informer); nil != err {
		return err
	}
	if nil == CommunityRegistryImpl.MemberOf(stateDB, reported) {
		return types.NewOpError(types.ErrorCodeUnknownMember, fmt.Sprintf("%s is not registered", reported.ShortS()))
	}

	era := gov.clock.CurrentEra(height)
	markKey := append(append([]byte(delationMarkPrefix), utility.UInt64ToByte(era)...), reported.Bytes()...)
	markKey = append(markKey, informer.Bytes()...)
	if 0 != len(stateDB.GetData(common.GovernanceDBAddress, markKey)) {
		return types.NewOpError(types.ErrorCodeAlreadySubmitted, fmt.Sprintf("%s already delated %s this era", informer.ShortS(), reported.ShortS()))
	}
	stateDB.SetData(common.GovernanceDBAddress, markKey, markValue)

	delation := gov.DelationOf(stateDB, era, reported)
	if thumbsUp {
		delation.Up++
	} else {
		delation.Down++
	}
	data, _ := msgpack.Marshal(delation)
	stateDB.SetData(common.GovernanceDBAddress, tallyKey(delationKeyPrefix, era, reported.Bytes()), data)

	gov.logger.Infof("delation by %s against %s (up %d / down %d)", informer.ShortS(), reported.ShortS(), delation.Up, delation.Down)
	return nil
}

func (gov *GovernanceManager) DelationOf(stateDB *state.StateDB, era uint64, reported common.Address) *types.Delation {
	delation := &types.Delation{}
	data := stateDB.GetData(common.GovernanceDBAddress, tallyKey(delationKeyPrefix, era, reported.Bytes()))
	if 0 != len(data) {
		if err := msgpack.Unmarshal(data, delation); err != nil {
			panic(fmt.Sprintf("governance: corrupt delation record: %s", err.Error()))
		}
	}
	return delation
}

// onRealizedRecordResource registers the realized inspection as a
// challengeable resource owned by its inspector.
func onRealizedRecordResource(message notify.Message) {
	realized, ok := message.(*notify.InspectionRealizedMessage)
	if !ok {
		return
	}
	gov := GovernanceManagerImpl

	gov.saveResource(realized.State, &types.Resource{
		Id:          realized.Id,
		Kind:        common.ResourceKindInspection,
		Owner:       realized.Inspector,
		Era:         realized.Era,
		CreatedAt:   realized.Height,
		ContentHash: "",
	})
}
