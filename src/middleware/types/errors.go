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

package types

import "fmt"

const SUCCESS = 0

// 前置条件不满足
const (
	ErrorCodeMemberExists       = 1001
	ErrorCodeUnknownMember      = 1002
	ErrorCodeMemberDenied       = 1003
	ErrorCodeCapReached         = 1004
	ErrorCodeAreaOutOfRange     = 1005
	ErrorCodeInvitationMissing  = 1006
	ErrorCodeInvitationMismatch = 1007
	ErrorCodeInvitationExists   = 1008
	ErrorCodeInvitesRevoked     = 1009
	ErrorCodeBelowAverage       = 1010
	ErrorCodeWrongUserType      = 1011

	ErrorCodeInspectionPending  = 2001
	ErrorCodeInspectionNotFound = 2002
	ErrorCodeInspectionStatus   = 2003
	ErrorCodeInspectorBusy      = 2004
	ErrorCodeInspectorExcluded  = 2005
	ErrorCodeInspectionLimit    = 2006
	ErrorCodeResultOutOfRange   = 2007
	ErrorCodeEvidenceInvalid    = 2008
	ErrorCodeWrongInspector     = 2009
	ErrorCodeDeadlinePassed     = 2010
	ErrorCodeDeadlineNotReached = 2011
	ErrorCodeSelfInspection     = 2012

	ErrorCodeEraClosed              = 4001
	ErrorCodeAlreadyVoted           = 4002
	ErrorCodeVoterIneligible        = 4003
	ErrorCodeNotEnoughPoints        = 4004
	ErrorCodeAlreadySubmitted       = 4005
	ErrorCodeResourceNotFound       = 4006
	ErrorCodeResourceInvalidated    = 4007
	ErrorCodeTargetNotChallengeable = 4008

	ErrorCodeBalanceNotEnough = 5001
	ErrorCodeAmountInvalid    = 5002

	ErrorCodeBadPayload = 6001
)

// 时间门控
const (
	ErrorCodeTemporalGate    = 3001
	ErrorCodeSafeguardWindow = 3002
)

// OpError is the caller-facing rejection of an operation. No state is mutated
// when one is returned. RetryAtBlock is non-zero for cooldown and window
// rejections: the same call is expected to pass from that height on.
type OpError struct {
	Code         int
	Message      string
	RetryAtBlock uint64
}

func NewOpError(code int, message string) *OpError {
	return &OpError{Code: code, Message: message}
}

func NewTemporalError(code int, message string, retryAtBlock uint64) *OpError {
	return &OpError{Code: code, Message: message, RetryAtBlock: retryAtBlock}
}

func (err *OpError) Error() string {
	if 0 != err.RetryAtBlock {
		return fmt.Sprintf("%s, retry at block %d", err.Message, err.RetryAtBlock)
	}
	return err.Message
}
