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

import (
	"bytes"
	"strconv"

	"com.terrabio.regen/node/src/common"
)

const (
	OperationTypeRegister = 1
	OperationTypeInvite   = 2
	OperationTypeWithdraw = 3
	OperationTypeCertify  = 4

	OperationTypeRequestInspection = 11
	OperationTypeAcceptInspection  = 12
	OperationTypeRealizeInspection = 13
	OperationTypeExpireInspection  = 14

	OperationTypeSubmitReport       = 21
	OperationTypeSubmitResearch     = 22
	OperationTypeSubmitContribution = 23

	OperationTypeVoteResource  = 31
	OperationTypeVoteUser      = 32
	OperationTypeConvertPoints = 33
	OperationTypeDelate        = 34
)

type Operation struct {
	Source string // 用户地址
	Type   int32
	Time   string

	Data string // 入参，按照Type解析

	Hash  common.Hash
	Nonce uint64
}

// source 在hash计算范围内
func (op *Operation) GenHash() common.Hash {
	if nil == op {
		return common.Hash{}
	}
	buffer := bytes.Buffer{}

	buffer.Write([]byte(op.Data))
	buffer.Write([]byte(strconv.FormatUint(op.Nonce, 10)))
	buffer.Write([]byte(op.Source))
	buffer.Write([]byte(strconv.Itoa(int(op.Type))))
	buffer.Write([]byte(op.Time))
	return common.BytesToHash(common.Sha256(buffer.Bytes()))
}

func (op *Operation) SourceAddress() common.Address {
	return common.HexToAddress(op.Source)
}

type Operations []*Operation

func (c Operations) Len() int {
	return len(c)
}
func (c Operations) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}
func (c Operations) Less(i, j int) bool {
	return c[i].Nonce < c[j].Nonce
}
