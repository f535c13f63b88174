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

package state

import (
	"com.terrabio.regen/node/src/common"
)

type transitionEntry interface {
	undo(*StateDB)
}

type transition []transitionEntry

type storageChange struct {
	bucket   *common.Address
	key      []byte
	prevalue []byte
}

func (ch storageChange) undo(s *StateDB) {
	s.getBucketObject(*ch.bucket).write(ch.key, ch.prevalue)
}
