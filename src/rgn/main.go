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

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"com.terrabio.regen/node/src/rgn/cli"
)

const gc = 30

func main() {
	initSysParam()
	rgn := cli.NewRGN()
	rgn.Run()
}

func initSysParam() {
	debug.SetGCPercent(gc)

	fmt.Printf("Setting gc %d, maxproc %d\n", gc, runtime.GOMAXPROCS(4))
}
