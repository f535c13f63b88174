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

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/core"
	"com.terrabio.regen/node/src/middleware"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/utility"

	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v2"
)

const RGNVersion = "1.0.3"

type RGN struct {
	init bool
}

func NewRGN() *RGN {
	return &RGN{}
}

func (rgn *RGN) Run() {
	ctrlC := signals()
	quitChan := make(chan bool)
	go rgn.handleExit(ctrlC, quitChan)

	app := kingpin.New("rgn", "A regeneration credit accounting node.")
	app.HelpFlag.Short('h')

	configFile := app.Flag("config", "Config file").Default("rgn.ini").String()

	versionCmd := app.Command("version", "show RegenProtocol version")

	nodeCmd := app.Command("node", "node start")
	instanceIndex := nodeCmd.Flag("instance", "instance index").Short('i').Default("0").Int()
	env := nodeCmd.Flag("env", "the environment application run in").String()

	genesisCmd := app.Command("genesis", "validate and print the protocol parameters")
	genesisEnv := genesisCmd.Flag("env", "the environment application run in").String()

	command, err := app.Parse(os.Args[1:])
	if err != nil {
		kingpin.Fatalf("%s, try --help", err)
	}

	switch command {
	case versionCmd.FullCommand():
		fmt.Println("Version:", RGNVersion)
		os.Exit(0)
	case nodeCmd.FullCommand():
		fmt.Println("Use config file: " + *configFile)
		rgn.initNode(*instanceIndex, *configFile, *env)
	case genesisCmd.FullCommand():
		common.Init(0, *configFile, *genesisEnv)
		printChainConfig()
		os.Exit(0)
	}
	<-quitChan
}

func (rgn *RGN) initNode(instanceIndex int, configFile, env string) {
	common.Init(instanceIndex, configFile, env)

	common.DefaultLogger.Infof("start initNode, %s", utility.GetTime().Format("2006-01-02 15:04:05"))
	defer func() {
		common.DefaultLogger.Infof("end initNode")
	}()

	if err := middleware.InitMiddleware(); nil != err {
		panic("Init node middleware error:" + err.Error())
	}

	if err := core.InitCore(); nil != err {
		panic("Init node core error:" + err.Error())
	}

	fmt.Printf("Env:%s, era length:%d, deploy block:%d\n", env, common.LocalChainConfig.BlocksPerEra, common.LocalChainConfig.DeployBlock)
	rgn.init = true
}

// printChainConfig dumps the validated parameter set. complete() has already
// panicked on a broken configuration by the time we get here.
func printChainConfig() {
	out, err := yaml.Marshal(common.LocalChainConfig)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(out))
}

func signals() <-chan bool {
	quit := make(chan bool)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		quit <- true
	}()
	return quit
}

func (rgn *RGN) handleExit(ctrlC <-chan bool, quit chan<- bool) {
	<-ctrlC
	fmt.Println("exiting...")

	middleware.StateDBManagerInstance.Close()
	log.Close()

	if rgn.init {
		quit <- true
	} else {
		os.Exit(0)
	}
}
