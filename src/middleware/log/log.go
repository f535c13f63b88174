package log

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"

	"github.com/cihub/seelog"
)

var logManager = map[string]Logger{}

var lock sync.Mutex

func GetLogger(config string) Logger {
	if config == `` {
		config = DefaultConfig
	}
	return getOrCreate(config)
}

func GetLoggerByIndex(config string, index string) Logger {
	if index == "0" {
		index = ""
	}
	if config == "" {
		config = DefaultConfig
	}
	config = strings.Replace(config, "LOG_INDEX", index, 1)
	return getOrCreate(config)
}

func GetLoggerByName(name string) Logger {
	if name == "" {
		return GetLogger(DefaultConfig)
	}
	fileName := name + ".log"
	config := strings.Replace(DefaultConfig, "defaultLOG_INDEX.log", fileName, 1)
	return getOrCreate(config)
}

func getOrCreate(config string) Logger {
	key := getKey(config)

	lock.Lock()
	defer lock.Unlock()

	if r := logManager[key]; r != nil {
		return r
	}

	l := newLoggerByConfig(config)
	logManager[key] = l
	return l
}

func getKey(s string) string {
	hash := sha256.Sum256([]byte(s))
	return string(hash[:])
}

func newLoggerByConfig(config string) Logger {
	l, err := seelog.LoggerFromConfigAsBytes([]byte(config))
	if err != nil {
		fmt.Printf("Get logger error:%s\n", err.Error())
		panic(err)
	}
	return l
}

func Close() {
	lock.Lock()
	defer lock.Unlock()
	for _, logger := range logManager {
		logger.(seelog.LoggerInterface).Flush()
		logger.(seelog.LoggerInterface).Close()
	}
}
