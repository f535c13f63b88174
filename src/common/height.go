package common

import (
	"sync/atomic"

	"com.terrabio.regen/node/src/middleware/log"
)

var localChainInfo chainInfo
var blockHeightLogger log.Logger

type chainInfo struct {
	currentBlockHeight atomic.Value
}

func init() {
	localChainInfo.currentBlockHeight.Store(uint64(0))
}

func GetBlockHeight() uint64 {
	return localChainInfo.currentBlockHeight.Load().(uint64)
}

func SetBlockHeight(height uint64) {
	localChainInfo.currentBlockHeight.Store(height)
	if blockHeightLogger != nil {
		blockHeightLogger.Debugf("set height:%d", GetBlockHeight())
	}
}
