package types

import (
	"bytes"
	"encoding/json"
	"time"

	"com.terrabio.regen/node/src/common"
	"com.terrabio.regen/node/src/middleware/log"
	"com.terrabio.regen/node/src/utility"
)

var Logger log.Logger

// 区块头结构
type BlockHeader struct {
	Hash      common.Hash // 本块的hash
	Height    uint64      // 本块的高度
	PreHash   common.Hash // 上一块哈希
	CurTime   time.Time
	StateTree common.Hash
	ExtraData []byte
}

type header struct {
	Height    uint64
	PreHash   common.Hash
	CurTime   time.Time
	StateTree common.Hash
	ExtraData []byte
}

func (bh *BlockHeader) GenHash() common.Hash {
	header := &header{
		Height:    bh.Height,
		PreHash:   bh.PreHash,
		CurTime:   bh.CurTime,
		StateTree: bh.StateTree,
		ExtraData: bh.ExtraData,
	}
	blockByte, _ := json.Marshal(header)
	return common.BytesToHash(common.Sha256(blockByte))
}

func (bh *BlockHeader) ToString() string {
	header := &header{
		Height:    bh.Height,
		PreHash:   bh.PreHash,
		CurTime:   bh.CurTime,
		StateTree: bh.StateTree,
		ExtraData: bh.ExtraData,
	}
	blockByte, _ := json.Marshal(header)
	return string(blockByte)
}

type Block struct {
	Header     *BlockHeader
	Operations []*Operation
}

// GenResourceId derives the id of a submitted resource or inspection from its
// owner, the creation height and a per-bucket sequence number.
func GenResourceId(owner common.Address, height uint64, seq uint64) common.Hash {
	buffer := bytes.Buffer{}
	buffer.Write(owner.Bytes())
	buffer.Write(utility.UInt64ToByte(height))
	buffer.Write(utility.UInt64ToByte(seq))
	return common.BytesToHash(common.Sha256(buffer.Bytes()))
}
