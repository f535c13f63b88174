package types

import (
	"fmt"

	"com.terrabio.regen/node/src/common"
)

const (
	ReceiptStatusFailed = uint(0)

	ReceiptStatusSuccessful = uint(1)
)

// Receipt records the outcome of one applied operation.
type Receipt struct {
	Status uint        `json:"status"`
	Code   int         `json:"code"`
	Height uint64      `json:"height"`
	OpHash common.Hash `json:"operationHash"`
	Msg    string      `json:"-"`
	Source string      `json:"-"`
}

func NewReceipt(failed bool, code int, height uint64, msg, source string) *Receipt {
	r := &Receipt{Code: code, Height: height, Msg: msg, Source: source}
	if failed {
		r.Status = ReceiptStatusFailed
	} else {
		r.Status = ReceiptStatusSuccessful
	}
	return r
}

func (r *Receipt) String() string {
	return fmt.Sprintf("receipt{status=%d code=%d height=%d}", r.Status, r.Code, r.Height)
}

type Receipts []*Receipt

func (r Receipts) Len() int { return len(r) }
