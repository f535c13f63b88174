package utility

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
)

const zeroString = "0"

// tokenDecimals is the display precision of RGN amounts. Internally every
// amount is a base-unit big.Int; only string conversion knows about decimals.
const tokenDecimals = 18

func UInt32ToByte(i uint32) []byte {
	buf := bytes.NewBuffer([]byte{})
	binary.Write(buf, binary.BigEndian, i)
	return buf.Bytes()
}

func ByteToUInt32(b []byte) uint32 {
	buf := bytes.NewBuffer(b)
	var x uint32
	binary.Read(buf, binary.BigEndian, &x)
	return x
}

func UInt64ToByte(i uint64) []byte {
	buf := bytes.NewBuffer([]byte{})
	binary.Write(buf, binary.BigEndian, i)
	return buf.Bytes()
}

func ByteToUInt64(b []byte) uint64 {
	buf := bytes.NewBuffer(b)
	var x uint64
	binary.Read(buf, binary.BigEndian, &x)
	return x
}

//"11.22"->11220000000000000000
func StrToBigInt(s string) (*big.Int, error) {
	if 0 == len(s) {
		return big.NewInt(0), nil
	}

	target, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, err
	}

	base := new(big.Float)
	base.SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(tokenDecimals), nil))

	target.Mul(target, base)
	result := new(big.Int)
	target.Int(result)

	return result, nil
}

// 11220000000000000000->"11.220000000000000000"
func BigIntToStr(number *big.Int) string {
	if nil == number || 0 == number.Sign() {
		return zeroString
	}

	return bigIntToStr(number, tokenDecimals)
}

func bigIntToStr(n *big.Int, precision int) string {
	if nil == n || precision < 0 {
		return zeroString
	}

	number := new(big.Int).Abs(n).String()

	var starter, first, last string

	if n.Sign() < 0 {
		starter = "-"
	}

	length := len(number)
	if length <= precision {
		first = zeroString
		last = fmt.Sprintf("%s%s", strings.Repeat(zeroString, precision-length), number)
	} else {
		first = number[:length-precision]
		last = number[length-precision : length]
	}

	if 0 == precision {
		return fmt.Sprintf("%s%s", starter, first)
	}
	return fmt.Sprintf("%s%s.%s", starter, first, last)
}
