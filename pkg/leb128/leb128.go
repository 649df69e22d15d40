// Package leb128 encodes integers as little-endian base-128 varints, the
// length format used throughout the WebAssembly binary encoding.
package leb128

import (
	"errors"
	"math/big"
)

var (
	ErrTruncated = errors.New("leb128: truncated input")
	ErrOverflow  = errors.New("leb128: value overflows 64 bits")
)

// AppendSigned appends the signed encoding of v to dst.
func AppendSigned(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

func EncodeSigned(v int64) []byte {
	return AppendSigned(nil, v)
}

// AppendUnsigned appends the unsigned encoding of v to dst.
func AppendUnsigned(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

func EncodeUnsigned(v uint64) []byte {
	return AppendUnsigned(nil, v)
}

// DecodeSigned reads one signed varint from the front of buf and returns the
// value and the number of bytes consumed.
func DecodeSigned(buf []byte) (int64, int, error) {
	var result int64
	var shift uint
	for i, b := range buf {
		if shift >= 64 || (shift == 63 && b != 0x00 && b != 0x7f) {
			return 0, 0, ErrOverflow
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

// DecodeUnsigned reads one unsigned varint from the front of buf.
func DecodeUnsigned(buf []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i, b := range buf {
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, 0, ErrOverflow
		}
		result |= uint64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

var (
	big7f     = big.NewInt(0x7f)
	bigZero   = big.NewInt(0)
	bigNegOne = big.NewInt(-1)
)

// EncodeBig returns the signed encoding of an arbitrary precision integer.
// x is not modified.
func EncodeBig(x *big.Int) []byte {
	v := new(big.Int).Set(x)
	low := new(big.Int)
	var out []byte
	for {
		// And on a negative big.Int uses two's complement semantics
		b := byte(low.And(v, big7f).Int64())
		v.Rsh(v, 7)
		if (v.Cmp(bigZero) == 0 && b&0x40 == 0) || (v.Cmp(bigNegOne) == 0 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

// DecodeBig reads one signed varint of any length from the front of buf.
func DecodeBig(buf []byte) (*big.Int, int, error) {
	result := new(big.Int)
	chunk := new(big.Int)
	var shift uint
	for i, b := range buf {
		chunk.SetInt64(int64(b & 0x7f))
		result.Or(result, chunk.Lsh(chunk, shift))
		shift += 7
		if b&0x80 == 0 {
			if b&0x40 != 0 {
				result.Sub(result, new(big.Int).Lsh(big.NewInt(1), shift))
			}
			return result, i + 1, nil
		}
	}
	return nil, 0, ErrTruncated
}
