package utils

import (
	"math/big"
	"math/bits"
)

// CtLimbs is the number of 64-bit limbs in a CtInt. 320 bits comfortably hold the
// difference of two 255-bit field elements plus a sign bit.
const CtLimbs = 5

// CtInt is a fixed-width two's-complement integer used by the constant-time helpers.
// Limbs are little-endian. Every helper truncates its result to the caller's binSize,
// so values behave as integers modulo 2^binSize.
type CtInt [CtLimbs]uint64

// BinSize returns floor(log2(order-1)) + 3, the width needed to hold the sum or
// difference of two elements below order as a two's-complement value.
func BinSize(order *big.Int) uint {
	m := new(big.Int).Sub(order, big.NewInt(1))
	return uint(m.BitLen()-1) + 3
}

// CtFromBig converts a non-negative integer of at most 64*CtLimbs bits.
func CtFromBig(x *big.Int) CtInt {
	if x.Sign() < 0 || x.BitLen() > 64*CtLimbs {
		panic("utils: value does not fit in CtInt")
	}
	var z CtInt
	for i, w := range x.Bits() {
		// big.Word is 64 bits on the platforms we target; 32-bit words are packed pairwise.
		if bits.UintSize == 64 {
			z[i] = uint64(w)
		} else {
			z[i/2] |= uint64(w) << (32 * uint(i%2))
		}
	}
	return z
}

// CtFromLE converts up to 8*CtLimbs little-endian bytes.
func CtFromLE(b []byte) CtInt {
	if len(b) > 8*CtLimbs {
		panic("utils: value does not fit in CtInt")
	}
	var z CtInt
	for i, v := range b {
		z[i/8] |= uint64(v) << (8 * uint(i%8))
	}
	return z
}

// LE returns the n low-order bytes of x in little-endian order.
func (x CtInt) LE(n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n && i < 8*CtLimbs; i++ {
		out[i] = byte(x[i/8] >> (8 * uint(i%8)))
	}
	return out
}

// Big returns x interpreted as an unsigned integer.
func (x CtInt) Big() *big.Int {
	be := make([]byte, 8*CtLimbs)
	for i := 0; i < CtLimbs; i++ {
		w := x[CtLimbs-1-i]
		for j := 0; j < 8; j++ {
			be[8*i+j] = byte(w >> (56 - 8*uint(j)))
		}
	}
	return new(big.Int).SetBytes(be)
}

// truncate clears every bit at or above binSize.
func (x CtInt) truncate(binSize uint) CtInt {
	for i := 0; i < CtLimbs; i++ {
		lo := uint(64 * i)
		switch {
		case binSize >= lo+64:
		case binSize <= lo:
			x[i] = 0
		default:
			x[i] &= (1 << (binSize - lo)) - 1
		}
	}
	return x
}

// CtAdd returns x + y mod 2^binSize. The carry ripples through every limb.
func CtAdd(x, y CtInt, binSize uint) CtInt {
	var z CtInt
	var carry uint64
	for i := 0; i < CtLimbs; i++ {
		z[i], carry = bits.Add64(x[i], y[i], carry)
	}
	return z.truncate(binSize)
}

// CtSub returns x - y mod 2^binSize, computed as x + ^y + 1.
func CtSub(x, y CtInt, binSize uint) CtInt {
	var z CtInt
	carry := uint64(1)
	for i := 0; i < CtLimbs; i++ {
		z[i], carry = bits.Add64(x[i], ^y[i], carry)
	}
	return z.truncate(binSize)
}

// CtSignBit returns bit binSize-1 of x, which is 1 when x is negative.
func CtSignBit(x CtInt, binSize uint) uint64 {
	i := binSize - 1
	return (x[i/64] >> (i % 64)) & 1
}

// CtLt returns 1 if x < y as signed binSize-bit integers, else 0.
func CtLt(x, y CtInt, binSize uint) uint64 {
	return CtSignBit(CtSub(x, y, binSize), binSize)
}

// CtSelect returns x if b is 1 and y if b is 0, computed as y + b*(x-y).
// b must be 0 or 1.
func CtSelect(b uint64, x, y CtInt, binSize uint) CtInt {
	diff := CtSub(x, y, binSize)
	mask := -b
	for i := range diff {
		diff[i] &= mask
	}
	return CtAdd(y, diff, binSize)
}

// VerifyBinSize reports whether the non-negative x fits in n bits.
func VerifyBinSize(x *big.Int, n uint) bool {
	return x.Sign() >= 0 && uint(x.BitLen()) <= n
}
