package utils

import "math/big"

// DeserializeLE interprets b as an unsigned little-endian integer.
func DeserializeLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

// SerializeLE encodes a non-negative x as exactly n little-endian bytes.
// It returns ErrExceedsLimit if x is negative or does not fit.
func SerializeLE(x *big.Int, n int) ([]byte, error) {
	if x.Sign() < 0 || x.BitLen() > 8*n {
		return nil, ErrExceedsLimit
	}
	be := x.FillBytes(make([]byte, n))
	out := make([]byte, n)
	for i, v := range be {
		out[n-1-i] = v
	}
	return out, nil
}
