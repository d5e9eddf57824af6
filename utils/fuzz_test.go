package utils

import (
	"math/big"
	"testing"

	fuzz "github.com/trailofbits/go-fuzz-utils"
)

// FuzzCtArithmetic checks the constant-time helpers against math/big on arbitrary operands.
func FuzzCtArithmetic(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, 64))
	f.Add(Shake256([]byte("ct arithmetic seed"), 128))

	binSize := BinSize(testOrder)
	mod := new(big.Int).Lsh(big.NewInt(1), binSize)

	f.Fuzz(func(t *testing.T, data []byte) {
		tp, err := fuzz.NewTypeProvider(data)
		if err != nil {
			t.Skip(err)
		}
		xb, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}
		yb, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}
		sel, err := tp.GetByte()
		if err != nil {
			t.Skip(err)
		}

		a := new(big.Int).SetBytes(xb)
		a.Mod(a, testOrder)
		b := new(big.Int).SetBytes(yb)
		b.Mod(b, testOrder)
		x, y := CtFromBig(a), CtFromBig(b)

		sum := new(big.Int).Add(a, b)
		if got := CtAdd(x, y, binSize).Big(); got.Cmp(sum) != 0 {
			t.Fatalf("CtAdd = %v, want %v", got, sum)
		}

		diff := new(big.Int).Sub(a, b)
		diff.Mod(diff, mod)
		if got := CtSub(x, y, binSize).Big(); got.Cmp(diff) != 0 {
			t.Fatalf("CtSub = %v, want %v", got, diff)
		}

		bit := uint64(sel & 1)
		want := b
		if bit == 1 {
			want = a
		}
		if got := CtSelect(bit, x, y, binSize).Big(); got.Cmp(want) != 0 {
			t.Fatalf("CtSelect(%d) = %v, want %v", bit, got, want)
		}
	})
}
