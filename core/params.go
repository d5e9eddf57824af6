// Package core derives the public parameters of a Rescue instance: the S-box exponents,
// the number of rounds for the targeted security level, and the MDS matrices.
package core

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/matrix"
)

// ErrNoValidAlpha is returned when every candidate exponent divides p-1. Such a field
// cannot host a Rescue permutation.
var ErrNoValidAlpha = errors.New("no valid alpha: every candidate prime divides p-1")

// alphaCandidates are the primes tried as the S-box exponent, smallest first.
var alphaCandidates = []int64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47}

// maxHashRoundSearch bounds the Groebner-basis round search in hash mode.
const maxHashRoundSearch = 23

// GetAlphaAndInverse returns the smallest candidate prime alpha with gcd(alpha, p-1) = 1
// and alpha^-1 mod p-1, so that x -> x^alpha is a permutation of GF(p) inverted by
// x -> x^alphaInverse.
func GetAlphaAndInverse(p *big.Int) (alpha, alphaInverse *big.Int, err error) {
	pMinusOne := new(big.Int).Sub(p, big.NewInt(1))
	rem := new(big.Int)
	for _, c := range alphaCandidates {
		a := big.NewInt(c)
		if rem.Mod(pMinusOne, a).Sign() != 0 {
			inv := new(big.Int).ModInverse(a, pMinusOne)
			if inv == nil {
				continue
			}
			return a, inv, nil
		}
	}
	return nil, nil, ErrNoValidAlpha
}

// NumRounds returns the number of rounds for the mode at arcium.SecurityLevel.
//
// For CipherMode this is 2*max(l0, l1, 5) where l0 bounds algebraic attacks and l1
// statistical ones. For HashMode the smallest l1 is searched for which the Groebner
// basis complexity binomial(v+d, v)^2 exceeds 2^s, then a 50% margin is added.
// Both results are double-round counts: every round applies alpha and alphaInverse.
func NumRounds(mode arcium.Mode, p, alpha *big.Int) (int, error) {
	s := float64(arcium.SecurityLevel)
	a := alpha.Int64()

	switch md := mode.(type) {
	case arcium.CipherMode:
		m := float64(md.StateSize())
		if m < 2 {
			return 0, fmt.Errorf("cipher state width must be at least 2, got %d", md.StateSize())
		}
		l0 := int(math.Ceil(2 * s / ((m + 1) * (log2(p) - math.Log2(float64(a-1))))))
		var l1 int
		if a == 3 {
			l1 = int(math.Ceil((s + 2) / (4 * m)))
		} else {
			l1 = int(math.Ceil((s + 3) / (5.5 * m)))
		}
		return 2 * max(l0, l1, 5), nil

	case arcium.HashMode:
		if err := validateHashMode(md); err != nil {
			return 0, err
		}
		m, rate := md.M, md.Rate()
		target := new(big.Int).Lsh(big.NewInt(1), arcium.SecurityLevel)
		l1 := 1
		for ; l1 <= maxHashRoundSearch; l1++ {
			dcon := int64(math.Floor(0.5*float64(a-1)*float64(m)*float64(l1-1) + 2))
			v := int64(m*(l1-1) + rate)
			b := new(big.Int).Binomial(v+dcon, v)
			if b.Mul(b, b).Cmp(target) > 0 {
				break
			}
		}
		return int(math.Ceil(1.5 * float64(max(5, l1)))), nil

	default:
		panic(fmt.Sprintf("core: unknown mode %T", mode))
	}
}

// MDS returns the m x m Cauchy matrix C[i][j] = 1/(i+j), for i, j in 1..m, and its
// inverse. The inverse uses the closed form for Cauchy matrices with x_i = i and
// y_j = -j:
//
//	C^-1[i][j] = (i+j) * prod_{k!=j} (-i-k)/(j-k) * prod_{k!=i} (j+k)/(k-i)
func MDS(m int) (mds, inverse *matrix.Matrix, err error) {
	if m < 1 {
		return nil, nil, fmt.Errorf("MDS size must be positive, got %d", m)
	}
	fe := func(v int) field.Element { return field.Create(big.NewInt(int64(v))) }

	c := make([][]field.Element, m)
	inv := make([][]field.Element, m)
	for i := 1; i <= m; i++ {
		c[i-1] = make([]field.Element, m)
		inv[i-1] = make([]field.Element, m)
		for j := 1; j <= m; j++ {
			if c[i-1][j-1], err = fe(i + j).Inv(); err != nil {
				return nil, nil, err
			}

			num := fe(i + j)
			den := field.One()
			for k := 1; k <= m; k++ {
				if k != j {
					num = num.Mul(fe(-i - k))
					den = den.Mul(fe(j - k))
				}
				if k != i {
					num = num.Mul(fe(j + k))
					den = den.Mul(fe(k - i))
				}
			}
			if inv[i-1][j-1], err = num.Div(den); err != nil {
				return nil, nil, err
			}
		}
	}

	if mds, err = matrix.New(c); err != nil {
		return nil, nil, err
	}
	if inverse, err = matrix.New(inv); err != nil {
		return nil, nil, err
	}
	return mds, inverse, nil
}

// ValidateParams checks that a field and mode can host a Rescue instance.
func ValidateParams(p *big.Int, mode arcium.Mode) error {
	if p.Sign() <= 0 || p.Bit(0) == 0 {
		return errors.New("field order must be an odd positive integer")
	}
	if p.BitLen() <= 64 {
		return errors.New("field order must exceed 64 bits")
	}
	if !p.ProbablyPrime(20) {
		return errors.New("field order must be prime")
	}
	switch md := mode.(type) {
	case arcium.CipherMode:
		if md.StateSize() < 2 {
			return fmt.Errorf("cipher key must have at least 2 elements, got %d", md.StateSize())
		}
		return nil
	case arcium.HashMode:
		return validateHashMode(md)
	default:
		panic(fmt.Sprintf("core: unknown mode %T", mode))
	}
}

func validateHashMode(h arcium.HashMode) error {
	if h.M < 2 {
		return fmt.Errorf("hash state width must be at least 2, got %d", h.M)
	}
	if h.Capacity <= 0 || h.Capacity >= h.M {
		return fmt.Errorf("hash capacity must be in (0, %d), got %d", h.M, h.Capacity)
	}
	return nil
}

// log2 returns log2(p) as a float64.
func log2(p *big.Int) float64 {
	f, _ := new(big.Float).SetInt(p).Float64()
	return math.Log2(f)
}
