package rescue

import (
	"fmt"
	"math/big"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/matrix"
)

// exponents returns the S-box exponents applied on even and odd rounds.
// Cipher mode starts with alphaInverse, hash mode with alpha.
func exponents(mode arcium.Mode, alpha, alphaInverse *big.Int) (even, odd *big.Int) {
	switch mode.(type) {
	case arcium.CipherMode:
		return alphaInverse, alpha
	case arcium.HashMode:
		return alpha, alphaInverse
	default:
		panic(fmt.Sprintf("rescue: unknown mode %T", mode))
	}
}

// permutation runs the Rescue rounds over state and returns every intermediate state,
// starting with state + subkeys[0]. Round r raises the state to the round's exponent,
// multiplies by mds and adds subkeys[r+1].
func permutation(mode arcium.Mode, alpha, alphaInverse *big.Int, mds *matrix.Matrix, subkeys []*matrix.Matrix, state *matrix.Matrix) ([]*matrix.Matrix, error) {
	if state.Rows() != mds.Rows() || state.Cols() != 1 {
		return nil, fmt.Errorf("%w: state must be %dx1, got %dx%d", matrix.ErrShapeMismatch, mds.Rows(), state.Rows(), state.Cols())
	}
	even, odd := exponents(mode, alpha, alphaInverse)

	s, err := state.Add(subkeys[0], true)
	if err != nil {
		return nil, err
	}
	states := make([]*matrix.Matrix, 1, len(subkeys))
	states[0] = s

	for r := 0; r < len(subkeys)-1; r++ {
		exp := odd
		if r%2 == 0 {
			exp = even
		}
		s, err = mds.MatMul(s.Pow(exp))
		if err != nil {
			return nil, err
		}
		if s, err = s.Add(subkeys[r+1], true); err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	return states, nil
}

// permutationInverse undoes permutation by walking the rounds backwards: subtract the
// subkey, multiply by the inverse MDS matrix, then apply the reciprocal exponent of
// the round. It finishes by subtracting subkeys[0].
func permutationInverse(mode arcium.Mode, alpha, alphaInverse *big.Int, mdsInverse *matrix.Matrix, subkeys []*matrix.Matrix, state *matrix.Matrix) ([]*matrix.Matrix, error) {
	if state.Rows() != mdsInverse.Rows() || state.Cols() != 1 {
		return nil, fmt.Errorf("%w: state must be %dx1, got %dx%d", matrix.ErrShapeMismatch, mdsInverse.Rows(), state.Rows(), state.Cols())
	}
	even, odd := exponents(mode, alpha, alphaInverse)

	states := make([]*matrix.Matrix, 0, len(subkeys))
	s := state
	var err error
	for r := len(subkeys) - 2; r >= 0; r-- {
		if s, err = s.Sub(subkeys[r+1], true); err != nil {
			return nil, err
		}
		if s, err = mdsInverse.MatMul(s); err != nil {
			return nil, err
		}
		// The reciprocal of alphaInverse is alpha and vice versa.
		exp := even
		if r%2 == 0 {
			exp = odd
		}
		s = s.Pow(exp)
		states = append(states, s)
	}
	if s, err = s.Sub(subkeys[0], true); err != nil {
		return nil, err
	}
	return append(states, s), nil
}
