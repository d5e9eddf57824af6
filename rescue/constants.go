package rescue

import (
	"fmt"
	"io"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/matrix"
	"github.com/quiknode-labs/arcium-election/utils"
)

// sampleBytes is the number of XOF bytes reduced into each round constant. The 16
// extra bytes beyond the field size make the reduction bias negligible.
var sampleBytes = (field.Order.BitLen()+7)/8 + 16

// hashDomain is the round-constant seed for hash mode.
func hashDomain(h arcium.HashMode) string {
	return fmt.Sprintf("Rescue-XLIX(%d,%d,%d,%d)", field.Order, h.M, h.Capacity, arcium.SecurityLevel)
}

func sampleElement(xof io.Reader) field.Element {
	return field.FromUniformBytes(utils.ReadFull(xof, sampleBytes))
}

func sampleElements(xof io.Reader, n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = sampleElement(xof)
	}
	return out
}

func sampleMatrix(xof io.Reader, m int) *matrix.Matrix {
	rows := make([][]field.Element, m)
	for i := range rows {
		rows[i] = sampleElements(xof, m)
	}
	mat, err := matrix.New(rows)
	if err != nil {
		panic(err)
	}
	return mat
}

// sampleConstants returns the 2*nRounds+1 round constants for the mode.
//
// In cipher mode the constants follow an affine recurrence rc[r+1] = M*rc[r] + c,
// where M, rc[0] and c are drawn from the XOF in that order. M is redrawn from the
// continuing stream until it is invertible.
//
// In hash mode 2*m*nRounds elements are drawn and grouped into m-vectors, preceded by
// a zero vector so the initial key addition is the identity.
func sampleConstants(mode arcium.Mode, nRounds int) ([]*matrix.Matrix, error) {
	m := mode.StateSize()

	switch md := mode.(type) {
	case arcium.CipherMode:
		xof := utils.NewShake256XOF(arcium.DomainCipher)
		rcMat := sampleMatrix(xof, m)
		initial := matrix.Vector(sampleElements(xof, m))
		affine := matrix.Vector(sampleElements(xof, m))

		for {
			det, err := rcMat.Det()
			if err != nil {
				return nil, err
			}
			if !det.IsZero() {
				break
			}
			rcMat = sampleMatrix(xof, m)
		}

		rc := make([]*matrix.Matrix, 1, 2*nRounds+1)
		rc[0] = initial
		for r := 0; r < 2*nRounds; r++ {
			next, err := rcMat.MatMul(rc[r])
			if err != nil {
				return nil, err
			}
			if next, err = next.Add(affine, false); err != nil {
				return nil, err
			}
			rc = append(rc, next)
		}
		return rc, nil

	case arcium.HashMode:
		xof := utils.NewShake256XOF(hashDomain(md))
		rc := make([]*matrix.Matrix, 1, 2*nRounds+1)
		rc[0] = matrix.Zeros(m, 1)
		for r := 0; r < 2*nRounds; r++ {
			rc = append(rc, matrix.Vector(sampleElements(xof, m)))
		}
		return rc, nil

	default:
		panic(fmt.Sprintf("rescue: unknown mode %T", mode))
	}
}
