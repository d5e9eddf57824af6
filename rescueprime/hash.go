// Package rescueprime implements the Rescue-Prime sponge hash over GF(2^255-19) and
// the HMAC and HKDF constructions instantiated with it. Inputs and outputs are
// sequences of field elements rather than bytes.
package rescueprime

import (
	"errors"
	"fmt"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/matrix"
	"github.com/quiknode-labs/arcium-election/rescue"
	"github.com/quiknode-labs/arcium-election/utils"
)

const (
	// StateSize is the width of the sponge state.
	StateSize = 6
	// Capacity is the number of state elements never exposed to input or output.
	Capacity = 1
	// Rate is the number of elements absorbed per permutation call.
	Rate = StateSize - Capacity
	// DigestLength is the number of elements in a digest.
	DigestLength = Rate
)

var (
	// ErrKeyTooLong is returned when an HMAC key has more than Rate elements.
	ErrKeyTooLong = errors.New("rescueprime: key longer than rate")

	// ErrUnsupportedLength is returned by Expand for any output length other than DigestLength.
	ErrUnsupportedLength = errors.New("rescueprime: only single-block output is supported")
)

// Hash is the Rescue-Prime hash. It holds no per-message state and is safe for
// concurrent use.
type Hash struct {
	desc *rescue.Desc
}

// NewHash returns the hash with m=6 and capacity 1.
func NewHash() (*Hash, error) {
	desc, err := rescue.NewDesc(arcium.HashMode{M: StateSize, Capacity: Capacity})
	if err != nil {
		return nil, fmt.Errorf("rescueprime: %w", err)
	}
	return &Hash{desc: desc}, nil
}

// Digest hashes msg. The message is padded with a single one followed by zeros up to
// a multiple of Rate, then absorbed chunk by chunk. msg is not modified.
func (h *Hash) Digest(msg []field.Element) ([]field.Element, error) {
	if err := utils.CheckLength(len(msg), utils.MaxVectorLength); err != nil {
		return nil, err
	}

	padded := make([]field.Element, len(msg), len(msg)+Rate)
	copy(padded, msg)
	padded = append(padded, field.One())
	for len(padded)%Rate != 0 {
		padded = append(padded, field.Zero())
	}

	state := matrix.Zeros(StateSize, 1)
	block := make([]field.Element, StateSize)
	var err error
	for off := 0; off < len(padded); off += Rate {
		copy(block, padded[off:off+Rate])
		if state, err = state.Add(matrix.Vector(block), true); err != nil {
			return nil, err
		}
		if state, err = h.desc.Permute(state); err != nil {
			return nil, err
		}
	}
	return state.Column(0)[:DigestLength], nil
}
