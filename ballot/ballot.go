// Package ballot encodes the payloads of a three-option confidential poll for
// RescueCipher: a single encrypted vote choice and the encrypted counters of a tally.
package ballot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/cipher"
)

// Poll options.
const (
	OptionNeoRobot    uint8 = 0
	OptionHumaneAIPin uint8 = 1
	OptionFriendCom   uint8 = 2
)

// NumOptions is the number of poll options and tally counters.
const NumOptions = 3

var (
	// ErrInvalidVote is returned for a choice that is not one of the poll options.
	ErrInvalidVote = errors.New("ballot: invalid vote choice")

	// ErrCounterOutOfRange is returned when a decrypted counter does not fit in 64 bits.
	ErrCounterOutOfRange = errors.New("ballot: counter exceeds 64 bits")
)

// OptionName returns a display name for the option.
func OptionName(choice uint8) string {
	switch choice {
	case OptionNeoRobot:
		return "Neo robot"
	case OptionHumaneAIPin:
		return "Humane AI PIN"
	case OptionFriendCom:
		return "friend.com"
	default:
		return fmt.Sprintf("option(%d)", choice)
	}
}

// EncryptVote encrypts choice as a single ciphertext block.
func EncryptVote(c *cipher.RescueCipher, choice uint8, nonce [arcium.NonceSize]byte) ([arcium.BlockSize]byte, error) {
	if choice >= NumOptions {
		return [arcium.BlockSize]byte{}, fmt.Errorf("%w: %d", ErrInvalidVote, choice)
	}
	ct, err := c.Encrypt([]*big.Int{big.NewInt(int64(choice))}, nonce[:])
	if err != nil {
		return [arcium.BlockSize]byte{}, err
	}
	return ct[0], nil
}

// DecryptVote recovers the choice encrypted by EncryptVote.
func DecryptVote(c *cipher.RescueCipher, block [arcium.BlockSize]byte, nonce [arcium.NonceSize]byte) (uint8, error) {
	pt, err := c.Decrypt([][]byte{block[:]}, nonce[:])
	if err != nil {
		return 0, err
	}
	if !pt[0].IsUint64() || pt[0].Uint64() >= NumOptions {
		return 0, ErrInvalidVote
	}
	return uint8(pt[0].Uint64()), nil
}

// EncryptTally encrypts the three counters of a tally under one nonce.
func EncryptTally(c *cipher.RescueCipher, counts [NumOptions]uint64, nonce [arcium.NonceSize]byte) ([NumOptions][arcium.BlockSize]byte, error) {
	var out [NumOptions][arcium.BlockSize]byte
	pt := make([]*big.Int, NumOptions)
	for i, v := range counts {
		pt[i] = new(big.Int).SetUint64(v)
	}
	ct, err := c.Encrypt(pt, nonce[:])
	if err != nil {
		return out, err
	}
	copy(out[:], ct)
	return out, nil
}

// DecryptTally decrypts the counters produced by EncryptTally.
func DecryptTally(c *cipher.RescueCipher, state [NumOptions][arcium.BlockSize]byte, nonce [arcium.NonceSize]byte) ([NumOptions]uint64, error) {
	var counts [NumOptions]uint64
	blocks := make([][]byte, NumOptions)
	for i := range state {
		blocks[i] = state[i][:]
	}
	pt, err := c.Decrypt(blocks, nonce[:])
	if err != nil {
		return counts, err
	}
	for i, v := range pt {
		if !v.IsUint64() {
			return counts, fmt.Errorf("%w: counter %d", ErrCounterOutOfRange, i)
		}
		counts[i] = v.Uint64()
	}
	return counts, nil
}

// Tally counts plaintext votes. It mirrors the update applied to the encrypted
// counters and is used to check decrypted results.
type Tally struct {
	Counts [NumOptions]uint64
}

// Record adds one vote for choice.
func (t *Tally) Record(choice uint8) error {
	if choice >= NumOptions {
		return fmt.Errorf("%w: %d", ErrInvalidVote, choice)
	}
	t.Counts[choice]++
	return nil
}

// Winner returns the option with the most votes. Ties go to the lowest index.
func Winner(counts [NumOptions]uint64) uint8 {
	maxCount := counts[0]
	for _, v := range counts[1:] {
		if v > maxCount {
			maxCount = v
		}
	}
	for i, v := range counts {
		if v == maxCount {
			return uint8(i)
		}
	}
	return 0
}

// NonceToU128 splits a little-endian 16-byte nonce into its low and high 64-bit halves.
func NonceToU128(nonce [arcium.NonceSize]byte) (lo, hi uint64) {
	return binary.LittleEndian.Uint64(nonce[:8]), binary.LittleEndian.Uint64(nonce[8:])
}

// NonceFromU128 is the inverse of NonceToU128.
func NonceFromU128(lo, hi uint64) [arcium.NonceSize]byte {
	var nonce [arcium.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], lo)
	binary.LittleEndian.PutUint64(nonce[8:], hi)
	return nonce
}

// NonceBig returns the nonce as the unsigned 128-bit integer it encodes.
func NonceBig(nonce [arcium.NonceSize]byte) *big.Int {
	lo, hi := NonceToU128(nonce)
	n := new(big.Int).SetUint64(hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(lo))
}
