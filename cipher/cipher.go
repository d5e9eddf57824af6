// Package cipher implements RescueCipher, a stream cipher that runs the Rescue
// permutation in counter mode over GF(2^255-19).
//
// The key is derived from a 32-byte shared secret with Rescue-Prime HKDF. Each
// 16-byte nonce together with a block index forms a counter block
// [nonce, index, 0, 0, 0], which is permuted and added to five plaintext elements.
// Ciphertext elements are serialized as 32-byte little-endian blocks.
//
// A nonce must never be reused with the same shared secret.
package cipher

import (
	"errors"
	"fmt"
	"math/big"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/matrix"
	"github.com/quiknode-labs/arcium-election/rescue"
	"github.com/quiknode-labs/arcium-election/rescueprime"
	"github.com/quiknode-labs/arcium-election/utils"
)

var (
	// ErrInvalidNonceLength is returned when a nonce is not NonceSize bytes.
	ErrInvalidNonceLength = errors.New("cipher: nonce must be 16 bytes")

	// ErrInvalidBlockLength is returned when a ciphertext block is not BlockSize bytes.
	ErrInvalidBlockLength = errors.New("cipher: ciphertext block must be 32 bytes")

	// ErrPlaintextOutOfRange is returned for plaintext elements that are negative or
	// not below the field order.
	ErrPlaintextOutOfRange = errors.New("cipher: plaintext element out of range")

	// ErrCiphertextOutOfRange is returned for ciphertext blocks that do not encode a
	// value below the field order.
	ErrCiphertextOutOfRange = errors.New("cipher: ciphertext element out of range")

	// ErrInvalidSharedSecret is returned when the shared secret is not SharedSecretSize bytes.
	ErrInvalidSharedSecret = errors.New("cipher: shared secret must be 32 bytes")
)

// RescueCipher encrypts and decrypts vectors of field elements. It is immutable after
// New and safe for concurrent use.
type RescueCipher struct {
	desc *rescue.Desc
}

// New derives the cipher key from sharedSecret and builds the keyed permutation.
func New(sharedSecret []byte) (*RescueCipher, error) {
	if len(sharedSecret) != arcium.SharedSecretSize {
		return nil, ErrInvalidSharedSecret
	}
	key, err := deriveKey(sharedSecret)
	if err != nil {
		return nil, err
	}
	desc, err := rescue.NewDesc(arcium.CipherMode{Key: key})
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	return &RescueCipher{desc: desc}, nil
}

// deriveKey returns HKDF(salt = [], ikm = [secret as a little-endian integer], info = []).
func deriveKey(sharedSecret []byte) ([]field.Element, error) {
	h, err := rescueprime.NewHash()
	if err != nil {
		return nil, err
	}
	ikm := []field.Element{field.Create(utils.DeserializeLE(sharedSecret))}
	key, err := rescueprime.NewHKDF(h).OKM(nil, ikm, nil)
	if err != nil {
		return nil, fmt.Errorf("cipher: key derivation: %w", err)
	}
	if len(key) != arcium.CipherBlockSize {
		panic("cipher: derived key has the wrong width")
	}
	return key, nil
}

// EncryptRaw encrypts plaintext under nonce and returns the ciphertext elements.
// Every plaintext element must lie in [0, Order).
func (c *RescueCipher) EncryptRaw(plaintext []*big.Int, nonce []byte) ([]field.Element, error) {
	if len(nonce) != arcium.NonceSize {
		return nil, ErrInvalidNonceLength
	}
	if err := utils.CheckLength(len(plaintext), utils.MaxVectorLength); err != nil {
		return nil, err
	}
	pt := make([]field.Element, len(plaintext))
	for i, x := range plaintext {
		if x == nil || !inRange(x) {
			return nil, fmt.Errorf("%w: element %d", ErrPlaintextOutOfRange, i)
		}
		pt[i] = field.Create(x)
	}

	ks, err := c.keystream(nonce, len(pt))
	if err != nil {
		return nil, err
	}
	defer wipe(ks)

	ct := make([]field.Element, len(pt))
	for i := range pt {
		ct[i] = field.AddCt(pt[i], ks[i])
	}
	wipe(pt)
	return ct, nil
}

// Encrypt encrypts plaintext and serializes each ciphertext element to BlockSize bytes.
func (c *RescueCipher) Encrypt(plaintext []*big.Int, nonce []byte) ([][arcium.BlockSize]byte, error) {
	ct, err := c.EncryptRaw(plaintext, nonce)
	if err != nil {
		return nil, err
	}
	out := make([][arcium.BlockSize]byte, len(ct))
	for i, e := range ct {
		copy(out[i][:], e.Bytes())
	}
	return out, nil
}

// DecryptRaw decrypts ciphertext elements produced by EncryptRaw under the same nonce.
func (c *RescueCipher) DecryptRaw(ciphertext []field.Element, nonce []byte) ([]field.Element, error) {
	if len(nonce) != arcium.NonceSize {
		return nil, ErrInvalidNonceLength
	}
	if err := utils.CheckLength(len(ciphertext), utils.MaxVectorLength); err != nil {
		return nil, err
	}

	ks, err := c.keystream(nonce, len(ciphertext))
	if err != nil {
		return nil, err
	}
	defer wipe(ks)

	pt := make([]field.Element, len(ciphertext))
	for i := range ciphertext {
		pt[i] = field.SubCt(ciphertext[i], ks[i])
	}
	return pt, nil
}

// Decrypt deserializes and decrypts BlockSize-byte ciphertext blocks.
func (c *RescueCipher) Decrypt(ciphertext [][]byte, nonce []byte) ([]*big.Int, error) {
	if len(nonce) != arcium.NonceSize {
		return nil, ErrInvalidNonceLength
	}
	if err := utils.CheckLength(len(ciphertext), utils.MaxVectorLength); err != nil {
		return nil, err
	}
	ct := make([]field.Element, len(ciphertext))
	for i, b := range ciphertext {
		if len(b) != arcium.BlockSize {
			return nil, fmt.Errorf("%w: block %d has %d bytes", ErrInvalidBlockLength, i, len(b))
		}
		e, err := field.SetBytes(b)
		if err != nil {
			return nil, fmt.Errorf("%w: block %d", ErrCiphertextOutOfRange, i)
		}
		ct[i] = e
	}

	pt, err := c.DecryptRaw(ct, nonce)
	if err != nil {
		return nil, err
	}
	out := make([]*big.Int, len(pt))
	for i, e := range pt {
		out[i] = e.Big()
	}
	wipe(pt)
	return out, nil
}

// keystream returns the first n elements of the permuted counter stream for nonce.
func (c *RescueCipher) keystream(nonce []byte, n int) ([]field.Element, error) {
	nBlocks := (n + arcium.CipherBlockSize - 1) / arcium.CipherBlockSize
	nonceElem := field.Create(utils.DeserializeLE(nonce))

	ks := make([]field.Element, 0, nBlocks*arcium.CipherBlockSize)
	counter := make([]field.Element, arcium.CipherBlockSize)
	for i := 0; i < nBlocks; i++ {
		counter[0] = nonceElem
		counter[1] = field.FromUint64(uint64(i))
		out, err := c.desc.Permute(matrix.Vector(counter))
		if err != nil {
			return nil, err
		}
		ks = append(ks, out.Column(0)...)
	}
	return ks[:n], nil
}

// inRange reports whether 0 <= x < Order. The check runs before any secret-dependent
// arithmetic and only reveals whether the input is valid.
func inRange(x *big.Int) bool {
	return utils.VerifyBinSize(x, field.BinSize-1) && x.Cmp(field.Order) < 0
}

func wipe(v []field.Element) {
	for i := range v {
		v[i] = field.Zero()
	}
}
