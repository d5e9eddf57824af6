package arcium

import "github.com/quiknode-labs/arcium-election/field"

// SecurityLevel is the targeted security level in bits. Round counts are derived from it.
const SecurityLevel = 128

const (
	// CipherBlockSize is the state width of the cipher-mode permutation and the number of
	// plaintext elements consumed per counter block.
	CipherBlockSize = 5

	// NonceSize is the size of a Rescue-CTR nonce in bytes.
	NonceSize = 16

	// BlockSize is the serialized size of a single ciphertext element.
	BlockSize = 32

	// SharedSecretSize is the size of the shared secret the cipher is keyed from.
	SharedSecretSize = 32
)

// DomainCipher seeds the round-constant XOF in cipher mode.
const DomainCipher = "encrypt everything, compute anything"

// =============================================================================
// Modes
// =============================================================================

// Mode selects how a Rescue instance is used. It is either a CipherMode or a HashMode;
// code that behaves differently per mode switches exhaustively on the concrete type.
type Mode interface {
	// StateSize is the width m of the permutation state.
	StateSize() int
	isMode()
}

// CipherMode keys the permutation with Key, whose length fixes the state width.
type CipherMode struct {
	Key []field.Element
}

// StateSize implements Mode.
func (c CipherMode) StateSize() int { return len(c.Key) }

func (CipherMode) isMode() {}

// HashMode uses the permutation in a sponge with the given width and capacity.
type HashMode struct {
	M        int
	Capacity int
}

// StateSize implements Mode.
func (h HashMode) StateSize() int { return h.M }

// Rate is the number of state elements absorbed per permutation call.
func (h HashMode) Rate() int { return h.M - h.Capacity }

func (HashMode) isMode() {}
