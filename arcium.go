// Package arcium implements the client-side encryption core used to submit confidential
// votes to an Arcium MXE: the Rescue permutation over the Curve25519 base field, the
// Rescue-Prime hash with its HMAC and HKDF constructions, and the Rescue-CTR stream cipher.
//
// The root package holds the types shared by the sub-packages. The functionality lives in:
//   - field: arithmetic modulo 2^255-19
//   - matrix: dense matrices over the field
//   - core: Rescue parameter derivation (alpha, round counts, MDS matrices)
//   - rescue: round constants, key schedule and the permutation itself
//   - rescueprime: Rescue-Prime hash, HMAC and HKDF
//   - cipher: the Rescue-CTR cipher keyed from a 32-byte shared secret
//   - ballot: vote encoding on top of the cipher
package arcium

// Version of the Go implementation.
const Version = "0.3.0"

// API summary:
//
// Cipher:
//   - cipher.New(sharedSecret) - Derive a cipher from a 32-byte shared secret
//   - (*RescueCipher).Encrypt(plaintext, nonce) - Encrypt field elements to 32-byte blocks
//   - (*RescueCipher).Decrypt(ciphertext, nonce) - Recover the plaintext elements
//
// Hashing:
//   - rescueprime.NewHash() - Rescue-Prime hash with rate 5
//   - rescueprime.NewHMAC() / rescueprime.NewHKDF() - keyed constructions over the hash
//
// Votes:
//   - ballot.EncryptVote(c, choice, nonce) - Encrypt a single poll choice
//   - ballot.DecryptTally(c, state, nonce) - Decrypt the three vote counters
