package utils

import (
	"io"

	"golang.org/x/crypto/sha3"
)

// NewShake256XOF returns a SHAKE256 extendable output stream seeded with the given
// domain-separation string. Successive reads continue the same output stream.
func NewShake256XOF(domain string) io.Reader {
	h := sha3.NewShake256()
	_, _ = h.Write([]byte(domain))
	return h
}

// Shake256 computes the SHAKE256 extendable output function (XOF).
// It absorbs input and returns outputLen bytes of output.
func Shake256(input []byte, outputLen int) []byte {
	h := sha3.NewShake256()
	_, _ = h.Write(input)
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// ReadFull reads exactly n bytes from an XOF stream. SHAKE never returns short reads,
// so any error here is a programming error.
func ReadFull(r io.Reader, n int) []byte {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		panic("utils: xof read failed: " + err.Error())
	}
	return buf
}
