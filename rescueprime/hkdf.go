package rescueprime

import "github.com/quiknode-labs/arcium-election/field"

// HKDF is the extract-then-expand key derivation function over HMAC.
type HKDF struct {
	hmac *HMAC
}

// NewHKDF returns an HKDF backed by h.
func NewHKDF(h *Hash) *HKDF {
	return &HKDF{hmac: NewHMAC(h)}
}

// Extract returns the pseudorandom key HMAC(salt, ikm). An empty salt is replaced by
// Rate zero elements.
func (k *HKDF) Extract(salt, ikm []field.Element) ([]field.Element, error) {
	if len(salt) == 0 {
		salt = field.Zeros(Rate)
	}
	return k.hmac.Digest(salt, ikm)
}

// Expand derives length elements of output keying material from prk. Only
// length == DigestLength is supported, which takes a single block HMAC(prk, info || 1).
func (k *HKDF) Expand(prk, info []field.Element, length int) ([]field.Element, error) {
	if length != DigestLength {
		return nil, ErrUnsupportedLength
	}
	msg := make([]field.Element, 0, len(info)+1)
	msg = append(msg, info...)
	msg = append(msg, field.One())
	return k.hmac.Digest(prk, msg)
}

// OKM runs Extract then Expand and returns DigestLength elements of keying material.
func (k *HKDF) OKM(salt, ikm, info []field.Element) ([]field.Element, error) {
	prk, err := k.Extract(salt, ikm)
	if err != nil {
		return nil, err
	}
	return k.Expand(prk, info, DigestLength)
}
