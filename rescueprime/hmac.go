package rescueprime

import (
	"bytes"

	"github.com/quiknode-labs/arcium-election/field"
)

var (
	ipad = field.FromUniformBytes(bytes.Repeat([]byte{0x36}, field.Size))
	opad = field.FromUniformBytes(bytes.Repeat([]byte{0x5c}, field.Size))
)

// HMAC is HMAC over the Rescue-Prime hash. The pads are added to the key in the field
// instead of XORed.
type HMAC struct {
	hash *Hash
}

// NewHMAC returns an HMAC backed by h.
func NewHMAC(h *Hash) *HMAC {
	return &HMAC{hash: h}
}

// Digest returns H((key + opad) || H((key + ipad) || msg)). key may hold at most Rate
// elements and is zero-padded to Rate.
func (m *HMAC) Digest(key, msg []field.Element) ([]field.Element, error) {
	if len(key) > Rate {
		return nil, ErrKeyTooLong
	}
	padded := make([]field.Element, Rate)
	copy(padded, key)

	inner := make([]field.Element, 0, Rate+len(msg))
	for _, k := range padded {
		inner = append(inner, k.Add(ipad))
	}
	inner = append(inner, msg...)
	innerDigest, err := m.hash.Digest(inner)
	if err != nil {
		return nil, err
	}

	outer := make([]field.Element, 0, Rate+DigestLength)
	for _, k := range padded {
		outer = append(outer, k.Add(opad))
	}
	outer = append(outer, innerDigest...)
	return m.hash.Digest(outer)
}
