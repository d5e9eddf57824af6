package rescueprime

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/utils"
)

func newHash(t testing.TB) *Hash {
	t.Helper()
	h, err := NewHash()
	require.NoError(t, err)
	return h
}

func elems(vs ...uint64) []field.Element {
	out := make([]field.Element, len(vs))
	for i, v := range vs {
		out[i] = field.FromUint64(v)
	}
	return out
}

func requireElementsEqual(t *testing.T, want, got []field.Element) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Truef(t, want[i].Equal(got[i]), "element %d: want %s, got %s", i, want[i], got[i])
	}
}

func requireElementsDiffer(t *testing.T, a, b []field.Element) {
	t.Helper()
	if len(a) != len(b) {
		return
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return
		}
	}
	t.Fatalf("expected different digests, both are %v", a)
}

func TestPads(t *testing.T) {
	want36 := new(big.Int).SetBytes(bytes.Repeat([]byte{0x36}, 32))
	want5c := new(big.Int).SetBytes(bytes.Repeat([]byte{0x5c}, 32))
	// Repeated bytes read the same in either byte order.
	require.Zero(t, field.Create(want36).Big().Cmp(ipad.Big()))
	require.Zero(t, field.Create(want5c).Big().Cmp(opad.Big()))
}

func TestDigest_LengthAndDeterminism(t *testing.T) {
	h := newHash(t)

	for _, n := range []int{0, 1, 4, 5, 6, 10, 11} {
		msg := make([]field.Element, n)
		for i := range msg {
			msg[i] = field.FromUint64(uint64(i + 1))
		}
		d1, err := h.Digest(msg)
		require.NoError(t, err)
		require.Len(t, d1, DigestLength)

		d2, err := newHash(t).Digest(msg)
		require.NoError(t, err)
		requireElementsEqual(t, d1, d2)
	}
}

func TestDigest_Padding(t *testing.T) {
	h := newHash(t)

	// Messages that differ only by trailing zeros must not collide because the
	// padding starts with a one.
	a, err := h.Digest(elems(7))
	require.NoError(t, err)
	b, err := h.Digest(elems(7, 0))
	require.NoError(t, err)
	requireElementsDiffer(t, a, b)

	// A full-rate message gets a whole extra padding block.
	full, err := h.Digest(elems(1, 2, 3, 4, 5))
	require.NoError(t, err)
	explicit, err := h.Digest(elems(1, 2, 3, 4, 5, 1))
	require.NoError(t, err)
	requireElementsDiffer(t, full, explicit)

	// Padding by hand still gets padded again.
	short, err := h.Digest(elems(1, 2, 3))
	require.NoError(t, err)
	manual, err := h.Digest(elems(1, 2, 3, 1, 0))
	require.NoError(t, err)
	requireElementsDiffer(t, short, manual)
}

func TestDigest_DoesNotMutateInput(t *testing.T) {
	h := newHash(t)
	msg := elems(1, 2, 3, 4)
	orig := append([]field.Element(nil), msg...)
	_, err := h.Digest(msg[:2])
	require.NoError(t, err)
	requireElementsEqual(t, orig, msg)
}

func TestDigest_TooLong(t *testing.T) {
	h := newHash(t)
	_, err := h.Digest(make([]field.Element, utils.MaxVectorLength+1))
	require.ErrorIs(t, err, utils.ErrExceedsLimit)
}

func TestHMAC(t *testing.T) {
	h := newHash(t)
	mac := NewHMAC(h)

	msg := elems(10, 20, 30)
	d1, err := mac.Digest(elems(1, 2), msg)
	require.NoError(t, err)
	require.Len(t, d1, DigestLength)

	// Zero padding of the key is implicit.
	d2, err := mac.Digest(elems(1, 2, 0, 0, 0), msg)
	require.NoError(t, err)
	requireElementsEqual(t, d1, d2)

	d3, err := mac.Digest(elems(1, 3), msg)
	require.NoError(t, err)
	requireElementsDiffer(t, d1, d3)

	// Definition check against the raw hash.
	key := elems(4, 5, 6)
	var inner, outer []field.Element
	for _, k := range append(key, field.Zeros(Rate-len(key))...) {
		inner = append(inner, k.Add(ipad))
		outer = append(outer, k.Add(opad))
	}
	innerDigest, err := h.Digest(append(inner, msg...))
	require.NoError(t, err)
	want, err := h.Digest(append(outer, innerDigest...))
	require.NoError(t, err)
	got, err := mac.Digest(key, msg)
	require.NoError(t, err)
	requireElementsEqual(t, want, got)
}

func TestHMAC_KeyTooLong(t *testing.T) {
	mac := NewHMAC(newHash(t))
	_, err := mac.Digest(elems(1, 2, 3, 4, 5, 6), nil)
	require.ErrorIs(t, err, ErrKeyTooLong)
}

func TestHKDF(t *testing.T) {
	h := newHash(t)
	kdf := NewHKDF(h)
	ikm := elems(42)

	// Empty salt defaults to Rate zeros.
	prk1, err := kdf.Extract(nil, ikm)
	require.NoError(t, err)
	prk2, err := kdf.Extract(field.Zeros(Rate), ikm)
	require.NoError(t, err)
	requireElementsEqual(t, prk1, prk2)

	okm, err := kdf.Expand(prk1, nil, DigestLength)
	require.NoError(t, err)
	want, err := NewHMAC(h).Digest(prk1, elems(1))
	require.NoError(t, err)
	requireElementsEqual(t, want, okm)

	full, err := kdf.OKM(nil, ikm, nil)
	require.NoError(t, err)
	requireElementsEqual(t, okm, full)

	withInfo, err := kdf.OKM(nil, ikm, elems(9))
	require.NoError(t, err)
	requireElementsDiffer(t, full, withInfo)
}

func TestHKDF_UnsupportedLength(t *testing.T) {
	kdf := NewHKDF(newHash(t))
	for _, l := range []int{0, 1, 4, 6, 10} {
		_, err := kdf.Expand(field.Zeros(Rate), nil, l)
		require.ErrorIs(t, err, ErrUnsupportedLength, "length %d", l)
	}
}

func BenchmarkDigest(b *testing.B) {
	h := newHash(b)
	msg := elems(1, 2, 3, 4, 5, 6, 7, 8)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Digest(msg); err != nil {
			b.Fatal(err)
		}
	}
}
