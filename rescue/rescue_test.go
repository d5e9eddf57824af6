package rescue

import (
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/matrix"
	"github.com/quiknode-labs/arcium-election/utils"
)

func randomState(t *testing.T, label string, m int) *matrix.Matrix {
	t.Helper()
	xof := utils.NewShake256XOF(label)
	v := make([]field.Element, m)
	for i := range v {
		v[i] = field.FromUniformBytes(utils.ReadFull(xof, 48))
	}
	return matrix.Vector(v)
}

func testKey(m int) []field.Element {
	key := make([]field.Element, m)
	for i := range key {
		key[i] = field.FromUint64(uint64(1000 + i))
	}
	return key
}

func TestNewDesc_Cipher(t *testing.T) {
	d, err := NewDesc(arcium.CipherMode{Key: testKey(5)})
	require.NoError(t, err)

	require.Equal(t, 5, d.M())
	require.Equal(t, int64(5), d.Alpha().Int64())
	require.Equal(t, 10, d.NRounds())
	require.Len(t, d.RoundKeys(), 2*d.NRounds()+1)
	for _, k := range d.RoundKeys() {
		require.Equal(t, 5, k.Rows())
		require.Equal(t, 1, k.Cols())
	}

	prod, err := d.MDS().MatMul(d.MDSInverse())
	require.NoError(t, err)
	require.True(t, prod.Equal(matrix.Identity(5)), "MDS * MDS^-1 must be the identity")
}

func TestNewDesc_Hash(t *testing.T) {
	d, err := NewDesc(arcium.HashMode{M: 6, Capacity: 1})
	require.NoError(t, err)

	require.Equal(t, 6, d.M())
	require.Equal(t, 8, d.NRounds())
	keys := d.RoundKeys()
	require.Len(t, keys, 17)
	require.True(t, keys[0].Equal(matrix.Zeros(6, 1)), "hash mode starts with a zero subkey")
}

func TestNewDesc_InvalidMode(t *testing.T) {
	_, err := NewDesc(arcium.HashMode{M: 4, Capacity: 4})
	require.Error(t, err)

	_, err = NewDesc(arcium.CipherMode{Key: testKey(1)})
	require.Error(t, err)
}

func TestHashDomain(t *testing.T) {
	got := hashDomain(arcium.HashMode{M: 6, Capacity: 1})
	require.True(t, strings.HasPrefix(got, "Rescue-XLIX(57896044618658097711785492504343953926634992332820282019728792003956564819949,"))
	require.True(t, strings.HasSuffix(got, ",6,1,128)"))
}

func TestPermuteInverse_Cipher(t *testing.T) {
	d, err := NewDesc(arcium.CipherMode{Key: testKey(5)})
	require.NoError(t, err)

	for _, label := range []string{"a", "b", "c"} {
		state := randomState(t, "cipher state "+label, 5)
		out, err := d.Permute(state)
		require.NoError(t, err)
		require.False(t, out.Equal(state))

		back, err := d.PermuteInverse(out)
		require.NoError(t, err)
		require.True(t, back.Equal(state), "PermuteInverse(Permute(s)) != s")

		fwd, err := d.Permute(back)
		require.NoError(t, err)
		require.True(t, fwd.Equal(out))
	}
}

func TestPermuteInverse_Hash(t *testing.T) {
	d, err := NewDesc(arcium.HashMode{M: 6, Capacity: 1})
	require.NoError(t, err)

	state := randomState(t, "hash state", 6)
	out, err := d.Permute(state)
	require.NoError(t, err)
	back, err := d.PermuteInverse(out)
	require.NoError(t, err)
	require.True(t, back.Equal(state))

	// Inverting first also round trips.
	inv, err := d.PermuteInverse(state)
	require.NoError(t, err)
	again, err := d.Permute(inv)
	require.NoError(t, err)
	require.True(t, again.Equal(state))
}

func TestPermute_ZeroState(t *testing.T) {
	d, err := NewDesc(arcium.CipherMode{Key: testKey(5)})
	require.NoError(t, err)

	zero := matrix.Zeros(5, 1)
	out, err := d.Permute(zero)
	require.NoError(t, err)
	back, err := d.PermuteInverse(out)
	require.NoError(t, err)
	require.True(t, back.Equal(zero))
}

func TestPermute_ShapeMismatch(t *testing.T) {
	d, err := NewDesc(arcium.CipherMode{Key: testKey(5)})
	require.NoError(t, err)

	_, err = d.Permute(matrix.Zeros(4, 1))
	require.ErrorIs(t, err, matrix.ErrShapeMismatch)
	_, err = d.PermuteInverse(matrix.Zeros(5, 2))
	require.ErrorIs(t, err, matrix.ErrShapeMismatch)
}

func TestKeySchedule(t *testing.T) {
	key := testKey(5)
	d, err := NewDesc(arcium.CipherMode{Key: key})
	require.NoError(t, err)

	// The first subkey is the key plus the initial round constant.
	want, err := matrix.Vector(key).Add(d.roundConstants[0], false)
	require.NoError(t, err)
	require.True(t, d.RoundKeys()[0].Equal(want))

	// Different keys give different schedules over the same constants.
	other, err := NewDesc(arcium.CipherMode{Key: testKey(5)[1:]})
	require.NoError(t, err)
	require.Equal(t, 4, other.M())

	key2 := testKey(5)
	key2[0] = field.FromUint64(1)
	d2, err := NewDesc(arcium.CipherMode{Key: key2})
	require.NoError(t, err)
	require.Same(t, d.params, d2.params, "parameters are shared per width")
	require.False(t, d.RoundKeys()[1].Equal(d2.RoundKeys()[1]))
}

func TestRoundConstants_Deterministic(t *testing.T) {
	rc1, err := sampleConstants(arcium.CipherMode{Key: testKey(5)}, 10)
	require.NoError(t, err)
	rc2, err := sampleConstants(arcium.CipherMode{Key: testKey(5)}, 10)
	require.NoError(t, err)
	require.Len(t, rc1, 21)
	for i := range rc1 {
		require.True(t, rc1[i].Equal(rc2[i]))
	}
}

func TestRoundConstants_AffineRecurrence(t *testing.T) {
	xof := utils.NewShake256XOF(arcium.DomainCipher)
	mat := sampleMatrix(xof, 5)
	initial := matrix.Vector(sampleElements(xof, 5))
	affine := matrix.Vector(sampleElements(xof, 5))

	det, err := mat.Det()
	require.NoError(t, err)
	require.False(t, det.IsZero(), "a random matrix is invertible with overwhelming probability")

	rc, err := sampleConstants(arcium.CipherMode{Key: testKey(5)}, 10)
	require.NoError(t, err)
	require.True(t, rc[0].Equal(initial))

	next, err := mat.MatMul(rc[3])
	require.NoError(t, err)
	next, err = next.Add(affine, false)
	require.NoError(t, err)
	require.True(t, rc[4].Equal(next))
}

func TestSampleBytes(t *testing.T) {
	require.Equal(t, 48, sampleBytes)
}

func TestParamCache_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	descs := make([]*Desc, 8)
	errs := make([]error, 8)
	for i := range descs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			descs[i], errs[i] = NewDesc(arcium.HashMode{M: 3, Capacity: 1})
		}(i)
	}
	wg.Wait()
	for i := range descs {
		require.NoError(t, errs[i])
		require.Same(t, descs[0].params, descs[i].params)
	}
}

func TestDescAccessors_Copy(t *testing.T) {
	d, err := NewDesc(arcium.HashMode{M: 6, Capacity: 1})
	require.NoError(t, err)

	a := d.Alpha()
	a.Add(a, big.NewInt(1))
	require.Equal(t, int64(5), d.Alpha().Int64())

	keys := d.RoundKeys()
	keys[0] = nil
	require.NotNil(t, d.RoundKeys()[0])
}

func BenchmarkPermute_Cipher(b *testing.B) {
	d, err := NewDesc(arcium.CipherMode{Key: testKey(5)})
	if err != nil {
		b.Fatal(err)
	}
	state := matrix.Zeros(5, 1)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := d.Permute(state); err != nil {
			b.Fatal(err)
		}
	}
}

func TestDescMode_KeyIsCopied(t *testing.T) {
	key := testKey(5)
	d, err := NewDesc(arcium.CipherMode{Key: key})
	require.NoError(t, err)

	key[0] = field.FromUint64(7)
	got := d.Mode().(arcium.CipherMode)
	require.True(t, got.Key[0].Equal(field.FromUint64(1000)), "caller mutation leaked into Desc")

	got.Key[1] = field.FromUint64(7)
	again := d.Mode().(arcium.CipherMode)
	require.True(t, again.Key[1].Equal(field.FromUint64(1001)), "Mode returned shared key memory")
}
