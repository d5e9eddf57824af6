package matrix

import (
	"errors"
	"math/big"
	"testing"

	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/utils"
)

func ints(rows ...[]int64) *Matrix {
	conv := make([][]*big.Int, len(rows))
	for i, row := range rows {
		for _, v := range row {
			conv[i] = append(conv[i], big.NewInt(v))
		}
	}
	m, err := FromBigs(conv)
	if err != nil {
		panic(err)
	}
	return m
}

func randomMatrix(xof interface{ Read([]byte) (int, error) }, rows, cols int) *Matrix {
	m := Zeros(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i][j] = field.FromUniformBytes(utils.ReadFull(xof, 48))
		}
	}
	return m
}

func TestNew_Ragged(t *testing.T) {
	_, err := New([][]field.Element{field.Zeros(2), field.Zeros(3)})
	if !errors.Is(err, ErrRaggedRows) {
		t.Errorf("New(ragged) = %v, want ErrRaggedRows", err)
	}
}

func TestMatMul(t *testing.T) {
	a := ints([]int64{1, 2}, []int64{3, 4})
	b := ints([]int64{5, 6}, []int64{7, 8})
	got, err := a.MatMul(b)
	if err != nil {
		t.Fatal(err)
	}
	if want := ints([]int64{19, 22}, []int64{43, 50}); !got.Equal(want) {
		t.Errorf("MatMul = %v, want %v", got, want)
	}

	id, err := a.MatMul(Identity(2))
	if err != nil {
		t.Fatal(err)
	}
	if !id.Equal(a) {
		t.Error("A * I should equal A")
	}
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	if _, err := Zeros(2, 3).MatMul(Zeros(2, 3)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("MatMul(2x3, 2x3) = %v, want ErrShapeMismatch", err)
	}
	if _, err := Zeros(2, 2).Add(Zeros(2, 1), false); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Add(2x2, 2x1) = %v, want ErrShapeMismatch", err)
	}
	if _, err := Zeros(2, 2).Sub(Zeros(1, 2), true); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Sub(2x2, 1x2) = %v, want ErrShapeMismatch", err)
	}
}

func TestAddSub_ConstantTimeMatchesPlain(t *testing.T) {
	xof := utils.NewShake256XOF("matrix add/sub")
	a := randomMatrix(xof, 5, 3)
	b := randomMatrix(xof, 5, 3)

	// Include the extremes so both reduction branches are taken.
	pm1 := field.Create(new(big.Int).Sub(field.Order, big.NewInt(1)))
	a.data[0][0], b.data[0][0] = pm1, pm1
	a.data[1][1], b.data[1][1] = field.Zero(), pm1

	for _, ct := range []bool{false, true} {
		sum, err := a.Add(b, ct)
		if err != nil {
			t.Fatal(err)
		}
		back, err := sum.Sub(b, ct)
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(a) {
			t.Errorf("(a+b)-b != a with constantTime=%v", ct)
		}
	}

	plain, _ := a.Add(b, false)
	ctSum, _ := a.Add(b, true)
	if !plain.Equal(ctSum) {
		t.Error("constant-time Add differs from plain Add")
	}
	plainDiff, _ := a.Sub(b, false)
	ctDiff, _ := a.Sub(b, true)
	if !plainDiff.Equal(ctDiff) {
		t.Error("constant-time Sub differs from plain Sub")
	}
}

func TestPow(t *testing.T) {
	m := ints([]int64{2, 3}, []int64{0, 1})
	if got, want := m.Pow(big.NewInt(5)), ints([]int64{32, 243}, []int64{0, 1}); !got.Equal(want) {
		t.Errorf("Pow(5) = %v, want %v", got, want)
	}
}

func TestDet(t *testing.T) {
	cases := []struct {
		name string
		m    *Matrix
		want int64
	}{
		{"identity", Identity(4), 1},
		{"2x2", ints([]int64{2, 3}, []int64{1, 4}), 5},
		{"swap", ints([]int64{0, 1}, []int64{1, 0}), -1},
		{"3x3", ints([]int64{1, 2, 3}, []int64{4, 5, 6}, []int64{7, 8, 10}), -3},
		{"leading zeros", ints([]int64{0, 0, 1}, []int64{0, 1, 0}, []int64{1, 0, 0}), -1},
		{"cyclic", ints([]int64{0, 1, 0}, []int64{0, 0, 1}, []int64{1, 0, 0}), 1},
		{"singular", ints([]int64{1, 2}, []int64{2, 4}), 0},
		{"zero column", ints([]int64{0, 1}, []int64{0, 5}), 0},
	}
	for _, tc := range cases {
		got, err := tc.m.Det()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if want := field.Create(big.NewInt(tc.want)); !got.Equal(want) {
			t.Errorf("%s: Det = %v, want %v", tc.name, got, want)
		}
	}
}

func TestDet_Multiplicative(t *testing.T) {
	xof := utils.NewShake256XOF("matrix det")
	a := randomMatrix(xof, 4, 4)
	b := randomMatrix(xof, 4, 4)
	ab, err := a.MatMul(b)
	if err != nil {
		t.Fatal(err)
	}
	da, _ := a.Det()
	db, _ := b.Det()
	dab, _ := ab.Det()
	if !dab.Equal(da.Mul(db)) {
		t.Error("det(AB) != det(A)det(B)")
	}
}

func TestDet_NotSquare(t *testing.T) {
	if _, err := Zeros(2, 3).Det(); !errors.Is(err, ErrNotSquare) {
		t.Errorf("Det(2x3) = %v, want ErrNotSquare", err)
	}
}

func TestImmutability(t *testing.T) {
	rows := [][]field.Element{{field.One()}}
	m, _ := New(rows)
	rows[0][0] = field.Zero()
	if m.At(0, 0).IsZero() {
		t.Error("New should copy its input")
	}
	d := m.Data()
	d[0][0] = field.Zero()
	if m.At(0, 0).IsZero() {
		t.Error("Data should return a copy")
	}
}
