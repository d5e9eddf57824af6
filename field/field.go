// Package field implements arithmetic in GF(2^255-19), the base field of Curve25519.
//
// Elements are immutable values backed by filippo.io/edwards25519/field, whose
// operations run in constant time. Conversions to and from math/big are provided for
// parameter derivation, where timing does not matter.
package field

import (
	"errors"
	"math/big"

	edfield "filippo.io/edwards25519/field"

	"github.com/quiknode-labs/arcium-election/utils"
)

// Size is the length of the canonical little-endian encoding of an element.
const Size = 32

// Order is the field prime 2^255 - 19. It must not be modified.
var Order *big.Int

// BinSize is the constant-time integer width for the field, floor(log2(Order-1)) + 3.
var BinSize uint

var (
	// ErrZeroInverse is returned when the inverse of zero is requested.
	ErrZeroInverse = errors.New("field: inverse of zero")

	// ErrNonCanonical is returned when decoding bytes that do not encode a value below Order.
	ErrNonCanonical = errors.New("field: non-canonical encoding")

	// ErrInvalidLength is returned when decoding a buffer that is not Size bytes long.
	ErrInvalidLength = errors.New("field: encoding must be 32 bytes")
)

func init() {
	Order = new(big.Int).Lsh(big.NewInt(1), 255)
	Order.Sub(Order, big.NewInt(19))
	BinSize = utils.BinSize(Order)
	orderCt = utils.CtFromBig(Order)
}

// Element is a field element. The zero value is 0.
type Element struct {
	v edfield.Element
}

// Zero returns the additive identity.
func Zero() Element { return Element{} }

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.v.One()
	return e
}

// Create reduces any integer, negative values included, into [0, Order).
func Create(x *big.Int) Element {
	r := new(big.Int).Mod(x, Order)
	le, _ := utils.SerializeLE(r, Size)
	var e Element
	if _, err := e.v.SetBytes(le); err != nil {
		panic("field: " + err.Error())
	}
	return e
}

// FromUint64 returns the element with value u.
func FromUint64(u uint64) Element {
	return Create(new(big.Int).SetUint64(u))
}

// FromUniformBytes interprets b as a little-endian integer of any length and reduces it.
func FromUniformBytes(b []byte) Element {
	return Create(utils.DeserializeLE(b))
}

// SetBytes decodes a canonical 32-byte little-endian encoding.
func SetBytes(b []byte) (Element, error) {
	if len(b) != Size {
		return Element{}, ErrInvalidLength
	}
	if utils.DeserializeLE(b).Cmp(Order) >= 0 {
		return Element{}, ErrNonCanonical
	}
	var e Element
	if _, err := e.v.SetBytes(b); err != nil {
		return Element{}, err
	}
	return e, nil
}

// Bytes returns the canonical 32-byte little-endian encoding of e.
func (e Element) Bytes() []byte {
	return e.v.Bytes()
}

// Big returns the value of e in [0, Order).
func (e Element) Big() *big.Int {
	return utils.DeserializeLE(e.v.Bytes())
}

// Ct returns e as a constant-time integer.
func (e Element) Ct() utils.CtInt {
	return utils.CtFromLE(e.v.Bytes())
}

// FromCt converts a constant-time integer already reduced into [0, Order).
func FromCt(x utils.CtInt) Element {
	var e Element
	if _, err := e.v.SetBytes(x.LE(Size)); err != nil {
		panic("field: " + err.Error())
	}
	return e
}

func (e Element) String() string {
	return e.Big().String()
}

// Add returns e + o.
func (e Element) Add(o Element) Element {
	var r Element
	r.v.Add(&e.v, &o.v)
	return r
}

// Sub returns e - o.
func (e Element) Sub(o Element) Element {
	var r Element
	r.v.Subtract(&e.v, &o.v)
	return r
}

// Neg returns -e.
func (e Element) Neg() Element {
	var r Element
	r.v.Negate(&e.v)
	return r
}

// Mul returns e * o.
func (e Element) Mul(o Element) Element {
	var r Element
	r.v.Multiply(&e.v, &o.v)
	return r
}

// Square returns e * e.
func (e Element) Square() Element {
	var r Element
	r.v.Square(&e.v)
	return r
}

// Pow returns e^exp for a non-negative exponent. The exponent is treated as public;
// the base is processed with constant-time multiplications.
func (e Element) Pow(exp *big.Int) Element {
	if exp.Sign() < 0 {
		panic("field: negative exponent")
	}
	r := One()
	for i := exp.BitLen() - 1; i >= 0; i-- {
		r = r.Square()
		if exp.Bit(i) == 1 {
			r = r.Mul(e)
		}
	}
	return r
}

// Inv returns 1/e. It returns ErrZeroInverse if e is zero.
func (e Element) Inv() (Element, error) {
	if e.IsZero() {
		return Element{}, ErrZeroInverse
	}
	var r Element
	r.v.Invert(&e.v)
	return r, nil
}

// Div returns e / o. It returns ErrZeroInverse if o is zero.
func (e Element) Div(o Element) (Element, error) {
	inv, err := o.Inv()
	if err != nil {
		return Element{}, err
	}
	return e.Mul(inv), nil
}

// IsZero reports whether e is 0.
func (e Element) IsZero() bool {
	var zero edfield.Element
	return e.v.Equal(&zero) == 1
}

// Equal reports whether e and o are the same element, in constant time.
func (e Element) Equal(o Element) bool {
	return e.v.Equal(&o.v) == 1
}

// Select returns a if cond is 1 and b if cond is 0, in constant time.
func Select(a, b Element, cond int) Element {
	var r Element
	r.v.Select(&a.v, &b.v, cond)
	return r
}

// Elements converts a slice of integers via Create.
func Elements(xs ...*big.Int) []Element {
	out := make([]Element, len(xs))
	for i, x := range xs {
		out[i] = Create(x)
	}
	return out
}

// Zeros returns n zero elements.
func Zeros(n int) []Element {
	return make([]Element, n)
}
