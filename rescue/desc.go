// Package rescue implements the Rescue permutation over GF(2^255-19) in both of its
// modes: keyed (cipher mode), where the key is expanded into per-round subkeys, and
// unkeyed (hash mode), where the round constants are the subkeys.
package rescue

import (
	"fmt"
	"math/big"
	"sync"

	arcium "github.com/quiknode-labs/arcium-election"
	"github.com/quiknode-labs/arcium-election/core"
	"github.com/quiknode-labs/arcium-election/field"
	"github.com/quiknode-labs/arcium-election/matrix"
)

// Desc is an immutable Rescue instance. It is safe for concurrent use.
type Desc struct {
	mode arcium.Mode
	*params
	roundKeys []*matrix.Matrix
}

// params is the key-independent part of a Desc, shared between instances of the same
// mode and width.
type params struct {
	m              int
	alpha          *big.Int
	alphaInverse   *big.Int
	nRounds        int
	mds            *matrix.Matrix
	mdsInverse     *matrix.Matrix
	roundConstants []*matrix.Matrix
}

type cacheKey struct {
	hash        bool
	m, capacity int
}

type cacheEntry struct {
	once sync.Once
	p    *params
	err  error
}

var paramCache = struct {
	sync.Mutex
	entries map[cacheKey]*cacheEntry
}{entries: make(map[cacheKey]*cacheEntry)}

// NewDesc builds a Rescue instance for the mode. Parameters and round constants are
// derived once per (mode, width) and reused; in cipher mode only the key schedule runs
// per call.
func NewDesc(mode arcium.Mode) (*Desc, error) {
	p, err := loadParams(mode)
	if err != nil {
		return nil, err
	}
	mode = copyMode(mode)
	d := &Desc{mode: mode, params: p}

	switch md := mode.(type) {
	case arcium.CipherMode:
		key := matrix.Vector(md.Key)
		states, err := permutation(mode, p.alpha, p.alphaInverse, p.mds, p.roundConstants, key)
		if err != nil {
			return nil, fmt.Errorf("rescue: key schedule: %w", err)
		}
		d.roundKeys = states
	case arcium.HashMode:
		d.roundKeys = p.roundConstants
	default:
		panic(fmt.Sprintf("rescue: unknown mode %T", mode))
	}
	return d, nil
}

func loadParams(mode arcium.Mode) (*params, error) {
	var key cacheKey
	switch md := mode.(type) {
	case arcium.CipherMode:
		key = cacheKey{m: md.StateSize()}
	case arcium.HashMode:
		key = cacheKey{hash: true, m: md.M, capacity: md.Capacity}
	default:
		panic(fmt.Sprintf("rescue: unknown mode %T", mode))
	}

	paramCache.Lock()
	e, ok := paramCache.entries[key]
	if !ok {
		e = &cacheEntry{}
		paramCache.entries[key] = e
	}
	paramCache.Unlock()

	e.once.Do(func() { e.p, e.err = deriveParams(mode) })
	return e.p, e.err
}

func deriveParams(mode arcium.Mode) (*params, error) {
	if err := core.ValidateParams(field.Order, mode); err != nil {
		return nil, err
	}
	alpha, alphaInverse, err := core.GetAlphaAndInverse(field.Order)
	if err != nil {
		return nil, err
	}
	nRounds, err := core.NumRounds(mode, field.Order, alpha)
	if err != nil {
		return nil, err
	}
	m := mode.StateSize()
	mds, mdsInverse, err := core.MDS(m)
	if err != nil {
		return nil, err
	}
	rc, err := sampleConstants(mode, nRounds)
	if err != nil {
		return nil, err
	}
	return &params{
		m:              m,
		alpha:          alpha,
		alphaInverse:   alphaInverse,
		nRounds:        nRounds,
		mds:            mds,
		mdsInverse:     mdsInverse,
		roundConstants: rc,
	}, nil
}

// Mode returns the mode the instance was built for. A cipher-mode key is returned as
// a copy.
func (d *Desc) Mode() arcium.Mode { return copyMode(d.mode) }

// copyMode detaches a cipher-mode key from the caller's slice.
func copyMode(mode arcium.Mode) arcium.Mode {
	if md, ok := mode.(arcium.CipherMode); ok {
		return arcium.CipherMode{Key: append([]field.Element(nil), md.Key...)}
	}
	return mode
}

// M returns the state width.
func (d *Desc) M() int { return d.m }

// Alpha returns the S-box exponent.
func (d *Desc) Alpha() *big.Int { return new(big.Int).Set(d.alpha) }

// AlphaInverse returns the inverse S-box exponent, alpha^-1 mod p-1.
func (d *Desc) AlphaInverse() *big.Int { return new(big.Int).Set(d.alphaInverse) }

// NRounds returns the number of double rounds.
func (d *Desc) NRounds() int { return d.nRounds }

// MDS returns the linear layer.
func (d *Desc) MDS() *matrix.Matrix { return d.mds }

// MDSInverse returns the inverse of the linear layer.
func (d *Desc) MDSInverse() *matrix.Matrix { return d.mdsInverse }

// RoundKeys returns the 2*NRounds()+1 subkeys, each an m x 1 vector.
func (d *Desc) RoundKeys() []*matrix.Matrix {
	return append([]*matrix.Matrix(nil), d.roundKeys...)
}

// Permute applies the permutation to an m x 1 state.
func (d *Desc) Permute(state *matrix.Matrix) (*matrix.Matrix, error) {
	states, err := permutation(d.mode, d.alpha, d.alphaInverse, d.mds, d.roundKeys, state)
	if err != nil {
		return nil, err
	}
	return states[len(states)-1], nil
}

// PermuteInverse inverts Permute.
func (d *Desc) PermuteInverse(state *matrix.Matrix) (*matrix.Matrix, error) {
	states, err := permutationInverse(d.mode, d.alpha, d.alphaInverse, d.mdsInverse, d.roundKeys, state)
	if err != nil {
		return nil, err
	}
	return states[len(states)-1], nil
}
