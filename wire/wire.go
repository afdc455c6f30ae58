// Package wire provides a canonical serialization: BigInts as their
// minimal big-endian byte representation, points in compressed form,
// ordered sequences as length-prefixed arrays. Encoding is CBOR in
// canonical mode, so two semantically equal values always produce the
// same bytes. Wire mirrors exist for the three persistent contexts
// (l17.L17SignP1Ctx, l17.L17SignP2Ctx, keygen.SignKey); round contexts
// and inter-party messages have no wire form in this package.
package wire

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec"
	"github.com/decred/dcrd/dcrec/edwards/v2"
	"github.com/fxamacker/cbor/v2"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/curve"
)

var encMode = func() cbor.EncMode {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(err) // static options, can never fail
	}
	return mode
}()

// Marshal canonically encodes v. The wire mirror types in this package
// round-trip through Marshal/Unmarshal with semantic equality; types that
// hold *crypto.ECPoint values must be converted to a mirror first, since
// ECPoint's fields are not visible to the encoder.
func Marshal(v interface{}) ([]byte, error) {
	bz, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSerialization, err)
	}
	return bz, nil
}

// Unmarshal decodes bytes produced by Marshal into v.
func Unmarshal(bz []byte, v interface{}) error {
	if err := cbor.Unmarshal(bz, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSerialization, err)
	}
	return nil
}

// CurveKind identifies which curve a wire Point belongs to, since the
// compressed byte layout differs between secp256k1 and ed25519.
type CurveKind uint8

const (
	Secp256k1 CurveKind = iota
	Ed25519
)

// Point is the canonical compressed-point wire representation.
type Point struct {
	Kind CurveKind
	Comp []byte
}

// EncodePoint compresses p for wire transport.
func EncodePoint(kind CurveKind, p *crypto.ECPoint) (Point, error) {
	if p == nil {
		return Point{}, fmt.Errorf("%w: nil point", common.ErrSerialization)
	}
	switch kind {
	case Secp256k1:
		pk := (&btcec.PublicKey{Curve: curve.Secp256k1(), X: p.X(), Y: p.Y()})
		return Point{Kind: kind, Comp: pk.SerializeCompressed()}, nil
	case Ed25519:
		pk := edwards.NewPublicKey(curve.Ed25519(), p.X(), p.Y())
		return Point{Kind: kind, Comp: pk.Serialize()}, nil
	default:
		return Point{}, fmt.Errorf("%w: unknown curve kind %d", common.ErrSerialization, kind)
	}
}

// DecodePoint reconstructs a point from its compressed wire form, checking
// that it lies on the expected curve.
func DecodePoint(pt Point) (*crypto.ECPoint, error) {
	switch pt.Kind {
	case Secp256k1:
		pk, err := btcec.ParsePubKey(pt.Comp, btcec.S256())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrSerialization, err)
		}
		return crypto.NewECPoint(curve.Secp256k1(), pk.X, pk.Y)
	case Ed25519:
		pk, err := edwards.ParsePubKey(pt.Comp, curve.Ed25519())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrSerialization, err)
		}
		return crypto.NewECPoint(curve.Ed25519(), pk.X, pk.Y)
	default:
		return nil, fmt.Errorf("%w: unknown curve kind %d", common.ErrSerialization, pt.Kind)
	}
}

// Int is the canonical minimal big-endian encoding of a *big.Int, with an
// explicit sign so zero and negative values round-trip unambiguously.
type Int struct {
	Neg   bool
	Bytes []byte
}

// EncodeInt converts n to its wire form. A nil n encodes as the zero value.
func EncodeInt(n *big.Int) Int {
	if n == nil {
		return Int{}
	}
	return Int{Neg: n.Sign() < 0, Bytes: new(big.Int).Abs(n).Bytes()}
}

// DecodeInt reconstructs a *big.Int from its wire form.
func DecodeInt(i Int) *big.Int {
	n := new(big.Int).SetBytes(i.Bytes)
	if i.Neg {
		n.Neg(n)
	}
	return n
}

// EncodeInts converts a slice of *big.Int to its wire form, preserving order.
func EncodeInts(ns []*big.Int) []Int {
	out := make([]Int, len(ns))
	for i, n := range ns {
		out[i] = EncodeInt(n)
	}
	return out
}

// DecodeInts is the inverse of EncodeInts.
func DecodeInts(is []Int) []*big.Int {
	out := make([]*big.Int, len(is))
	for i, v := range is {
		out[i] = DecodeInt(v)
	}
	return out
}
