package wire

import (
	"github.com/thresh-proto/tss-protocols/crypto/paillier"
	"github.com/thresh-proto/tss-protocols/l17"
)

// L17SignP1CtxWire is the CBOR-safe mirror of l17.L17SignP1Ctx: every
// *crypto.ECPoint is replaced by its compressed Point form, since ECPoint's
// fields are unexported and cbor cannot see into them directly.
type L17SignP1CtxWire struct {
	Q, Q1, Q2 Point
	X1        Int
	DkN       Int
	DkLambdaN Int
	DkPhiN    Int
	R         Int
}

// EncodeL17SignP1Ctx converts a P1 sign context to its wire form.
func EncodeL17SignP1Ctx(ctx *l17.L17SignP1Ctx) (L17SignP1CtxWire, error) {
	q, err := EncodePoint(Secp256k1, ctx.Q)
	if err != nil {
		return L17SignP1CtxWire{}, err
	}
	q1, err := EncodePoint(Secp256k1, ctx.Q1)
	if err != nil {
		return L17SignP1CtxWire{}, err
	}
	q2, err := EncodePoint(Secp256k1, ctx.Q2)
	if err != nil {
		return L17SignP1CtxWire{}, err
	}
	return L17SignP1CtxWire{
		Q:         q,
		Q1:        q1,
		Q2:        q2,
		X1:        EncodeInt(ctx.X1),
		DkN:       EncodeInt(ctx.Dk.N),
		DkLambdaN: EncodeInt(ctx.Dk.LambdaN),
		DkPhiN:    EncodeInt(ctx.Dk.PhiN),
		R:         EncodeInt(ctx.R),
	}, nil
}

// DecodeL17SignP1Ctx is the inverse of EncodeL17SignP1Ctx.
func DecodeL17SignP1Ctx(w L17SignP1CtxWire) (*l17.L17SignP1Ctx, error) {
	q, err := DecodePoint(w.Q)
	if err != nil {
		return nil, err
	}
	q1, err := DecodePoint(w.Q1)
	if err != nil {
		return nil, err
	}
	q2, err := DecodePoint(w.Q2)
	if err != nil {
		return nil, err
	}
	return &l17.L17SignP1Ctx{
		Q:  q,
		Q1: q1,
		Q2: q2,
		X1: DecodeInt(w.X1),
		Dk: &paillier.PrivateKey{
			PublicKey: paillier.PublicKey{N: DecodeInt(w.DkN)},
			LambdaN:   DecodeInt(w.DkLambdaN),
			PhiN:      DecodeInt(w.DkPhiN),
		},
		R: DecodeInt(w.R),
	}, nil
}

// L17SignP2CtxWire is the CBOR-safe mirror of l17.L17SignP2Ctx.
type L17SignP2CtxWire struct {
	Q, Q1, Q2  Point
	X2         Int
	EkN        Int
	CipherText Int
}

// EncodeL17SignP2Ctx converts a P2 sign context to its wire form.
func EncodeL17SignP2Ctx(ctx *l17.L17SignP2Ctx) (L17SignP2CtxWire, error) {
	q, err := EncodePoint(Secp256k1, ctx.Q)
	if err != nil {
		return L17SignP2CtxWire{}, err
	}
	q1, err := EncodePoint(Secp256k1, ctx.Q1)
	if err != nil {
		return L17SignP2CtxWire{}, err
	}
	q2, err := EncodePoint(Secp256k1, ctx.Q2)
	if err != nil {
		return L17SignP2CtxWire{}, err
	}
	return L17SignP2CtxWire{
		Q:          q,
		Q1:         q1,
		Q2:         q2,
		X2:         EncodeInt(ctx.X2),
		EkN:        EncodeInt(ctx.Ek.N),
		CipherText: EncodeInt(ctx.CipherText),
	}, nil
}

// DecodeL17SignP2Ctx is the inverse of EncodeL17SignP2Ctx.
func DecodeL17SignP2Ctx(w L17SignP2CtxWire) (*l17.L17SignP2Ctx, error) {
	q, err := DecodePoint(w.Q)
	if err != nil {
		return nil, err
	}
	q1, err := DecodePoint(w.Q1)
	if err != nil {
		return nil, err
	}
	q2, err := DecodePoint(w.Q2)
	if err != nil {
		return nil, err
	}
	return &l17.L17SignP2Ctx{
		Q:          q,
		Q1:         q1,
		Q2:         q2,
		X2:         DecodeInt(w.X2),
		Ek:         &paillier.PublicKey{N: DecodeInt(w.EkN)},
		CipherText: DecodeInt(w.CipherText),
	}, nil
}
