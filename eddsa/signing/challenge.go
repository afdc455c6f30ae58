// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package signing

import (
	"crypto/sha512"
	"math/big"

	"github.com/decred/dcrd/dcrec/edwards/v2"

	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/curve"
)

// encodePoint returns the standard 32-byte little-endian compressed
// encoding of an Ed25519 point.
func encodePoint(p *crypto.ECPoint) []byte {
	return edwards.NewPublicKey(curve.Ed25519(), p.X(), p.Y()).Serialize()
}

// eddsaChallenge computes the RFC 8032 Ed25519 challenge scalar
// e = SHA-512(R || A || M) mod L, reduced into the scalar field.
func eddsaChallenge(r, pub *crypto.ECPoint, message []byte) *big.Int {
	h := sha512.New()
	h.Write(encodePoint(r))
	h.Write(encodePoint(pub))
	h.Write(message)
	digest := h.Sum(nil)

	q := curve.Ed25519().Params().N
	e := new(big.Int).SetBytes(reverse(digest))
	return e.Mod(e, q)
}

// reverse returns a little-endian-to-big-endian reversed copy of bz, since
// RFC 8032 treats the hash digest as a little-endian integer.
func reverse(bz []byte) []byte {
	out := make([]byte, len(bz))
	for i, b := range bz {
		out[len(bz)-1-i] = b
	}
	return out
}
