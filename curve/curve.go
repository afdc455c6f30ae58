// Package curve exposes the two elliptic curves used by the threshold
// signature protocols in this module as fixed accessor functions rather
// than a mutable global registry: Lindell-2017 ECDSA runs over secp256k1,
// threshold EdDSA runs over the twisted Edwards curve used by Ed25519.
package curve

import (
	"crypto/elliptic"

	"github.com/btcsuite/btcd/btcec"
	"github.com/decred/dcrd/dcrec/edwards/v2"
)

// Secp256k1 returns the curve used by Lindell-2017 two-party ECDSA.
func Secp256k1() elliptic.Curve {
	return btcec.S256()
}

// Ed25519 returns the twisted Edwards curve used by threshold EdDSA.
func Ed25519() elliptic.Curve {
	return edwards.Edwards()
}
