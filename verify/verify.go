// Package verify holds the ECDSA verification equation and Ethereum-style
// message hashing used to independently check the signatures produced by
// l17.P1Sign2 (and, for EdDSA, to cross-check eddsa/signing's output via the
// standard Ed25519 equation already run internally by that package).
package verify

import (
	"crypto/sha512"
	"math/big"

	"github.com/decred/dcrd/dcrec/edwards/v2"
	"golang.org/x/crypto/sha3"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/curve"
)

// ethereumPrefix is the fixed 26-byte personal-message prefix Ethereum
// wallets prepend before hashing, so a signature over this hash can never
// also be a valid signature over a raw transaction.
const ethereumPrefix = "\x19Ethereum Signed Message:\n"

// ECDSAVerify checks that (r, s) is a valid ECDSA signature over secp256k1
// for message digest m under public key Y: u1 = m*s^-1, u2 = r*s^-1, and
// r must equal the x-coordinate of u1*G + u2*Y mod q.
func ECDSAVerify(y *crypto.ECPoint, m, r, s *big.Int) bool {
	if y == nil || m == nil || r == nil || s == nil {
		return false
	}
	q := curve.Secp256k1().Params().N
	if r.Sign() <= 0 || r.Cmp(q) >= 0 || s.Sign() <= 0 || s.Cmp(q) >= 0 {
		return false
	}
	modQ := common.ModInt(q)
	sInv := modQ.ModInverse(s)
	u1 := modQ.Mul(m, sInv)
	u2 := modQ.Mul(r, sInv)

	gu1 := crypto.ScalarBaseMult(curve.Secp256k1(), u1)
	yu2 := y.ScalarMult(u2)
	sum, err := gu1.Add(yu2)
	if err != nil {
		return false
	}
	rx := new(big.Int).Mod(sum.X(), q)
	return rx.Cmp(r) == 0
}

// Keccak256 hashes msg with the legacy Keccak-256 permutation, not the
// later-standardized SHA3-256; this is the function Ethereum itself uses.
func Keccak256(msg []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(msg)
	return h.Sum(nil)
}

// EthereumHash computes Keccak-256("\x19Ethereum Signed Message:\n" ||
// len(msg) || msg), where len(msg) is the decimal ASCII encoding of the
// payload's byte length. This is the digest Ethereum wallets sign for
// off-chain "personal" messages.
func EthereumHash(msg []byte) []byte {
	prefixed := make([]byte, 0, len(ethereumPrefix)+20+len(msg))
	prefixed = append(prefixed, ethereumPrefix...)
	prefixed = append(prefixed, []byte(itoa(len(msg)))...)
	prefixed = append(prefixed, msg...)
	return Keccak256(prefixed)
}

func itoa(n int) string {
	return big.NewInt(int64(n)).String()
}

// EdDSAVerify independently checks a combined threshold EdDSA signature
// (r, s) over message under public key pub, using the standard Ed25519
// equation s*B = R + H(R||A||M)*A. It is the EdDSA counterpart to
// ECDSAVerify, letting a caller re-check eddsa/signing's output without
// going through that package.
func EdDSAVerify(pub *crypto.ECPoint, message []byte, r *crypto.ECPoint, s *big.Int) bool {
	if pub == nil || r == nil || s == nil {
		return false
	}
	q := curve.Ed25519().Params().N
	if s.Sign() < 0 || s.Cmp(q) >= 0 {
		return false
	}

	encode := func(p *crypto.ECPoint) []byte {
		return edwards.NewPublicKey(curve.Ed25519(), p.X(), p.Y()).Serialize()
	}
	h := sha512.New()
	h.Write(encode(r))
	h.Write(encode(pub))
	h.Write(message)
	digest := h.Sum(nil)

	le := make([]byte, len(digest))
	for i, b := range digest {
		le[len(digest)-1-i] = b
	}
	e := new(big.Int).Mod(new(big.Int).SetBytes(le), q)

	lhs := crypto.ScalarBaseMult(curve.Ed25519(), s)
	eA := pub.ScalarMult(e)
	rhs, err := r.Add(eA)
	if err != nil {
		return false
	}
	return lhs.Equals(rhs)
}
