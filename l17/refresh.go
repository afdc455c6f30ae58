package l17

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/curve"
)

// ExtractShare extracts x1 from a P1 persistent sign context. This is a
// deliberate privileged operation used only by key-refresh and
// key-recovery flows; it is never exposed as an ordinary accessor method so
// that reaching for the long-term secret stays visible at call sites.
func ExtractShare(ctx *L17SignP1Ctx) *big.Int {
	if ctx == nil {
		return nil
	}
	return new(big.Int).Set(ctx.X1)
}

// ExtractShareP2 is the P2 counterpart of ExtractShare.
func ExtractShareP2(ctx *L17SignP2Ctx) *big.Int {
	if ctx == nil {
		return nil
	}
	return new(big.Int).Set(ctx.X2)
}

// Refresh re-randomizes an existing key pair of persistent sign contexts,
// returning new contexts and leaving the given ones unchanged: given a
// random blinding factor alpha, it derives (x1*alpha, x2*alpha^-1) from
// (x1, x2) and re-runs the four-round key-generation
// handshake with those fixed shares. The joint public key Q = x1*x2*G is
// unchanged, but every secret artifact (Paillier keypair, ciphertext,
// commitments) is freshly generated, so a party that leaked its old share
// gains nothing from the refreshed contexts.
func Refresh(p1Ctx *L17SignP1Ctx, p2Ctx *L17SignP2Ctx, alpha *big.Int) (*L17SignP1Ctx, *L17SignP2Ctx, error) {
	if p1Ctx == nil || p2Ctx == nil || alpha == nil || alpha.Sign() == 0 {
		return nil, nil, errors.Wrap(common.ErrSpecific, "refresh: missing inputs or zero alpha")
	}
	q := curve.Secp256k1().Params().N
	modQ := common.ModInt(q)

	x1 := ExtractShare(p1Ctx)
	x2 := ExtractShareP2(p2Ctx)

	newX1 := modQ.Mul(x1, alpha)
	alphaInv := modQ.ModInverse(alpha)
	newX2 := modQ.Mul(x2, alphaInv)

	p1GenCtx, msg1, err := P1Gen1WithFixedShare(newX1)
	if err != nil {
		return nil, nil, err
	}
	p2GenCtx, msg2, err := P2Gen1WithFixedShare(newX2, msg1)
	if err != nil {
		return nil, nil, err
	}
	newP1SignCtx, msg3, err := P1Gen2(p1GenCtx, msg2)
	if err != nil {
		return nil, nil, err
	}
	newP2SignCtx, _, err := P2Gen2(p2GenCtx, msg3)
	if err != nil {
		return nil, nil, err
	}
	return newP1SignCtx, newP2SignCtx, nil
}
