package l17

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/crypto/commitments"
	"github.com/thresh-proto/tss-protocols/crypto/zkp"
	"github.com/thresh-proto/tss-protocols/curve"
	"github.com/thresh-proto/tss-protocols/verify"
)

type (
	// P2Sign1Ctx is P2's ephemeral signing state after round 1: the
	// fresh nonce keypair plus the blinding used in its commitment.
	P2Sign1Ctx struct {
		Sign     *L17SignP2Ctx
		Hash     *big.Int
		K2       *big.Int
		R2       *crypto.ECPoint
		Blinding *big.Int
	}

	// P2Sign1Msg is P2's round-1 message: a hash commitment to R2.
	P2Sign1Msg struct {
		Commit *big.Int
	}

	// P1Sign1Ctx is P1's ephemeral signing state after round 1.
	P1Sign1Ctx struct {
		Sign     *L17SignP1Ctx
		Hash     *big.Int
		K1       *big.Int
		R1       *crypto.ECPoint
		P2Commit *big.Int
	}

	// P1Sign1Msg is P1's round-1 message: R1 together with a DL-proof of
	// knowledge of k1.
	P1Sign1Msg struct {
		R1    *crypto.ECPoint
		Proof *zkp.DLogProof
	}

	// P2Sign2Msg is P2's round-2 message: the homomorphic partial
	// signature c3 and the decommitment of R2.
	P2Sign2Msg struct {
		C3       *big.Int
		R2       *crypto.ECPoint
		Blinding *big.Int
		Proof    *zkp.DLogProof
	}

	// Signature is a standard ECDSA signature plus the recovery id that
	// lets a verifier reconstruct the public key from (r, s, v, m).
	Signature struct {
		R *big.Int
		S *big.Int
		V byte
	}
)

// P2Sign1 samples P2's ephemeral nonce k2 and commits to R2 = k2*G.
func P2Sign1(ctx *L17SignP2Ctx, hash []byte) (*P2Sign1Ctx, *P2Sign1Msg, error) {
	if ctx == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "p2.sign1: nil sign context")
	}
	q := curve.Secp256k1().Params().N
	k2 := common.GetRandomPositiveInt(q)
	r2 := crypto.ScalarBaseMult(curve.Secp256k1(), k2)
	if isInfinity(r2) {
		return nil, nil, errors.Wrap(common.ErrSpecific, "p2.sign1: R2 is the point at infinity")
	}
	cmt := commitments.NewHashCommitment(r2.X(), r2.Y())
	sctx := &P2Sign1Ctx{
		Sign:     ctx,
		Hash:     new(big.Int).SetBytes(hash),
		K2:       k2,
		R2:       r2,
		Blinding: cmt.D[0],
	}
	return sctx, &P2Sign1Msg{Commit: cmt.C}, nil
}

// P1Sign1 samples P1's ephemeral nonce k1 and proves knowledge of it.
func P1Sign1(ctx *L17SignP1Ctx, m1 *P2Sign1Msg, hash []byte) (*P1Sign1Ctx, *P1Sign1Msg, error) {
	if ctx == nil || m1 == nil || m1.Commit == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "p1.sign1: missing inputs")
	}
	q := curve.Secp256k1().Params().N
	k1 := common.GetRandomPositiveInt(q)
	r1 := crypto.ScalarBaseMult(curve.Secp256k1(), k1)
	if isInfinity(r1) {
		return nil, nil, errors.Wrap(common.ErrSpecific, "p1.sign1: R1 is the point at infinity")
	}
	proof, err := zkp.NewDLogProof(k1, r1)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrSpecific, err.Error())
	}
	sctx := &P1Sign1Ctx{
		Sign:     ctx,
		Hash:     new(big.Int).SetBytes(hash),
		K1:       k1,
		R1:       r1,
		P2Commit: m1.Commit,
	}
	return sctx, &P1Sign1Msg{R1: r1, Proof: proof}, nil
}

// P2Sign2 verifies P1's DL-proof on R1, aggregates the ephemeral point, and
// computes the Paillier-homomorphic partial signature c3. c3 is returned
// only to P1: it is never broadcast or persisted beyond this call.
func P2Sign2(ctx *P2Sign1Ctx, m2 *P1Sign1Msg) (*P2Sign2Msg, error) {
	if ctx == nil || m2 == nil || m2.R1 == nil || m2.Proof == nil {
		return nil, errors.Wrap(common.ErrSerialization, "p2.sign2: missing inputs")
	}
	if !m2.Proof.Verify(m2.R1) {
		return nil, errors.Wrap(common.ErrProof, "p2.sign2: P1's DL-proof over R1 failed")
	}

	q := curve.Secp256k1().Params().N
	modQ := common.ModInt(q)

	r := new(big.Int).Mod(m2.R1.ScalarMult(ctx.K2).X(), q)

	ek := ctx.Sign.Ek
	k2Inv := modQ.ModInverse(ctx.K2)
	v := modQ.Mul(modQ.Mul(k2Inv, r), ctx.Sign.X2)
	encXv, err := ek.HomoMult(v, ctx.Sign.CipherText)
	if err != nil {
		return nil, errors.Wrap(common.ErrSpecific, err.Error())
	}

	// Mask the plaintext statistically with a random multiple of q so
	// that decrypting c3 never leaks more about x1 than the PDL proofs
	// in key generation already bound.
	maskBound := new(big.Int).Mul(q, q)
	rho := common.GetRandomPositiveInt(maskBound)
	mu := new(big.Int).Mul(rho, q)
	mu.Add(mu, modQ.Mul(k2Inv, ctx.Hash))
	encMu, err := ek.Encrypt(mu)
	if err != nil {
		return nil, errors.Wrap(common.ErrSpecific, err.Error())
	}
	c3, err := ek.HomoAdd(encMu, encXv)
	if err != nil {
		return nil, errors.Wrap(common.ErrSpecific, err.Error())
	}

	proof, err := zkp.NewDLogProof(ctx.K2, ctx.R2)
	if err != nil {
		return nil, errors.Wrap(common.ErrSpecific, err.Error())
	}
	return &P2Sign2Msg{C3: c3, R2: ctx.R2, Blinding: ctx.Blinding, Proof: proof}, nil
}

// P1Sign2 re-verifies P2's commitment to R2, decrypts the partial
// signature, assembles (r, s, v), and locally re-verifies the signature
// before releasing it.
func P1Sign2(ctx *P1Sign1Ctx, m3 *P2Sign2Msg) (*Signature, error) {
	if ctx == nil || m3 == nil || m3.R2 == nil {
		return nil, errors.Wrap(common.ErrSerialization, "p1.sign2: missing inputs")
	}

	cmt := commitments.HashCommitDecommit{C: ctx.P2Commit, D: []*big.Int{m3.Blinding, m3.R2.X(), m3.R2.Y()}}
	if !cmt.Verify() {
		return nil, errors.Wrap(common.ErrProof, "p1.sign2: P2's commitment to R2 did not open")
	}
	if m3.Proof == nil || !m3.Proof.Verify(m3.R2) {
		return nil, errors.Wrap(common.ErrProof, "p1.sign2: P2's DL-proof over R2 failed")
	}

	q := curve.Secp256k1().Params().N
	modQ := common.ModInt(q)

	sPrime, err := ctx.Sign.Dk.Decrypt(m3.C3)
	if err != nil {
		return nil, errors.Wrap(common.ErrSpecific, err.Error())
	}
	sPrime.Mod(sPrime, q)
	k1Inv := modQ.ModInverse(ctx.K1)
	s := modQ.Mul(k1Inv, sPrime)

	r2TimesK1 := m3.R2.ScalarMult(ctx.K1)
	r := new(big.Int).Mod(r2TimesK1.X(), q)

	recID := 0
	if r2TimesK1.X().Cmp(q) > 0 {
		recID = 2
	}
	if r2TimesK1.Y().Bit(0) != 0 {
		recID |= 1
	}

	if !verify.ECDSAVerify(ctx.Sign.Q, ctx.Hash, r, s) {
		return nil, errors.Wrap(common.ErrSpecific, "p1.sign2: local signature verification failed")
	}

	return &Signature{R: r, S: s, V: byte(recID)}, nil
}
