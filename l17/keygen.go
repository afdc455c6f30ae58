package l17

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/crypto/commitments"
	"github.com/thresh-proto/tss-protocols/crypto/dlnproof"
	"github.com/thresh-proto/tss-protocols/crypto/safeparameter"
	"github.com/thresh-proto/tss-protocols/crypto/zkp"
	"github.com/thresh-proto/tss-protocols/curve"
)

func generator() *crypto.ECPoint {
	p := curve.Secp256k1().Params()
	return crypto.NewECPointNoCurveCheck(curve.Secp256k1(), p.Gx, p.Gy)
}

func isInfinity(p *crypto.ECPoint) bool {
	return p == nil || (p.X().Sign() == 0 && p.Y().Sign() == 0)
}

// P1Gen1 samples P1's share x1, commits to Q1 = x1*G, and returns the
// context P1 must present to P1Gen2 along with the broadcast commitment.
func P1Gen1() (*P1Gen1Ctx, *P1Msg1, error) {
	q := curve.Secp256k1().Params().N
	x1 := common.GetRandomPositiveInt(q)
	return p1Gen1WithShare(x1)
}

// P1Gen1WithFixedShare is the P1Gen1 variant used by key-refresh and
// key-recovery flows, which must reuse a previously derived share rather
// than sample a fresh one.
func P1Gen1WithFixedShare(x1 *big.Int) (*P1Gen1Ctx, *P1Msg1, error) {
	return p1Gen1WithShare(x1)
}

func p1Gen1WithShare(x1 *big.Int) (*P1Gen1Ctx, *P1Msg1, error) {
	if x1 == nil || x1.Sign() == 0 {
		return nil, nil, errors.Wrap(common.ErrSpecific, "p1.gen1: share must be non-zero")
	}
	q1 := crypto.ScalarBaseMult(curve.Secp256k1(), x1)
	if isInfinity(q1) {
		return nil, nil, errors.Wrap(common.ErrSpecific, "p1.gen1: Q1 is the point at infinity")
	}
	cmt := commitments.NewHashCommitment(q1.X(), q1.Y())
	ctx := &P1Gen1Ctx{X1: x1, Q1: q1, Blinding: cmt.D[0]}
	return ctx, &P1Msg1{C: cmt.C}, nil
}

// P2Gen1 samples P2's share x2, proves knowledge of its discrete log, and
// persists P1's commitment for re-verification in P2Gen2.
func P2Gen1(m1 *P1Msg1) (*P2Gen1Ctx, *P2Msg1, error) {
	q := curve.Secp256k1().Params().N
	x2 := common.GetRandomPositiveInt(q)
	return p2Gen1WithShare(x2, m1)
}

// P2Gen1WithFixedShare is the symmetric fixed-share variant of P2Gen1.
func P2Gen1WithFixedShare(x2 *big.Int, m1 *P1Msg1) (*P2Gen1Ctx, *P2Msg1, error) {
	return p2Gen1WithShare(x2, m1)
}

func p2Gen1WithShare(x2 *big.Int, m1 *P1Msg1) (*P2Gen1Ctx, *P2Msg1, error) {
	if m1 == nil || m1.C == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "p2.gen1: missing P1 commitment")
	}
	if x2 == nil || x2.Sign() == 0 {
		return nil, nil, errors.Wrap(common.ErrSpecific, "p2.gen1: share must be non-zero")
	}
	q2 := crypto.ScalarBaseMult(curve.Secp256k1(), x2)
	if isInfinity(q2) {
		return nil, nil, errors.Wrap(common.ErrSpecific, "p2.gen1: Q2 is the point at infinity")
	}
	proof, err := zkp.NewDLogProof(x2, q2)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}
	ctx := &P2Gen1Ctx{X2: x2, Q2: q2, P1Commit: m1.C}
	return ctx, &P2Msg1{Q2: q2, Proof: proof}, nil
}

// P1Gen2 verifies P2's DL-proof, generates a fresh Paillier keypair and the
// PDL-with-slack / composite-DL proofs binding it to Q1, and returns P1's
// persistent sign context together with the round-2 message.
func P1Gen2(ctx *P1Gen1Ctx, m2 *P2Msg1) (*L17SignP1Ctx, *P1Msg2, error) {
	if ctx == nil || m2 == nil || m2.Q2 == nil || m2.Proof == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "p1.gen2: missing inputs")
	}
	if !m2.Proof.Verify(m2.Q2) {
		return nil, nil, errors.Wrap(common.ErrProof, "p1.gen2: P2's DL-proof over Q2 failed")
	}

	preParams, err := safeparameter.GeneratePreParams(context.Background())
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}
	cipherText, r, err := preParams.PaillierSK.PublicKey.EncryptAndReturnRandomness(ctx.X1)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}

	dlProof, err := zkp.NewDLogProof(ctx.X1, ctx.Q1)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}

	correctKeyKi := common.MustGetRandomInt(256)
	correctKeyPf := preParams.PaillierSK.Proof(correctKeyKi, ctx.Q1)

	pdlSt := zkp.PDLwSlackStatement{
		CipherText: cipherText,
		PK:         &preParams.PaillierSK.PublicKey,
		Q:          ctx.Q1,
		G:          generator(),
		H1:         preParams.H1i,
		H2:         preParams.H2i,
		NTilde:     preParams.NTildei,
	}
	pdlWit := zkp.PDLwSlackWitness{X: ctx.X1, R: r, SK: preParams.PaillierSK}
	pdlProof := zkp.NewPDLwSlackProof(pdlWit, pdlSt)

	compositeDL := dlnproof.NewDLNProof(preParams.H1i, preParams.H2i, preParams.Alpha, preParams.P, preParams.Q, preParams.NTildei)

	q := m2.Q2.ScalarMult(ctx.X1)

	signCtx := &L17SignP1Ctx{
		Q:  q,
		Q1: ctx.Q1,
		Q2: m2.Q2,
		X1: ctx.X1,
		Dk: preParams.PaillierSK,
		R:  r,
	}
	msg := &P1Msg2{
		Q1:           ctx.Q1,
		Blinding:     ctx.Blinding,
		DLProof:      dlProof,
		CorrectKeyKi: correctKeyKi,
		CorrectKeyPf: correctKeyPf,
		PDLStatement: pdlSt,
		PDLProof:     pdlProof,
		CompositeDL:  compositeDL,
		Ek:           &preParams.PaillierSK.PublicKey,
		CipherText:   cipherText,
	}
	return signCtx, msg, nil
}

// P2Gen2 re-checks P1's commitment, verifies the Paillier correct-key proof
// and the PDL-with-slack / composite-DL proofs, and returns P2's persistent
// sign context together with the joint public key Q.
func P2Gen2(ctx *P2Gen1Ctx, m3 *P1Msg2) (*L17SignP2Ctx, *crypto.ECPoint, error) {
	if ctx == nil || m3 == nil || m3.Q1 == nil || m3.Ek == nil || m3.CipherText == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "p2.gen2: missing inputs")
	}

	cmt := commitments.HashCommitDecommit{C: ctx.P1Commit, D: []*big.Int{m3.Blinding, m3.Q1.X(), m3.Q1.Y()}}
	if !cmt.Verify() {
		return nil, nil, errors.Wrap(common.ErrProof, "p2.gen2: P1's commitment to Q1 did not open")
	}
	if m3.DLProof == nil || !m3.DLProof.Verify(m3.Q1) {
		return nil, nil, errors.Wrap(common.ErrProof, "p2.gen2: P1's DL-proof over Q1 failed")
	}

	// A failed Paillier correct-key proof or PDL proof is fatal: the
	// protocol must abort rather than continue with an unverified key.
	okCorrectKey, err := m3.CorrectKeyPf.Verify(m3.Ek.N, m3.CorrectKeyKi, m3.Q1)
	if err != nil || !okCorrectKey {
		return nil, nil, errors.Wrap(common.ErrProof, "p2.gen2: Paillier correct-key proof failed")
	}

	if m3.PDLStatement.PK.N.Cmp(m3.Ek.N) != 0 || m3.PDLStatement.CipherText.Cmp(m3.CipherText) != 0 || !m3.PDLStatement.Q.Equals(m3.Q1) {
		return nil, nil, errors.Wrap(common.ErrProof, "p2.gen2: PDL statement does not bind the declared ek/ciphertext/Q1")
	}
	if !m3.PDLProof.Verify(m3.PDLStatement) {
		return nil, nil, errors.Wrap(common.ErrProof, "p2.gen2: PDL-with-slack proof failed")
	}
	if m3.CompositeDL == nil || !m3.CompositeDL.Verify(m3.PDLStatement.H1, m3.PDLStatement.H2, m3.PDLStatement.NTilde) {
		return nil, nil, errors.Wrap(common.ErrProof, "p2.gen2: composite discrete-log proof failed")
	}

	q := m3.Q1.ScalarMult(ctx.X2)
	signCtx := &L17SignP2Ctx{
		Q:          q,
		Q1:         m3.Q1,
		Q2:         ctx.Q2,
		X2:         ctx.X2,
		Ek:         m3.Ek,
		CipherText: m3.CipherText,
	}
	return signCtx, q, nil
}
