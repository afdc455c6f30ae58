// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package signing

import (
	"math/big"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/crypto/commitments"
	"github.com/thresh-proto/tss-protocols/crypto/vss"
	"github.com/thresh-proto/tss-protocols/crypto/zkp"
	"github.com/thresh-proto/tss-protocols/curve"
	"github.com/thresh-proto/tss-protocols/eddsa/keygen"
)

// sortParties returns an ascending sorted copy of parties.
func sortParties(parties []int) []int {
	sorted := append([]int(nil), parties...)
	sort.Ints(sorted)
	return sorted
}

func validSubsetSize(t, n, got int) bool {
	return got > t && got <= n
}

// Phase1 derives this signer's deterministic nonce and commits to its
// public point.
func Phase1(key *keygen.SignKey, parties []int, message []byte) (*Context1, *Msg1, error) {
	if key == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "sign.phase1: nil key")
	}
	sorted := sortParties(parties)
	found := false
	for _, p := range sorted {
		if p == key.PartyIndex {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, errors.Wrap(common.ErrSpecific, "sign.phase1: signer is not a member of the signing subset")
	}

	k := deterministicNonce(key.Share, message, key.PartyIndex)
	r := crypto.ScalarBaseMult(curve.Ed25519(), k)
	cmt := commitments.NewHashCommitment(r.X(), r.Y())

	ctx1 := &Context1{Key: key, Parties: sorted, Message: message, K: k, R: r, Blinding: cmt.D[0]}
	return ctx1, &Msg1{Sender: key.PartyIndex, Commit: cmt.C}, nil
}

// Phase2 collects every signer's phase-1 commitment and decommits this
// signer's own nonce point.
func Phase2(ctx1 *Context1, msgs1 []*Msg1) (*Context2, *Msg2, error) {
	if ctx1 == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "sign.phase2: nil context")
	}
	n := len(ctx1.Parties)
	if len(msgs1) != n {
		return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "sign.phase2: expected %d commitments, got %d", n, len(msgs1))
	}
	sorted := append([]*Msg1(nil), msgs1...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	commits := make([]*big.Int, n)
	for i, m := range sorted {
		if m.Sender != ctx1.Parties[i] {
			return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "sign.phase2: unexpected sender set")
		}
		commits[i] = m.Commit
	}

	ctx2 := &Context2{Key: ctx1.Key, Parties: ctx1.Parties, Message: ctx1.Message, K: ctx1.K, R: ctx1.R, Commits: commits}

	proof, err := zkp.NewDLogProofForCurve(curve.Ed25519(), ctx1.K, ctx1.R)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}
	msg2 := &Msg2{Sender: ctx1.Key.PartyIndex, R: ctx1.R, Blinding: ctx1.Blinding, Proof: proof}
	return ctx2, msg2, nil
}

// Phase3 re-verifies every commitment and proof, aggregates the joint
// nonce point, and deals this signer's nonce as a fresh Feldman VSS
// sharing over the signing subset.
func Phase3(ctx2 *Context2, msgs2 []*Msg2) (*Context3, []*Msg3, error) {
	if ctx2 == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "sign.phase3: nil context")
	}
	t, n := ctx2.Key.Params.Threshold, len(ctx2.Parties)
	if !validSubsetSize(t, n, len(msgs2)) || !validSubsetSize(t, n, len(ctx2.Commits)) {
		return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "sign.phase3: signing subset must have more than %d and at most %d members, got %d", t, n, len(msgs2))
	}
	sorted := append([]*Msg2(nil), msgs2...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	var verifyErrs *multierror.Error
	rs := make([]*crypto.ECPoint, 0, len(sorted))
	for i, m := range sorted {
		if m.Sender != ctx2.Parties[i] {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("unexpected sender set at position %d", i))
			continue
		}
		cmt := commitments.HashCommitDecommit{C: ctx2.Commits[i], D: []*big.Int{m.Blinding, m.R.X(), m.R.Y()}}
		if !cmt.Verify() {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("party %d: commitment did not open", m.Sender))
			continue
		}
		if m.Proof == nil || !m.Proof.VerifyForCurve(curve.Ed25519(), m.R) {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("party %d: DL-proof failed", m.Sender))
			continue
		}
		rs = append(rs, m.R)
	}
	if verifyErrs.ErrorOrNil() != nil {
		return nil, nil, errors.Wrap(common.ErrProof, verifyErrs.Error())
	}

	aggR := rs[0]
	for _, p := range rs[1:] {
		var err error
		aggR, err = aggR.Add(p)
		if err != nil {
			return nil, nil, errors.Wrap(common.ErrSpecific, err.Error())
		}
	}

	indexes := make([]*big.Int, len(ctx2.Parties))
	for i, p := range ctx2.Parties {
		indexes[i] = big.NewInt(int64(p))
	}
	vs, shares, err := vss.Create(curve.Ed25519(), t, ctx2.K, indexes)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}

	msgs3 := make([]*Msg3, len(shares))
	for i, share := range shares {
		msgs3[i] = &Msg3{Sender: ctx2.Key.PartyIndex, Receiver: ctx2.Parties[i], Share: share.Share, Vs: vs}
	}

	ctx3 := &Context3{Key: ctx2.Key, Parties: ctx2.Parties, Message: ctx2.Message, Rs: rs, AggR: aggR}
	return ctx3, msgs3, nil
}

// Phase4 verifies every nonce share this signer received, sums them into
// its share of the combined nonce, and computes its partial signature.
func Phase4(ctx3 *Context3, msgs3 []*Msg3) (*Context4, *Msg4, error) {
	if ctx3 == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "sign.phase4: nil context")
	}
	t, n := ctx3.Key.Params.Threshold, len(ctx3.Parties)
	if !validSubsetSize(t, n, len(msgs3)) {
		return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "sign.phase4: signing subset must have more than %d and at most %d members, got %d", t, n, len(msgs3))
	}
	sorted := append([]*Msg3(nil), msgs3...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	var verifyErrs *multierror.Error
	q := curve.Ed25519().Params().N
	modQ := common.ModInt(q)
	nonceShare := big.NewInt(0)
	nonceVss := make([]vss.Vs, 0, len(sorted))
	for i, m := range sorted {
		if m.Sender != ctx3.Parties[i] || m.Receiver != ctx3.Key.PartyIndex {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("malformed nonce share at position %d", i))
			continue
		}
		share := &vss.Share{Threshold: t, ID: big.NewInt(int64(ctx3.Key.PartyIndex)), Share: m.Share}
		if !share.Verify(curve.Ed25519(), t, m.Vs) {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("party %d: nonce VSS share failed verification", m.Sender))
			continue
		}
		nonceVss = append(nonceVss, m.Vs)
		nonceShare = modQ.Add(nonceShare, m.Share)
	}
	if verifyErrs.ErrorOrNil() != nil {
		return nil, nil, errors.Wrap(common.ErrProof, verifyErrs.Error())
	}

	e := eddsaChallenge(ctx3.AggR, ctx3.Key.AggPub, ctx3.Message)
	s := modQ.Add(nonceShare, modQ.Mul(e, ctx3.Key.Share))

	ctx4 := &Context4{Key: ctx3.Key, Parties: ctx3.Parties, Message: ctx3.Message, AggR: ctx3.AggR, NonceVss: nonceVss}
	return ctx4, &Msg4{Sender: ctx3.Key.PartyIndex, S: s}, nil
}

// Phase5 combines every signer's partial signature with Lagrange weights
// evaluated at the signing subset's party indices, and verifies the result
// against the standard Ed25519 equation before releasing it.
func Phase5(ctx4 *Context4, msgs4 []*Msg4) (*Signature, error) {
	if ctx4 == nil {
		return nil, errors.Wrap(common.ErrSerialization, "sign.phase5: nil context")
	}
	t, n := ctx4.Key.Params.Threshold, len(ctx4.Parties)
	if !validSubsetSize(t, n, len(msgs4)) {
		return nil, errors.Wrapf(common.ErrInputsLengthMismatch, "sign.phase5: signing subset must have more than %d and at most %d members, got %d", t, n, len(msgs4))
	}
	sorted := append([]*Msg4(nil), msgs4...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	ids := make([]*big.Int, len(sorted))
	for i, m := range sorted {
		if m.Sender != ctx4.Parties[i] {
			return nil, errors.Wrap(common.ErrInputsLengthMismatch, "sign.phase5: unexpected sender set")
		}
		ids[i] = big.NewInt(int64(m.Sender))
	}

	e := eddsaChallenge(ctx4.AggR, ctx4.Key.AggPub, ctx4.Message)
	for _, m := range sorted {
		if err := checkPartialSignature(ctx4, m, e); err != nil {
			return nil, errors.Wrapf(common.ErrProof, "sign.phase5: party %d: %s", m.Sender, err.Error())
		}
	}

	q := curve.Ed25519().Params().N
	modQ := common.ModInt(q)
	s := big.NewInt(0)
	for i, m := range sorted {
		lambda := vss.LagrangeCoefficient(curve.Ed25519(), ids, i)
		s = modQ.Add(s, modQ.Mul(lambda, m.S))
	}

	sig := &Signature{R: ctx4.AggR, S: s}
	if !verifySignature(ctx4.Key.AggPub, ctx4.Message, sig) {
		return nil, errors.Wrap(common.ErrSpecific, "sign.phase5: combined signature failed local verification")
	}
	return sig, nil
}

// checkPartialSignature verifies that a single signer's partial signature
// s_i is consistent with the combined VSS of signing keys and nonces at
// that signer's index: s_i*G must equal the sum of every nonce dealer's
// verification vector evaluated at i, plus e times the sum of every
// long-term key dealer's verification vector evaluated at the same i.
func checkPartialSignature(ctx4 *Context4, m *Msg4, e *big.Int) error {
	id := big.NewInt(int64(m.Sender))
	t := ctx4.Key.Params.Threshold

	var nonceCommit *crypto.ECPoint
	for _, vs := range ctx4.NonceVss {
		c, err := vs.CommitmentAt(curve.Ed25519(), t, id)
		if err != nil {
			return err
		}
		if nonceCommit == nil {
			nonceCommit = c
			continue
		}
		nonceCommit, err = nonceCommit.Add(c)
		if err != nil {
			return err
		}
	}

	var keyCommit *crypto.ECPoint
	for _, vs := range ctx4.Key.VssSchemes {
		c, err := vs.CommitmentAt(curve.Ed25519(), t, id)
		if err != nil {
			return err
		}
		if keyCommit == nil {
			keyCommit = c
			continue
		}
		keyCommit, err = keyCommit.Add(c)
		if err != nil {
			return err
		}
	}

	expected, err := nonceCommit.Add(keyCommit.ScalarMult(e))
	if err != nil {
		return err
	}
	actual := crypto.ScalarBaseMult(curve.Ed25519(), m.S)
	if !actual.Equals(expected) {
		return errors.New("partial signature does not match combined key/nonce commitment")
	}
	return nil
}

// verifySignature checks s*B == R + e*A, the standard Ed25519 equation.
func verifySignature(pub *crypto.ECPoint, message []byte, sig *Signature) bool {
	if pub == nil || sig == nil || sig.R == nil || sig.S == nil {
		return false
	}
	e := eddsaChallenge(sig.R, pub, message)
	lhs := crypto.ScalarBaseMult(curve.Ed25519(), sig.S)
	eA := pub.ScalarMult(e)
	rhs, err := sig.R.Add(eA)
	if err != nil {
		return false
	}
	return lhs.Equals(rhs)
}
