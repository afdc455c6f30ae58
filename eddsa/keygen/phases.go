// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package keygen

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
)

// Phase1 samples this party's contribution to the joint key and commits to
// its public point.
func Phase1(params Params, partyIndex int) (*Context1, *Msg1, error) {
	if partyIndex < 1 || partyIndex > params.ShareCount {
		return nil, nil, errors.Wrap(common.ErrSpecific, "keygen.phase1: party index out of range")
	}
	q := curve.Ed25519().Params().N
	u := common.GetRandomPositiveInt(q)
	pub := crypto.ScalarBaseMult(curve.Ed25519(), u)
	cmt := commitments.NewHashCommitment(pub.X(), pub.Y())

	ctx1 := &Context1{Params: params, PartyIndex: partyIndex, U: u, Pub: pub, Blinding: cmt.D[0]}
	return ctx1, &Msg1{Sender: partyIndex, Commit: cmt.C}, nil
}

// Phase2 collects every party's phase-1 commitment and decommits this
// party's own public point.
func Phase2(ctx1 *Context1, msgs1 []*Msg1) (*Context2, *Msg2, error) {
	if ctx1 == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "keygen.phase2: nil context")
	}
	if len(msgs1) != ctx1.Params.ShareCount {
		return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "keygen.phase2: expected %d commitments, got %d", ctx1.Params.ShareCount, len(msgs1))
	}
	sorted := append([]*Msg1(nil), msgs1...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	commits := make([]*big.Int, len(sorted))
	for i, m := range sorted {
		if m.Sender != i+1 {
			return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "keygen.phase2: missing or duplicate sender at position %d", i+1)
		}
		commits[i] = m.Commit
	}

	ctx2 := &Context2{Params: ctx1.Params, PartyIndex: ctx1.PartyIndex, U: ctx1.U, Pub: ctx1.Pub, Commits: commits}

	proof, err := zkp.NewDLogProofForCurve(curve.Ed25519(), ctx1.U, ctx1.Pub)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}
	msg2 := &Msg2{Sender: ctx1.PartyIndex, Pub: ctx1.Pub, Blinding: ctx1.Blinding, Proof: proof}
	return ctx2, msg2, nil
}

// Phase3 re-verifies every commitment and proof, aggregates the joint
// public key, and deals this party's Feldman VSS shares to every party.
func Phase3(ctx2 *Context2, msgs2 []*Msg2) (*Context3, []*Msg3, error) {
	if ctx2 == nil {
		return nil, nil, errors.Wrap(common.ErrSerialization, "keygen.phase3: nil context")
	}
	n := ctx2.Params.ShareCount
	if len(msgs2) != n || len(ctx2.Commits) != n {
		return nil, nil, errors.Wrapf(common.ErrInputsLengthMismatch, "keygen.phase3: expected %d decommitments, got %d", n, len(msgs2))
	}
	sorted := append([]*Msg2(nil), msgs2...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	var verifyErrs *multierror.Error
	pubkeys := make([]*crypto.ECPoint, n)
	for i, m := range sorted {
		if m.Sender != i+1 {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("missing or duplicate sender at position %d", i+1))
			continue
		}
		cmt := commitments.HashCommitDecommit{C: ctx2.Commits[i], D: []*big.Int{m.Blinding, m.Pub.X(), m.Pub.Y()}}
		if !cmt.Verify() {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("party %d: commitment did not open", m.Sender))
			continue
		}
		if m.Proof == nil || !m.Proof.VerifyForCurve(curve.Ed25519(), m.Pub) {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("party %d: DL-proof failed", m.Sender))
			continue
		}
		pubkeys[i] = m.Pub
	}
	if verifyErrs.ErrorOrNil() != nil {
		return nil, nil, errors.Wrap(common.ErrProof, verifyErrs.Error())
	}

	aggPub := pubkeys[0]
	for _, p := range pubkeys[1:] {
		var err error
		aggPub, err = aggPub.Add(p)
		if err != nil {
			return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
		}
	}

	indexes := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		indexes[i] = big.NewInt(int64(i + 1))
	}
	vs, shares, err := vss.Create(curve.Ed25519(), ctx2.Params.Threshold, ctx2.U, indexes)
	if err != nil {
		return nil, nil, errors.Wrap(common.ErrKeyGen, err.Error())
	}

	msgs3 := make([]*Msg3, n)
	for i, share := range shares {
		msgs3[i] = &Msg3{Sender: ctx2.PartyIndex, Receiver: i + 1, Share: share.Share, Vs: vs}
	}

	ctx3 := &Context3{Params: ctx2.Params, PartyIndex: ctx2.PartyIndex, U: ctx2.U, Pubkeys: pubkeys, AggPub: aggPub}
	return ctx3, msgs3, nil
}

// Phase4 verifies every share this party received against its dealer's
// verification vector and sums them into the final signing share.
func Phase4(ctx3 *Context3, msgs3 []*Msg3) (*SignKey, error) {
	if ctx3 == nil {
		return nil, errors.Wrap(common.ErrSerialization, "keygen.phase4: nil context")
	}
	n := ctx3.Params.ShareCount
	if len(msgs3) != n {
		return nil, errors.Wrapf(common.ErrInputsLengthMismatch, "keygen.phase4: expected %d shares, got %d", n, len(msgs3))
	}
	sorted := append([]*Msg3(nil), msgs3...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sender < sorted[j].Sender })

	var verifyErrs *multierror.Error
	q := curve.Ed25519().Params().N
	modQ := common.ModInt(q)
	sum := big.NewInt(0)
	vssSchemes := make([]vss.Vs, n)
	for i, m := range sorted {
		if m.Sender != i+1 || m.Receiver != ctx3.PartyIndex {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("malformed share at position %d", i+1))
			continue
		}
		share := &vss.Share{Threshold: ctx3.Params.Threshold, ID: big.NewInt(int64(ctx3.PartyIndex)), Share: m.Share}
		if !share.Verify(curve.Ed25519(), ctx3.Params.Threshold, m.Vs) {
			verifyErrs = multierror.Append(verifyErrs, errors.Errorf("party %d: VSS share failed verification", m.Sender))
			continue
		}
		vssSchemes[i] = m.Vs
		sum = modQ.Add(sum, m.Share)
	}
	if verifyErrs.ErrorOrNil() != nil {
		return nil, errors.Wrap(common.ErrProof, verifyErrs.Error())
	}

	return &SignKey{
		Params:     ctx3.Params,
		PartyIndex: ctx3.PartyIndex,
		AggPub:     ctx3.AggPub,
		VssSchemes: vssSchemes,
		Share:      sum,
		Pub:        ctx3.Pubkeys[ctx3.PartyIndex-1],
	}, nil
}
