// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package zkp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto"
	. "github.com/thresh-proto/tss-protocols/crypto/zkp"
	"github.com/thresh-proto/tss-protocols/curve"
)

func TestSchnorrProof(t *testing.T) {
	q := curve.Secp256k1().Params().N
	u := common.GetRandomPositiveInt(q)
	uG := crypto.ScalarBaseMult(curve.Secp256k1(), u)
	proof, _ := NewDLogProof(u, uG)

	assert.True(t, proof.Alpha.IsOnCurve())
	assert.NotZero(t, proof.Alpha.X())
	assert.NotZero(t, proof.Alpha.Y())
	assert.NotZero(t, proof.T)
}

func TestSchnorrProofVerify(t *testing.T) {
	q := curve.Secp256k1().Params().N
	u := common.GetRandomPositiveInt(q)
	X := crypto.ScalarBaseMult(curve.Secp256k1(), u)

	proof, _ := NewDLogProof(u, X)
	res := proof.Verify(X)

	assert.True(t, res, "verify result must be true")
}

func TestSchnorrProofVerifyBadX(t *testing.T) {
	q := curve.Secp256k1().Params().N
	u := common.GetRandomPositiveInt(q)
	u2 := common.GetRandomPositiveInt(q)
	X := crypto.ScalarBaseMult(curve.Secp256k1(), u)
	X2 := crypto.ScalarBaseMult(curve.Secp256k1(), u2)

	proof, _ := NewDLogProof(u2, X2)
	res := proof.Verify(X)

	assert.False(t, res, "verify result must be false")
}

func TestSchnorrProofVerifyEd25519(t *testing.T) {
	q := curve.Ed25519().Params().N
	u := common.GetRandomPositiveInt(q)
	X := crypto.ScalarBaseMult(curve.Ed25519(), u)

	proof, err := NewDLogProofForCurve(curve.Ed25519(), u, X)
	assert.NoError(t, err)
	assert.True(t, proof.VerifyForCurve(curve.Ed25519(), X))
}
