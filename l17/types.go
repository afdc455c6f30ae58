// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package l17 implements the Lindell-2017 two-party ECDSA protocol over
// secp256k1: a 2-of-2 threshold scheme where P2 holds a Paillier encryption
// of P1's share so that P2 can drive a homomorphic partial signature
// without ever learning P1's secret share.
//
// Every round is a pure function from (context, inbound message) to (new
// context, outbound message); contexts are never reused and round inputs
// are never replayed. Callers own persistence and transport.
package l17

import (
	"math/big"

	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/crypto/dlnproof"
	"github.com/thresh-proto/tss-protocols/crypto/paillier"
	"github.com/thresh-proto/tss-protocols/crypto/zkp"
)

type (
	// P1Gen1Ctx is P1's state after round 1: the freshly sampled share
	// and the opening of the commitment P1 just broadcast.
	P1Gen1Ctx struct {
		X1        *big.Int
		Q1        *crypto.ECPoint
		Blinding  *big.Int
	}

	// P1Msg1 is P1's round-1 broadcast: a hash commitment to Q1.
	P1Msg1 struct {
		C *big.Int
	}

	// P2Gen1Ctx is P2's state after round 1: its own share plus P1's
	// commitment, persisted for re-verification in round 2.
	P2Gen1Ctx struct {
		X2        *big.Int
		Q2        *crypto.ECPoint
		P1Commit  *big.Int
	}

	// P2Msg1 is P2's round-1 message: Q2 together with a DL-proof of
	// knowledge of x2.
	P2Msg1 struct {
		Q2    *crypto.ECPoint
		Proof *zkp.DLogProof
	}

	// P1Msg2 is P1's round-2 message: the decommitment of Q1, the
	// Paillier correct-key proof, the PDL-with-slack statement and
	// proof, the composite DL proof binding NTilde/H1/H2, and P1's
	// Paillier public key and ciphertext of x1.
	P1Msg2 struct {
		Q1           *crypto.ECPoint
		Blinding     *big.Int
		DLProof      *zkp.DLogProof
		CorrectKeyKi *big.Int
		CorrectKeyPf paillier.Proof
		PDLStatement zkp.PDLwSlackStatement
		PDLProof     zkp.PDLwSlackProof
		CompositeDL  *dlnproof.Proof
		Ek           *paillier.PublicKey
		CipherText   *big.Int
	}

	// L17SignP1Ctx is P1's persistent sign context: the joint public
	// key, both share public keys, P1's own scalar share, its Paillier
	// decryption key and the randomness used when encrypting x1.
	L17SignP1Ctx struct {
		Q, Q1, Q2 *crypto.ECPoint
		X1        *big.Int
		Dk        *paillier.PrivateKey
		R         *big.Int
	}

	// L17SignP2Ctx is P2's persistent sign context: the joint public
	// key, both share public keys, P2's own scalar share, and P1's
	// Paillier public key plus the ciphertext of x1.
	L17SignP2Ctx struct {
		Q, Q1, Q2  *crypto.ECPoint
		X2         *big.Int
		Ek         *paillier.PublicKey
		CipherText *big.Int
	}
)
