// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package signing implements threshold EdDSA signing over Ed25519 for a
// chosen subset of the parties produced by eddsa/keygen. The subset deals a
// fresh Feldman VSS sharing of a deterministic per-party nonce, then
// combines per-party partial signatures with Lagrange weights evaluated at
// the same party indices used to deal that nonce, so no separate reindexing
// is needed between key shares and nonce shares.
package signing

import (
	"math/big"

	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/crypto/vss"
	"github.com/thresh-proto/tss-protocols/crypto/zkp"
	"github.com/thresh-proto/tss-protocols/eddsa/keygen"
)

type (
	// Context1 is a signer's state after phase 1: its deterministic
	// ephemeral nonce and the opening of the commitment it just
	// broadcast.
	Context1 struct {
		Key      *keygen.SignKey
		Parties  []int
		Message  []byte
		K        *big.Int
		R        *crypto.ECPoint
		Blinding *big.Int
	}

	// Msg1 is a signer's phase-1 broadcast: a hash commitment to R.
	Msg1 struct {
		Sender int
		Commit *big.Int
	}

	// Context2 is a signer's state after phase 2: every commitment
	// received in phase 1, ordered by sender.
	Context2 struct {
		Key     *keygen.SignKey
		Parties []int
		Message []byte
		K       *big.Int
		R       *crypto.ECPoint
		Commits []*big.Int
	}

	// Msg2 is a signer's phase-2 broadcast: the decommitment of R plus a
	// Schnorr proof of knowledge of its discrete log.
	Msg2 struct {
		Sender   int
		R        *crypto.ECPoint
		Blinding *big.Int
		Proof    *zkp.DLogProof
	}

	// Context3 is a signer's state after phase 3: every signer's nonce
	// point and the aggregate nonce. The dealt VSS shares of this
	// signer's own nonce are returned as Msg3 values, not kept here.
	Context3 struct {
		Key     *keygen.SignKey
		Parties []int
		Message []byte
		Rs      []*crypto.ECPoint
		AggR    *crypto.ECPoint
	}

	// Msg3 is one Feldman VSS share of a signer's nonce, directed from
	// Sender to Receiver, together with the dealer's verification
	// vector.
	Msg3 struct {
		Sender   int
		Receiver int
		Share    *big.Int
		Vs       vss.Vs
	}

	// Context4 is a signer's state after phase 4: the aggregate nonce
	// and every dealer's nonce verification vector. This signer's
	// partial signature is returned as Msg4, not kept here.
	Context4 struct {
		Key      *keygen.SignKey
		Parties  []int
		Message  []byte
		AggR     *crypto.ECPoint
		NonceVss []vss.Vs
	}

	// Msg4 carries one signer's partial signature share.
	Msg4 struct {
		Sender int
		S      *big.Int
	}

	// Signature is the final combined EdDSA signature.
	Signature struct {
		R *crypto.ECPoint
		S *big.Int
	}
)
