// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

// Package keygen implements threshold EdDSA distributed key generation over
// Ed25519. Each of n parties contributes a Feldman-VSS-shared secret; the
// joint public key is the sum of every party's individual public key, and
// each party's final signing share is the sum of the shares it received
// from every dealer.
//
// Every phase is a pure function from (context, inbound messages) to (new
// context, outbound message(s)); contexts are never reused. Callers own
// persistence, transport, and the mapping from party index to network
// identity.
package keygen

import (
	"math/big"

	"github.com/thresh-proto/tss-protocols/crypto"
	"github.com/thresh-proto/tss-protocols/crypto/vss"
	"github.com/thresh-proto/tss-protocols/crypto/zkp"
)

type (
	// Params fixes the threshold t and party count n for a run of keygen.
	// A signature later requires more than t and at most n participants.
	Params struct {
		Threshold  int
		ShareCount int
	}

	// Context1 is a party's state after phase 1: its own random
	// contribution to the joint key and the opening of the commitment it
	// just broadcast.
	Context1 struct {
		Params     Params
		PartyIndex int
		U          *big.Int
		Pub        *crypto.ECPoint
		Blinding   *big.Int
	}

	// Msg1 is a party's phase-1 broadcast: a hash commitment to Pub.
	Msg1 struct {
		Sender int
		Commit *big.Int
	}

	// Context2 is a party's state after phase 2: every commitment
	// received in phase 1, ordered by sender.
	Context2 struct {
		Params     Params
		PartyIndex int
		U          *big.Int
		Pub        *crypto.ECPoint
		Commits    []*big.Int
	}

	// Msg2 is a party's phase-2 broadcast: the decommitment of Pub plus a
	// Schnorr proof of knowledge of its discrete log.
	Msg2 struct {
		Sender   int
		Pub      *crypto.ECPoint
		Blinding *big.Int
		Proof    *zkp.DLogProof
	}

	// Context3 is a party's state after phase 3: every party's public
	// contribution and the aggregate public key. The dealt VSS shares
	// are returned as Msg3 values, not kept here.
	Context3 struct {
		Params     Params
		PartyIndex int
		U          *big.Int
		Pubkeys    []*crypto.ECPoint
		AggPub     *crypto.ECPoint
	}

	// Msg3 is one Feldman VSS share, directed from Sender to Receiver,
	// together with the dealer's public verification vector.
	Msg3 struct {
		Sender   int
		Receiver int
		Share    *big.Int
		Vs       vss.Vs
	}

	// SignKey is the final, persistent output of key generation: the
	// joint public key, every dealer's verification vector (needed to
	// check each signer's partial signature during signing), and this
	// party's combined secret share.
	SignKey struct {
		Params     Params
		PartyIndex int
		AggPub     *crypto.ECPoint
		VssSchemes []vss.Vs
		Share      *big.Int
		Pub        *crypto.ECPoint
	}
)
