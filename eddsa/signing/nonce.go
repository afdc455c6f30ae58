// Copyright © 2019 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package signing

import (
	"math/big"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/curve"
)

// deterministicNonce derives a per-signature ephemeral nonce from the
// signer's long-term share, the message, and its party index, so a signer
// never needs a fresh source of randomness to begin a signing session and
// never reuses a nonce across two different messages.
func deterministicNonce(share *big.Int, message []byte, partyIndex int) *big.Int {
	q := curve.Ed25519().Params().N
	// The message length is hashed too, so messages that differ only in
	// leading zero bytes do not map to the same integer input.
	k := common.SHA512_256i(share, new(big.Int).SetBytes(message), big.NewInt(int64(len(message))), big.NewInt(int64(partyIndex)))
	return k.Mod(k, q)
}
