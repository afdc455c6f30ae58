package signing_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresh-proto/tss-protocols/eddsa/keygen"
	"github.com/thresh-proto/tss-protocols/eddsa/signing"
	"github.com/thresh-proto/tss-protocols/verify"
)

func runDKG(t *testing.T, threshold, n int) []*keygen.SignKey {
	t.Helper()
	params := keygen.Params{Threshold: threshold, ShareCount: n}

	ctx1s := make([]*keygen.Context1, n)
	msgs1 := make([]*keygen.Msg1, n)
	for i := 0; i < n; i++ {
		ctx1, msg1, err := keygen.Phase1(params, i+1)
		require.NoError(t, err)
		ctx1s[i] = ctx1
		msgs1[i] = msg1
	}

	ctx2s := make([]*keygen.Context2, n)
	msgs2 := make([]*keygen.Msg2, n)
	for i := 0; i < n; i++ {
		ctx2, msg2, err := keygen.Phase2(ctx1s[i], msgs1)
		require.NoError(t, err)
		ctx2s[i] = ctx2
		msgs2[i] = msg2
	}

	ctx3s := make([]*keygen.Context3, n)
	allMsgs3 := make([][]*keygen.Msg3, n)
	for i := 0; i < n; i++ {
		ctx3, msgs3, err := keygen.Phase3(ctx2s[i], msgs2)
		require.NoError(t, err)
		ctx3s[i] = ctx3
		allMsgs3[i] = msgs3
	}

	signKeys := make([]*keygen.SignKey, n)
	for i := 0; i < n; i++ {
		inbound := make([]*keygen.Msg3, n)
		for dealer := 0; dealer < n; dealer++ {
			inbound[dealer] = allMsgs3[dealer][i]
		}
		sk, err := keygen.Phase4(ctx3s[i], inbound)
		require.NoError(t, err)
		signKeys[i] = sk
	}

	return signKeys
}

// runSign drives a full signing session for the given subset of signers
// (1-based party indices, indexing into signKeys) and returns the combined
// signature.
func runSign(t *testing.T, signKeys []*keygen.SignKey, subset []int, message []byte) *signing.Signature {
	t.Helper()
	keyFor := func(partyIndex int) *keygen.SignKey {
		for _, sk := range signKeys {
			if sk.PartyIndex == partyIndex {
				return sk
			}
		}
		t.Fatalf("no key for party %d", partyIndex)
		return nil
	}

	ctx1s := make(map[int]*signing.Context1)
	msgs1 := make([]*signing.Msg1, 0, len(subset))
	for _, p := range subset {
		ctx1, msg1, err := signing.Phase1(keyFor(p), subset, message)
		require.NoError(t, err)
		ctx1s[p] = ctx1
		msgs1 = append(msgs1, msg1)
	}

	ctx2s := make(map[int]*signing.Context2)
	msgs2 := make([]*signing.Msg2, 0, len(subset))
	for _, p := range subset {
		ctx2, msg2, err := signing.Phase2(ctx1s[p], msgs1)
		require.NoError(t, err)
		ctx2s[p] = ctx2
		msgs2 = append(msgs2, msg2)
	}

	ctx3s := make(map[int]*signing.Context3)
	msgs3ByDealer := make(map[int][]*signing.Msg3)
	for _, p := range subset {
		ctx3, msgs3, err := signing.Phase3(ctx2s[p], msgs2)
		require.NoError(t, err)
		ctx3s[p] = ctx3
		msgs3ByDealer[p] = msgs3
	}

	ctx4s := make(map[int]*signing.Context4)
	msgs4 := make([]*signing.Msg4, 0, len(subset))
	for _, p := range subset {
		inbound := make([]*signing.Msg3, 0, len(subset))
		for _, dealer := range subset {
			for _, m := range msgs3ByDealer[dealer] {
				if m.Receiver == p {
					inbound = append(inbound, m)
				}
			}
		}
		ctx4, msg4, err := signing.Phase4(ctx3s[p], inbound)
		require.NoError(t, err)
		ctx4s[p] = ctx4
		msgs4 = append(msgs4, msg4)
	}

	sig, err := signing.Phase5(ctx4s[subset[0]], msgs4)
	require.NoError(t, err)
	return sig
}

func TestSignHappyPathThreeOfFive(t *testing.T) {
	signKeys := runDKG(t, 2, 5)
	message := []byte("threshold eddsa message")

	sig := runSign(t, signKeys, []int{1, 3, 5}, message)

	assert.True(t, verify.EdDSAVerify(signKeys[0].AggPub, message, sig.R, sig.S))
}

func TestSignRejectsSubsetAtThreshold(t *testing.T) {
	// threshold=2 requires more than 2 signers; a 2-party subset must be
	// rejected once enough commitments are in to check the bound.
	signKeys := runDKG(t, 2, 5)
	message := []byte("too few signers")

	keyFor := func(p int) *keygen.SignKey {
		for _, sk := range signKeys {
			if sk.PartyIndex == p {
				return sk
			}
		}
		return nil
	}

	subset := []int{1, 2}
	ctx1Party1, msg1Party1, err := signing.Phase1(keyFor(1), subset, message)
	require.NoError(t, err)
	ctx1Party2, msg1Party2, err := signing.Phase1(keyFor(2), subset, message)
	require.NoError(t, err)

	msgs1 := []*signing.Msg1{msg1Party1, msg1Party2}
	ctx2, msg2Party1, err := signing.Phase2(ctx1Party1, msgs1)
	require.NoError(t, err)
	_, msg2Party2, err := signing.Phase2(ctx1Party2, msgs1)
	require.NoError(t, err)

	_, _, err = signing.Phase3(ctx2, []*signing.Msg2{msg2Party1, msg2Party2})
	assert.Error(t, err)
}

func TestSignTamperedPartialSignatureFails(t *testing.T) {
	signKeys := runDKG(t, 1, 3)
	message := []byte("tampered partial signature")
	subset := []int{1, 2, 3}

	keyFor := func(p int) *keygen.SignKey {
		for _, sk := range signKeys {
			if sk.PartyIndex == p {
				return sk
			}
		}
		t.Fatalf("no key for party %d", p)
		return nil
	}

	ctx1s := make(map[int]*signing.Context1)
	msgs1 := make([]*signing.Msg1, 0, len(subset))
	for _, p := range subset {
		ctx1, msg1, err := signing.Phase1(keyFor(p), subset, message)
		require.NoError(t, err)
		ctx1s[p] = ctx1
		msgs1 = append(msgs1, msg1)
	}

	ctx2s := make(map[int]*signing.Context2)
	msgs2 := make([]*signing.Msg2, 0, len(subset))
	for _, p := range subset {
		ctx2, msg2, err := signing.Phase2(ctx1s[p], msgs1)
		require.NoError(t, err)
		ctx2s[p] = ctx2
		msgs2 = append(msgs2, msg2)
	}

	ctx3s := make(map[int]*signing.Context3)
	msgs3ByDealer := make(map[int][]*signing.Msg3)
	for _, p := range subset {
		ctx3, msgs3, err := signing.Phase3(ctx2s[p], msgs2)
		require.NoError(t, err)
		ctx3s[p] = ctx3
		msgs3ByDealer[p] = msgs3
	}

	ctx4s := make(map[int]*signing.Context4)
	msgs4 := make([]*signing.Msg4, 0, len(subset))
	for _, p := range subset {
		inbound := make([]*signing.Msg3, 0, len(subset))
		for _, dealer := range subset {
			for _, m := range msgs3ByDealer[dealer] {
				if m.Receiver == p {
					inbound = append(inbound, m)
				}
			}
		}
		ctx4, msg4, err := signing.Phase4(ctx3s[p], inbound)
		require.NoError(t, err)
		ctx4s[p] = ctx4
		msgs4 = append(msgs4, msg4)
	}

	// Replace one signer's partial signature with an unrelated scalar; the
	// per-signer check in phase 5 must catch it before any Lagrange
	// combination happens.
	msgs4[0].S = new(big.Int).Add(msgs4[0].S, big.NewInt(1))

	_, err := signing.Phase5(ctx4s[subset[0]], msgs4)
	assert.Error(t, err)
}

func TestSignDifferentSubsetsProduceValidSignatures(t *testing.T) {
	signKeys := runDKG(t, 1, 4)
	message := []byte("any qualifying subset must verify")

	sigA := runSign(t, signKeys, []int{1, 2, 3}, message)
	assert.True(t, verify.EdDSAVerify(signKeys[0].AggPub, message, sigA.R, sigA.S))

	sigB := runSign(t, signKeys, []int{2, 3, 4}, message)
	assert.True(t, verify.EdDSAVerify(signKeys[0].AggPub, message, sigB.R, sigB.S))
}
