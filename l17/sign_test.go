package l17_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresh-proto/tss-protocols/l17"
	"github.com/thresh-proto/tss-protocols/verify"
)

func runSign(t *testing.T, p1Ctx *l17.L17SignP1Ctx, p2Ctx *l17.L17SignP2Ctx, hash []byte) *l17.Signature {
	t.Helper()
	p2SignCtx, m1, err := l17.P2Sign1(p2Ctx, hash)
	require.NoError(t, err)

	p1SignCtx, m2, err := l17.P1Sign1(p1Ctx, m1, hash)
	require.NoError(t, err)

	m3, err := l17.P2Sign2(p2SignCtx, m2)
	require.NoError(t, err)

	sig, err := l17.P1Sign2(p1SignCtx, m3)
	require.NoError(t, err)
	return sig
}

func TestSignHappyPath(t *testing.T) {
	p1Ctx, p2Ctx := runKeygen(t)
	hash := verify.EthereumHash([]byte("hello threshold ecdsa"))

	sig := runSign(t, p1Ctx, p2Ctx, hash)

	m := new(big.Int).SetBytes(hash)
	assert.True(t, verify.ECDSAVerify(p1Ctx.Q, m, sig.R, sig.S))
}

func TestSignTamperedP2CommitmentFails(t *testing.T) {
	p1Ctx, p2Ctx := runKeygen(t)
	hash := verify.EthereumHash([]byte("hello threshold ecdsa"))

	p2SignCtx, m1, err := l17.P2Sign1(p2Ctx, hash)
	require.NoError(t, err)

	p1SignCtx, m2, err := l17.P1Sign1(p1Ctx, m1, hash)
	require.NoError(t, err)

	m3, err := l17.P2Sign2(p2SignCtx, m2)
	require.NoError(t, err)

	// Flip the revealed blinding: the decommitment of R2 no longer opens
	// the commitment P2 sent in round 1.
	m3.Blinding.Add(m3.Blinding, big.NewInt(1))

	_, err = l17.P1Sign2(p1SignCtx, m3)
	assert.Error(t, err)
}

func TestSignDifferentMessagesProduceDifferentSignatures(t *testing.T) {
	p1Ctx, p2Ctx := runKeygen(t)

	sig1 := runSign(t, p1Ctx, p2Ctx, verify.EthereumHash([]byte("message one")))
	sig2 := runSign(t, p1Ctx, p2Ctx, verify.EthereumHash([]byte("message two")))

	assert.NotEqual(t, sig1.R.String()+sig1.S.String(), sig2.R.String()+sig2.S.String())
}
