package l17_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/curve"
	"github.com/thresh-proto/tss-protocols/l17"
	"github.com/thresh-proto/tss-protocols/verify"
)

func TestRefreshPreservesJointKeyAndCanStillSign(t *testing.T) {
	p1Ctx, p2Ctx := runKeygen(t)

	q := curve.Secp256k1().Params().N
	alpha := common.GetRandomPositiveInt(q)

	newP1Ctx, newP2Ctx, err := l17.Refresh(p1Ctx, p2Ctx, alpha)
	require.NoError(t, err)

	assert.True(t, newP1Ctx.Q.Equals(p1Ctx.Q))
	assert.True(t, newP2Ctx.Q.Equals(p2Ctx.Q))

	// The refreshed shares must differ from the originals.
	assert.NotEqual(t, 0, l17.ExtractShare(newP1Ctx).Cmp(l17.ExtractShare(p1Ctx)))
	assert.NotEqual(t, 0, l17.ExtractShareP2(newP2Ctx).Cmp(l17.ExtractShareP2(p2Ctx)))

	hash := verify.EthereumHash([]byte("signed after refresh"))
	sig := runSign(t, newP1Ctx, newP2Ctx, hash)

	m := new(big.Int).SetBytes(hash)
	assert.True(t, verify.ECDSAVerify(newP1Ctx.Q, m, sig.R, sig.S))
}

func TestRefreshRejectsZeroAlpha(t *testing.T) {
	p1Ctx, p2Ctx := runKeygen(t)

	_, _, err := l17.Refresh(p1Ctx, p2Ctx, big.NewInt(0))
	assert.Error(t, err)
}
