// Copyright © 2019-2020 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package safeparameter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thresh-proto/tss-protocols/common"
)

func TestGeneratePreParams(t *testing.T) {
	if err := common.SetLogLevel("debug"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	preParams, err := GeneratePreParams(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, preParams.Validate())
	assert.NotNil(t, preParams.PaillierSK)
	assert.NotNil(t, preParams.NTildei)
	assert.NotEqual(t, preParams.H1i.Cmp(preParams.H2i), 0)

	// H2 must equal H1^Alpha mod NTilde, and H1 must equal H2^Beta mod NTilde.
	modNTilde := common.ModInt(preParams.NTildei)
	assert.Equal(t, 0, preParams.H2i.Cmp(modNTilde.Exp(preParams.H1i, preParams.Alpha)))
	assert.Equal(t, 0, preParams.H1i.Cmp(modNTilde.Exp(preParams.H2i, preParams.Beta)))
}
