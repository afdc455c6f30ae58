// Copyright © 2019-2020 Binance
//
// This file is part of Binance. The full Binance copyright notice, including
// terms governing use, modification, and redistribution, is contained in the
// file LICENSE at the root of the source code distribution tree.

package safeparameter

import (
	"context"
	"math/big"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/thresh-proto/tss-protocols/common"
	"github.com/thresh-proto/tss-protocols/crypto/paillier"
)

// LocalPreParams holds the auxiliary parameters a party generates once during
// key generation: a fresh Paillier keypair, and a safe-prime modulus NTilde
// with two quadratic-residue generators H1, H2 used by the PDL proof's
// composite discrete-log binding. Alpha, Beta, P and Q are retained because
// the composite discrete-log proof needs a known discrete log between H1 and
// H2 and the Germain-prime cofactors of NTilde.
type LocalPreParams struct {
	PaillierSK *paillier.PrivateKey
	NTildei,
	H1i, H2i,
	Alpha, Beta,
	P, Q *big.Int
}

const (
	paillierModulusLen     = 2048
	safePrimeBitLen        = 1024
	logProgressTickInterval = 8 * time.Second
)

// GeneratePreParams finds two safe primes and a Paillier keypair concurrently.
// This can be time consuming so it is recommended to run it out-of-band.
// If not specified, a concurrency value equal to the number of available
// CPU cores is used.
func GeneratePreParams(ctx context.Context, optionalConcurrency ...int) (*LocalPreParams, error) {
	var concurrency int
	if 0 < len(optionalConcurrency) {
		if 1 < len(optionalConcurrency) {
			panic(errors.New("GeneratePreParams: expected 0 or 1 item in `optionalConcurrency`"))
		}
		concurrency = optionalConcurrency[0]
	} else {
		concurrency = runtime.NumCPU()
	}
	if concurrency/3 >= 1 {
		concurrency /= 3
	} else {
		concurrency = 1
	}

	paiCh := make(chan *paillier.PrivateKey, 1)
	sgpCh := make(chan []*common.GermainSafePrime, 1)

	go func(ch chan<- *paillier.PrivateKey) {
		common.Logger.Info("generating the Paillier modulus, please wait...")
		start := time.Now()
		sk, _, err := paillier.GenerateKeyPair(ctx, paillierModulusLen, concurrency*2)
		if err != nil {
			ch <- nil
			return
		}
		common.Logger.Infof("paillier modulus generated. took %s\n", time.Since(start))
		ch <- sk
	}(paiCh)

	go func(ch chan<- []*common.GermainSafePrime) {
		common.Logger.Info("generating the safe primes for the signing proofs, please wait...")
		start := time.Now()
		sgps, err := common.GetRandomSafePrimesConcurrent(ctx, safePrimeBitLen, 2, concurrency)
		if err != nil {
			ch <- nil
			return
		}
		common.Logger.Infof("safe primes generated. took %s\n", time.Since(start))
		ch <- sgps
	}(sgpCh)

	logProgressTicker := time.NewTicker(logProgressTickInterval)
	defer logProgressTicker.Stop()

	var sgps []*common.GermainSafePrime
	var paiSK *paillier.PrivateKey
consumer:
	for {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(common.ErrKeyGen, "GeneratePreParams: context cancelled")
		case <-logProgressTicker.C:
			common.Logger.Info("still generating primes...")
		case sgps = <-sgpCh:
			if sgps == nil {
				return nil, errors.Wrap(common.ErrKeyGen, "GeneratePreParams: safe prime generation failed")
			}
			if paiSK != nil {
				break consumer
			}
		case paiSK = <-paiCh:
			if paiSK == nil {
				return nil, errors.Wrap(common.ErrKeyGen, "GeneratePreParams: Paillier key generation failed")
			}
			if sgps != nil {
				break consumer
			}
		}
	}

	P, Q := sgps[0].SafePrime(), sgps[1].SafePrime()
	NTildei := new(big.Int).Mul(P, Q)
	modNTildei := common.ModInt(NTildei)

	p, q := sgps[0].Prime(), sgps[1].Prime()
	modPQ := common.ModInt(new(big.Int).Mul(p, q))
	f1 := common.GetRandomPositiveRelativelyPrimeInt(NTildei)
	alpha := common.GetRandomPositiveRelativelyPrimeInt(NTildei)
	beta := modPQ.ModInverse(alpha)
	h1i := modNTildei.Mul(f1, f1)
	h2i := modNTildei.Exp(h1i, alpha)

	return &LocalPreParams{
		PaillierSK: paiSK,
		NTildei:    NTildei,
		H1i:        h1i,
		H2i:        h2i,
		Alpha:      alpha,
		Beta:       beta,
		P:          p,
		Q:          q,
	}, nil
}

func (preParams LocalPreParams) Validate() bool {
	return preParams.PaillierSK != nil &&
		preParams.NTildei != nil &&
		preParams.H1i != nil &&
		preParams.H2i != nil &&
		preParams.Alpha != nil &&
		preParams.Beta != nil &&
		preParams.P != nil &&
		preParams.Q != nil
}
