package wire

import (
	"github.com/thresh-proto/tss-protocols/crypto/vss"
	"github.com/thresh-proto/tss-protocols/eddsa/keygen"
)

// SignKeyWire is the CBOR-safe mirror of keygen.SignKey.
type SignKeyWire struct {
	Threshold  int
	ShareCount int
	PartyIndex int
	AggPub     Point
	VssSchemes [][]Point
	Share      Int
	Pub        Point
}

// EncodeSignKey converts a threshold EdDSA signing key to its wire form.
func EncodeSignKey(sk *keygen.SignKey) (SignKeyWire, error) {
	aggPub, err := EncodePoint(Ed25519, sk.AggPub)
	if err != nil {
		return SignKeyWire{}, err
	}
	pub, err := EncodePoint(Ed25519, sk.Pub)
	if err != nil {
		return SignKeyWire{}, err
	}
	schemes := make([][]Point, len(sk.VssSchemes))
	for i, scheme := range sk.VssSchemes {
		pts := make([]Point, len(scheme))
		for j, v := range scheme {
			pt, err := EncodePoint(Ed25519, v)
			if err != nil {
				return SignKeyWire{}, err
			}
			pts[j] = pt
		}
		schemes[i] = pts
	}
	return SignKeyWire{
		Threshold:  sk.Params.Threshold,
		ShareCount: sk.Params.ShareCount,
		PartyIndex: sk.PartyIndex,
		AggPub:     aggPub,
		VssSchemes: schemes,
		Share:      EncodeInt(sk.Share),
		Pub:        pub,
	}, nil
}

// DecodeSignKey is the inverse of EncodeSignKey.
func DecodeSignKey(w SignKeyWire) (*keygen.SignKey, error) {
	aggPub, err := DecodePoint(w.AggPub)
	if err != nil {
		return nil, err
	}
	pub, err := DecodePoint(w.Pub)
	if err != nil {
		return nil, err
	}
	schemes := make([]vss.Vs, len(w.VssSchemes))
	for i, pts := range w.VssSchemes {
		scheme := make(vss.Vs, len(pts))
		for j, pt := range pts {
			p, err := DecodePoint(pt)
			if err != nil {
				return nil, err
			}
			scheme[j] = p
		}
		schemes[i] = scheme
	}
	return &keygen.SignKey{
		Params: keygen.Params{
			Threshold:  w.Threshold,
			ShareCount: w.ShareCount,
		},
		PartyIndex: w.PartyIndex,
		AggPub:     aggPub,
		VssSchemes: schemes,
		Share:      DecodeInt(w.Share),
		Pub:        pub,
	}, nil
}
