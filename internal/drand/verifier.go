package drand

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	bls12381 "github.com/drand/kyber-bls12381"
)

// League of Entropy mainnet parameters.
const (
	MainnetPubkey = "868f005eb8e6e4ca0a47c8a77ceaa5309a47978a7c71bc5cce96366b5d7a569937c529eeda66c7293784a9402801af31"
	GenesisTime   = 1595431050
	Period        = 30
)

// Freshness tolerance around the expected round: ~10 minutes into the past,
// ~5 minutes into the future.
const (
	maxRoundAge     = 20
	maxFutureRounds = 10
)

const (
	randomnessBytes = 32
	signatureBytes  = 96
	pubkeyBytes     = 48
)

var (
	ErrUnknownPubkey    = errors.New("unrecognized drand public key")
	ErrBadPubkey        = errors.New("malformed drand public key")
	ErrBadRandomness    = errors.New("malformed randomness")
	ErrBadSignature     = errors.New("malformed signature")
	ErrRoundTooOld      = errors.New("drand round too old")
	ErrRoundTooNew      = errors.New("drand round too far in future")
	ErrRoundBeforeClose = errors.New("drand round predates raffle close")
	ErrBindingMismatch  = errors.New("randomness does not match signature - possible tampering detected")
)

var suite = bls12381.NewBLS12381Suite()

type Beacon struct {
	Round      uint64
	Randomness string
	Signature  string
}

// Verify validates a beacon triple and returns the 64-bit winner seed.
// Checks run in order and short-circuit: recognized key, well-formed
// encodings and curve points, freshness window around the expected round,
// optional minimum round derived from the raffle close, and finally the
// binding sha256(signature) == randomness. The seed is the big-endian
// interpretation of the first eight randomness bytes.
//
// Note the binding check only ties the two supplied values to each other;
// it is not a pairing verification of the signature against the key.
func Verify(pubkeyHex string, beacon Beacon, now time.Time, minRound uint64) (uint64, error) {
	if pubkeyHex != MainnetPubkey {
		return 0, ErrUnknownPubkey
	}

	pubkey, err := hex.DecodeString(pubkeyHex)
	if err != nil || len(pubkey) != pubkeyBytes {
		return 0, ErrBadPubkey
	}
	if err := suite.G1().Point().UnmarshalBinary(pubkey); err != nil {
		return 0, fmt.Errorf("%w: not a valid G1 point", ErrBadPubkey)
	}

	randomness, err := hex.DecodeString(beacon.Randomness)
	if err != nil || len(randomness) != randomnessBytes {
		return 0, fmt.Errorf("%w: want %d bytes", ErrBadRandomness, randomnessBytes)
	}

	signature, err := hex.DecodeString(beacon.Signature)
	if err != nil || len(signature) != signatureBytes {
		return 0, fmt.Errorf("%w: want %d bytes", ErrBadSignature, signatureBytes)
	}
	if err := suite.G2().Point().UnmarshalBinary(signature); err != nil {
		return 0, fmt.Errorf("%w: not a valid G2 point", ErrBadSignature)
	}

	expected := CurrentRound(now)
	if beacon.Round+maxRoundAge < expected {
		return 0, fmt.Errorf("%w: round=%d, expected=%d", ErrRoundTooOld, beacon.Round, expected)
	}
	if beacon.Round > expected+maxFutureRounds {
		return 0, fmt.Errorf("%w: round=%d, expected=%d", ErrRoundTooNew, beacon.Round, expected)
	}

	if minRound > 0 && beacon.Round <= minRound {
		return 0, fmt.Errorf("%w: round=%d, min=%d", ErrRoundBeforeClose, beacon.Round, minRound)
	}

	computed := sha256.Sum256(signature)
	if !bytes.Equal(computed[:], randomness) {
		return 0, ErrBindingMismatch
	}

	return Seed(randomness), nil
}

// CurrentRound is the round the network should have published by now,
// zero before genesis.
func CurrentRound(now time.Time) uint64 {
	seconds := now.Unix()
	if seconds < GenesisTime {
		return 0
	}
	return uint64(seconds-GenesisTime)/Period + 1
}

// Seed folds the randomness into a uint64, big-endian over the first eight
// bytes, zero-padded when shorter.
func Seed(randomness []byte) uint64 {
	var buf [8]byte
	copy(buf[:], randomness)
	return binary.BigEndian.Uint64(buf[:])
}
